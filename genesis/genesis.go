// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis deploys the token, the oracle wrapper and the lottery from a config.
package genesis

import (
	"crypto/ecdsa"

	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/builtin/lottery"
	"github.com/velalabs/vela/builtin/token"
	"github.com/velalabs/vela/builtin/vrfwrapper"
	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/kv"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var logger = log.WithContext("pkg", "genesis")

// Build deploys cfg into db. vrfPub is the public half of the operator's VRF key.
func Build(db kv.GetPutter, cfg *Config, vrfPub *ecdsa.PublicKey) (*chain.Chain, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	owner := cfg.Owner
	lc := cfg.Lottery

	b := new(Builder).
		Timestamp(cfg.LaunchTime).
		State(func(st *state.State) error {
			for _, a := range cfg.Accounts {
				st.SetBalance(a.Address, a.Balance.Int())
			}
			return nil
		}).
		Call(invoke(cfg.operator(), builtin.VRFWrapper.Address, func(w *vrfwrapper.Wrapper, env *xenv.Environment) error {
			return w.Initialize(env, cfg.operator(), vrfwrapper.Pricing{
				GasPrice:    cfg.Wrapper.GasPrice.Int(),
				OverheadGas: cfg.Wrapper.OverheadGas.Int(),
				PerWordGas:  cfg.Wrapper.PerWordGas.Int(),
				FlatFee:     cfg.Wrapper.FlatFee.Int(),
			}, vrfPub)
		})).
		Call(invoke(owner, builtin.Token.Address, func(tk *token.Token, env *xenv.Environment) error {
			if err := tk.Initialize(env, cfg.Token.Name, cfg.Token.Symbol, cfg.Token.Cap.Int(), owner); err != nil {
				return err
			}
			return tk.SetAuthorizedMinter(env, builtin.Lottery.Address)
		})).
		Call(invoke(owner, builtin.Lottery.Address, func(l *lottery.Lottery, env *xenv.Environment) error {
			if err := l.Initialize(env, builtin.VRFWrapper.Address, owner); err != nil {
				return err
			}
			if err := l.SetERC20Token(env, builtin.Token.Address); err != nil {
				return err
			}
			if lc.EntryFee != nil {
				if err := l.SetLotteryEntryFee(env, lc.EntryFee.Int()); err != nil {
					return err
				}
			}
			if lc.IntervalHours != nil {
				if err := l.SetLotteryIntervalHours(env, *lc.IntervalHours); err != nil {
					return err
				}
			}
			gas, confirmations, words := lc.requestConfig()
			if err := l.SetRequestConfig(env, gas, confirmations, words); err != nil {
				return err
			}
			return l.SetResetOnPayout(env, lc.ResetOnPayout)
		}))

	ch, events, err := b.Build(db)
	if err != nil {
		return nil, err
	}
	logger.Info("genesis built",
		"owner", owner,
		"token", builtin.Token.Address,
		"lottery", builtin.Lottery.Address,
		"wrapper", builtin.VRFWrapper.Address,
		"events", len(events))
	return ch, nil
}

func (lc LotteryConfig) requestConfig() (gas uint32, confirmations uint16, words uint32) {
	gas, confirmations, words = vela.InitialCallbackGasLimit, vela.InitialRequestConfirmations, vela.InitialNumWords
	if lc.CallbackGasLimit != 0 {
		gas = lc.CallbackGasLimit
	}
	if lc.RequestConfirmations != nil {
		confirmations = *lc.RequestConfirmations
	}
	if lc.NumWords != 0 {
		words = lc.NumWords
	}
	return
}
