// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin/reverts"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var (
	errNoCoordinator = reverts.NewRequireError("No coordinator")
	errNoToken       = reverts.NewRequireError("No token")
)

// Coordinator is the oracle contract the lottery buys randomness from.
type Coordinator interface {
	CalculateRequestPriceNative(callbackGasLimit, numWords uint32) (*uint256.Int, error)
	RequestRandomWordsInNative(
		env *xenv.Environment,
		callbackGasLimit uint32,
		requestConfirmations uint16,
		numWords uint32,
		extraArgs []byte,
	) (*uint256.Int, error)
}

// RewardToken is the token rewards are minted in.
type RewardToken interface {
	Mint(env *xenv.Environment, account vela.Address, amount *uint256.Int) error
	Transfer(env *xenv.Environment, to vela.Address, value *uint256.Int) (bool, error)
}

func (l *Lottery) coordinator(env *xenv.Environment) (Coordinator, vela.Address, error) {
	addr, err := l.wrapper.Get()
	if err != nil {
		return nil, vela.Address{}, err
	}
	c, ok := env.Contract(addr)
	if !ok {
		return nil, addr, errNoCoordinator
	}
	coord, ok := c.(Coordinator)
	if !ok {
		return nil, addr, errNoCoordinator
	}
	return coord, addr, nil
}

// quote asks the coordinator for the native price of one request.
func (l *Lottery) quote(env *xenv.Environment) (*uint256.Int, error) {
	coord, _, err := l.coordinator(env)
	if err != nil {
		return nil, err
	}
	gas, _, words, err := l.RequestConfig()
	if err != nil {
		return nil, err
	}
	return coord.CalculateRequestPriceNative(gas, words)
}

// quoteAndRequest pays the quoted price to the coordinator and returns the new request id.
func (l *Lottery) quoteAndRequest(env *xenv.Environment, gas uint32, confirmations uint16, words uint32) (id, price *uint256.Int, err error) {
	coord, addr, err := l.coordinator(env)
	if err != nil {
		return nil, nil, err
	}
	price, err = coord.CalculateRequestPriceNative(gas, words)
	if err != nil {
		return nil, nil, err
	}
	if price.IsZero() {
		return nil, nil, errZeroPrice
	}

	err = env.Call(addr, price, func(env *xenv.Environment) (err error) {
		id, err = coord.RequestRandomWordsInNative(env, gas, confirmations, words, ExtraArgs())
		return
	})
	if err != nil {
		return nil, nil, err
	}
	return id, price, nil
}

func rewardToken(env *xenv.Environment, addr vela.Address) (RewardToken, error) {
	c, ok := env.Contract(addr)
	if !ok {
		return nil, errNoToken
	}
	tk, ok := c.(RewardToken)
	if !ok {
		return nil, errNoToken
	}
	return tk, nil
}
