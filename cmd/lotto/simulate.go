// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/builtin/lottery"
	"github.com/velalabs/vela/builtin/vrfwrapper"
	"github.com/velalabs/vela/genesis"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/metrics"
	"github.com/velalabs/vela/packer"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var simLogger = log.WithContext("pkg", "simulate")

// roundResult is the outcome of one simulated round.
type roundResult struct {
	ID     *uint256.Int
	Word   *uint256.Int
	Winner vela.Address
	Reward *uint256.Int
}

func simulateAction(ctx *cli.Context) error {
	rounds, players := ctx.Int(roundsFlag.Name), ctx.Int(playersFlag.Name)
	if rounds <= 0 || players <= 0 {
		return fmt.Errorf("--%s and --%s must be positive", roundsFlag.Name, playersFlag.Name)
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	results, err := simulate(rounds, players)
	if err != nil {
		return err
	}

	wins := make(map[vela.Address]int)
	for i, r := range results {
		if r.Winner.IsZero() {
			fmt.Fprintf(ctx.App.Writer, "round %3d  request %v  no reward\n", i+1, r.ID.Dec())
			continue
		}
		wins[r.Winner]++
		fmt.Fprintf(ctx.App.Writer, "round %3d  request %v  winner %v  reward %v\n", i+1, r.ID.Dec(), r.Winner, r.Reward.Dec())
	}
	winners := make([]vela.Address, 0, len(wins))
	for addr := range wins {
		winners = append(winners, addr)
	}
	slices.SortFunc(winners, func(a, b vela.Address) int { return wins[b] - wins[a] })
	for _, addr := range winners {
		fmt.Fprintf(ctx.App.Writer, "%v won %d time(s)\n", addr, wins[addr])
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		return metrics.Dump(ctx.App.Writer)
	}
	return nil
}

// simulate plays rounds on an in-memory chain. The same players enter every round.
func simulate(rounds, players int) ([]*roundResult, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	owner := vela.BytesToAddress([]byte("simulation-owner"))
	cfg := genesis.DevConfig(owner, uint64(time.Now().Unix()))
	cfg.Lottery.ResetOnPayout = true
	entrants := make([]vela.Address, players)
	for i := range entrants {
		entrants[i] = vela.BytesToAddress([]byte(fmt.Sprintf("player-%d", i)))
		cfg.Accounts = append(cfg.Accounts, genesis.Account{Address: entrants[i], Balance: genesis.NewAmount(1e18)})
	}
	ch, err := genesis.Build(db, cfg, &key.PublicKey)
	if err != nil {
		return nil, err
	}
	p := packer.New(ch, key)

	interval, err := builtin.Lottery.WithState(p.State()).LotteryInterval()
	if err != nil {
		return nil, err
	}
	_, confirmations, _, err := builtin.Lottery.WithState(p.State()).RequestConfig()
	if err != nil {
		return nil, err
	}

	results := make([]*roundResult, 0, rounds)
	for range rounds {
		r, err := playRound(p, owner, entrants, interval, confirmations)
		if err != nil {
			return nil, errors.WithMessagef(err, "round %d", len(results)+1)
		}
		results = append(results, r)
		simLogger.Debug("round played", "id", r.ID, "winner", r.Winner)
	}
	return results, nil
}

func playRound(p *packer.Packer, operator vela.Address, entrants []vela.Address, interval uint64, confirmations uint16) (*roundResult, error) {
	st := p.State()
	lot := builtin.Lottery.WithState(st)
	fee, err := lot.LotteryEntryFee()
	if err != nil {
		return nil, err
	}
	current, err := lot.Participants()
	if err != nil {
		return nil, err
	}

	// one flow for all entries
	f := p.Schedule()
	for _, e := range entrants {
		if slices.Contains(current, e) {
			continue
		}
		receipt, err := packer.Adopt(f, e, builtin.Lottery.Address, fee, func(l *lottery.Lottery, env *xenv.Environment) error {
			return l.ParticipateInLottery(env)
		})
		if err != nil {
			return nil, err
		}
		if err := receipt.Revert(); err != nil {
			return nil, err
		}
	}
	if err := f.Pack(); err != nil {
		return nil, err
	}

	if _, err := p.Chain().Advance(1, interval); err != nil {
		return nil, err
	}
	var id *uint256.Int
	if _, err := invoke(p, entrants[0], builtin.Lottery.Address, nil, func(l *lottery.Lottery, env *xenv.Environment) (err error) {
		id, err = l.RequestRandomWords(env)
		return
	}); err != nil {
		return nil, err
	}
	if _, err := p.Chain().Advance(uint32(confirmations), 0); err != nil {
		return nil, err
	}

	receipt, err := invoke(p, operator, builtin.VRFWrapper.Address, nil, func(w *vrfwrapper.Wrapper, env *xenv.Environment) error {
		_, err := w.Fulfill(env, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	ev, found, err := lottery.DecodeFulfilled(builtin.Lottery.Address, receipt.Logs)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("consumer callback failed")
	}

	r := &roundResult{ID: id, Winner: ev.Winner}
	if len(ev.Words) > 0 {
		r.Word = ev.Words[0]
	}
	if !ev.Winner.IsZero() {
		if r.Reward, err = lottery.RewardAmount(fee, uint64(len(entrants))); err != nil {
			return nil, err
		}
	}
	return r, nil
}
