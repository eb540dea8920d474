// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/builtin/lottery"
	"github.com/velalabs/vela/builtin/vrfwrapper"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

// Round is the outcome of a played round.
type Round struct {
	ID          *uint256.Int
	Fulfillment *vrfwrapper.Fulfillment
	Event       *lottery.Fulfilled
}

// Join enters player paying the current entry fee.
func (c *Chain) Join(player vela.Address) error {
	fee, err := c.Lottery().LotteryEntryFee()
	if err != nil {
		return err
	}
	_, err = Invoke(c, player, builtin.Lottery.Address, fee, func(l *lottery.Lottery, env *xenv.Environment) error {
		return l.ParticipateInLottery(env)
	})
	return err
}

// Request buys randomness for the current round on behalf of caller.
func (c *Chain) Request(caller vela.Address) (id *uint256.Int, err error) {
	_, err = Invoke(c, caller, builtin.Lottery.Address, nil, func(l *lottery.Lottery, env *xenv.Environment) error {
		id, err = l.RequestRandomWords(env)
		return err
	})
	return
}

// Fulfill makes the operator fulfill request id.
func (c *Chain) Fulfill(id *uint256.Int) (*Round, error) {
	var ful *vrfwrapper.Fulfillment
	receipt, err := Invoke(c, c.config.Owner, builtin.VRFWrapper.Address, nil, func(w *vrfwrapper.Wrapper, env *xenv.Environment) (err error) {
		ful, err = w.Fulfill(env, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	ev, _, err := lottery.DecodeFulfilled(builtin.Lottery.Address, receipt.Logs)
	if err != nil {
		return nil, err
	}
	return &Round{ID: id, Fulfillment: ful, Event: ev}, nil
}

// PlayRound lets players join, waits out the interval and the confirmations,
// then requests and fulfills the round's randomness.
func (c *Chain) PlayRound(players []vela.Address) (*Round, error) {
	if len(players) == 0 {
		return nil, errors.New("no players")
	}
	for _, p := range players {
		if err := c.Join(p); err != nil {
			return nil, err
		}
	}
	interval, err := c.Lottery().LotteryInterval()
	if err != nil {
		return nil, err
	}
	if err := c.Advance(1, interval); err != nil {
		return nil, err
	}
	id, err := c.Request(players[0])
	if err != nil {
		return nil, err
	}
	_, confirmations, _, err := c.Lottery().RequestConfig()
	if err != nil {
		return nil, err
	}
	if err := c.Advance(uint32(confirmations), 0); err != nil {
		return nil, err
	}
	return c.Fulfill(id)
}
