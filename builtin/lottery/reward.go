// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var (
	rewardPercent = uint256.NewInt(vela.RewardPercent)
	hundred       = uint256.NewInt(100)
)

// RewardAmount returns the winner's share of the pot: fee * count * 85 / 100, truncated.
func RewardAmount(fee *uint256.Int, count uint64) (*uint256.Int, error) {
	prize, overflow := new(uint256.Int).MulOverflow(fee, uint256.NewInt(count))
	if overflow {
		return nil, errRewardOverflow
	}
	reward, overflow := prize.MulOverflow(prize, rewardPercent)
	if overflow {
		return nil, errRewardOverflow
	}
	return reward.Div(reward, hundred), nil
}

// distributeReward mints amount to recipient with the lottery as the minter.
func (l *Lottery) distributeReward(env *xenv.Environment, recipient vela.Address, amount *uint256.Int) error {
	addr, err := l.token.Get()
	if err != nil {
		return err
	}
	if addr.IsZero() {
		return errTokenNotSet
	}
	tk, err := rewardToken(env, addr)
	if err != nil {
		return err
	}
	return env.Call(addr, nil, func(env *xenv.Environment) error {
		return tk.Mint(env, recipient, amount)
	})
}

// decideWinner selects the winner of the current round and pays the reward.
func (l *Lottery) decideWinner(env *xenv.Environment, words []*uint256.Int) (vela.Address, error) {
	n, err := l.participants.Count()
	if err != nil {
		return vela.Address{}, err
	}
	idx, err := SelectWinner(words, n)
	if err != nil {
		return vela.Address{}, err
	}
	winner, err := l.participants.At(uint256.NewInt(idx))
	if err != nil {
		return vela.Address{}, err
	}
	if winner.IsZero() {
		return vela.Address{}, errNoWinner
	}

	fee, err := l.participants.Fee()
	if err != nil {
		return vela.Address{}, err
	}
	reward, err := RewardAmount(fee, n)
	if err != nil {
		return vela.Address{}, err
	}
	if err := l.distributeReward(env, winner, reward); err != nil {
		return vela.Address{}, err
	}
	logger.Info("reward paid", "winner", winner, "amount", reward, "participants", n)
	return winner, nil
}
