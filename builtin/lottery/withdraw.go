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

// lockWithdraw takes the withdrawal lock. The returned release must be called on every exit path.
func (l *Lottery) lockWithdraw() (release func(), err error) {
	busy, err := l.withdrawing.Get()
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, errWithdrawInProgress
	}
	l.withdrawing.Set(true)
	return func() { l.withdrawing.Set(false) }, nil
}

// Withdraw sends amount to the owner. A zero token address withdraws the native coin.
func (l *Lottery) Withdraw(env *xenv.Environment, amount *uint256.Int, token vela.Address) error {
	if err := l.ownable.OnlyOwner(env); err != nil {
		return err
	}

	release, err := l.lockWithdraw()
	if err != nil {
		return err
	}
	defer release()

	owner, err := l.ownable.Owner()
	if err != nil {
		return err
	}

	if token.IsZero() {
		if err := env.Transfer(owner, amount); err != nil {
			return err
		}
		metricWithdrawCount().AddWithLabel(1, map[string]string{"asset": "native"})
		logger.Info("withdrawn", "asset", "native", "amount", amount, "to", owner)
		return nil
	}

	tk, err := rewardToken(env, token)
	if err != nil {
		return err
	}
	var ok bool
	if err := env.Call(token, nil, func(env *xenv.Environment) (err error) {
		ok, err = tk.Transfer(env, owner, amount)
		return
	}); err != nil {
		return err
	}
	if !ok {
		return errTransferFailed
	}
	metricWithdrawCount().AddWithLabel(1, map[string]string{"asset": "erc20"})
	logger.Info("withdrawn", "asset", token, "amount", amount, "to", owner)
	return nil
}

func (l *Lottery) WithdrawNative(env *xenv.Environment, amount *uint256.Int) error {
	return l.Withdraw(env, amount, vela.Address{})
}

// WithdrawERC20 withdraws the configured reward token.
func (l *Lottery) WithdrawERC20(env *xenv.Environment, amount *uint256.Int) error {
	token, err := l.token.Get()
	if err != nil {
		return err
	}
	if token.IsZero() {
		return errTokenNotSet
	}
	return l.Withdraw(env, amount, token)
}

// Withdrawing reports whether a withdrawal is in flight.
func (l *Lottery) Withdrawing() (bool, error) {
	return l.withdrawing.Get()
}
