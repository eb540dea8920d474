// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

func (l *Lottery) Owner() (vela.Address, error) {
	return l.ownable.Owner()
}

func (l *Lottery) TransferOwnership(env *xenv.Environment, newOwner vela.Address) error {
	return l.ownable.TransferOwnership(env, newOwner)
}

func (l *Lottery) RenounceOwnership(env *xenv.Environment) error {
	return l.ownable.RenounceOwnership(env)
}

func (l *Lottery) LotteryEntryFee() (*uint256.Int, error) {
	return l.participants.Fee()
}

func (l *Lottery) SetLotteryEntryFee(env *xenv.Environment, fee *uint256.Int) error {
	if err := l.ownable.OnlyOwner(env); err != nil {
		return err
	}
	l.participants.SetFee(fee)
	return nil
}

// LotteryIntervalHours returns the minimum time between requests in whole hours.
func (l *Lottery) LotteryIntervalHours() (uint64, error) {
	secs, err := l.interval.Get()
	if err != nil {
		return 0, err
	}
	return secs / vela.SecondsPerHour, nil
}

func (l *Lottery) SetLotteryIntervalHours(env *xenv.Environment, hours uint64) error {
	if hours > math.MaxUint64/vela.SecondsPerHour {
		return errIntervalTooLong
	}
	return l.SetLotteryInterval(env, hours*vela.SecondsPerHour)
}

// LotteryInterval returns the minimum time between requests in seconds.
func (l *Lottery) LotteryInterval() (uint64, error) {
	return l.interval.Get()
}

func (l *Lottery) SetLotteryInterval(env *xenv.Environment, seconds uint64) error {
	if err := l.ownable.OnlyOwner(env); err != nil {
		return err
	}
	l.interval.Set(seconds)
	return nil
}

func (l *Lottery) LastRequestTimestamp() (uint64, error) {
	return l.lastRequestTimestamp.Get()
}

func (l *Lottery) ERC20Token() (vela.Address, error) {
	return l.token.Get()
}

func (l *Lottery) SetERC20Token(env *xenv.Environment, token vela.Address) error {
	if err := l.ownable.OnlyOwner(env); err != nil {
		return err
	}
	l.token.Set(token)
	return nil
}

func (l *Lottery) VRFWrapper() (vela.Address, error) {
	return l.wrapper.Get()
}

func (l *Lottery) SetVRFWrapper(env *xenv.Environment, wrapper vela.Address) error {
	if err := l.ownable.OnlyOwner(env); err != nil {
		return err
	}
	l.wrapper.Set(wrapper)
	return nil
}

// RequestConfig returns the callback gas limit, confirmations and word count sent with each request.
func (l *Lottery) RequestConfig() (gas uint32, confirmations uint16, words uint32, err error) {
	g, err := l.callbackGasLimit.Get()
	if err != nil {
		return 0, 0, 0, err
	}
	c, err := l.requestConfirmations.Get()
	if err != nil {
		return 0, 0, 0, err
	}
	w, err := l.numWords.Get()
	if err != nil {
		return 0, 0, 0, err
	}
	return uint32(g), uint16(c), uint32(w), nil
}

func (l *Lottery) SetRequestConfig(env *xenv.Environment, gas uint32, confirmations uint16, words uint32) error {
	if err := l.ownable.OnlyOwner(env); err != nil {
		return err
	}
	if words == 0 || words > vela.MaxNumWords {
		return errInvalidNumWords
	}
	l.callbackGasLimit.Set(uint64(gas))
	l.requestConfirmations.Set(uint64(confirmations))
	l.numWords.Set(uint64(words))
	return nil
}

func (l *Lottery) CallbackGasLimit() (uint32, error) {
	gas, _, _, err := l.RequestConfig()
	return gas, err
}

func (l *Lottery) RequestConfirmations() (uint16, error) {
	_, c, _, err := l.RequestConfig()
	return c, err
}

func (l *Lottery) NumWords() (uint32, error) {
	_, _, w, err := l.RequestConfig()
	return w, err
}

// ResetOnPayout reports whether the participant list is cleared after a paid round.
func (l *Lottery) ResetOnPayout() (bool, error) {
	return l.resetOnPayout.Get()
}

func (l *Lottery) SetResetOnPayout(env *xenv.Environment, reset bool) error {
	if err := l.ownable.OnlyOwner(env); err != nil {
		return err
	}
	l.resetOnPayout.Set(reset)
	return nil
}
