// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package participants keeps the ordered, duplicate free list of lottery entrants.
package participants

import (
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin/reverts"
	"github.com/velalabs/vela/builtin/solidity"
	"github.com/velalabs/vela/vela"
)

var (
	ErrNotAccepting         = reverts.NewRequireError("Not accepting participants")
	ErrAlreadyParticipating = reverts.NewRequireError("Already participating")
	ErrFeeNotSet            = reverts.NewRequireError("Fee not set")
	ErrWrongAmount          = reverts.NewRequireError("Wrong amount")
	ErrOutOfRange           = reverts.NewRequireError("OOB")
)

// Registry holds the entrants of the current round together with the entry fee
// and the gate that admits new entrants.
//
// Membership is keyed by round so a reset does not need to visit every member.
type Registry struct {
	list      *solidity.Array[vela.Address]
	members   *solidity.Mapping[vela.Bytes32, bool]
	round     *solidity.Uint64
	fee       *solidity.Uint256
	accepting *solidity.Bool
}

func New(ctx *solidity.Context, pos vela.Bytes32) *Registry {
	slot := func(name string) vela.Bytes32 {
		return vela.Keccak256(pos.Bytes(), []byte(name))
	}
	return &Registry{
		list:      solidity.NewArray[vela.Address](ctx, slot("list")),
		members:   solidity.NewMapping[vela.Bytes32, bool](ctx, slot("members")),
		round:     solidity.NewUint64(ctx, slot("round")),
		fee:       solidity.NewUint256(ctx, slot("fee")),
		accepting: solidity.NewBool(ctx, slot("accepting")),
	}
}

func (r *Registry) memberKey(addr vela.Address) (vela.Bytes32, error) {
	round, err := r.round.Get()
	if err != nil {
		return vela.Bytes32{}, err
	}
	return vela.Keccak256(uint256.NewInt(round).PaddedBytes(8), addr.Bytes()), nil
}

// Join admits addr, which paid value, into the current round.
func (r *Registry) Join(addr vela.Address, value *uint256.Int) error {
	accepting, err := r.accepting.Get()
	if err != nil {
		return err
	}
	if !accepting {
		return ErrNotAccepting
	}

	joined, err := r.Contains(addr)
	if err != nil {
		return err
	}
	if joined {
		return ErrAlreadyParticipating
	}

	fee, err := r.fee.Get()
	if err != nil {
		return err
	}
	if fee.IsZero() {
		return ErrFeeNotSet
	}
	if !value.Eq(fee) {
		return ErrWrongAmount
	}

	key, err := r.memberKey(addr)
	if err != nil {
		return err
	}
	if err := r.members.Set(key, true); err != nil {
		return err
	}
	return r.list.Push(addr)
}

func (r *Registry) Contains(addr vela.Address) (bool, error) {
	key, err := r.memberKey(addr)
	if err != nil {
		return false, err
	}
	return r.members.Get(key)
}

func (r *Registry) Count() (uint64, error) {
	return r.list.Len()
}

// At returns the entrant at index i.
func (r *Registry) At(i *uint256.Int) (vela.Address, error) {
	if !i.IsUint64() {
		return vela.Address{}, ErrOutOfRange
	}
	addr, err := r.list.Get(i.Uint64())
	if err == solidity.ErrIndexOutOfRange {
		return vela.Address{}, ErrOutOfRange
	}
	return addr, err
}

func (r *Registry) All() ([]vela.Address, error) {
	return r.list.All()
}

// Reset empties the list and starts a new round.
func (r *Registry) Reset() error {
	if err := r.list.Clear(); err != nil {
		return err
	}
	round, err := r.round.Get()
	if err != nil {
		return err
	}
	r.round.Set(round + 1)
	return nil
}

func (r *Registry) Round() (uint64, error) {
	return r.round.Get()
}

func (r *Registry) Fee() (*uint256.Int, error) {
	return r.fee.Get()
}

func (r *Registry) SetFee(fee *uint256.Int) {
	r.fee.Set(fee)
}

func (r *Registry) Accepting() (bool, error) {
	return r.accepting.Get()
}

func (r *Registry) SetAccepting(open bool) {
	r.accepting.Set(open)
}
