// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ownable keeps the owner of a native contract.
package ownable

import (
	"fmt"

	"github.com/velalabs/vela/abi"
	"github.com/velalabs/vela/builtin/gen"
	"github.com/velalabs/vela/builtin/reverts"
	"github.com/velalabs/vela/builtin/solidity"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

// ABI is the event and error set of ownable contracts.
var ABI = func() *abi.ABI {
	a, err := abi.New(gen.MustAsset("compiled/Ownable.abi"))
	if err != nil {
		panic(fmt.Errorf("load ownable ABI: %w", err))
	}
	return a
}()

var (
	ownershipTransferredEvent = ABI.MustEvent("OwnershipTransferred")
	unauthorizedAccountError  = ABI.MustError("OwnableUnauthorizedAccount")
	invalidOwnerError         = ABI.MustError("OwnableInvalidOwner")
)

// ErrUnauthorizedAccount returns the revert for an account which is not allowed to call.
func ErrUnauthorizedAccount(account vela.Address) *reverts.ErrCustom {
	return unauthorizedAccountError.New(account)
}

// ErrInvalidOwner returns the revert for an owner which can not be set.
func ErrInvalidOwner(owner vela.Address) *reverts.ErrCustom {
	return invalidOwnerError.New(owner)
}

// Ownable stores the owner in a slot of the embedding contract.
type Ownable struct {
	owner *solidity.Address
}

// New creates ownable bound to the given slot.
func New(ctx *solidity.Context, pos vela.Bytes32) *Ownable {
	return &Ownable{owner: solidity.NewAddress(ctx, pos)}
}

// Initialize sets the first owner, the zero address is rejected.
func (o *Ownable) Initialize(env *xenv.Environment, owner vela.Address) error {
	if owner.IsZero() {
		return ErrInvalidOwner(vela.Address{})
	}
	return o.transfer(env, owner)
}

func (o *Ownable) Owner() (vela.Address, error) {
	return o.owner.Get()
}

// OnlyOwner fails unless the caller of env is the owner.
func (o *Ownable) OnlyOwner(env *xenv.Environment) error {
	owner, err := o.owner.Get()
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		return ErrUnauthorizedAccount(env.Caller())
	}
	return nil
}

func (o *Ownable) TransferOwnership(env *xenv.Environment, newOwner vela.Address) error {
	if err := o.OnlyOwner(env); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return ErrInvalidOwner(vela.Address{})
	}
	return o.transfer(env, newOwner)
}

// RenounceOwnership leaves the contract without owner, owner only functions become unreachable.
func (o *Ownable) RenounceOwnership(env *xenv.Environment) error {
	if err := o.OnlyOwner(env); err != nil {
		return err
	}
	return o.transfer(env, vela.Address{})
}

func (o *Ownable) transfer(env *xenv.Environment, newOwner vela.Address) error {
	previous, err := o.owner.Get()
	if err != nil {
		return err
	}
	o.owner.Set(newOwner)
	env.Log(ownershipTransferredEvent, []vela.Bytes32{
		vela.BytesToBytes32(previous.Bytes()),
		vela.BytesToBytes32(newOwner.Bytes()),
	})
	return nil
}
