// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ownable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalabs/vela/builtin/solidity"
	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/test/datagen"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var contractAddr = vela.BytesToAddress([]byte("owned"))

func newOwnable(t *testing.T) (*runtime.Runtime, *Ownable) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	rt := runtime.New(st, xenv.BlockContext{})
	o := New(solidity.NewContext(contractAddr, st), vela.Bytes32{})
	rt.Register(contractAddr, o)
	return rt, o
}

func exec(t *testing.T, rt *runtime.Runtime, caller vela.Address, fn func(o *Ownable, env *xenv.Environment) error) *runtime.Receipt {
	receipt, err := runtime.Invoke(rt, caller, contractAddr, nil, fn)
	require.NoError(t, err)
	return receipt
}

func TestInitialize(t *testing.T) {
	rt, o := newOwnable(t)
	owner := datagen.RandAddress()

	receipt := exec(t, rt, owner, func(o *Ownable, env *xenv.Environment) error {
		return o.Initialize(env, vela.Address{})
	})
	assert.EqualError(t, receipt.Revert(), "OwnableInvalidOwner(0x0000000000000000000000000000000000000000)")

	receipt = exec(t, rt, owner, func(o *Ownable, env *xenv.Environment) error {
		return o.Initialize(env, owner)
	})
	require.NoError(t, receipt.Revert())
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, ownershipTransferredEvent.ID(), receipt.Logs[0].Topics[0])
	assert.Equal(t, vela.BytesToBytes32(owner.Bytes()), receipt.Logs[0].Topics[2])

	got, err := o.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestOnlyOwnerAndTransfer(t *testing.T) {
	rt, o := newOwnable(t)
	owner := datagen.RandAddress()
	other := datagen.RandAddress()

	exec(t, rt, owner, func(o *Ownable, env *xenv.Environment) error {
		return o.Initialize(env, owner)
	})

	receipt := exec(t, rt, other, func(o *Ownable, env *xenv.Environment) error {
		return o.TransferOwnership(env, other)
	})
	assert.EqualError(t, receipt.Revert(), "OwnableUnauthorizedAccount("+other.String()+")")

	receipt = exec(t, rt, owner, func(o *Ownable, env *xenv.Environment) error {
		return o.TransferOwnership(env, vela.Address{})
	})
	assert.True(t, receipt.Reverted)

	receipt = exec(t, rt, owner, func(o *Ownable, env *xenv.Environment) error {
		return o.TransferOwnership(env, other)
	})
	require.NoError(t, receipt.Revert())
	got, _ := o.Owner()
	assert.Equal(t, other, got)

	receipt = exec(t, rt, other, func(o *Ownable, env *xenv.Environment) error {
		return o.RenounceOwnership(env)
	})
	require.NoError(t, receipt.Revert())
	got, _ = o.Owner()
	assert.True(t, got.IsZero())

	receipt = exec(t, rt, other, func(o *Ownable, env *xenv.Environment) error {
		return o.OnlyOwner(env)
	})
	assert.True(t, receipt.Reverted)
}
