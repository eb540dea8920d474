// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
)

type TestStruct struct {
	Field1 uint64
	Addr1  vela.Address
	Amount *uint256.Int
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(vela.Address{1}, state.New(db))
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, vela.Bytes32{1})

	v, err := u.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	max := new(uint256.Int).SetAllOne()
	u.Set(max)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, max, v)

	assert.Equal(t, vela.Address{1}, ctx.Address())
	assert.NotNil(t, ctx.State())
}

func TestUint64AndBool(t *testing.T) {
	ctx := newTestContext(t)
	n := NewUint64(ctx, vela.Bytes32{1})
	b := NewBool(ctx, vela.Bytes32{2})

	n.Set(14400)
	got, err := n.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(14400), got)

	flag, err := b.Get()
	require.NoError(t, err)
	assert.False(t, flag)

	b.Set(true)
	flag, err = b.Get()
	require.NoError(t, err)
	assert.True(t, flag)

	b.Set(false)
	flag, _ = b.Get()
	assert.False(t, flag)
}

func TestAddress(t *testing.T) {
	ctx := newTestContext(t)
	a := NewAddress(ctx, vela.Bytes32{1})

	addr := vela.BytesToAddress([]byte("someone"))
	a.Set(addr)
	got, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	a.Set(vela.Address{})
	got, err = a.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestAddress_InvalidStorage(t *testing.T) {
	ctx := newTestContext(t)
	slot := vela.Bytes32{1}
	ctx.State().SetRawStorage(ctx.Address(), slot, rlp.RawValue{0xFF})

	addr, err := NewAddress(ctx, slot).Get()
	assert.Equal(t, vela.Address{}, addr)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	ctx := newTestContext(t)
	s := NewString(ctx, vela.Bytes32{1})

	got, err := s.Get()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set("Lottery Reward Token"))
	got, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "Lottery Reward Token", got)

	require.NoError(t, s.Set(""))
	raw, err := ctx.State().GetRawStorage(ctx.Address(), vela.Bytes32{1})
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[vela.Address, *TestStruct](ctx, vela.Bytes32{1})
	key := vela.BytesToAddress([]byte("key"))

	// missing entry decodes to a fresh zero value
	v, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint64(0), v.Field1)

	value := &TestStruct{Field1: 3, Addr1: key, Amount: uint256.NewInt(500000)}
	require.NoError(t, m.Set(key, value))

	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, v)

	m.Delete(key)
	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v.Field1)
}

func TestMappingValueTypes(t *testing.T) {
	ctx := newTestContext(t)
	flags := NewMapping[vela.Bytes32, bool](ctx, vela.Bytes32{1})
	amounts := NewMapping[vela.Address, *uint256.Int](ctx, vela.Bytes32{2})

	require.NoError(t, flags.Set(vela.Bytes32{9}, true))
	f, err := flags.Get(vela.Bytes32{9})
	require.NoError(t, err)
	assert.True(t, f)
	f, err = flags.Get(vela.Bytes32{8})
	require.NoError(t, err)
	assert.False(t, f)

	addr := vela.BytesToAddress([]byte("holder"))
	require.NoError(t, amounts.Set(addr, uint256.NewInt(255)))
	amt, err := amounts.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(255), amt.Uint64())
}

func TestArray(t *testing.T) {
	ctx := newTestContext(t)
	arr := NewArray[vela.Address](ctx, vela.Bytes32{1})

	n, err := arr.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	_, err = arr.Get(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	a1 := vela.BytesToAddress([]byte("a1"))
	a2 := vela.BytesToAddress([]byte("a2"))
	require.NoError(t, arr.Push(a1))
	require.NoError(t, arr.Push(a2))

	got, err := arr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, a2, got)

	all, err := arr.All()
	require.NoError(t, err)
	assert.Equal(t, []vela.Address{a1, a2}, all)

	require.NoError(t, arr.Clear())
	n, err = arr.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
	all, err = arr.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBytes(t *testing.T) {
	ctx := newTestContext(t)
	b := NewBytes(ctx, vela.Bytes32{1})

	got, err := b.Get()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.Set([]byte{0x02, 0xaa, 0xbb}))
	got, err = b.Get()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0xaa, 0xbb}, got)

	require.NoError(t, b.Set(nil))
	got, err = b.Get()
	require.NoError(t, err)
	assert.Empty(t, got)
}
