// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalabs/vela/builtin/token"
	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

func TestAddresses(t *testing.T) {
	assert.Equal(t, vela.BytesToAddress([]byte("Token")), Token.Address)
	assert.Equal(t, vela.BytesToAddress([]byte("Lottery")), Lottery.Address)
	assert.Equal(t, vela.BytesToAddress([]byte("VRFWrapper")), VRFWrapper.Address)

	assert.NotEqual(t, Token.Address, Lottery.Address)
	assert.NotEqual(t, Lottery.Address, VRFWrapper.Address)
	assert.Equal(t, "Lottery", Lottery.Name())
}

func TestABIs(t *testing.T) {
	_, ok := Token.ABI.EventByName("Transfer")
	assert.True(t, ok)
	_, ok = Lottery.ABI.ErrorByName("RequestNotFound")
	assert.True(t, ok)
	_, ok = VRFWrapper.ABI.EventByName("Nope")
	assert.False(t, ok)
}

func TestRegister(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	st := state.New(db)
	rt := runtime.New(st, xenv.BlockContext{Time: 1})
	Register(rt, key)

	owner := vela.BytesToAddress([]byte("owner"))
	receipt, err := runtime.Invoke(rt, owner, Token.Address, nil, func(tk *token.Token, env *xenv.Environment) error {
		return tk.Initialize(env, "Reward", "RWD", uint256.NewInt(1000), owner)
	})
	require.NoError(t, err)
	require.NoError(t, receipt.Revert())

	name, err := Token.WithState(st).Name()
	require.NoError(t, err)
	assert.Equal(t, "Reward", name)

	receipt, err = runtime.Invoke(rt, owner, vela.BytesToAddress([]byte("nobody")), nil, func(tk *token.Token, env *xenv.Environment) error {
		return nil
	})
	require.NoError(t, err)
	assert.True(t, receipt.Reverted)
	assert.EqualError(t, receipt.Revert(), "No contract")
}
