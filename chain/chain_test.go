// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/vela"
)

func TestInitializeAndOpen(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = Open(db)
	assert.Equal(t, ErrNotInitialized, err)

	genesis := Head{Number: 0, Time: 1_700_000_000}
	c, err := Initialize(db, genesis)
	require.NoError(t, err)
	assert.Equal(t, genesis, c.Head())

	_, err = Initialize(db, genesis)
	assert.Equal(t, ErrAlreadyInitialized, err)

	c, err = Open(db)
	require.NoError(t, err)
	assert.Equal(t, genesis, c.Head())
	assert.Equal(t, uint64(1_700_000_000), c.Head().BlockContext().Time)
}

func TestAdvance(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	c, err := Initialize(db, Head{Number: 1, Time: 100})
	require.NoError(t, err)

	head, err := c.Advance(3, 14400)
	require.NoError(t, err)
	assert.Equal(t, Head{Number: 4, Time: 14500}, head)

	c, err = Open(db)
	require.NoError(t, err)
	assert.Equal(t, head, c.Head())

	_, err = c.Advance(math.MaxUint32, 0)
	assert.Equal(t, errHeadOverflow, err)
	_, err = c.Advance(0, math.MaxUint64)
	assert.Equal(t, errHeadOverflow, err)
	assert.Equal(t, head, c.Head())
}

func TestCommitSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	addr := vela.BytesToAddress([]byte("player"))

	db, err := lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	c, err := Initialize(db, Head{Time: 1})
	require.NoError(t, err)

	st := c.NewState()
	st.SetBalance(addr, uint256.NewInt(500000))
	st.SetStorage(addr, vela.Bytes32{1}, vela.Bytes32{2})
	require.NoError(t, c.Commit(st))
	require.NoError(t, db.Close())

	db, err = lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	defer db.Close()

	c, err = Open(db)
	require.NoError(t, err)
	st = c.NewState()
	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(500000), bal.Uint64())
	v, err := st.GetStorage(addr, vela.Bytes32{1})
	require.NoError(t, err)
	assert.Equal(t, vela.Bytes32{2}, v)
}
