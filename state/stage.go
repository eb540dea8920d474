// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/velalabs/vela/kv"
	"github.com/velalabs/vela/stackedmap"
	"github.com/velalabs/vela/vela"
)

// Stage abstracts the cumulative changes of a state.
type Stage struct {
	s        *State
	balances map[balanceKey]*uint256.Int
	storage  map[storageKey]rlp.RawValue
}

// Stage makes a stage object holding the final value of every changed key.
func (s *State) Stage() *Stage {
	stage := &Stage{
		s:        s,
		balances: make(map[balanceKey]*uint256.Int),
		storage:  make(map[storageKey]rlp.RawValue),
	}
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case balanceKey:
			stage.balances[key] = v.(*uint256.Int)
		case storageKey:
			stage.storage[key] = v.(rlp.RawValue)
		}
		return true
	})
	return stage
}

// Len returns count of changed keys.
func (st *Stage) Len() int {
	return len(st.balances) + len(st.storage)
}

// Commit writes all changes into w in one batch.
// The state keeps working on top of the committed data afterwards.
func (st *Stage) Commit(w kv.Putter) error {
	batch := w.NewBatch()
	for key, bal := range st.balances {
		dbKey := balanceDBKey(vela.Address(key))
		var err error
		if bal.IsZero() {
			err = batch.Delete(dbKey)
		} else {
			err = batch.Put(dbKey, bal.Bytes())
		}
		if err != nil {
			return errors.Wrap(err, "stage balance")
		}
	}
	for key, raw := range st.storage {
		dbKey := storageDBKey(key.addr, key.key)
		var err error
		if len(raw) == 0 {
			err = batch.Delete(dbKey)
		} else {
			err = batch.Put(dbKey, raw)
		}
		if err != nil {
			return errors.Wrap(err, "stage storage")
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit state")
	}

	// committed values become the new base
	for key, bal := range st.balances {
		st.s.cache.Add(key, bal)
	}
	for key, raw := range st.storage {
		st.s.cache.Add(key, raw)
	}
	st.s.sm = stackedmap.New(st.s.cacheGetter)
	return nil
}
