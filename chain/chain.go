// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chain keeps the head block the runtime executes on and persists state changes.
package chain

import (
	"errors"
	"math"

	"github.com/velalabs/vela/kv"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/xenv"
)

var logger = log.WithContext("pkg", "chain")

var (
	ErrNotInitialized     = errors.New("chain not initialized")
	ErrAlreadyInitialized = errors.New("chain already initialized")
	errHeadOverflow       = errors.New("head overflow")
)

// Head is the block every message is executed in.
type Head struct {
	Number uint32
	Time   uint64
}

// BlockContext returns the block context of the head.
func (h Head) BlockContext() xenv.BlockContext {
	return xenv.BlockContext{Number: h.Number, Time: h.Time}
}

// Chain manages the head and the state stored in db.
type Chain struct {
	db   kv.GetPutter
	head Head
}

// Initialize writes the genesis head. It fails if db already holds a chain.
func Initialize(db kv.GetPutter, genesis Head) (*Chain, error) {
	has, err := db.Has(headKey)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, ErrAlreadyInitialized
	}
	if err := saveHead(db, genesis); err != nil {
		return nil, err
	}
	return &Chain{db: db, head: genesis}, nil
}

// Open loads the chain stored in db.
func Open(db kv.GetPutter) (*Chain, error) {
	head, err := loadHead(db)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	return &Chain{db: db, head: head}, nil
}

func (c *Chain) Head() Head {
	return c.head
}

// NewState creates a state on top of the committed data.
func (c *Chain) NewState() *state.State {
	return state.New(c.db)
}

// Commit persists the changes made to st.
func (c *Chain) Commit(st *state.State) error {
	stage := st.Stage()
	n := stage.Len()
	if err := stage.Commit(c.db); err != nil {
		return err
	}
	metricCommittedKeys().Add(int64(n))
	logger.Debug("state committed", "keys", n, "head", c.head.Number)
	return nil
}

// Advance moves the head forward by blocks and seconds.
func (c *Chain) Advance(blocks uint32, seconds uint64) (Head, error) {
	if uint64(c.head.Number)+uint64(blocks) > math.MaxUint32 || c.head.Time > math.MaxUint64-seconds {
		return c.head, errHeadOverflow
	}
	head := Head{
		Number: c.head.Number + blocks,
		Time:   c.head.Time + seconds,
	}
	if err := saveHead(c.db, head); err != nil {
		return c.head, err
	}
	c.head = head
	metricHeadNumber().Set(int64(head.Number))
	logger.Info("head advanced", "number", head.Number, "time", head.Time)
	return head, nil
}
