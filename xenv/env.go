// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/velalabs/vela/abi"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// Host executes nested frames and keeps the logs of a message.
type Host interface {
	// Call runs fn in a new frame of the contract at to, called by env.To().
	// The frame's state writes and logs are reverted if fn fails.
	Call(env *Environment, to vela.Address, value *uint256.Int, fn func(env *Environment) error) error
	// Contract returns the contract registered at addr.
	Contract(addr vela.Address) (any, bool)
	AddLog(ev *vela.Event)
	LogCount() int
	RevertLogs(n int)
}

// Receiver is implemented by contracts accepting plain value transfers.
type Receiver interface {
	Receive(env *Environment) error
}

// Environment an env to execute native contract method.
type Environment struct {
	host     Host
	state    *state.State
	blockCtx *BlockContext
	caller   vela.Address
	to       vela.Address
	value    *uint256.Int
	depth    int
}

// New create a new env.
func New(
	host Host,
	state *state.State,
	blockCtx *BlockContext,
	caller vela.Address,
	to vela.Address,
	value *uint256.Int,
	depth int,
) *Environment {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Environment{
		host:     host,
		state:    state,
		blockCtx: blockCtx,
		caller:   caller,
		to:       to,
		value:    value,
		depth:    depth,
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Caller() vela.Address        { return env.caller }
func (env *Environment) To() vela.Address            { return env.to }
func (env *Environment) Depth() int                  { return env.depth }

// Value returns a copy of the value sent with the call.
func (env *Environment) Value() *uint256.Int { return new(uint256.Int).Set(env.value) }

// Log emits event of the current contract, the event id is prepended to topics.
func (env *Environment) Log(event *abi.Event, topics []vela.Bytes32, args ...any) {
	data, err := event.Encode(args...)
	if err != nil {
		panic(errors.WithMessage(err, "encode native event"))
	}
	all := make([]vela.Bytes32, 0, len(topics)+1)
	all = append(all, event.ID())
	all = append(all, topics...)
	env.host.AddLog(&vela.Event{
		Address: env.to,
		Topics:  all,
		Data:    data,
	})
}

// Call calls fn as the contract at to, with the current contract as caller.
func (env *Environment) Call(to vela.Address, value *uint256.Int, fn func(env *Environment) error) error {
	return env.host.Call(env, to, value, fn)
}

// Contract returns the contract registered at addr.
func (env *Environment) Contract(addr vela.Address) (any, bool) {
	return env.host.Contract(addr)
}

// Transfer sends native value from the current contract to to.
// If to is a contract accepting value, its Receive hook runs in the new frame.
func (env *Environment) Transfer(to vela.Address, amount *uint256.Int) error {
	return env.Call(to, amount, func(env *Environment) error {
		if c, ok := env.Contract(env.To()); ok {
			if r, ok := c.(Receiver); ok {
				return r.Receive(env)
			}
		}
		return nil
	})
}

// Isolate runs fn and discards its state writes and logs if it fails.
// The failure is returned, the enclosing frame carries on.
func (env *Environment) Isolate(fn func() error) error {
	cp := env.state.NewCheckpoint()
	logs := env.host.LogCount()
	if err := fn(); err != nil {
		env.state.RevertTo(cp)
		env.host.RevertLogs(logs)
		return err
	}
	return nil
}
