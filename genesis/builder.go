// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/kv"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64

	stateProcs []func(state *state.State) error
	calls      []func(rt *runtime.Runtime) (*runtime.Receipt, error)
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a contract call. A reverted call fails the build.
func (b *Builder) Call(call func(rt *runtime.Runtime) (*runtime.Receipt, error)) *Builder {
	b.calls = append(b.calls, call)
	return b
}

// Build runs the presets, commits the resulting state into db and writes the genesis head.
func (b *Builder) Build(db kv.GetPutter) (ch *chain.Chain, events []*vela.Event, err error) {
	if _, err := chain.Open(db); err != chain.ErrNotInitialized {
		if err == nil {
			err = chain.ErrAlreadyInitialized
		}
		return nil, nil, err
	}

	st := state.New(db)
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, nil, errors.Wrap(err, "state process")
		}
	}

	head := chain.Head{Time: b.timestamp}
	rt := runtime.New(st, head.BlockContext())
	builtin.Register(rt, nil)

	for i, call := range b.calls {
		receipt, err := call(rt)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "call %d", i)
		}
		if err := receipt.Revert(); err != nil {
			return nil, nil, errors.Wrapf(err, "call %d reverted", i)
		}
		events = append(events, receipt.Logs...)
	}

	if err := st.Stage().Commit(db); err != nil {
		return nil, nil, errors.Wrap(err, "commit state")
	}
	ch, err = chain.Initialize(db, head)
	if err != nil {
		return nil, nil, err
	}
	return ch, events, nil
}

// invoke returns a builder call running fn on the contract at to.
func invoke[T any](origin, to vela.Address, fn func(c T, env *xenv.Environment) error) func(rt *runtime.Runtime) (*runtime.Receipt, error) {
	return func(rt *runtime.Runtime) (*runtime.Receipt, error) {
		return runtime.Invoke(rt, origin, to, nil, fn)
	}
}
