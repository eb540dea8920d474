// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin/reverts"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/metrics"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricExecCount = metrics.LazyLoadCounterVec("runtime_exec_count", []string{"status"})
)

var (
	errInsufficientBalance = reverts.NewRequireError("Insufficient balance")
	errCallDepth           = reverts.NewRequireError("Max call depth exceeded")
	errNoContract          = reverts.NewRequireError("No contract")
)

// Runtime executes messages against native contracts over a world state.
// A Runtime is not safe for concurrent use.
type Runtime struct {
	state     *state.State
	blockCtx  xenv.BlockContext
	contracts map[vela.Address]any
	logs      []*vela.Event
}

var _ xenv.Host = (*Runtime)(nil)

// New create a Runtime object.
func New(state *state.State, blockCtx xenv.BlockContext) *Runtime {
	return &Runtime{
		state:     state,
		blockCtx:  blockCtx,
		contracts: make(map[vela.Address]any),
	}
}

func (rt *Runtime) State() *state.State             { return rt.state }
func (rt *Runtime) BlockContext() xenv.BlockContext { return rt.blockCtx }

// SetBlockContext sets the block context for later messages.
func (rt *Runtime) SetBlockContext(b xenv.BlockContext) {
	rt.blockCtx = b
}

// Register binds a contract to addr.
func (rt *Runtime) Register(addr vela.Address, contract any) {
	rt.contracts[addr] = contract
}

// Contract implements xenv.Host.
func (rt *Runtime) Contract(addr vela.Address) (any, bool) {
	c, ok := rt.contracts[addr]
	return c, ok
}

// AddLog implements xenv.Host.
func (rt *Runtime) AddLog(ev *vela.Event) { rt.logs = append(rt.logs, ev) }

// LogCount implements xenv.Host.
func (rt *Runtime) LogCount() int { return len(rt.logs) }

// RevertLogs implements xenv.Host.
func (rt *Runtime) RevertLogs(n int) { rt.logs = rt.logs[:n] }

// Call implements xenv.Host.
func (rt *Runtime) Call(env *xenv.Environment, to vela.Address, value *uint256.Int, fn func(env *xenv.Environment) error) error {
	if env.Depth() >= vela.MaxCallDepth {
		return errCallDepth
	}
	return rt.frame(env.To(), to, value, env.Depth()+1, fn)
}

func (rt *Runtime) frame(caller, to vela.Address, value *uint256.Int, depth int, fn func(env *xenv.Environment) error) error {
	cp := rt.state.NewCheckpoint()
	logs := len(rt.logs)

	err := func() error {
		if value != nil && !value.IsZero() {
			ok, err := rt.state.SubBalance(caller, value)
			if err != nil {
				return err
			}
			if !ok {
				return errInsufficientBalance
			}
			if err := rt.state.AddBalance(to, value); err != nil {
				return err
			}
		}
		blockCtx := rt.blockCtx
		return fn(xenv.New(rt, rt.state, &blockCtx, caller, to, value, depth))
	}()
	if err != nil {
		rt.state.RevertTo(cp)
		rt.logs = rt.logs[:logs]
	}
	return err
}

// Exec runs fn as a message from origin to the contract at to.
// A revert is reported by the receipt, other errors are returned.
func (rt *Runtime) Exec(origin, to vela.Address, value *uint256.Int, fn func(env *xenv.Environment) error) (*Receipt, error) {
	rt.logs = rt.logs[:0]

	err := rt.frame(origin, to, value, 0, fn)
	receipt := &Receipt{Logs: append([]*vela.Event(nil), rt.logs...)}
	rt.logs = rt.logs[:0]

	if err != nil {
		if !reverts.IsRevertErr(err) {
			metricExecCount().AddWithLabel(1, map[string]string{"status": "error"})
			return nil, err
		}
		metricExecCount().AddWithLabel(1, map[string]string{"status": "reverted"})
		logger.Debug("message reverted", "origin", origin, "to", to, "reason", err)
		receipt.Reverted = true
		receipt.Err = err
		receipt.RevertData = reverts.Payload(err)
		return receipt, nil
	}
	metricExecCount().AddWithLabel(1, map[string]string{"status": "success"})
	return receipt, nil
}

// Send transfers native value from origin to to.
// Contracts accepting value get their Receive hook invoked.
func (rt *Runtime) Send(origin, to vela.Address, value *uint256.Int) (*Receipt, error) {
	return rt.Exec(origin, to, value, func(env *xenv.Environment) error {
		if c, ok := rt.contracts[to]; ok {
			if r, ok := c.(xenv.Receiver); ok {
				return r.Receive(env)
			}
		}
		return nil
	})
}

// Invoke runs fn on the contract registered at to, type asserted to T.
func Invoke[T any](rt *Runtime, origin, to vela.Address, value *uint256.Int, fn func(c T, env *xenv.Environment) error) (*Receipt, error) {
	return rt.Exec(origin, to, value, func(env *xenv.Environment) error {
		c, ok := rt.contracts[to].(T)
		if !ok {
			return errNoContract
		}
		return fn(c, env)
	})
}
