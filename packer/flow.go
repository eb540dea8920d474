// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
)

var errFlowPacked = errors.New("flow already packed")

// Flow the flow of packing messages.
type Flow struct {
	packer   *Packer
	state    *state.State
	rt       *runtime.Runtime
	receipts []*runtime.Receipt
	packed   bool
}

func newFlow(packer *Packer, state *state.State, rt *runtime.Runtime) *Flow {
	return &Flow{
		packer: packer,
		state:  state,
		rt:     rt,
	}
}

// Runtime returns the runtime executing the flow's messages.
func (f *Flow) Runtime() *runtime.Runtime {
	return f.rt
}

// Receipts returns the receipts of adopted messages in order.
func (f *Flow) Receipts() []*runtime.Receipt {
	return f.receipts
}

// Send adopts a plain value transfer.
func (f *Flow) Send(origin, to vela.Address, value *uint256.Int) (*runtime.Receipt, error) {
	receipt, err := f.rt.Send(origin, to, value)
	if err != nil {
		return nil, err
	}
	f.adopted(origin, to, receipt)
	return receipt, nil
}

func (f *Flow) adopted(origin, to vela.Address, receipt *runtime.Receipt) {
	f.receipts = append(f.receipts, receipt)
	status := "success"
	if receipt.Reverted {
		status = "reverted"
		logger.Debug("message reverted", "origin", origin, "to", to, "reason", receipt.Err)
	}
	metricAdoptedCount().AddWithLabel(1, map[string]string{"status": status})
}

// Pack commits the state changes of all adopted messages into the chain.
func (f *Flow) Pack() error {
	if f.packed {
		return errFlowPacked
	}
	if err := f.packer.chain.Commit(f.state); err != nil {
		return err
	}
	f.packed = true
	metricPackedMessages().Observe(int64(len(f.receipts)))
	return nil
}
