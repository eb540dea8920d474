// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package packer executes messages on top of the chain head and commits their outcome.
package packer

import (
	"crypto/ecdsa"

	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var logger = log.WithContext("pkg", "packer")

// Packer to pack messages into the chain.
type Packer struct {
	chain  *chain.Chain
	vrfKey *ecdsa.PrivateKey
}

// New create a new Packer instance. vrfKey is the oracle operator's key, nil if
// this packer never fulfills randomness requests.
func New(chain *chain.Chain, vrfKey *ecdsa.PrivateKey) *Packer {
	return &Packer{chain, vrfKey}
}

// Chain returns the chain the packer commits into.
func (p *Packer) Chain() *chain.Chain {
	return p.chain
}

// Schedule prepares a flow executing in the block context of the chain head.
func (p *Packer) Schedule() *Flow {
	st := p.chain.NewState()
	rt := runtime.New(st, p.chain.Head().BlockContext())
	builtin.Register(rt, p.vrfKey)
	return newFlow(p, st, rt)
}

// Adopt executes fn on the contract at to within the flow.
// A reverted message leaves no trace in the state and is reported by the receipt.
func Adopt[T any](f *Flow, origin, to vela.Address, value *uint256.Int, fn func(c T, env *xenv.Environment) error) (*runtime.Receipt, error) {
	receipt, err := runtime.Invoke(f.rt, origin, to, value, fn)
	if err != nil {
		return nil, err
	}
	f.adopted(origin, to, receipt)
	return receipt, nil
}

// Invoke runs fn as a single message flow and packs it.
func Invoke[T any](p *Packer, origin, to vela.Address, value *uint256.Int, fn func(c T, env *xenv.Environment) error) (*runtime.Receipt, error) {
	f := p.Schedule()
	receipt, err := Adopt(f, origin, to, value, fn)
	if err != nil {
		return nil, err
	}
	if err := f.Pack(); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Send packs a plain value transfer.
func (p *Packer) Send(origin, to vela.Address, value *uint256.Int) (*runtime.Receipt, error) {
	f := p.Schedule()
	receipt, err := f.Send(origin, to, value)
	if err != nil {
		return nil, err
	}
	if err := f.Pack(); err != nil {
		return nil, err
	}
	return receipt, nil
}

// State returns a read only view of the committed state.
func (p *Packer) State() *state.State {
	return p.chain.NewState()
}
