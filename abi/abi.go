// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"bytes"
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/vela"
)

// ABI holds information about events and custom errors of contract.
type ABI struct {
	nameToEvent map[string]*Event
	nameToError map[string]*Error
	events      map[vela.Bytes32]*Event
}

// New create an ABI instance.
func New(data []byte) (*ABI, error) {
	parsed, err := ethabi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	abi := &ABI{
		nameToEvent: make(map[string]*Event),
		nameToError: make(map[string]*Error),
		events:      make(map[vela.Bytes32]*Event),
	}
	for name, ev := range parsed.Events {
		event := newEvent(ev)
		abi.nameToEvent[name] = event
		abi.events[event.id] = event
	}
	for name, e := range parsed.Errors {
		abi.nameToError[name] = newError(e)
	}
	return abi, nil
}

// EventByName find event for the given event name.
func (a *ABI) EventByName(name string) (*Event, bool) {
	e, found := a.nameToEvent[name]
	return e, found
}

// EventByID returns the event for the given event id.
func (a *ABI) EventByID(id vela.Bytes32) (*Event, bool) {
	e, found := a.events[id]
	return e, found
}

// ErrorByName find custom error for the given name.
func (a *ABI) ErrorByName(name string) (*Error, bool) {
	e, found := a.nameToError[name]
	return e, found
}

// MustEvent is like EventByName but panics when the event is not defined.
func (a *ABI) MustEvent(name string) *Event {
	e, found := a.EventByName(name)
	if !found {
		panic("abi: event not found: " + name)
	}
	return e
}

// MustError is like ErrorByName but panics when the error is not defined.
func (a *ABI) MustError(name string) *Error {
	e, found := a.ErrorByName(name)
	if !found {
		panic("abi: error not found: " + name)
	}
	return e
}

// normalize converts domain values into the types accounts/abi packs.
func normalize(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case vela.Address:
			out[i] = common.Address(v)
		case vela.Bytes32:
			out[i] = [32]byte(v)
		case *uint256.Int:
			out[i] = v.ToBig()
		case []*uint256.Int:
			bigs := make([]*big.Int, len(v))
			for j, n := range v {
				bigs[j] = n.ToBig()
			}
			out[i] = bigs
		default:
			out[i] = arg
		}
	}
	return out
}
