// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/velalabs/vela/vela"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id                 vela.Bytes32
	event              ethabi.Event
	argsWithoutIndexed ethabi.Arguments
}

func newEvent(event ethabi.Event) *Event {
	return &Event{
		vela.Bytes32(event.ID),
		event,
		event.Inputs.NonIndexed(),
	}
}

// ID returns event id.
func (e *Event) ID() vela.Bytes32 {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Encode encodes non-indexed args to data.
func (e *Event) Encode(args ...any) ([]byte, error) {
	return e.argsWithoutIndexed.Pack(normalize(args)...)
}

// Decode decodes event data into values of the non-indexed args.
func (e *Event) Decode(data []byte) ([]any, error) {
	return e.argsWithoutIndexed.Unpack(data)
}
