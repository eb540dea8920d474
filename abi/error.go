// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"fmt"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin/reverts"
)

// Error is a solidity custom error.
type Error struct {
	selector [4]byte
	err      ethabi.Error
}

func newError(e ethabi.Error) *Error {
	var selector [4]byte
	copy(selector[:], e.ID[:4])
	return &Error{selector, e}
}

// Selector returns the 4-byte error selector.
func (e *Error) Selector() [4]byte {
	return e.selector
}

// Name returns error name.
func (e *Error) Name() string {
	return e.err.Name
}

// New creates the revert error for the given args.
// It panics if args do not match the error inputs.
func (e *Error) New(args ...any) *reverts.ErrCustom {
	packed, err := e.err.Inputs.Pack(normalize(args)...)
	if err != nil {
		panic(fmt.Errorf("abi: pack error %s: %w", e.err.Name, err))
	}
	display := make([]any, len(args))
	for i, arg := range args {
		if n, ok := arg.(*uint256.Int); ok {
			display[i] = n.ToBig()
		} else {
			display[i] = arg
		}
	}
	data := append(e.selector[:], packed...)
	return reverts.NewCustomError(e.err.Name, data, display...)
}

// Unpack decodes the args of a revert payload produced by New.
func (e *Error) Unpack(data []byte) ([]any, error) {
	if len(data) < 4 || [4]byte(data[:4]) != e.selector {
		return nil, fmt.Errorf("abi: payload is not %s", e.err.Name)
	}
	return e.err.Inputs.Unpack(data[4:])
}
