// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// errorSelector is the 4-byte selector of Error(string).
var errorSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

// ErrRequire is a revert with a plain reason string.
type ErrRequire struct {
	message string
}

func NewRequireError(message string) *ErrRequire {
	return &ErrRequire{
		message: message,
	}
}

func (e *ErrRequire) Error() string {
	return e.message
}

// Bytes returns the ABI encoded Error(string) revert payload.
func (e *ErrRequire) Bytes() []byte {
	if e == nil {
		return nil
	}

	msg := []byte(e.message)
	padded := (len(msg) + 31) / 32 * 32

	// selector + offset + length + data padded to 32
	encoded := make([]byte, 4+32+32+padded)
	copy(encoded, errorSelector)
	binary.BigEndian.PutUint64(encoded[4+24:], 32)
	binary.BigEndian.PutUint64(encoded[4+32+24:], uint64(len(msg)))
	copy(encoded[4+64:], msg)
	return encoded
}

// ErrCustom is a revert carrying an ABI custom error.
type ErrCustom struct {
	name string
	args []any
	data []byte
}

// NewCustomError creates a custom error revert, data is the selector followed by the packed args.
func NewCustomError(name string, data []byte, args ...any) *ErrCustom {
	return &ErrCustom{
		name: name,
		args: args,
		data: data,
	}
}

// Name returns the custom error name.
func (e *ErrCustom) Name() string {
	return e.name
}

// Args returns the error arguments.
func (e *ErrCustom) Args() []any {
	return e.args
}

func (e *ErrCustom) Error() string {
	parts := make([]string, 0, len(e.args))
	for _, arg := range e.args {
		parts = append(parts, fmt.Sprintf("%v", arg))
	}
	return e.name + "(" + strings.Join(parts, ", ") + ")"
}

// Bytes returns the revert payload.
func (e *ErrCustom) Bytes() []byte {
	if e == nil {
		return nil
	}
	return e.data
}

// Is reports whether target is the same custom error with the same args.
// A target without args matches any error of that name.
func (e *ErrCustom) Is(target error) bool {
	var t *ErrCustom
	if !errors.As(target, &t) || t.name != e.name {
		return false
	}
	if len(t.args) == 0 {
		return true
	}
	return t.Error() == e.Error()
}

// IsRevertErr reports whether err aborts a call frame as a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var re *ErrRequire
	if errors.As(e, &re) {
		return re != nil
	}
	var ce *ErrCustom
	if errors.As(e, &ce) {
		return ce != nil
	}
	return false
}

// Payload returns the revert payload of err, nil if err is not a revert.
func Payload(err error) []byte {
	var re *ErrRequire
	if errors.As(err, &re) {
		return re.Bytes()
	}
	var ce *ErrCustom
	if errors.As(err, &ce) {
		return ce.Bytes()
	}
	return nil
}
