// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"errors"

	"github.com/velalabs/vela/vela"
)

// ErrIndexOutOfRange is returned when accessing an element beyond the array length.
var ErrIndexOutOfRange = errors.New("index out of range")

type index uint64

func (i index) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}

// Array is a dynamic array, the length lives at pos and the elements in a mapping based on pos.
type Array[V any] struct {
	length   *Uint64
	elements *Mapping[index, V]
}

func NewArray[V any](context *Context, pos vela.Bytes32) *Array[V] {
	return &Array[V]{
		length:   NewUint64(context, pos),
		elements: NewMapping[index, V](context, vela.Keccak256(pos.Bytes())),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	return a.length.Get()
}

func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.length.Get()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, ErrIndexOutOfRange
	}
	return a.elements.Get(index(i))
}

func (a *Array[V]) Push(value V) error {
	n, err := a.length.Get()
	if err != nil {
		return err
	}
	if err := a.elements.Set(index(n), value); err != nil {
		return err
	}
	a.length.Set(n + 1)
	return nil
}

// All returns all elements in order.
func (a *Array[V]) All() ([]V, error) {
	n, err := a.length.Get()
	if err != nil {
		return nil, err
	}
	values := make([]V, 0, n)
	for i := range n {
		v, err := a.elements.Get(index(i))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Clear deletes all elements and resets the length.
func (a *Array[V]) Clear() error {
	n, err := a.length.Get()
	if err != nil {
		return err
	}
	for i := range n {
		a.elements.Delete(index(i))
	}
	a.length.Set(0)
	return nil
}
