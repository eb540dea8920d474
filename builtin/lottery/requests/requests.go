// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package requests keeps the randomness requests issued by the lottery.
//
// A request id moves from unknown to requested when the lottery pays the
// oracle, and to fulfilled once the oracle calls back. Records are never
// deleted; a zero paid amount marks an id that was never requested.
package requests

import (
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin/reverts"
	"github.com/velalabs/vela/builtin/solidity"
	"github.com/velalabs/vela/vela"
)

var (
	ErrZeroPaid         = reverts.NewRequireError("Zero price")
	ErrDuplicate        = reverts.NewRequireError("Duplicate request")
	ErrAlreadyFulfilled = reverts.NewRequireError("Already fulfilled")
)

// Request is the stored record of one randomness request.
type Request struct {
	Paid        *uint256.Int
	Fulfilled   bool
	RandomValue *uint256.Int
}

type Ledger struct {
	records *solidity.Mapping[vela.Bytes32, *Request]
	ids     *solidity.Array[*uint256.Int]
	lastID  *solidity.Uint256
}

func New(ctx *solidity.Context, pos vela.Bytes32) *Ledger {
	return &Ledger{
		records: solidity.NewMapping[vela.Bytes32, *Request](ctx, vela.Keccak256(pos.Bytes(), []byte("records"))),
		ids:     solidity.NewArray[*uint256.Int](ctx, vela.Keccak256(pos.Bytes(), []byte("ids"))),
		lastID:  solidity.NewUint256(ctx, vela.Keccak256(pos.Bytes(), []byte("last-id"))),
	}
}

// Add records a new paid request and makes it the latest one.
func (l *Ledger) Add(id, paid *uint256.Int) error {
	if paid == nil || paid.IsZero() {
		return ErrZeroPaid
	}
	_, found, err := l.Get(id)
	if err != nil {
		return err
	}
	if found {
		return ErrDuplicate
	}

	if err := l.records.Set(vela.Uint256ToBytes32(id), &Request{
		Paid:        paid.Clone(),
		RandomValue: new(uint256.Int),
	}); err != nil {
		return err
	}
	if err := l.ids.Push(id.Clone()); err != nil {
		return err
	}
	l.lastID.Set(id)
	return nil
}

// Get returns the record of id. found is false for an id that was never requested.
func (l *Ledger) Get(id *uint256.Int) (req *Request, found bool, err error) {
	req, err = l.records.Get(vela.Uint256ToBytes32(id))
	if err != nil {
		return nil, false, err
	}
	if req.Paid == nil || req.Paid.IsZero() {
		return nil, false, nil
	}
	if req.RandomValue == nil {
		req.RandomValue = new(uint256.Int)
	}
	return req, true, nil
}

// Fulfill marks a known request as fulfilled and stores the first random word, if any.
// The caller must have checked that id exists.
func (l *Ledger) Fulfill(id *uint256.Int, words []*uint256.Int) (*Request, error) {
	req, found, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if !found {
		panic("fulfill unknown request")
	}
	if req.Fulfilled {
		return nil, ErrAlreadyFulfilled
	}
	req.Fulfilled = true
	if len(words) > 0 {
		req.RandomValue = words[0].Clone()
	}
	if err := l.records.Set(vela.Uint256ToBytes32(id), req); err != nil {
		return nil, err
	}
	return req, nil
}

func (l *Ledger) LastID() (*uint256.Int, error) {
	return l.lastID.Get()
}

// IDs returns every request id in issue order.
func (l *Ledger) IDs() ([]*uint256.Int, error) {
	return l.ids.All()
}

func (l *Ledger) Count() (uint64, error) {
	return l.ids.Len()
}
