// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/cache"
	"github.com/velalabs/vela/kv"
	"github.com/velalabs/vela/stackedmap"
	"github.com/velalabs/vela/vela"
)

const (
	balancePrefix = "b"
	storagePrefix = "s"

	defaultCacheSize = 4096
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type balanceKey vela.Address

type storageKey struct {
	addr vela.Address
	key  vela.Bytes32
}

// State manages native balances and contract storage slots.
// Changes are journaled in memory until staged and committed.
type State struct {
	db    kv.Getter
	cache *cache.LRU // committed values loaded from db
	sm    *stackedmap.StackedMap
}

// New create state object over the given db.
func New(db kv.Getter) *State {
	c, _ := cache.NewLRU(defaultCacheSize)
	s := &State{
		db:    db,
		cache: c,
	}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (any, bool, error) {
	switch key.(type) {
	case balanceKey, storageKey:
		v, err := s.cache.GetOrLoad(key, s.load)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

func (s *State) load(key any) (any, error) {
	switch k := key.(type) {
	case balanceKey:
		data, err := s.get(balanceDBKey(vela.Address(k)))
		if err != nil {
			return nil, err
		}
		return new(uint256.Int).SetBytes(data), nil
	case storageKey:
		data, err := s.get(storageDBKey(k.addr, k.key))
		if err != nil {
			return nil, err
		}
		return rlp.RawValue(data), nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// get reads raw value from db, a missing key yields nil.
func (s *State) get(key []byte) ([]byte, error) {
	data, err := s.db.Get(key)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr vela.Address) (*uint256.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(uint256.Int).Set(v.(*uint256.Int)), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr vela.Address, balance *uint256.Int) {
	s.sm.Put(balanceKey(addr), new(uint256.Int).Set(balance))
}

// AddBalance adds amount to the balance of addr.
// It panics on overflow, the native supply can never reach 2^256.
func (s *State) AddBalance(addr vela.Address, amount *uint256.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		panic("balance overflow")
	}
	s.SetBalance(addr, bal)
	return nil
}

// SubBalance subtracts amount from the balance of addr.
// It returns false without any change if the balance is insufficient.
func (s *State) SubBalance(addr vela.Address, amount *uint256.Int) (bool, error) {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if bal.Lt(amount) {
		return false, nil
	}
	s.SetBalance(addr, bal.Sub(bal, amount))
	return true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr vela.Address, key vela.Bytes32) (vela.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return vela.Bytes32{}, err
	}
	if len(raw) == 0 {
		return vela.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return vela.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return vela.Keccak256(raw), nil
	}
	return vela.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr vela.Address, key, value vela.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr vela.Address, key vela.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr vela.Address, key vela.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr vela.Address, key vela.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr vela.Address, key vela.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

func balanceDBKey(addr vela.Address) []byte {
	return append([]byte(balancePrefix), addr[:]...)
}

func storageDBKey(addr vela.Address, key vela.Bytes32) []byte {
	k := make([]byte, 0, len(storagePrefix)+len(addr)+len(key))
	k = append(k, storagePrefix...)
	k = append(k, addr[:]...)
	return append(k, key[:]...)
}
