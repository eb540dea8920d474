// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/vela"
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     vela.Bytes32
}

func NewUint256(context *Context, pos vela.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return storage.Uint256(), nil
}

func (u *Uint256) Set(value *uint256.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, vela.Uint256ToBytes32(value))
}

// Uint64 stores small counters and config values in a single slot.
type Uint64 struct {
	context *Context
	pos     vela.Bytes32
}

func NewUint64(context *Context, pos vela.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: pos}
}

func (u *Uint64) Get() (uint64, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return 0, err
	}
	return storage.Uint256().Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	u.context.state.SetStorage(u.context.address, u.pos, vela.Uint256ToBytes32(uint256.NewInt(value)))
}
