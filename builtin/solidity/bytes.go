// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/velalabs/vela/vela"
)

// Bytes stores a dynamic byte slice in one slot.
type Bytes struct {
	context *Context
	pos     vela.Bytes32
}

func NewBytes(context *Context, pos vela.Bytes32) *Bytes {
	return &Bytes{context: context, pos: pos}
}

func (b *Bytes) Get() (data []byte, err error) {
	err = b.context.state.DecodeStorage(b.context.address, b.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &data)
	})
	return
}

func (b *Bytes) Set(data []byte) error {
	return b.context.state.EncodeStorage(b.context.address, b.pos, func() ([]byte, error) {
		if len(data) == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(data)
	})
}
