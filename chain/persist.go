// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/velalabs/vela/kv"
)

var headKey = []byte("head")

func saveRLP(w kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val any) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

func saveHead(w kv.Putter, head Head) error {
	return saveRLP(w, headKey, &head)
}

func loadHead(r kv.Getter) (head Head, err error) {
	err = loadRLP(r, headKey, &head)
	return
}
