// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/velalabs/vela/vela"
)

// Fulfilled is a decoded RequestFulfilled event.
type Fulfilled struct {
	ID     *uint256.Int
	Words  []*uint256.Int
	Paid   *uint256.Int
	Winner vela.Address // zero if no reward was paid
}

// DecodeFulfilled returns the first RequestFulfilled event in logs emitted by addr.
func DecodeFulfilled(addr vela.Address, logs []*vela.Event) (*Fulfilled, bool, error) {
	for _, ev := range logs {
		if ev.Address != addr || len(ev.Topics) != 2 || ev.Topics[0] != requestFulfilledEvent.ID() {
			continue
		}
		args, err := requestFulfilledEvent.Decode(ev.Data)
		if err != nil {
			return nil, false, err
		}
		words, ok1 := args[0].([]*big.Int)
		paid, ok2 := args[1].(*big.Int)
		winner, ok3 := args[2].(common.Address)
		if !ok1 || !ok2 || !ok3 {
			return nil, false, errors.New("malformed RequestFulfilled event")
		}
		f := &Fulfilled{
			ID:     new(uint256.Int).SetBytes32(ev.Topics[1][:]),
			Paid:   uint256.MustFromBig(paid),
			Winner: vela.Address(winner),
		}
		for _, w := range words {
			f.Words = append(f.Words, uint256.MustFromBig(w))
		}
		return f, true, nil
	}
	return nil, false, nil
}
