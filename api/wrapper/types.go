// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wrapper

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/velalabs/vela/vela"
)

// Wrapper summarizes the oracle wrapper.
type Wrapper struct {
	Address   vela.Address            `json:"address"`
	Operator  vela.Address            `json:"operator"`
	PublicKey hexutil.Bytes           `json:"publicKey"`
	Pricing   Pricing                 `json:"pricing"`
	Counter   *math.HexOrDecimal256   `json:"counter"`
	Pending   []*math.HexOrDecimal256 `json:"pending"`
}

type Pricing struct {
	GasPrice    *math.HexOrDecimal256 `json:"gasPrice"`
	OverheadGas *math.HexOrDecimal256 `json:"overheadGas"`
	PerWordGas  *math.HexOrDecimal256 `json:"perWordGas"`
	FlatFee     *math.HexOrDecimal256 `json:"flatFee"`
}

// Request is a randomness request. Proof and Words are set once it is fulfilled,
// Words being recomputed from the verified proof.
type Request struct {
	ID               *math.HexOrDecimal256   `json:"id"`
	Consumer         vela.Address            `json:"consumer"`
	CallbackGasLimit uint32                  `json:"callbackGasLimit"`
	Confirmations    uint16                  `json:"confirmations"`
	NumWords         uint32                  `json:"numWords"`
	Paid             *math.HexOrDecimal256   `json:"paid"`
	BlockNumber      uint32                  `json:"blockNumber"`
	Fulfilled        bool                    `json:"fulfilled"`
	Proof            hexutil.Bytes           `json:"proof,omitempty"`
	Words            []*math.HexOrDecimal256 `json:"words,omitempty"`
}
