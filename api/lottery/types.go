// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/velalabs/vela/vela"
)

// Lottery summarizes the lottery state at the chain head.
type Lottery struct {
	Address              vela.Address          `json:"address"`
	Owner                vela.Address          `json:"owner"`
	Token                vela.Address          `json:"token"`
	VRFWrapper           vela.Address          `json:"vrfWrapper"`
	Balance              *math.HexOrDecimal256 `json:"balance"`
	EntryFee             *math.HexOrDecimal256 `json:"entryFee"`
	Interval             uint64                `json:"interval"`
	LastRequestTimestamp uint64                `json:"lastRequestTimestamp"`
	NextRequestAt        uint64                `json:"nextRequestAt"`
	Accepting            bool                  `json:"accepting"`
	Participants         uint64                `json:"participants"`
	LastRequestID        *math.HexOrDecimal256 `json:"lastRequestId"`
	Requests             uint64                `json:"requests"`
	ResetOnPayout        bool                  `json:"resetOnPayout"`
	RequestConfig        RequestConfig         `json:"requestConfig"`
	RequestPrice         *math.HexOrDecimal256 `json:"requestPrice,omitempty"`
}

type RequestConfig struct {
	CallbackGasLimit     uint32 `json:"callbackGasLimit"`
	RequestConfirmations uint16 `json:"requestConfirmations"`
	NumWords             uint32 `json:"numWords"`
}

// Request is the status of a randomness request.
type Request struct {
	ID         *math.HexOrDecimal256 `json:"id"`
	Paid       *math.HexOrDecimal256 `json:"paid"`
	Fulfilled  bool                  `json:"fulfilled"`
	RandomWord *math.HexOrDecimal256 `json:"randomWord"`
}
