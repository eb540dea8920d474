// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/velalabs/vela/vela"
)

// Token summarizes the reward token.
type Token struct {
	Address          vela.Address          `json:"address"`
	Name             string                `json:"name"`
	Symbol           string                `json:"symbol"`
	Decimals         uint8                 `json:"decimals"`
	TotalSupply      *math.HexOrDecimal256 `json:"totalSupply"`
	Cap              *math.HexOrDecimal256 `json:"cap"`
	Owner            vela.Address          `json:"owner"`
	AuthorizedMinter vela.Address          `json:"authorizedMinter"`
}

// Balance is the token balance of an account.
type Balance struct {
	Address vela.Address          `json:"address"`
	Balance *math.HexOrDecimal256 `json:"balance"`
	Native  *math.HexOrDecimal256 `json:"native"`
}
