// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/holiman/uint256"

	"github.com/velalabs/vela/vela"
)

func RandAddress() (addr vela.Address) {
	rand.Read(addr[:])
	return
}

func RandBytes32() (b vela.Bytes32) {
	rand.Read(b[:])
	return
}

// RandUint256 returns a random value covering the full 256 bits.
func RandUint256() *uint256.Int {
	b := RandBytes32()
	return new(uint256.Int).SetBytes32(b[:])
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}
