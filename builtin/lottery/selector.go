// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"github.com/holiman/uint256"
)

// WinnerIndex maps the random value r onto [0, n) using the full 256 bit width.
func WinnerIndex(r *uint256.Int, n uint64) uint64 {
	return new(uint256.Int).Mod(r, uint256.NewInt(n)).Uint64()
}

// SelectWinner picks the winning index among n entrants from the first random word.
func SelectWinner(words []*uint256.Int, n uint64) (uint64, error) {
	if n == 0 {
		return 0, errNoParticipants
	}
	if len(words) == 0 {
		return 0, errNoWords
	}
	return WinnerIndex(words[0], n), nil
}
