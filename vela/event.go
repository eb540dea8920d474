// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vela

// Event is a log emitted by a contract during execution.
// Topics[0] is the event ID.
type Event struct {
	Address Address
	Topics  []Bytes32
	Data    []byte
}
