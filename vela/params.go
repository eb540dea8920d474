// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vela

// Constants of the lottery and its reward token.
const (
	InitialEntryFee             uint64 = 500000
	InitialLotteryIntervalHours uint64 = 4
	SecondsPerHour              uint64 = 3600

	InitialCallbackGasLimit     uint32 = 100000
	InitialRequestConfirmations uint16 = 3
	InitialNumWords             uint32 = 1

	RewardPercent uint64 = 85 // share of the prize pool minted to the winner, the rest stays in the contract

	TokenDecimals uint8 = 10

	MaxNumWords  uint32 = 500 // upper bound of random words per request accepted by the wrapper
	MaxCallDepth int    = 64  // nested call frames allowed below a message
)
