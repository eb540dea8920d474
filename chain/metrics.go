// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import "github.com/velalabs/vela/metrics"

var (
	metricHeadNumber    = metrics.LazyLoadGauge("chain_head_number")
	metricCommittedKeys = metrics.LazyLoadCounter("chain_committed_keys_count")
)
