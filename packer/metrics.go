// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "github.com/velalabs/vela/metrics"

var (
	metricAdoptedCount   = metrics.LazyLoadCounterVec("packer_adopted_count", []string{"status"})
	metricPackedMessages = metrics.LazyLoadHistogram("packer_flow_messages", []int64{1, 2, 5, 10, 50})
)
