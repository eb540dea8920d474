// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats is a utility for collecting cache hit/miss.
type Stats struct {
	hit, miss atomic.Int64
}

// Hit records a hit.
func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Counts returns the number of hits and misses.
func (cs *Stats) Counts() (hit, miss int64) {
	return cs.hit.Load(), cs.miss.Load()
}

// HitRate returns hits over lookups, 0 when nothing looked up.
func (cs *Stats) HitRate() float64 {
	hit, miss := cs.Counts()
	if hit+miss == 0 {
		return 0
	}
	return float64(hit) / float64(hit+miss)
}
