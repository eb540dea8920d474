// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package test

import (
	"fmt"
	"time"
)

// Retry calls fn every period until it succeeds or maxWait elapses.
// The last error is wrapped into the timeout error.
func Retry(fn func() error, period, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("retry timeout after %d attempts, latest err: %w", attempt, err)
		}
		<-ticker.C
	}
}
