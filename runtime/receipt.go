// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/velalabs/vela/vela"
)

// Receipt is the outcome of a message.
type Receipt struct {
	Reverted   bool
	Err        error  // the revert error when Reverted
	RevertData []byte // ABI encoded revert payload
	Logs       []*vela.Event
}

// Revert returns the revert error, nil for a successful message.
func (r *Receipt) Revert() error {
	if r == nil || !r.Reverted {
		return nil
	}
	return r.Err
}
