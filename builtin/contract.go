// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/velalabs/vela/abi"
	"github.com/velalabs/vela/vela"
)

type contract struct {
	name    string
	Address vela.Address
	ABI     *abi.ABI
}

// newContract derives the well-known address of a builtin contract from its name.
func newContract(name string, a *abi.ABI) *contract {
	return &contract{
		name,
		vela.BytesToAddress([]byte(name)),
		a,
	}
}

func (c *contract) Name() string {
	return c.name
}
