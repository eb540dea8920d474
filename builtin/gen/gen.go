// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gen

import (
	"embed"
	"fmt"
)

//go:embed compiled/*.abi
var compiled embed.FS

// Asset returns the content of an embedded asset.
func Asset(name string) ([]byte, error) {
	return compiled.ReadFile(name)
}

// MustAsset is like Asset but panics when the asset is missing.
func MustAsset(name string) []byte {
	data, err := Asset(name)
	if err != nil {
		panic(fmt.Errorf("asset %s: %w", name, err))
	}
	return data
}
