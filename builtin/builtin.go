// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"crypto/ecdsa"

	"github.com/velalabs/vela/builtin/lottery"
	"github.com/velalabs/vela/builtin/token"
	"github.com/velalabs/vela/builtin/vrfwrapper"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
)

// Builtin contracts binding.
var (
	Token      = &tokenContract{newContract("Token", token.ABI)}
	Lottery    = &lotteryContract{newContract("Lottery", lottery.ABI)}
	VRFWrapper = &vrfWrapperContract{newContract("VRFWrapper", vrfwrapper.ABI)}
)

type (
	tokenContract      struct{ *contract }
	lotteryContract    struct{ *contract }
	vrfWrapperContract struct{ *contract }
)

func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(t.Address, state)
}

func (l *lotteryContract) WithState(state *state.State) *lottery.Lottery {
	return lottery.New(l.Address, state)
}

func (v *vrfWrapperContract) WithState(state *state.State) *vrfwrapper.Wrapper {
	return vrfwrapper.New(v.Address, state)
}

// Register binds every builtin contract to the runtime's state and registers it.
// key is the oracle operator's VRF key, nil for a runtime that never fulfills.
func Register(rt *runtime.Runtime, key *ecdsa.PrivateKey) {
	st := rt.State()
	rt.Register(Token.Address, Token.WithState(st))
	rt.Register(Lottery.Address, Lottery.WithState(st))
	rt.Register(VRFWrapper.Address, VRFWrapper.WithState(st).WithKey(key))
}
