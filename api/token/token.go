// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/velalabs/vela/api/utils"
	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/chain"
)

type Tokens struct {
	chain *chain.Chain
}

func New(chain *chain.Chain) *Tokens {
	return &Tokens{chain}
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	tk := builtin.Token.WithState(t.chain.NewState())

	var (
		info = Token{Address: builtin.Token.Address, Decimals: tk.Decimals()}
		err  error
	)
	if info.Name, err = tk.Name(); err != nil {
		return err
	}
	if info.Symbol, err = tk.Symbol(); err != nil {
		return err
	}
	supply, err := tk.TotalSupply()
	if err != nil {
		return err
	}
	tokenCap, err := tk.Cap()
	if err != nil {
		return err
	}
	info.TotalSupply, info.Cap = utils.Amount(supply), utils.Amount(tokenCap)
	if info.Owner, err = tk.Owner(); err != nil {
		return err
	}
	if info.AuthorizedMinter, err = tk.AuthorizedMinter(); err != nil {
		return err
	}
	return utils.WriteJSON(w, &info)
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	st := t.chain.NewState()
	bal, err := builtin.Token.WithState(st).BalanceOf(addr)
	if err != nil {
		return err
	}
	native, err := st.GetBalance(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{
		Address: addr,
		Balance: utils.Amount(bal),
		Native:  utils.Amount(native),
	})
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/balances/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
}
