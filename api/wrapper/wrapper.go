// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wrapper

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/velalabs/vela/api/utils"
	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/builtin/vrfwrapper"
	"github.com/velalabs/vela/chain"
)

type Wrappers struct {
	chain *chain.Chain
}

func New(chain *chain.Chain) *Wrappers {
	return &Wrappers{chain}
}

func amounts(vs []*uint256.Int) []*math.HexOrDecimal256 {
	out := make([]*math.HexOrDecimal256, 0, len(vs))
	for _, v := range vs {
		out = append(out, utils.Amount(v))
	}
	return out
}

func (wr *Wrappers) handleGetWrapper(w http.ResponseWriter, _ *http.Request) error {
	wp := builtin.VRFWrapper.WithState(wr.chain.NewState())

	operator, err := wp.Owner()
	if err != nil {
		return err
	}
	pub, err := wp.PublicKey()
	if err != nil {
		return err
	}
	p, err := wp.Pricing()
	if err != nil {
		return err
	}
	counter, err := wp.Counter()
	if err != nil {
		return err
	}
	pending, err := wp.Pending()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Wrapper{
		Address:   builtin.VRFWrapper.Address,
		Operator:  operator,
		PublicKey: crypto.CompressPubkey(pub),
		Pricing: Pricing{
			GasPrice:    utils.Amount(p.GasPrice),
			OverheadGas: utils.Amount(p.OverheadGas),
			PerWordGas:  utils.Amount(p.PerWordGas),
			FlatFee:     utils.Amount(p.FlatFee),
		},
		Counter: utils.Amount(counter),
		Pending: amounts(pending),
	})
}

func (wr *Wrappers) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseUint256("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	wp := builtin.VRFWrapper.WithState(wr.chain.NewState())
	r, err := wp.Request(id)
	if err != nil {
		if errors.Is(err, vrfwrapper.ErrRequestNotFound(id)) {
			return utils.NotFound(err)
		}
		return err
	}
	out := Request{
		ID:               utils.Amount(id),
		Consumer:         r.Consumer,
		CallbackGasLimit: r.CallbackGasLimit,
		Confirmations:    r.Confirmations,
		NumWords:         r.NumWords,
		Paid:             utils.Amount(r.Paid),
		BlockNumber:      r.BlockNumber,
		Fulfilled:        r.Fulfilled,
	}
	if r.Fulfilled {
		if out.Proof, err = wp.Proof(id); err != nil {
			return err
		}
		words, err := wp.VerifyProof(id, out.Proof)
		if err != nil {
			return err
		}
		out.Words = amounts(words)
	}
	return utils.WriteJSON(w, &out)
}

func (wr *Wrappers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(wr.handleGetWrapper))
	sub.Path("/requests/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(wr.handleGetRequest))
}
