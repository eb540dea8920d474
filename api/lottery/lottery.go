// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"math"
	"net/http"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/velalabs/vela/api/utils"
	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/builtin/lottery"
	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
)

type Lotteries struct {
	chain *chain.Chain
}

func New(chain *chain.Chain) *Lotteries {
	return &Lotteries{chain}
}

// Summarize reads the lottery summary from st.
func Summarize(st *state.State) (*Lottery, error) {
	lot := builtin.Lottery.WithState(st)

	var (
		s   = Lottery{Address: builtin.Lottery.Address}
		err error
	)
	if s.Owner, err = lot.Owner(); err != nil {
		return nil, err
	}
	if s.Token, err = lot.ERC20Token(); err != nil {
		return nil, err
	}
	if s.VRFWrapper, err = lot.VRFWrapper(); err != nil {
		return nil, err
	}
	balance, err := st.GetBalance(builtin.Lottery.Address)
	if err != nil {
		return nil, err
	}
	fee, err := lot.LotteryEntryFee()
	if err != nil {
		return nil, err
	}
	s.Balance, s.EntryFee = utils.Amount(balance), utils.Amount(fee)
	if s.Interval, err = lot.LotteryInterval(); err != nil {
		return nil, err
	}
	if s.LastRequestTimestamp, err = lot.LastRequestTimestamp(); err != nil {
		return nil, err
	}
	if s.LastRequestTimestamp > math.MaxUint64-s.Interval {
		s.NextRequestAt = math.MaxUint64
	} else {
		s.NextRequestAt = s.LastRequestTimestamp + s.Interval
	}
	if s.Accepting, err = lot.AcceptingParticipants(); err != nil {
		return nil, err
	}
	if s.Participants, err = lot.GetUserAddressesCount(); err != nil {
		return nil, err
	}
	lastID, err := lot.GetLastRequestID()
	if err != nil {
		return nil, err
	}
	s.LastRequestID = utils.Amount(lastID)
	if s.Requests, err = lot.RequestCount(); err != nil {
		return nil, err
	}
	if s.ResetOnPayout, err = lot.ResetOnPayout(); err != nil {
		return nil, err
	}
	rc := &s.RequestConfig
	if rc.CallbackGasLimit, rc.RequestConfirmations, rc.NumWords, err = lot.RequestConfig(); err != nil {
		return nil, err
	}
	// the quote is only available from the built-in wrapper
	if s.VRFWrapper == builtin.VRFWrapper.Address {
		price, err := builtin.VRFWrapper.WithState(st).CalculateRequestPriceNative(rc.CallbackGasLimit, rc.NumWords)
		if err != nil {
			return nil, err
		}
		s.RequestPrice = utils.Amount(price)
	}
	return &s, nil
}

func (l *Lotteries) handleGetLottery(w http.ResponseWriter, _ *http.Request) error {
	s, err := Summarize(l.chain.NewState())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, s)
}

func (l *Lotteries) handleGetParticipants(w http.ResponseWriter, _ *http.Request) error {
	participants, err := builtin.Lottery.WithState(l.chain.NewState()).Participants()
	if err != nil {
		return err
	}
	if participants == nil {
		participants = []vela.Address{}
	}
	return utils.WriteJSON(w, participants)
}

func (l *Lotteries) handleGetRequestIDs(w http.ResponseWriter, _ *http.Request) error {
	ids, err := builtin.Lottery.WithState(l.chain.NewState()).RequestIDs()
	if err != nil {
		return err
	}
	out := make([]*ethmath.HexOrDecimal256, 0, len(ids))
	for _, id := range ids {
		out = append(out, utils.Amount(id))
	}
	return utils.WriteJSON(w, out)
}

func (l *Lotteries) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseUint256("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	paid, fulfilled, word, err := builtin.Lottery.WithState(l.chain.NewState()).GetRequestStatus(id)
	if err != nil {
		if errors.Is(err, lottery.ErrRequestNotFound(id)) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, &Request{
		ID:         utils.Amount(id),
		Paid:       utils.Amount(paid),
		Fulfilled:  fulfilled,
		RandomWord: utils.Amount(word),
	})
}

func (l *Lotteries) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetLottery))
	sub.Path("/participants").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetParticipants))
	sub.Path("/requests").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetRequestIDs))
	sub.Path("/requests/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(l.handleGetRequest))
}
