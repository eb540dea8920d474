// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalabs/vela/api/lottery"
	"github.com/velalabs/vela/api/token"
	"github.com/velalabs/vela/api/wrapper"
	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/metrics"
	"github.com/velalabs/vela/test/testchain"
	"github.com/velalabs/vela/vela"
)

var ts *httptest.Server

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func getJSON(t *testing.T, path string, v any) {
	body, status := httpGet(t, ts.URL+path)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

func big10(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func TestAPI(t *testing.T) {
	metrics.InitializePrometheusMetrics()

	c, err := testchain.NewDefault()
	require.NoError(t, err)
	defer c.Close()

	players := testchain.DevAccounts()[1:4]
	round, err := c.PlayRound(players)
	require.NoError(t, err)
	winner := round.Event.Winner

	ts = httptest.NewServer(New(c.Chain(), Options{AllowedOrigins: "*", EnableMetrics: true, EnableReqLogger: true}))
	defer ts.Close()

	for name, tt := range map[string]func(*testing.T){
		"getToken":             testGetToken,
		"getBalance":           func(t *testing.T) { testGetBalance(t, winner) },
		"getLottery":           testGetLottery,
		"getParticipants":      func(t *testing.T) { testGetParticipants(t, players) },
		"getLotteryRequests":   testGetLotteryRequests,
		"getWrapper":           func(t *testing.T) { testGetWrapper(t, c) },
		"getWrapperRequest":    func(t *testing.T) { testGetWrapperRequest(t, round) },
		"methodNotAllowed":     testMethodNotAllowed,
		"requestNotFoundError": testRequestNotFound,
	} {
		t.Run(name, tt)
	}
	t.Run("getMetrics", testGetMetrics)
}

func testGetToken(t *testing.T) {
	var tk token.Token
	getJSON(t, "/token", &tk)

	assert.Equal(t, builtin.Token.Address, tk.Address)
	assert.Equal(t, "Lottery Reward", tk.Name)
	assert.Equal(t, "LRT", tk.Symbol)
	assert.Equal(t, vela.TokenDecimals, tk.Decimals)
	assert.Equal(t, big10(255), tk.TotalSupply)
	assert.Equal(t, builtin.Lottery.Address, tk.AuthorizedMinter)
	assert.Equal(t, testchain.DevAccounts()[0], tk.Owner)
}

func testGetBalance(t *testing.T, winner vela.Address) {
	var bal token.Balance
	getJSON(t, "/token/balances/"+winner.String(), &bal)
	assert.Equal(t, winner, bal.Address)
	assert.Equal(t, big10(255), bal.Balance)
	assert.Equal(t, big10(1e18-100), bal.Native)

	body, status := httpGet(t, ts.URL+"/token/balances/0xbad")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "address")
}

func testGetLottery(t *testing.T) {
	var l lottery.Lottery
	getJSON(t, "/lottery", &l)

	assert.Equal(t, builtin.Lottery.Address, l.Address)
	assert.Equal(t, builtin.Token.Address, l.Token)
	assert.Equal(t, builtin.VRFWrapper.Address, l.VRFWrapper)
	assert.Equal(t, big10(100), l.EntryFee)
	assert.Equal(t, uint64(3600), l.Interval)
	assert.Equal(t, l.LastRequestTimestamp+3600, l.NextRequestAt)
	assert.True(t, l.Accepting)
	assert.Equal(t, uint64(3), l.Participants)
	assert.Equal(t, uint64(1), l.Requests)
	assert.Equal(t, big10(1), l.LastRequestID)
	assert.Equal(t, uint32(900), l.RequestConfig.CallbackGasLimit)
	assert.Equal(t, big10(1000), l.RequestPrice)
	// prefund + entries - request price
	assert.Equal(t, big10(1e6+300-1000), l.Balance)
}

func testGetParticipants(t *testing.T, players []vela.Address) {
	var participants []vela.Address
	getJSON(t, "/lottery/participants", &participants)
	assert.Equal(t, players, participants)
}

func testGetLotteryRequests(t *testing.T) {
	var ids []*math.HexOrDecimal256
	getJSON(t, "/lottery/requests", &ids)
	assert.Equal(t, []*math.HexOrDecimal256{big10(1)}, ids)

	var req lottery.Request
	getJSON(t, "/lottery/requests/0x1", &req)
	assert.True(t, req.Fulfilled)
	assert.Equal(t, big10(1000), req.Paid)
	assert.NotNil(t, req.RandomWord)
}

func testRequestNotFound(t *testing.T) {
	body, status := httpGet(t, ts.URL+"/lottery/requests/9")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "RequestNotFound(9)")

	_, status = httpGet(t, ts.URL+"/wrapper/requests/9")
	assert.Equal(t, http.StatusNotFound, status)

	_, status = httpGet(t, ts.URL+"/lottery/requests/abc")
	assert.Equal(t, http.StatusBadRequest, status)
}

func testGetWrapper(t *testing.T, c *testchain.Chain) {
	var w wrapper.Wrapper
	getJSON(t, "/wrapper", &w)

	assert.Equal(t, builtin.VRFWrapper.Address, w.Address)
	assert.Equal(t, c.Owner(), w.Operator)
	assert.Equal(t, crypto.CompressPubkey(&c.VRFKey().PublicKey), []byte(w.PublicKey))
	assert.Equal(t, big10(1), w.Counter)
	assert.Empty(t, w.Pending)
	assert.Equal(t, big10(50), w.Pricing.OverheadGas)
}

func testGetWrapperRequest(t *testing.T, round *testchain.Round) {
	var req wrapper.Request
	getJSON(t, "/wrapper/requests/1", &req)

	assert.Equal(t, builtin.Lottery.Address, req.Consumer)
	assert.True(t, req.Fulfilled)
	assert.Equal(t, round.Fulfillment.Proof, []byte(req.Proof))
	require.Len(t, req.Words, 1)
	assert.Equal(t, round.Fulfillment.Words[0].ToBig(), (*big.Int)(req.Words[0]))
}

func testGetMetrics(t *testing.T) {
	body, status := httpGet(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "vela_api_request_count")
	assert.Contains(t, string(body), "vela_lottery_request_count")
}

func testMethodNotAllowed(t *testing.T) {
	for _, path := range []string{"/token", "/lottery/participants", "/wrapper/requests/1"} {
		res, err := http.Post(ts.URL+path, "application/json", strings.NewReader("{}")) //#nosec G107
		require.NoError(t, err)
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode, path)
		assert.Contains(t, string(body), "method POST not allowed", path)
	}

	body, status := httpGet(t, ts.URL+"/nowhere")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "no route for /nowhere")
}
