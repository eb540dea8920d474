// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lottery

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalabs/vela/builtin/ownable"
	"github.com/velalabs/vela/builtin/reverts"
	"github.com/velalabs/vela/builtin/token"
	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/test/datagen"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

const startTime = 1_700_000_000

var (
	lotteryAddr = vela.BytesToAddress([]byte("lottery"))
	tokenAddr   = vela.BytesToAddress([]byte("token"))
	wrapperAddr = vela.BytesToAddress([]byte("vrf-wrapper"))
	ownerAddr   = vela.BytesToAddress([]byte("owner"))
)

type fakeCoordinator struct {
	price     *uint256.Int
	nextID    uint64
	extraArgs []byte
	paid      *uint256.Int
	gas       uint32
	conf      uint16
	words     uint32
}

func (f *fakeCoordinator) CalculateRequestPriceNative(_, _ uint32) (*uint256.Int, error) {
	return f.price.Clone(), nil
}

func (f *fakeCoordinator) RequestRandomWordsInNative(
	env *xenv.Environment,
	gas uint32,
	conf uint16,
	words uint32,
	extraArgs []byte,
) (*uint256.Int, error) {
	if env.Value().Lt(f.price) {
		return nil, reverts.NewRequireError("Insufficient payment")
	}
	f.nextID++
	f.extraArgs = extraArgs
	f.paid = env.Value()
	f.gas, f.conf, f.words = gas, conf, words
	return uint256.NewInt(f.nextID), nil
}

type fakeToken struct{}

func (fakeToken) Mint(*xenv.Environment, vela.Address, *uint256.Int) error { return nil }

func (fakeToken) Transfer(*xenv.Environment, vela.Address, *uint256.Int) (bool, error) {
	return false, nil
}

type testLottery struct {
	t     *testing.T
	rt    *runtime.Runtime
	st    *state.State
	lot   *Lottery
	tk    *token.Token
	coord *fakeCoordinator
}

func newTestLottery(t *testing.T, cap uint64) *testLottery {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	rt := runtime.New(st, xenv.BlockContext{Number: 1, Time: startTime})
	tl := &testLottery{
		t:     t,
		rt:    rt,
		st:    st,
		lot:   New(lotteryAddr, st),
		tk:    token.New(tokenAddr, st),
		coord: &fakeCoordinator{price: uint256.NewInt(50)},
	}
	rt.Register(lotteryAddr, tl.lot)
	rt.Register(tokenAddr, tl.tk)
	rt.Register(wrapperAddr, tl.coord)

	tl.mustToken(ownerAddr, func(tk *token.Token, env *xenv.Environment) error {
		if err := tk.Initialize(env, "Lottery Reward", "LRT", uint256.NewInt(cap), ownerAddr); err != nil {
			return err
		}
		return tk.SetAuthorizedMinter(env, lotteryAddr)
	})
	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.Initialize(env, wrapperAddr, ownerAddr)
	})
	return tl
}

// configure sets the reward token and a small fee.
func (tl *testLottery) configure() *testLottery {
	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		if err := l.SetERC20Token(env, tokenAddr); err != nil {
			return err
		}
		return l.SetLotteryEntryFee(env, uint256.NewInt(100))
	})
	return tl
}

func (tl *testLottery) exec(origin vela.Address, value *uint256.Int, fn func(l *Lottery, env *xenv.Environment) error) *runtime.Receipt {
	r, err := runtime.Invoke(tl.rt, origin, lotteryAddr, value, fn)
	require.NoError(tl.t, err)
	return r
}

func (tl *testLottery) mustExec(origin vela.Address, value *uint256.Int, fn func(l *Lottery, env *xenv.Environment) error) *runtime.Receipt {
	r := tl.exec(origin, value, fn)
	require.NoError(tl.t, r.Revert())
	return r
}

func (tl *testLottery) mustToken(origin vela.Address, fn func(tk *token.Token, env *xenv.Environment) error) {
	r, err := runtime.Invoke(tl.rt, origin, tokenAddr, nil, fn)
	require.NoError(tl.t, err)
	require.NoError(tl.t, r.Revert())
}

func (tl *testLottery) join(addr vela.Address, amount uint64) *runtime.Receipt {
	bal, err := tl.st.GetBalance(addr)
	require.NoError(tl.t, err)
	tl.st.SetBalance(addr, bal.Add(bal, uint256.NewInt(amount)))
	return tl.exec(addr, uint256.NewInt(amount), func(l *Lottery, env *xenv.Environment) error {
		return l.ParticipateInLottery(env)
	})
}

func (tl *testLottery) request() (*uint256.Int, *runtime.Receipt) {
	var id *uint256.Int
	r := tl.exec(datagen.RandAddress(), nil, func(l *Lottery, env *xenv.Environment) (err error) {
		id, err = l.RequestRandomWords(env)
		return
	})
	return id, r
}

func (tl *testLottery) fulfill(caller vela.Address, id *uint256.Int, words ...uint64) *runtime.Receipt {
	ws := make([]*uint256.Int, 0, len(words))
	for _, w := range words {
		ws = append(ws, uint256.NewInt(w))
	}
	return tl.exec(caller, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.RawFulfillRandomWords(env, id, ws)
	})
}

func (tl *testLottery) setTime(ts uint64) {
	tl.rt.SetBlockContext(xenv.BlockContext{Number: tl.rt.BlockContext().Number + 1, Time: ts})
}

func (tl *testLottery) tokenBalance(addr vela.Address) uint64 {
	bal, err := tl.tk.BalanceOf(addr)
	require.NoError(tl.t, err)
	return bal.Uint64()
}

func (tl *testLottery) balance(addr vela.Address) uint64 {
	bal, err := tl.st.GetBalance(addr)
	require.NoError(tl.t, err)
	return bal.Uint64()
}

func fulfilledLog(t *testing.T, r *runtime.Receipt) []any {
	for _, ev := range r.Logs {
		if ev.Address == lotteryAddr && ev.Topics[0] == requestFulfilledEvent.ID() {
			args, err := requestFulfilledEvent.Decode(ev.Data)
			require.NoError(t, err)
			return args
		}
	}
	t.Fatal("RequestFulfilled not emitted")
	return nil
}

func TestInitialize(t *testing.T) {
	tl := newTestLottery(t, 1_000_000)

	owner, err := tl.lot.Owner()
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, owner)

	fee, err := tl.lot.LotteryEntryFee()
	require.NoError(t, err)
	assert.Equal(t, uint64(500000), fee.Uint64())

	hours, err := tl.lot.LotteryIntervalHours()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), hours)

	secs, err := tl.lot.LotteryInterval()
	require.NoError(t, err)
	assert.Equal(t, uint64(14400), secs)

	gas, conf, words, err := tl.lot.RequestConfig()
	require.NoError(t, err)
	assert.Equal(t, uint32(100000), gas)
	assert.Equal(t, uint16(3), conf)
	assert.Equal(t, uint32(1), words)

	accepting, err := tl.lot.AcceptingParticipants()
	require.NoError(t, err)
	assert.True(t, accepting)

	wrapper, err := tl.lot.VRFWrapper()
	require.NoError(t, err)
	assert.Equal(t, wrapperAddr, wrapper)

	tk, err := tl.lot.ERC20Token()
	require.NoError(t, err)
	assert.True(t, tk.IsZero())

	r := tl.exec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.Initialize(env, wrapperAddr, ownerAddr)
	})
	assert.Equal(t, errAlreadyInitialized, r.Revert())
}

func TestParticipate(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	a, b := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, tl.join(a, 100).Revert())
	assert.Equal(t, "Already participating", tl.join(a, 100).Revert().Error())
	assert.Equal(t, "Wrong amount", tl.join(b, 99).Revert().Error())
	assert.Equal(t, "Wrong amount", tl.join(b, 101).Revert().Error())
	require.NoError(t, tl.join(b, 100).Revert())

	n, err := tl.lot.GetUserAddressesCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	got, err := tl.lot.GetUserAddress(uint256.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = tl.lot.GetUserAddress(uint256.NewInt(2))
	assert.Equal(t, "OOB", err.Error())

	// fees stay in the contract
	assert.Equal(t, uint64(200), tl.balance(lotteryAddr))
	assert.Equal(t, uint64(101+99), tl.balance(b))
}

func TestParticipateFeeNotSet(t *testing.T) {
	tl := newTestLottery(t, 1_000_000)
	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.SetLotteryEntryFee(env, new(uint256.Int))
	})
	assert.Equal(t, "Fee not set", tl.join(datagen.RandAddress(), 0).Revert().Error())
}

func TestFullRound(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	players := []vela.Address{datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()}
	for _, p := range players {
		require.NoError(t, tl.join(p, 100).Revert())
	}

	id, r := tl.request()
	require.NoError(t, r.Revert())
	assert.Equal(t, uint64(1), id.Uint64())

	// price paid to the wrapper with the native payment extra args
	assert.Equal(t, uint64(50), tl.coord.paid.Uint64())
	assert.Equal(t, ExtraArgs(), tl.coord.extraArgs)
	assert.Equal(t, uint32(100000), tl.coord.gas)
	assert.Equal(t, uint16(3), tl.coord.conf)
	assert.Equal(t, uint32(1), tl.coord.words)
	assert.Equal(t, uint64(250), tl.balance(lotteryAddr))
	assert.Equal(t, uint64(50), tl.balance(wrapperAddr))

	require.Len(t, r.Logs, 1)
	assert.Equal(t, requestSentEvent.ID(), r.Logs[0].Topics[0])
	assert.Equal(t, vela.Uint256ToBytes32(id), r.Logs[0].Topics[1])

	paid, fulfilled, word, err := tl.lot.GetRequestStatus(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), paid.Uint64())
	assert.False(t, fulfilled)
	assert.True(t, word.IsZero())

	last, err := tl.lot.GetLastRequestID()
	require.NoError(t, err)
	assert.Equal(t, id, last)

	ts, err := tl.lot.LastRequestTimestamp()
	require.NoError(t, err)
	assert.Equal(t, uint64(startTime), ts)

	r = tl.fulfill(wrapperAddr, id, 7)
	require.NoError(t, r.Revert())

	// 7 mod 3 = 1, reward = 100 * 3 * 85 / 100
	assert.Equal(t, uint64(255), tl.tokenBalance(players[1]))
	assert.Equal(t, uint64(0), tl.tokenBalance(players[0]))
	supply, err := tl.tk.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(255), supply.Uint64())

	args := fulfilledLog(t, r)
	require.Len(t, args, 3)
	assert.Equal(t, []*big.Int{big.NewInt(7)}, args[0])
	assert.Equal(t, big.NewInt(50), args[1])
	assert.Equal(t, common.Address(players[1]), args[2])

	f, ok, err := DecodeFulfilled(lotteryAddr, r.Logs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, f.ID)
	assert.Equal(t, players[1], f.Winner)
	assert.Equal(t, uint64(50), f.Paid.Uint64())
	assert.Equal(t, []*uint256.Int{uint256.NewInt(7)}, f.Words)

	paid, fulfilled, word, err = tl.lot.GetRequestStatus(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), paid.Uint64())
	assert.True(t, fulfilled)
	assert.Equal(t, uint64(7), word.Uint64())

	accepting, err := tl.lot.AcceptingParticipants()
	require.NoError(t, err)
	assert.True(t, accepting)

	// participants persist unless reset on payout is enabled
	n, err := tl.lot.GetUserAddressesCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestRequestThrottle(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	tl.st.SetBalance(lotteryAddr, uint256.NewInt(1000))

	_, r := tl.request()
	require.NoError(t, r.Revert())

	tl.setTime(startTime + 14400 - 1)
	_, r = tl.request()
	assert.Equal(t, "Too soon", r.Revert().Error())
	assert.Equal(t, reverts.NewRequireError("Too soon").Bytes(), r.RevertData)

	tl.setTime(startTime + 14400)
	id, r := tl.request()
	require.NoError(t, r.Revert())
	assert.Equal(t, uint64(2), id.Uint64())

	ids, err := tl.lot.RequestIDs()
	require.NoError(t, err)
	assert.Equal(t, []*uint256.Int{uint256.NewInt(1), uint256.NewInt(2)}, ids)

	n, err := tl.lot.RequestCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestRequestRejects(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()

	// nothing to pay the oracle with
	_, r := tl.request()
	assert.Equal(t, "Insufficient balance", r.Revert().Error())

	tl.coord.price = new(uint256.Int)
	_, r = tl.request()
	assert.Equal(t, "Zero price", r.Revert().Error())

	n, err := tl.lot.RequestCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
	ts, err := tl.lot.LastRequestTimestamp()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), ts)

	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.SetVRFWrapper(env, datagen.RandAddress())
	})
	_, r = tl.request()
	assert.Equal(t, "No coordinator", r.Revert().Error())
}

func TestGetRequestPrice(t *testing.T) {
	tl := newTestLottery(t, 1_000_000)
	var price *uint256.Int
	tl.mustExec(datagen.RandAddress(), nil, func(l *Lottery, env *xenv.Environment) (err error) {
		price, err = l.GetRequestPrice(env)
		return
	})
	assert.Equal(t, uint64(50), price.Uint64())
}

func TestFulfillRejects(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	tl.st.SetBalance(lotteryAddr, uint256.NewInt(1000))
	id, r := tl.request()
	require.NoError(t, r.Revert())

	stranger := datagen.RandAddress()
	r = tl.fulfill(stranger, id, 7)
	assert.ErrorIs(t, r.Revert(), onlyWrapperError.New(stranger, wrapperAddr))
	assert.Equal(t,
		"OnlyVRFWrapperCanFulfill("+stranger.String()+", "+wrapperAddr.String()+")",
		r.Revert().Error())

	r = tl.fulfill(wrapperAddr, uint256.NewInt(5), 7)
	assert.Equal(t, "RequestNotFound(5)", r.Revert().Error())

	_, _, _, err := tl.lot.GetRequestStatus(uint256.NewInt(5))
	assert.ErrorIs(t, err, ErrRequestNotFound(uint256.NewInt(5)))
	assert.NotErrorIs(t, err, ErrRequestNotFound(uint256.NewInt(6)))
}

func TestDoubleFulfill(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	p := datagen.RandAddress()
	require.NoError(t, tl.join(p, 100).Revert())

	id, r := tl.request()
	require.NoError(t, r.Revert())
	require.NoError(t, tl.fulfill(wrapperAddr, id, 7).Revert())
	assert.Equal(t, uint64(85), tl.tokenBalance(p))

	r = tl.fulfill(wrapperAddr, id, 8)
	assert.Equal(t, "Already fulfilled", r.Revert().Error())
	assert.Empty(t, r.Logs)
	assert.Equal(t, uint64(85), tl.tokenBalance(p))

	_, _, word, err := tl.lot.GetRequestStatus(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), word.Uint64())
}

func TestFulfillNoParticipants(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	tl.st.SetBalance(lotteryAddr, uint256.NewInt(1000))
	id, r := tl.request()
	require.NoError(t, r.Revert())

	r = tl.fulfill(wrapperAddr, id, 7)
	require.NoError(t, r.Revert())

	args := fulfilledLog(t, r)
	assert.Equal(t, common.Address{}, args[2])

	_, fulfilled, _, err := tl.lot.GetRequestStatus(id)
	require.NoError(t, err)
	assert.True(t, fulfilled)

	accepting, err := tl.lot.AcceptingParticipants()
	require.NoError(t, err)
	assert.True(t, accepting)
}

func TestFulfillNoWords(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	p := datagen.RandAddress()
	require.NoError(t, tl.join(p, 100).Revert())
	id, r := tl.request()
	require.NoError(t, r.Revert())

	r = tl.fulfill(wrapperAddr, id)
	require.NoError(t, r.Revert())
	assert.Equal(t, uint64(0), tl.tokenBalance(p))

	_, fulfilled, word, err := tl.lot.GetRequestStatus(id)
	require.NoError(t, err)
	assert.True(t, fulfilled)
	assert.True(t, word.IsZero())
}

func TestFailedMintStillFulfills(t *testing.T) {
	// the reward of 255 exceeds the cap
	tl := newTestLottery(t, 200).configure()
	for range 3 {
		require.NoError(t, tl.join(datagen.RandAddress(), 100).Revert())
	}
	id, r := tl.request()
	require.NoError(t, r.Revert())

	r = tl.fulfill(wrapperAddr, id, 7)
	require.NoError(t, r.Revert())

	// the token's logs were dropped with the failed sub step
	require.Len(t, r.Logs, 1)
	args := fulfilledLog(t, r)
	assert.Equal(t, common.Address{}, args[2])

	supply, err := tl.tk.TotalSupply()
	require.NoError(t, err)
	assert.True(t, supply.IsZero())

	_, fulfilled, _, err := tl.lot.GetRequestStatus(id)
	require.NoError(t, err)
	assert.True(t, fulfilled)

	accepting, err := tl.lot.AcceptingParticipants()
	require.NoError(t, err)
	assert.True(t, accepting)
}

func TestFulfillTokenNotSet(t *testing.T) {
	tl := newTestLottery(t, 1_000_000)
	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.SetLotteryEntryFee(env, uint256.NewInt(100))
	})
	p := datagen.RandAddress()
	require.NoError(t, tl.join(p, 100).Revert())
	id, r := tl.request()
	require.NoError(t, r.Revert())

	r = tl.fulfill(wrapperAddr, id, 1)
	require.NoError(t, r.Revert())
	args := fulfilledLog(t, r)
	assert.Equal(t, common.Address{}, args[2])
}

func TestResetOnPayout(t *testing.T) {
	tl := newTestLottery(t, 1_000_000).configure()
	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.SetResetOnPayout(env, true)
	})
	p := datagen.RandAddress()
	require.NoError(t, tl.join(p, 100).Revert())

	id, r := tl.request()
	require.NoError(t, r.Revert())
	require.NoError(t, tl.fulfill(wrapperAddr, id, 3).Revert())

	n, err := tl.lot.GetUserAddressesCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	// the winner may enter the next round
	require.NoError(t, tl.join(p, 100).Revert())
}

func TestOwnerOnlyConfig(t *testing.T) {
	tl := newTestLottery(t, 1_000_000)
	stranger := datagen.RandAddress()

	r := tl.exec(stranger, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.SetLotteryEntryFee(env, uint256.NewInt(1))
	})
	assert.ErrorIs(t, r.Revert(), ownable.ErrUnauthorizedAccount(stranger))

	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		if err := l.SetLotteryIntervalHours(env, 1); err != nil {
			return err
		}
		return l.SetRequestConfig(env, 200000, 5, 2)
	})
	secs, err := tl.lot.LotteryInterval()
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), secs)

	gas, err := tl.lot.CallbackGasLimit()
	require.NoError(t, err)
	assert.Equal(t, uint32(200000), gas)
	conf, err := tl.lot.RequestConfirmations()
	require.NoError(t, err)
	assert.Equal(t, uint16(5), conf)
	words, err := tl.lot.NumWords()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), words)

	r = tl.exec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.SetRequestConfig(env, 1, 1, 0)
	})
	assert.Equal(t, errInvalidNumWords, r.Revert())

	r = tl.exec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.SetLotteryIntervalHours(env, ^uint64(0))
	})
	assert.Equal(t, errIntervalTooLong, r.Revert())

	newOwner := datagen.RandAddress()
	tl.mustExec(ownerAddr, nil, func(l *Lottery, env *xenv.Environment) error {
		return l.TransferOwnership(env, newOwner)
	})
	owner, err := tl.lot.Owner()
	require.NoError(t, err)
	assert.Equal(t, newOwner, owner)
}

func TestReceive(t *testing.T) {
	tl := newTestLottery(t, 1_000_000)
	sender := datagen.RandAddress()
	tl.st.SetBalance(sender, uint256.NewInt(10))

	r, err := tl.rt.Send(sender, lotteryAddr, uint256.NewInt(10))
	require.NoError(t, err)
	require.NoError(t, r.Revert())

	require.Len(t, r.Logs, 1)
	assert.Equal(t, receivedEvent.ID(), r.Logs[0].Topics[0])
	assert.Equal(t, vela.BytesToBytes32(sender.Bytes()), r.Logs[0].Topics[1])
	assert.Equal(t, uint64(10), tl.balance(lotteryAddr))
}

func TestExtraArgs(t *testing.T) {
	want := "92fd1338" +
		"00000000000000000000000000000000000000000000000000000000" +
		"00000001" +
		"00000000000000000000000000000000000000000000000000000000"
	assert.Equal(t, want, hex.EncodeToString(ExtraArgs()))
	assert.Len(t, ExtraArgs(), 64)
}
