// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lottery implements the VRF driven lottery contract.
//
// Entrants pay a fixed fee to join a round. After the configured interval anyone
// may buy a random value from the oracle; when the oracle calls back, the first
// word picks the winner, who is minted 85% of the pot in the reward token.
package lottery

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/velalabs/vela/abi"
	"github.com/velalabs/vela/builtin/gen"
	"github.com/velalabs/vela/builtin/lottery/participants"
	"github.com/velalabs/vela/builtin/lottery/requests"
	"github.com/velalabs/vela/builtin/ownable"
	"github.com/velalabs/vela/builtin/reverts"
	"github.com/velalabs/vela/builtin/solidity"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/metrics"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

var (
	logger = log.WithContext("pkg", "lottery")

	metricRequestCount   = metrics.LazyLoadCounter("lottery_request_count")
	metricFulfilledCount = metrics.LazyLoadCounterVec("lottery_fulfilled_count", []string{"outcome"})
	metricParticipants   = metrics.LazyLoadGauge("lottery_participants")
	metricWithdrawCount  = metrics.LazyLoadCounterVec("lottery_withdraw_count", []string{"asset"})
)

var ABI = func() *abi.ABI {
	a, err := abi.New(gen.MustAsset("compiled/Lottery.abi"))
	if err != nil {
		panic(fmt.Errorf("load lottery ABI: %w", err))
	}
	return a
}()

var (
	requestSentEvent      = ABI.MustEvent("RequestSent")
	requestFulfilledEvent = ABI.MustEvent("RequestFulfilled")
	receivedEvent         = ABI.MustEvent("Received")

	onlyWrapperError     = ABI.MustError("OnlyVRFWrapperCanFulfill")
	requestNotFoundError = ABI.MustError("RequestNotFound")
)

var (
	errAlreadyInitialized = reverts.NewRequireError("Already initialized")
	errTooSoon            = reverts.NewRequireError("Too soon")
	errZeroPrice          = requests.ErrZeroPaid
	errNoParticipants     = reverts.NewRequireError("No participants")
	errNoWords            = reverts.NewRequireError("No words")
	errNoWinner           = reverts.NewRequireError("No winner")
	errTokenNotSet        = reverts.NewRequireError("Token not set")
	errRewardOverflow     = reverts.NewRequireError("Reward overflow")
	errWithdrawInProgress = reverts.NewRequireError("Withdrawal in progress")
	errTransferFailed     = reverts.NewRequireError("Transfer failed")
	errInvalidNumWords    = reverts.NewRequireError("Invalid num words")
	errIntervalTooLong    = reverts.NewRequireError("Interval too long")
)

// ErrRequestNotFound is the revert for an id the lottery never requested.
func ErrRequestNotFound(id *uint256.Int) *reverts.ErrCustom {
	return requestNotFoundError.New(id)
}

var (
	slotOwner                = vela.BytesToBytes32([]byte("owner"))
	slotInitialized          = vela.BytesToBytes32([]byte("initialized"))
	slotWrapper              = vela.BytesToBytes32([]byte("vrf-wrapper"))
	slotToken                = vela.BytesToBytes32([]byte("erc20-token"))
	slotInterval             = vela.BytesToBytes32([]byte("interval"))
	slotLastRequestTimestamp = vela.BytesToBytes32([]byte("last-request-ts"))
	slotCallbackGasLimit     = vela.BytesToBytes32([]byte("callback-gas-limit"))
	slotRequestConfirmations = vela.BytesToBytes32([]byte("request-confirmations"))
	slotNumWords             = vela.BytesToBytes32([]byte("num-words"))
	slotResetOnPayout        = vela.BytesToBytes32([]byte("reset-on-payout"))
	slotWithdrawing          = vela.BytesToBytes32([]byte("withdrawing"))
	slotRequests             = vela.BytesToBytes32([]byte("requests"))
	slotParticipants         = vela.BytesToBytes32([]byte("participants"))
)

// Lottery binds the lottery contract at addr to a state.
type Lottery struct {
	addr  vela.Address
	state *state.State

	ownable              *ownable.Ownable
	initialized          *solidity.Bool
	wrapper              *solidity.Address
	token                *solidity.Address
	interval             *solidity.Uint64
	lastRequestTimestamp *solidity.Uint64
	callbackGasLimit     *solidity.Uint64
	requestConfirmations *solidity.Uint64
	numWords             *solidity.Uint64
	resetOnPayout        *solidity.Bool
	withdrawing          *solidity.Bool

	requests     *requests.Ledger
	participants *participants.Registry
}

func New(addr vela.Address, state *state.State) *Lottery {
	ctx := solidity.NewContext(addr, state)
	return &Lottery{
		addr:                 addr,
		state:                state,
		ownable:              ownable.New(ctx, slotOwner),
		initialized:          solidity.NewBool(ctx, slotInitialized),
		wrapper:              solidity.NewAddress(ctx, slotWrapper),
		token:                solidity.NewAddress(ctx, slotToken),
		interval:             solidity.NewUint64(ctx, slotInterval),
		lastRequestTimestamp: solidity.NewUint64(ctx, slotLastRequestTimestamp),
		callbackGasLimit:     solidity.NewUint64(ctx, slotCallbackGasLimit),
		requestConfirmations: solidity.NewUint64(ctx, slotRequestConfirmations),
		numWords:             solidity.NewUint64(ctx, slotNumWords),
		resetOnPayout:        solidity.NewBool(ctx, slotResetOnPayout),
		withdrawing:          solidity.NewBool(ctx, slotWithdrawing),
		requests:             requests.New(ctx, slotRequests),
		participants:         participants.New(ctx, slotParticipants),
	}
}

func (l *Lottery) Address() vela.Address { return l.addr }

// Initialize sets the owner, the oracle wrapper and the default parameters.
func (l *Lottery) Initialize(env *xenv.Environment, wrapper, owner vela.Address) error {
	initialized, err := l.initialized.Get()
	if err != nil {
		return err
	}
	if initialized {
		return errAlreadyInitialized
	}
	if err := l.ownable.Initialize(env, owner); err != nil {
		return err
	}
	l.wrapper.Set(wrapper)
	l.token.Set(vela.Address{})
	l.participants.SetFee(uint256.NewInt(vela.InitialEntryFee))
	l.participants.SetAccepting(true)
	l.interval.Set(vela.InitialLotteryIntervalHours * vela.SecondsPerHour)
	l.callbackGasLimit.Set(uint64(vela.InitialCallbackGasLimit))
	l.requestConfirmations.Set(uint64(vela.InitialRequestConfirmations))
	l.numWords.Set(uint64(vela.InitialNumWords))
	l.initialized.Set(true)
	return nil
}

// RequestRandomWords buys a random value from the oracle for the current round.
// It may be called by anyone once the interval since the previous request has passed.
func (l *Lottery) RequestRandomWords(env *xenv.Environment) (*uint256.Int, error) {
	now := env.BlockContext().Time
	last, err := l.lastRequestTimestamp.Get()
	if err != nil {
		return nil, err
	}
	interval, err := l.interval.Get()
	if err != nil {
		return nil, err
	}
	if next := last + interval; next < last || now < next {
		return nil, errTooSoon
	}

	gas, confirmations, words, err := l.RequestConfig()
	if err != nil {
		return nil, err
	}
	id, price, err := l.quoteAndRequest(env, gas, confirmations, words)
	if err != nil {
		return nil, err
	}

	if err := l.requests.Add(id, price); err != nil {
		return nil, err
	}
	l.lastRequestTimestamp.Set(now)

	env.Log(requestSentEvent, []vela.Bytes32{vela.Uint256ToBytes32(id)}, words)
	metricRequestCount().Add(1)
	logger.Debug("randomness requested", "id", id, "price", price, "words", words)
	return id, nil
}

// GetRequestPrice returns the current native price of one request.
func (l *Lottery) GetRequestPrice(env *xenv.Environment) (*uint256.Int, error) {
	return l.quote(env)
}

// RawFulfillRandomWords is the oracle callback. Only the configured wrapper may call it,
// once per request.
func (l *Lottery) RawFulfillRandomWords(env *xenv.Environment, id *uint256.Int, words []*uint256.Int) error {
	want, err := l.wrapper.Get()
	if err != nil {
		return err
	}
	if have := env.Caller(); have != want {
		return onlyWrapperError.New(have, want)
	}
	return l.fulfillRandomWords(env, id, words)
}

func (l *Lottery) fulfillRandomWords(env *xenv.Environment, id *uint256.Int, words []*uint256.Int) error {
	_, found, err := l.requests.Get(id)
	if err != nil {
		return err
	}
	if !found {
		return ErrRequestNotFound(id)
	}
	req, err := l.requests.Fulfill(id, words)
	if err != nil {
		return err
	}

	l.participants.SetAccepting(false)

	var winner vela.Address
	if err := env.Isolate(func() error {
		w, err := l.decideWinner(env, words)
		if err != nil {
			return err
		}
		winner = w
		return nil
	}); err != nil {
		if !reverts.IsRevertErr(err) {
			return err
		}
		logger.Debug("no reward paid", "id", id, "reason", err)
	}

	env.Log(requestFulfilledEvent, []vela.Bytes32{vela.Uint256ToBytes32(id)}, words, req.Paid, winner)

	outcome := "no-winner"
	if !winner.IsZero() {
		outcome = "paid"
		reset, err := l.resetOnPayout.Get()
		if err != nil {
			return err
		}
		if reset {
			if err := l.participants.Reset(); err != nil {
				return err
			}
			metricParticipants().Set(0)
		}
	}
	l.participants.SetAccepting(true)

	metricFulfilledCount().AddWithLabel(1, map[string]string{"outcome": outcome})
	logger.Info("request fulfilled", "id", id, "winner", winner)
	return nil
}

// GetRequestStatus returns the paid amount, fulfillment flag and first random word of id.
func (l *Lottery) GetRequestStatus(id *uint256.Int) (paid *uint256.Int, fulfilled bool, randomWord *uint256.Int, err error) {
	req, found, err := l.requests.Get(id)
	if err != nil {
		return nil, false, nil, err
	}
	if !found {
		return nil, false, nil, ErrRequestNotFound(id)
	}
	return req.Paid, req.Fulfilled, req.RandomValue, nil
}

func (l *Lottery) GetLastRequestID() (*uint256.Int, error) {
	return l.requests.LastID()
}

func (l *Lottery) RequestIDs() ([]*uint256.Int, error) {
	return l.requests.IDs()
}

func (l *Lottery) RequestCount() (uint64, error) {
	return l.requests.Count()
}

// ParticipateInLottery enters the caller into the current round. The call value must equal the entry fee.
func (l *Lottery) ParticipateInLottery(env *xenv.Environment) error {
	if err := l.participants.Join(env.Caller(), env.Value()); err != nil {
		return err
	}
	if n, err := l.participants.Count(); err == nil {
		metricParticipants().Set(int64(n))
	}
	return nil
}

func (l *Lottery) GetUserAddressesCount() (uint64, error) {
	return l.participants.Count()
}

func (l *Lottery) GetUserAddress(index *uint256.Int) (vela.Address, error) {
	return l.participants.At(index)
}

// Participants returns the entrants of the current round in join order.
func (l *Lottery) Participants() ([]vela.Address, error) {
	return l.participants.All()
}

func (l *Lottery) AcceptingParticipants() (bool, error) {
	return l.participants.Accepting()
}

// Receive records plain value transfers to the lottery.
func (l *Lottery) Receive(env *xenv.Environment) error {
	env.Log(receivedEvent, []vela.Bytes32{vela.BytesToBytes32(env.Caller().Bytes())}, env.Value())
	return nil
}

// ExtraArgs returns the oracle extra args selecting native payment.
func ExtraArgs() []byte {
	args := make([]byte, 64)
	copy(args, extraArgsV1Tag[:])
	args[35] = 1
	return args
}

// bytes4(keccak256("VRF ExtraArgsV1"))
var extraArgsV1Tag = [4]byte{0x92, 0xfd, 0x13, 0x38}
