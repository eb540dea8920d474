// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vrfwrapper implements a local randomness oracle.
//
// Consumers pay a native price to request random words. The operator later
// fulfills each request with an ECVRF proof over the request, and the words
// derived from the proof output are delivered to the consumer's callback.
package vrfwrapper

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/vechain/go-ecvrf"

	"github.com/velalabs/vela/abi"
	"github.com/velalabs/vela/builtin/gen"
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
	logger = log.WithContext("pkg", "vrfwrapper")

	metricRequestCount   = metrics.LazyLoadCounter("vrf_request_count")
	metricFulfilledCount = metrics.LazyLoadCounterVec("vrf_fulfilled_count", []string{"success"})
)

var ABI = func() *abi.ABI {
	a, err := abi.New(gen.MustAsset("compiled/VRFWrapper.abi"))
	if err != nil {
		panic(fmt.Errorf("load vrf wrapper ABI: %w", err))
	}
	return a
}()

var (
	requestedEvent = ABI.MustEvent("WrapperRequested")
	fulfilledEvent = ABI.MustEvent("WrapperFulfilled")

	requestNotFoundError = ABI.MustError("RequestNotFound")

	errAlreadyInitialized  = reverts.NewRequireError("Already initialized")
	errInvalidExtraArgs    = reverts.NewRequireError("Invalid extra args")
	errNativePayment       = reverts.NewRequireError("Native payment required")
	errInvalidNumWords     = reverts.NewRequireError("Invalid num words")
	errInsufficientPayment = reverts.NewRequireError("Insufficient payment")
	errPriceOverflow       = reverts.NewRequireError("Price overflow")
	errAlreadyFulfilled    = reverts.NewRequireError("Already fulfilled")
	errNotEnoughConfirm    = reverts.NewRequireError("Not enough confirmations")
	errNoOperatorKey       = reverts.NewRequireError("No operator key")
	errNotConsumer         = reverts.NewRequireError("Not a consumer")
	errInvalidPublicKey    = reverts.NewRequireError("Invalid public key")
	errOperatorKeyMismatch = reverts.NewRequireError("Operator key mismatch")
	errInvalidProof        = reverts.NewRequireError("Invalid proof")
	errRequestNotFulfilled = reverts.NewRequireError("Not fulfilled")
)

// bytes4(keccak256("VRF ExtraArgsV1"))
var extraArgsV1Tag = [4]byte{0x92, 0xfd, 0x13, 0x38}

// ErrRequestNotFound is the revert for an id the wrapper never issued.
func ErrRequestNotFound(id *uint256.Int) *reverts.ErrCustom {
	return requestNotFoundError.New(id)
}

// Consumer receives the random words of its requests.
type Consumer interface {
	RawFulfillRandomWords(env *xenv.Environment, requestID *uint256.Int, words []*uint256.Int) error
}

// Request is a randomness request held by the wrapper.
type Request struct {
	Consumer         vela.Address
	CallbackGasLimit uint32
	Confirmations    uint16
	NumWords         uint32
	Paid             *uint256.Int
	BlockNumber      uint32
	Fulfilled        bool
}

// Pricing holds the native price parameters of a request.
type Pricing struct {
	GasPrice    *uint256.Int
	OverheadGas *uint256.Int
	PerWordGas  *uint256.Int
	FlatFee     *uint256.Int
}

var (
	slotOwner       = vela.BytesToBytes32([]byte("owner"))
	slotInitialized = vela.BytesToBytes32([]byte("initialized"))
	slotGasPrice    = vela.BytesToBytes32([]byte("gas-price"))
	slotOverheadGas = vela.BytesToBytes32([]byte("overhead-gas"))
	slotPerWordGas  = vela.BytesToBytes32([]byte("per-word-gas"))
	slotFlatFee     = vela.BytesToBytes32([]byte("flat-fee"))
	slotCounter     = vela.BytesToBytes32([]byte("counter"))
	slotRequests    = vela.BytesToBytes32([]byte("requests"))
	slotProofs      = vela.BytesToBytes32([]byte("proofs"))
	slotPublicKey   = vela.BytesToBytes32([]byte("public-key"))
)

type Wrapper struct {
	addr  vela.Address
	state *state.State
	key   *ecdsa.PrivateKey

	ownable     *ownable.Ownable
	initialized *solidity.Bool
	gasPrice    *solidity.Uint256
	overheadGas *solidity.Uint256
	perWordGas  *solidity.Uint256
	flatFee     *solidity.Uint256
	counter     *solidity.Uint256
	requests    *solidity.Mapping[vela.Bytes32, *Request]
	proofs      *solidity.Mapping[vela.Bytes32, []byte]
	publicKey   *solidity.Bytes
}

func New(addr vela.Address, state *state.State) *Wrapper {
	ctx := solidity.NewContext(addr, state)
	return &Wrapper{
		addr:        addr,
		state:       state,
		ownable:     ownable.New(ctx, slotOwner),
		initialized: solidity.NewBool(ctx, slotInitialized),
		gasPrice:    solidity.NewUint256(ctx, slotGasPrice),
		overheadGas: solidity.NewUint256(ctx, slotOverheadGas),
		perWordGas:  solidity.NewUint256(ctx, slotPerWordGas),
		flatFee:     solidity.NewUint256(ctx, slotFlatFee),
		counter:     solidity.NewUint256(ctx, slotCounter),
		requests:    solidity.NewMapping[vela.Bytes32, *Request](ctx, slotRequests),
		proofs:      solidity.NewMapping[vela.Bytes32, []byte](ctx, slotProofs),
		publicKey:   solidity.NewBytes(ctx, slotPublicKey),
	}
}

// WithKey sets the operator's VRF secret key used to fulfill requests.
// The key never enters the state.
func (w *Wrapper) WithKey(key *ecdsa.PrivateKey) *Wrapper {
	w.key = key
	return w
}

func (w *Wrapper) Address() vela.Address { return w.addr }

// Initialize sets the operator, the pricing and the operator's VRF public key.
func (w *Wrapper) Initialize(env *xenv.Environment, operator vela.Address, pricing Pricing, pub *ecdsa.PublicKey) error {
	initialized, err := w.initialized.Get()
	if err != nil {
		return err
	}
	if initialized {
		return errAlreadyInitialized
	}
	if pub == nil {
		return errInvalidPublicKey
	}
	if err := w.ownable.Initialize(env, operator); err != nil {
		return err
	}
	if err := w.publicKey.Set(crypto.CompressPubkey(pub)); err != nil {
		return err
	}
	w.setPricing(pricing)
	w.initialized.Set(true)
	return nil
}

func (w *Wrapper) setPricing(p Pricing) {
	set := func(slot *solidity.Uint256, v *uint256.Int) {
		if v == nil {
			v = new(uint256.Int)
		}
		slot.Set(v)
	}
	set(w.gasPrice, p.GasPrice)
	set(w.overheadGas, p.OverheadGas)
	set(w.perWordGas, p.PerWordGas)
	set(w.flatFee, p.FlatFee)
}

func (w *Wrapper) SetPricing(env *xenv.Environment, p Pricing) error {
	if err := w.ownable.OnlyOwner(env); err != nil {
		return err
	}
	w.setPricing(p)
	return nil
}

func (w *Wrapper) Pricing() (p Pricing, err error) {
	if p.GasPrice, err = w.gasPrice.Get(); err != nil {
		return
	}
	if p.OverheadGas, err = w.overheadGas.Get(); err != nil {
		return
	}
	if p.PerWordGas, err = w.perWordGas.Get(); err != nil {
		return
	}
	p.FlatFee, err = w.flatFee.Get()
	return
}

func (w *Wrapper) Owner() (vela.Address, error) {
	return w.ownable.Owner()
}

// CalculateRequestPriceNative returns (gas + overhead + words * perWord) * gasPrice + flatFee.
func (w *Wrapper) CalculateRequestPriceNative(callbackGasLimit, numWords uint32) (*uint256.Int, error) {
	p, err := w.Pricing()
	if err != nil {
		return nil, err
	}
	gas, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(uint64(numWords)), p.PerWordGas)
	if overflow {
		return nil, errPriceOverflow
	}
	if _, overflow = gas.AddOverflow(gas, p.OverheadGas); overflow {
		return nil, errPriceOverflow
	}
	if _, overflow = gas.AddOverflow(gas, uint256.NewInt(uint64(callbackGasLimit))); overflow {
		return nil, errPriceOverflow
	}
	price, overflow := gas.MulOverflow(gas, p.GasPrice)
	if overflow {
		return nil, errPriceOverflow
	}
	if _, overflow = price.AddOverflow(price, p.FlatFee); overflow {
		return nil, errPriceOverflow
	}
	return price, nil
}

// RequestRandomWordsInNative registers a request paid with the call value and returns its id.
func (w *Wrapper) RequestRandomWordsInNative(
	env *xenv.Environment,
	callbackGasLimit uint32,
	requestConfirmations uint16,
	numWords uint32,
	extraArgs []byte,
) (*uint256.Int, error) {
	native, err := parseExtraArgs(extraArgs)
	if err != nil {
		return nil, err
	}
	if !native {
		return nil, errNativePayment
	}
	if numWords == 0 || numWords > vela.MaxNumWords {
		return nil, errInvalidNumWords
	}
	price, err := w.CalculateRequestPriceNative(callbackGasLimit, numWords)
	if err != nil {
		return nil, err
	}
	paid := env.Value()
	if paid.Lt(price) {
		return nil, errInsufficientPayment
	}

	id, err := w.counter.Get()
	if err != nil {
		return nil, err
	}
	id.AddUint64(id, 1)
	w.counter.Set(id)

	consumer := env.Caller()
	if err := w.requests.Set(vela.Uint256ToBytes32(id), &Request{
		Consumer:         consumer,
		CallbackGasLimit: callbackGasLimit,
		Confirmations:    requestConfirmations,
		NumWords:         numWords,
		Paid:             paid,
		BlockNumber:      env.BlockContext().Number,
	}); err != nil {
		return nil, err
	}

	env.Log(requestedEvent, []vela.Bytes32{
		vela.Uint256ToBytes32(id),
		vela.BytesToBytes32(consumer.Bytes()),
	}, paid)
	metricRequestCount().Add(1)
	logger.Debug("randomness requested", "id", id, "consumer", consumer, "paid", paid)
	return id, nil
}

// parseExtraArgs decodes the V1 extra args: the tag followed by the abi encoded native payment flag.
func parseExtraArgs(b []byte) (nativePayment bool, err error) {
	if len(b) < 36 || [4]byte(b[:4]) != extraArgsV1Tag {
		return false, errInvalidExtraArgs
	}
	flag := new(uint256.Int).SetBytes32(b[4:36])
	if flag.GtUint64(1) {
		return false, errInvalidExtraArgs
	}
	return flag.IsUint64() && flag.Uint64() == 1, nil
}

// Request returns the request with the given id.
func (w *Wrapper) Request(id *uint256.Int) (*Request, error) {
	req, err := w.requests.Get(vela.Uint256ToBytes32(id))
	if err != nil {
		return nil, err
	}
	if req.Consumer.IsZero() {
		return nil, ErrRequestNotFound(id)
	}
	if req.Paid == nil {
		req.Paid = new(uint256.Int)
	}
	return req, nil
}

// Counter returns the id of the latest request.
func (w *Wrapper) Counter() (*uint256.Int, error) {
	return w.counter.Get()
}

// Pending returns the ids of requests not fulfilled yet, oldest first.
func (w *Wrapper) Pending() ([]*uint256.Int, error) {
	n, err := w.counter.Get()
	if err != nil {
		return nil, err
	}
	if !n.IsUint64() {
		return nil, errors.New("request counter out of range")
	}
	var ids []*uint256.Int
	for i := uint64(1); i <= n.Uint64(); i++ {
		id := uint256.NewInt(i)
		req, err := w.Request(id)
		if err != nil {
			return nil, err
		}
		if !req.Fulfilled {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Fulfillment is the outcome of a fulfilled request.
type Fulfillment struct {
	Words   []*uint256.Int
	Proof   []byte
	Success bool
}

// Fulfill proves the randomness of request id and delivers the words to its consumer.
// Only the operator may fulfill. A failing consumer callback does not undo the fulfillment.
func (w *Wrapper) Fulfill(env *xenv.Environment, id *uint256.Int) (*Fulfillment, error) {
	if err := w.ownable.OnlyOwner(env); err != nil {
		return nil, err
	}
	if w.key == nil {
		return nil, errNoOperatorKey
	}
	req, err := w.Request(id)
	if err != nil {
		return nil, err
	}
	if req.Fulfilled {
		return nil, errAlreadyFulfilled
	}
	if uint64(env.BlockContext().Number) < uint64(req.BlockNumber)+uint64(req.Confirmations) {
		return nil, errNotEnoughConfirm
	}

	pub, err := w.PublicKey()
	if err != nil {
		return nil, err
	}
	if !pub.Equal(&w.key.PublicKey) {
		return nil, errOperatorKeyMismatch
	}

	beta, proof, err := ecvrf.Secp256k1Sha256Tai.Prove(w.key, alpha(id, req))
	if err != nil {
		return nil, errors.Wrap(err, "vrf prove")
	}
	words := expand(beta, req.NumWords)

	req.Fulfilled = true
	if err := w.requests.Set(vela.Uint256ToBytes32(id), req); err != nil {
		return nil, err
	}
	if err := w.proofs.Set(vela.Uint256ToBytes32(id), proof); err != nil {
		return nil, err
	}

	cbErr := env.Call(req.Consumer, nil, func(env *xenv.Environment) error {
		c, ok := env.Contract(env.To())
		if !ok {
			return errNotConsumer
		}
		consumer, ok := c.(Consumer)
		if !ok {
			return errNotConsumer
		}
		return consumer.RawFulfillRandomWords(env, id, words)
	})
	if cbErr != nil && !reverts.IsRevertErr(cbErr) {
		return nil, cbErr
	}
	success := cbErr == nil
	if !success {
		logger.Warn("consumer callback failed", "id", id, "consumer", req.Consumer, "reason", cbErr)
	}

	env.Log(fulfilledEvent, []vela.Bytes32{vela.Uint256ToBytes32(id)}, success)
	metricFulfilledCount().AddWithLabel(1, map[string]string{"success": fmt.Sprint(success)})
	return &Fulfillment{Words: words, Proof: proof, Success: success}, nil
}

// Proof returns the stored VRF proof of a fulfilled request.
func (w *Wrapper) Proof(id *uint256.Int) ([]byte, error) {
	return w.proofs.Get(vela.Uint256ToBytes32(id))
}

// PublicKey returns the operator's VRF public key.
func (w *Wrapper) PublicKey() (*ecdsa.PublicKey, error) {
	raw, err := w.publicKey.Get()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errInvalidPublicKey
	}
	pub, err := crypto.DecompressPubkey(raw)
	if err != nil {
		return nil, errInvalidPublicKey
	}
	return pub, nil
}

// VerifyProof checks proof against request id and returns the words it yields.
func (w *Wrapper) VerifyProof(id *uint256.Int, proof []byte) ([]*uint256.Int, error) {
	req, err := w.Request(id)
	if err != nil {
		return nil, err
	}
	if !req.Fulfilled {
		return nil, errRequestNotFulfilled
	}
	pub, err := w.PublicKey()
	if err != nil {
		return nil, err
	}
	beta, err := ecvrf.Secp256k1Sha256Tai.Verify(pub, alpha(id, req), proof)
	if err != nil {
		return nil, errInvalidProof
	}
	return expand(beta, req.NumWords), nil
}

// alpha is the VRF input of a request: keccak(id, consumer, request block number).
func alpha(id *uint256.Int, req *Request) []byte {
	var num [4]byte
	binary.BigEndian.PutUint32(num[:], req.BlockNumber)
	idBytes := id.Bytes32()
	return vela.Keccak256(idBytes[:], req.Consumer.Bytes(), num[:]).Bytes()
}

// expand derives n words from the VRF output as keccak(beta, i).
func expand(beta []byte, n uint32) []*uint256.Int {
	words := make([]*uint256.Int, 0, n)
	for i := range n {
		idx := uint256.NewInt(uint64(i)).Bytes32()
		words = append(words, vela.Keccak256(beta, idx[:]).Uint256())
	}
	return words
}
