// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

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
	logger = log.WithContext("pkg", "token")

	metricMintCount   = metrics.LazyLoadCounterVec("token_mint_count", []string{"result"})
	metricTotalSupply = metrics.LazyLoadGauge("token_total_supply")
)

// ABI is the event and error set of the token.
var ABI = func() *abi.ABI {
	a, err := abi.New(gen.MustAsset("compiled/Token.abi"))
	if err != nil {
		panic(fmt.Errorf("load token ABI: %w", err))
	}
	return a
}()

var (
	transferEvent = ABI.MustEvent("Transfer")
	approvalEvent = ABI.MustEvent("Approval")

	exceededCapError           = ABI.MustError("ERC20ExceededCap")
	invalidCapError            = ABI.MustError("ERC20InvalidCap")
	insufficientBalanceError   = ABI.MustError("ERC20InsufficientBalance")
	invalidSenderError         = ABI.MustError("ERC20InvalidSender")
	invalidReceiverError       = ABI.MustError("ERC20InvalidReceiver")
	insufficientAllowanceError = ABI.MustError("ERC20InsufficientAllowance")
	invalidApproverError       = ABI.MustError("ERC20InvalidApprover")
	invalidSpenderError        = ABI.MustError("ERC20InvalidSpender")

	errAlreadyInitialized = reverts.NewRequireError("Already initialized")
)

var (
	slotOwner            = vela.BytesToBytes32([]byte("owner"))
	slotInitialized      = vela.BytesToBytes32([]byte("initialized"))
	slotName             = vela.BytesToBytes32([]byte("name"))
	slotSymbol           = vela.BytesToBytes32([]byte("symbol"))
	slotCap              = vela.BytesToBytes32([]byte("cap"))
	slotTotalSupply      = vela.BytesToBytes32([]byte("total-supply"))
	slotBalances         = vela.BytesToBytes32([]byte("balances"))
	slotAllowances       = vela.BytesToBytes32([]byte("allowances"))
	slotAuthorizedMinter = vela.BytesToBytes32([]byte("authorized-minter"))
	slotMinting          = vela.BytesToBytes32([]byte("minting"))
)

// Token is a fungible token whose total supply never exceeds its cap.
// Minting is open to the owner and one authorized minter.
type Token struct {
	addr  vela.Address
	state *state.State

	ownable          *ownable.Ownable
	initialized      *solidity.Bool
	name             *solidity.String
	symbol           *solidity.String
	cap              *solidity.Uint256
	totalSupply      *solidity.Uint256
	balances         *solidity.Mapping[vela.Address, *uint256.Int]
	allowances       *solidity.Mapping[vela.Bytes32, *uint256.Int]
	authorizedMinter *solidity.Address
	minting          *solidity.Bool
}

// New create a new instance.
func New(addr vela.Address, state *state.State) *Token {
	ctx := solidity.NewContext(addr, state)
	return &Token{
		addr:             addr,
		state:            state,
		ownable:          ownable.New(ctx, slotOwner),
		initialized:      solidity.NewBool(ctx, slotInitialized),
		name:             solidity.NewString(ctx, slotName),
		symbol:           solidity.NewString(ctx, slotSymbol),
		cap:              solidity.NewUint256(ctx, slotCap),
		totalSupply:      solidity.NewUint256(ctx, slotTotalSupply),
		balances:         solidity.NewMapping[vela.Address, *uint256.Int](ctx, slotBalances),
		allowances:       solidity.NewMapping[vela.Bytes32, *uint256.Int](ctx, slotAllowances),
		authorizedMinter: solidity.NewAddress(ctx, slotAuthorizedMinter),
		minting:          solidity.NewBool(ctx, slotMinting),
	}
}

// Address returns the contract address.
func (t *Token) Address() vela.Address { return t.addr }

// Initialize sets metadata, cap and owner once.
func (t *Token) Initialize(env *xenv.Environment, name, symbol string, cap *uint256.Int, owner vela.Address) error {
	initialized, err := t.initialized.Get()
	if err != nil {
		return err
	}
	if initialized {
		return errAlreadyInitialized
	}
	if cap.IsZero() {
		return invalidCapError.New(new(uint256.Int))
	}
	if err := t.name.Set(name); err != nil {
		return err
	}
	if err := t.symbol.Set(symbol); err != nil {
		return err
	}
	t.cap.Set(cap)
	if err := t.ownable.Initialize(env, owner); err != nil {
		return err
	}
	t.initialized.Set(true)
	return nil
}

// Mint creates amount tokens for account, keeping total supply within the cap.
// Only the owner and the authorized minter may mint.
func (t *Token) Mint(env *xenv.Environment, account vela.Address, amount *uint256.Int) (err error) {
	caller := env.Caller()

	minting, err := t.minting.Get()
	if err != nil {
		return err
	}
	if minting {
		return invalidSenderError.New(caller)
	}
	t.minting.Set(true)
	defer t.minting.Set(false)

	defer func() {
		result := "ok"
		if err != nil {
			result = "rejected"
		}
		metricMintCount().AddWithLabel(1, map[string]string{"result": result})
	}()

	if err := t.checkMinter(caller); err != nil {
		return err
	}

	supply, err := t.totalSupply.Get()
	if err != nil {
		return err
	}
	maxSupply, err := t.cap.Get()
	if err != nil {
		return err
	}
	if _, overflow := supply.AddOverflow(supply, amount); overflow {
		panic("new supply should not exceed uint256 max")
	}
	if supply.Gt(maxSupply) {
		return exceededCapError.New(supply, maxSupply)
	}

	if account.IsZero() {
		return invalidReceiverError.New(vela.Address{})
	}
	if err := t.update(env, vela.Address{}, account, amount); err != nil {
		return err
	}
	logger.Debug("minted", "account", account, "amount", amount, "supply", supply)
	return nil
}

// gaugeValue clamps v into the int64 range of a gauge.
func gaugeValue(v *uint256.Int) int64 {
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v.Uint64())
}

func (t *Token) checkMinter(caller vela.Address) error {
	owner, err := t.ownable.Owner()
	if err != nil {
		return err
	}
	if caller == owner {
		return nil
	}
	minter, err := t.authorizedMinter.Get()
	if err != nil {
		return err
	}
	if minter.IsZero() || caller != minter {
		return ownable.ErrUnauthorizedAccount(caller)
	}
	return nil
}

// update moves value from one account to another, the zero address mints or burns.
func (t *Token) update(env *xenv.Environment, from, to vela.Address, value *uint256.Int) error {
	supply, err := t.totalSupply.Get()
	if err != nil {
		return err
	}

	if from.IsZero() {
		// the cap check already rules out overflow for mints
		supply.Add(supply, value)
	} else {
		bal, err := t.BalanceOf(from)
		if err != nil {
			return err
		}
		if bal.Lt(value) {
			return insufficientBalanceError.New(from, bal, value)
		}
		if err := t.balances.Set(from, bal.Sub(bal, value)); err != nil {
			return err
		}
	}

	if to.IsZero() {
		supply.Sub(supply, value)
	} else {
		bal, err := t.BalanceOf(to)
		if err != nil {
			return err
		}
		if err := t.balances.Set(to, bal.Add(bal, value)); err != nil {
			return err
		}
	}

	t.totalSupply.Set(supply)
	metricTotalSupply().Set(gaugeValue(supply))

	env.Log(transferEvent, []vela.Bytes32{
		vela.BytesToBytes32(from.Bytes()),
		vela.BytesToBytes32(to.Bytes()),
	}, value)
	return nil
}

// Transfer moves value from the caller to to.
func (t *Token) Transfer(env *xenv.Environment, to vela.Address, value *uint256.Int) (bool, error) {
	if err := t.transfer(env, env.Caller(), to, value); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) transfer(env *xenv.Environment, from, to vela.Address, value *uint256.Int) error {
	if from.IsZero() {
		return invalidSenderError.New(vela.Address{})
	}
	if to.IsZero() {
		return invalidReceiverError.New(vela.Address{})
	}
	return t.update(env, from, to, value)
}

// Approve sets the allowance of spender over the caller's tokens.
func (t *Token) Approve(env *xenv.Environment, spender vela.Address, value *uint256.Int) (bool, error) {
	if err := t.approve(env, env.Caller(), spender, value, true); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) approve(env *xenv.Environment, owner, spender vela.Address, value *uint256.Int, emit bool) error {
	if owner.IsZero() {
		return invalidApproverError.New(vela.Address{})
	}
	if spender.IsZero() {
		return invalidSpenderError.New(vela.Address{})
	}
	if err := t.allowances.Set(allowanceKey(owner, spender), value); err != nil {
		return err
	}
	if emit {
		env.Log(approvalEvent, []vela.Bytes32{
			vela.BytesToBytes32(owner.Bytes()),
			vela.BytesToBytes32(spender.Bytes()),
		}, value)
	}
	return nil
}

// TransferFrom moves value from from to to using the caller's allowance.
func (t *Token) TransferFrom(env *xenv.Environment, from, to vela.Address, value *uint256.Int) (bool, error) {
	if err := t.spendAllowance(env, from, env.Caller(), value); err != nil {
		return false, err
	}
	if err := t.transfer(env, from, to, value); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) spendAllowance(env *xenv.Environment, owner, spender vela.Address, value *uint256.Int) error {
	current, err := t.Allowance(owner, spender)
	if err != nil {
		return err
	}
	// max allowance is never decreased
	if current.Eq(new(uint256.Int).SetAllOne()) {
		return nil
	}
	if current.Lt(value) {
		return insufficientAllowanceError.New(spender, current, value)
	}
	return t.approve(env, owner, spender, current.Sub(current, value), false)
}

// Burn destroys value tokens of the caller.
func (t *Token) Burn(env *xenv.Environment, value *uint256.Int) error {
	if env.Caller().IsZero() {
		return invalidSenderError.New(vela.Address{})
	}
	return t.update(env, env.Caller(), vela.Address{}, value)
}

// BurnFrom destroys value tokens of account using the caller's allowance.
func (t *Token) BurnFrom(env *xenv.Environment, account vela.Address, value *uint256.Int) error {
	if err := t.spendAllowance(env, account, env.Caller(), value); err != nil {
		return err
	}
	if account.IsZero() {
		return invalidSenderError.New(vela.Address{})
	}
	return t.update(env, account, vela.Address{}, value)
}

// SetAuthorizedMinter lets the owner grant minting to another account, the zero address revokes it.
func (t *Token) SetAuthorizedMinter(env *xenv.Environment, minter vela.Address) error {
	if err := t.ownable.OnlyOwner(env); err != nil {
		return err
	}
	t.authorizedMinter.Set(minter)
	logger.Info("authorized minter changed", "minter", minter)
	return nil
}

func (t *Token) TransferOwnership(env *xenv.Environment, newOwner vela.Address) error {
	return t.ownable.TransferOwnership(env, newOwner)
}

func (t *Token) RenounceOwnership(env *xenv.Environment) error {
	return t.ownable.RenounceOwnership(env)
}

func (t *Token) Owner() (vela.Address, error) {
	return t.ownable.Owner()
}

func (t *Token) Name() (string, error) {
	return t.name.Get()
}

func (t *Token) Symbol() (string, error) {
	return t.symbol.Get()
}

func (t *Token) Decimals() uint8 {
	return vela.TokenDecimals
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) Cap() (*uint256.Int, error) {
	return t.cap.Get()
}

func (t *Token) BalanceOf(account vela.Address) (*uint256.Int, error) {
	return t.balances.Get(account)
}

func (t *Token) Allowance(owner, spender vela.Address) (*uint256.Int, error) {
	return t.allowances.Get(allowanceKey(owner, spender))
}

func (t *Token) AuthorizedMinter() (vela.Address, error) {
	return t.authorizedMinter.Get()
}

func allowanceKey(owner, spender vela.Address) vela.Bytes32 {
	return vela.Keccak256(owner.Bytes(), spender.Bytes())
}
