// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/builtin/lottery"
	"github.com/velalabs/vela/builtin/token"
	"github.com/velalabs/vela/builtin/vrfwrapper"
	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/genesis"
	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/packer"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/state"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

// LaunchTime is the genesis time of test chains.
const LaunchTime uint64 = 1_700_000_000

// Chain is an in-memory chain with the token, the wrapper and the lottery deployed.
// The owner also operates the oracle.
type Chain struct {
	db     *lvldb.LevelDB
	chain  *chain.Chain
	packer *packer.Packer
	config *genesis.Config
	vrfKey *ecdsa.PrivateKey
}

// DevAccounts returns the prefunded accounts of the default config. The first one is the owner.
func DevAccounts() []vela.Address {
	accounts := make([]vela.Address, 10)
	for i := range accounts {
		accounts[i] = vela.BytesToAddress([]byte(fmt.Sprintf("dev-account-%d", i)))
	}
	return accounts
}

// DefaultConfig deploys with an entry fee of 100, a one hour interval, no confirmations
// and a wrapper quoting 1000 per request. The lottery is prefunded to pay for randomness.
func DefaultConfig() *genesis.Config {
	accounts := DevAccounts()
	cfg := genesis.DevConfig(accounts[0], LaunchTime)
	hours := uint64(1)
	confirmations := uint16(0)
	cfg.Lottery.EntryFee = genesis.NewAmount(100)
	cfg.Lottery.IntervalHours = &hours
	cfg.Lottery.RequestConfirmations = &confirmations
	cfg.Lottery.CallbackGasLimit = 900
	cfg.Wrapper = genesis.WrapperConfig{
		GasPrice:    genesis.NewAmount(1),
		OverheadGas: genesis.NewAmount(50),
		PerWordGas:  genesis.NewAmount(50),
		FlatFee:     genesis.NewAmount(0),
	}
	for _, addr := range accounts {
		cfg.Accounts = append(cfg.Accounts, genesis.Account{Address: addr, Balance: genesis.NewAmount(1e18)})
	}
	cfg.Accounts = append(cfg.Accounts, genesis.Account{Address: builtin.Lottery.Address, Balance: genesis.NewAmount(1e6)})
	return cfg
}

// NewDefault creates a Chain from DefaultConfig.
func NewDefault() (*Chain, error) {
	return NewIntegrationTestChain(DefaultConfig())
}

// NewIntegrationTestChain builds cfg into an in-memory database with a fresh oracle key.
func NewIntegrationTestChain(cfg *genesis.Config) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	ch, err := genesis.Build(db, cfg, &key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("unable to build genesis: %w", err)
	}
	return &Chain{
		db:     db,
		chain:  ch,
		packer: packer.New(ch, key),
		config: cfg,
		vrfKey: key,
	}, nil
}

func (c *Chain) Close() error                 { return c.db.Close() }
func (c *Chain) DB() *lvldb.LevelDB           { return c.db }
func (c *Chain) Chain() *chain.Chain          { return c.chain }
func (c *Chain) Packer() *packer.Packer       { return c.packer }
func (c *Chain) Config() *genesis.Config      { return c.config }
func (c *Chain) VRFKey() *ecdsa.PrivateKey    { return c.vrfKey }
func (c *Chain) Owner() vela.Address          { return c.config.Owner }
func (c *Chain) State() *state.State          { return c.chain.NewState() }
func (c *Chain) Token() *token.Token          { return builtin.Token.WithState(c.State()) }
func (c *Chain) Lottery() *lottery.Lottery    { return builtin.Lottery.WithState(c.State()) }
func (c *Chain) Wrapper() *vrfwrapper.Wrapper { return builtin.VRFWrapper.WithState(c.State()) }

// Advance moves the head forward.
func (c *Chain) Advance(blocks uint32, seconds uint64) error {
	_, err := c.chain.Advance(blocks, seconds)
	return err
}

// Invoke packs one message and converts a revert into an error.
func Invoke[T any](c *Chain, origin, to vela.Address, value *uint256.Int, fn func(c T, env *xenv.Environment) error) (*runtime.Receipt, error) {
	receipt, err := packer.Invoke(c.packer, origin, to, value, fn)
	if err != nil {
		return nil, err
	}
	if err := receipt.Revert(); err != nil {
		return receipt, err
	}
	return receipt, nil
}
