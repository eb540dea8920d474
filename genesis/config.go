// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/velalabs/vela/vela"
)

// Config is the yaml deployment description of a chain.
type Config struct {
	LaunchTime uint64        `yaml:"launch-time"`
	Owner      vela.Address  `yaml:"owner"`
	Operator   *vela.Address `yaml:"operator,omitempty"` // oracle operator, the owner if omitted
	Token      TokenConfig   `yaml:"token"`
	Lottery    LotteryConfig `yaml:"lottery"`
	Wrapper    WrapperConfig `yaml:"wrapper"`
	Accounts   []Account     `yaml:"accounts"`
}

type TokenConfig struct {
	Name   string  `yaml:"name"`
	Symbol string  `yaml:"symbol"`
	Cap    *Amount `yaml:"cap"`
}

type LotteryConfig struct {
	EntryFee             *Amount `yaml:"entry-fee,omitempty"`
	IntervalHours        *uint64 `yaml:"interval-hours,omitempty"`
	CallbackGasLimit     uint32  `yaml:"callback-gas-limit,omitempty"`
	RequestConfirmations *uint16 `yaml:"request-confirmations,omitempty"`
	NumWords             uint32  `yaml:"num-words,omitempty"`
	ResetOnPayout        bool    `yaml:"reset-on-payout,omitempty"`
}

type WrapperConfig struct {
	GasPrice    *Amount `yaml:"gas-price,omitempty"`
	OverheadGas *Amount `yaml:"overhead-gas,omitempty"`
	PerWordGas  *Amount `yaml:"per-word-gas,omitempty"`
	FlatFee     *Amount `yaml:"flat-fee,omitempty"`
}

// Account is a prefunded account.
type Account struct {
	Address vela.Address `yaml:"address"`
	Balance *Amount      `yaml:"balance"`
}

// Amount is a 256 bit unsigned integer written as a decimal or 0x prefixed hex string.
type Amount uint256.Int

func NewAmount(v uint64) *Amount {
	return (*Amount)(uint256.NewInt(v))
}

func (a *Amount) Int() *uint256.Int {
	if a == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set((*uint256.Int)(a))
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", node.Line, s, err)
	}
	*a = Amount(*v)
	return nil
}

func (a *Amount) MarshalYAML() (any, error) {
	return (*uint256.Int)(a).Dec(), nil
}

// LoadConfig reads a yaml config file. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	return &cfg, nil
}

// Save writes cfg as yaml into path.
func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (cfg *Config) validate() error {
	if cfg.Owner.IsZero() {
		return errors.New("owner must be set")
	}
	if cfg.Token.Cap == nil || cfg.Token.Cap.Int().IsZero() {
		return errors.New("token cap must be a non-zero integer")
	}
	for _, a := range cfg.Accounts {
		if a.Balance == nil || a.Balance.Int().IsZero() {
			return fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
	}
	return nil
}

func (cfg *Config) operator() vela.Address {
	if cfg.Operator != nil && !cfg.Operator.IsZero() {
		return *cfg.Operator
	}
	return cfg.Owner
}

// DevConfig is a ready to use config where owner also operates the oracle.
// The token cap is 10^9 whole tokens.
func DevConfig(owner vela.Address, launchTime uint64) *Config {
	supply := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(9+vela.TokenDecimals)))
	return &Config{
		LaunchTime: launchTime,
		Owner:      owner,
		Token: TokenConfig{
			Name:   "Lottery Reward",
			Symbol: "LRT",
			Cap:    (*Amount)(supply),
		},
		Wrapper: WrapperConfig{
			GasPrice:    NewAmount(1),
			OverheadGas: NewAmount(20000),
			PerWordGas:  NewAmount(500),
			FlatFee:     NewAmount(0),
		},
	}
}
