// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/lvldb"
	"github.com/velalabs/vela/packer"
	"github.com/velalabs/vela/runtime"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

const (
	chainDBName   = "chain.db"
	vrfKeyName    = "vrf.key"
	genesisConfig = "genesis.yaml"
)

func initLogger(ctx *cli.Context) {
	log.SetDefault(log.NewHandler(os.Stderr, ctx.GlobalBool(jsonLogsFlag.Name), ctx.GlobalInt(verbosityFlag.Name)))
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".lotto")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openChainDB(dataDir string) (*lvldb.LevelDB, error) {
	db, err := lvldb.New(filepath.Join(dataDir, chainDBName), lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 64,
		Sync:                   true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open chain database")
	}
	return db, nil
}

// loadOrGenerateKey loads the oracle VRF key, or generates one if keyFile is missing.
// A generated key is not saved, see initAction.
func loadOrGenerateKey(keyFile string) (key *ecdsa.PrivateKey, fresh bool, err error) {
	if fileExists(keyFile) {
		key, err = loadKey(keyFile)
		return key, false, err
	}
	key, err = crypto.GenerateKey()
	return key, true, err
}

// loadKey loads the oracle VRF key written by init.
func loadKey(keyFile string) (*ecdsa.PrivateKey, error) {
	if !fileExists(keyFile) {
		return nil, fmt.Errorf("oracle key [%v] missing, the data dir was not initialized by this tool", keyFile)
	}
	key, err := crypto.LoadECDSA(keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "load oracle key")
	}
	return key, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// instance is an opened data dir.
type instance struct {
	db     *lvldb.LevelDB
	chain  *chain.Chain
	packer *packer.Packer
}

func openInstance(ctx *cli.Context) (*instance, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, err
	}
	db, err := openChainDB(dataDir)
	if err != nil {
		return nil, err
	}
	ch, err := chain.Open(db)
	if err != nil {
		db.Close()
		if err == chain.ErrNotInitialized {
			return nil, fmt.Errorf("data dir [%v] not initialized, run init first", dataDir)
		}
		return nil, err
	}
	key, err := loadKey(filepath.Join(dataDir, vrfKeyName))
	if err != nil {
		db.Close()
		return nil, err
	}
	return &instance{db: db, chain: ch, packer: packer.New(ch, key)}, nil
}

func (in *instance) Close() {
	if err := in.db.Close(); err != nil {
		log.Warn("failed to close chain database", "err", err)
	}
}

// invoke packs a message and converts a revert into an error.
func invoke[T any](p *packer.Packer, origin, to vela.Address, value *uint256.Int, fn func(c T, env *xenv.Environment) error) (*runtime.Receipt, error) {
	receipt, err := packer.Invoke(p, origin, to, value, fn)
	if err != nil {
		return nil, err
	}
	if err := receipt.Revert(); err != nil {
		return nil, errors.WithMessage(err, "reverted")
	}
	return receipt, nil
}

func parseAddressFlag(ctx *cli.Context, flag cli.StringFlag) (vela.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return vela.Address{}, fmt.Errorf("missing required flag --%s", flag.Name)
	}
	addr, err := vela.ParseAddress(s)
	if err != nil {
		return vela.Address{}, errors.WithMessagef(err, "--%s", flag.Name)
	}
	return addr, nil
}

func parseAmount(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}

func parseAmountFlag(ctx *cli.Context, flag cli.StringFlag) (*uint256.Int, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return nil, fmt.Errorf("missing required flag --%s", flag.Name)
	}
	v, err := parseAmount(s)
	if err != nil {
		return nil, errors.WithMessagef(err, "--%s", flag.Name)
	}
	return v, nil
}

func printJSON(ctx *cli.Context, v any) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// handleExitSignal returns a context cancelled on SIGINT or SIGTERM.
func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
