// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	apilottery "github.com/velalabs/vela/api/lottery"
	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/builtin/lottery"
	"github.com/velalabs/vela/builtin/token"
	"github.com/velalabs/vela/builtin/vrfwrapper"
	"github.com/velalabs/vela/genesis"
	"github.com/velalabs/vela/log"
	"github.com/velalabs/vela/vela"
	"github.com/velalabs/vela/xenv"
)

func loadGenesisConfig(ctx *cli.Context) (*genesis.Config, error) {
	if path := ctx.String(configFlag.Name); path != "" {
		return genesis.LoadConfig(path)
	}
	owner, err := parseAddressFlag(ctx, ownerFlag)
	if err != nil {
		return nil, err
	}
	launchTime := ctx.Uint64(launchTimeFlag.Name)
	if launchTime == 0 {
		launchTime = uint64(time.Now().Unix())
	}
	cfg := genesis.DevConfig(owner, launchTime)
	for _, s := range ctx.StringSlice(accountFlag.Name) {
		addrStr, amountStr, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("--%s %q: want <address>:<amount>", accountFlag.Name, s)
		}
		addr, err := vela.ParseAddress(addrStr)
		if err != nil {
			return nil, errors.WithMessagef(err, "--%s %q", accountFlag.Name, s)
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			return nil, errors.WithMessagef(err, "--%s %q", accountFlag.Name, s)
		}
		cfg.Accounts = append(cfg.Accounts, genesis.Account{Address: addr, Balance: (*genesis.Amount)(amount)})
	}
	return cfg, nil
}

func initAction(ctx *cli.Context) error {
	cfg, err := loadGenesisConfig(ctx)
	if err != nil {
		return err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	keyFile := filepath.Join(dataDir, vrfKeyName)
	key, fresh, err := loadOrGenerateKey(keyFile)
	if err != nil {
		return err
	}
	db, err := openChainDB(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ch, err := genesis.Build(db, cfg, &key.PublicKey)
	if err != nil {
		return errors.WithMessage(err, "build genesis")
	}
	if fresh {
		if err := crypto.SaveECDSA(keyFile, key); err != nil {
			return errors.Wrap(err, "save oracle key")
		}
	}
	if err := cfg.Save(filepath.Join(dataDir, genesisConfig)); err != nil {
		return errors.Wrap(err, "save genesis config")
	}

	fmt.Fprintf(ctx.App.Writer, `Initialized %v
    Owner        [ %v ]
    Token        [ %v ]
    Lottery      [ %v ]
    VRF wrapper  [ %v ]
    Launch time  [ %v ]
`,
		dataDir,
		cfg.Owner,
		builtin.Token.Address,
		builtin.Lottery.Address,
		builtin.VRFWrapper.Address,
		time.Unix(int64(ch.Head().Time), 0).UTC())
	return nil
}

func joinAction(ctx *cli.Context) error {
	from, err := parseAddressFlag(ctx, fromFlag)
	if err != nil {
		return err
	}
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	var value *uint256.Int
	if ctx.String(valueFlag.Name) != "" {
		if value, err = parseAmountFlag(ctx, valueFlag); err != nil {
			return err
		}
	} else if value, err = builtin.Lottery.WithState(in.packer.State()).LotteryEntryFee(); err != nil {
		return err
	}

	if _, err := invoke(in.packer, from, builtin.Lottery.Address, value, func(l *lottery.Lottery, env *xenv.Environment) error {
		return l.ParticipateInLottery(env)
	}); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "%v joined paying %v\n", from, value.Dec())
	return nil
}

func requestAction(ctx *cli.Context) error {
	from, err := parseAddressFlag(ctx, fromFlag)
	if err != nil {
		return err
	}
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	var id *uint256.Int
	if _, err := invoke(in.packer, from, builtin.Lottery.Address, nil, func(l *lottery.Lottery, env *xenv.Environment) (err error) {
		id, err = l.RequestRandomWords(env)
		return
	}); err != nil {
		return err
	}
	paid, _, _, err := builtin.Lottery.WithState(in.packer.State()).GetRequestStatus(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "request %v sent, paid %v\n", id.Dec(), paid.Dec())
	return nil
}

func fulfillAction(ctx *cli.Context) error {
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	wrapper := builtin.VRFWrapper.WithState(in.packer.State())
	operator, err := wrapper.Owner()
	if err != nil {
		return err
	}
	var ids []*uint256.Int
	if s := ctx.String(idFlag.Name); s != "" {
		id, err := parseAmount(s)
		if err != nil {
			return errors.WithMessagef(err, "--%s", idFlag.Name)
		}
		ids = append(ids, id)
	} else if ids, err = wrapper.Pending(); err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(ctx.App.Writer, "no pending requests")
		return nil
	}

	for _, id := range ids {
		var ful *vrfwrapper.Fulfillment
		receipt, err := invoke(in.packer, operator, builtin.VRFWrapper.Address, nil, func(w *vrfwrapper.Wrapper, env *xenv.Environment) (err error) {
			ful, err = w.Fulfill(env, id)
			return
		})
		if err != nil {
			return errors.WithMessagef(err, "fulfill %v", id.Dec())
		}
		if !ful.Success {
			fmt.Fprintf(ctx.App.Writer, "request %v fulfilled, consumer callback failed\n", id.Dec())
			continue
		}
		ev, found, err := lottery.DecodeFulfilled(builtin.Lottery.Address, receipt.Logs)
		if err != nil {
			return err
		}
		switch {
		case !found:
			fmt.Fprintf(ctx.App.Writer, "request %v fulfilled\n", id.Dec())
		case ev.Winner.IsZero():
			fmt.Fprintf(ctx.App.Writer, "request %v fulfilled, no reward paid\n", id.Dec())
		default:
			fmt.Fprintf(ctx.App.Writer, "request %v fulfilled, winner %v\n", id.Dec(), ev.Winner)
		}
	}
	return nil
}

func advanceAction(ctx *cli.Context) error {
	blocks := ctx.Uint(blocksFlag.Name)
	if uint64(blocks) > math.MaxUint32 {
		return fmt.Errorf("--%s %v out of range, max %v", blocksFlag.Name, blocks, uint32(math.MaxUint32))
	}
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	head, err := in.chain.Advance(uint32(blocks), ctx.Uint64(secondsFlag.Name))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "head #%v @%v\n", head.Number, time.Unix(int64(head.Time), 0).UTC())
	return nil
}

func statusAction(ctx *cli.Context) error {
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	s, err := apilottery.Summarize(in.packer.State())
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		return printJSON(ctx, s)
	}

	head := in.chain.Head()
	fmt.Fprintf(ctx.App.Writer, `Lottery %v
    Head          [ #%v @%v ]
    Owner         [ %v ]
    Balance       [ %v ]
    Entry fee     [ %v ]
    Participants  [ %v, accepting %v ]
    Requests      [ %v, last id %v ]
    Next request  [ %v ]
    Request price [ %v ]
`,
		s.Address,
		head.Number, time.Unix(int64(head.Time), 0).UTC(),
		s.Owner,
		dec(s.Balance),
		dec(s.EntryFee),
		s.Participants, s.Accepting,
		s.Requests, dec(s.LastRequestID),
		time.Unix(int64(s.NextRequestAt), 0).UTC(),
		dec(s.RequestPrice))
	return nil
}

func dec(v *ethmath.HexOrDecimal256) string {
	if v == nil {
		return "n/a"
	}
	return (*big.Int)(v).String()
}

func mintAction(ctx *cli.Context) error {
	from, err := parseAddressFlag(ctx, fromFlag)
	if err != nil {
		return err
	}
	to, err := parseAddressFlag(ctx, toFlag)
	if err != nil {
		return err
	}
	amount, err := parseAmountFlag(ctx, amountFlag)
	if err != nil {
		return err
	}
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	if _, err := invoke(in.packer, from, builtin.Token.Address, nil, func(tk *token.Token, env *xenv.Environment) error {
		return tk.Mint(env, to, amount)
	}); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "minted %v to %v\n", amount.Dec(), to)
	return nil
}

func withdrawAction(ctx *cli.Context) error {
	from, err := parseAddressFlag(ctx, fromFlag)
	if err != nil {
		return err
	}
	amount, err := parseAmountFlag(ctx, amountFlag)
	if err != nil {
		return err
	}
	in, err := openInstance(ctx)
	if err != nil {
		return err
	}
	defer in.Close()

	erc20 := ctx.Bool(erc20Flag.Name)
	if _, err := invoke(in.packer, from, builtin.Lottery.Address, nil, func(l *lottery.Lottery, env *xenv.Environment) error {
		if erc20 {
			return l.WithdrawERC20(env, amount)
		}
		return l.WithdrawNative(env, amount)
	}); err != nil {
		return err
	}
	asset := "native"
	if erc20 {
		asset = "token"
	}
	log.Debug("withdrawn", "asset", asset, "amount", amount)
	fmt.Fprintf(ctx.App.Writer, "withdrew %v %v to %v\n", amount.Dec(), asset, from)
	return nil
}
