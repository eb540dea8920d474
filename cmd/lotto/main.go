// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/velalabs/vela/log"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error("lotto failed", "err", err)
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "lotto"
	app.Usage = "Capped reward token and VRF lottery on a local chain"
	app.Flags = []cli.Flag{
		dataDirFlag,
		verbosityFlag,
		jsonLogsFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		initLogger(ctx)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "build genesis state into the data dir",
			Flags:  []cli.Flag{configFlag, ownerFlag, launchTimeFlag, accountFlag},
			Action: initAction,
		},
		{
			Name:   "join",
			Usage:  "enter the lottery paying the entry fee",
			Flags:  []cli.Flag{fromFlag, valueFlag},
			Action: joinAction,
		},
		{
			Name:   "request",
			Usage:  "request randomness for the current round",
			Flags:  []cli.Flag{fromFlag},
			Action: requestAction,
		},
		{
			Name:   "fulfill",
			Usage:  "fulfill pending randomness requests as the oracle operator",
			Flags:  []cli.Flag{idFlag},
			Action: fulfillAction,
		},
		{
			Name:   "advance",
			Usage:  "move the chain head forward",
			Flags:  []cli.Flag{blocksFlag, secondsFlag},
			Action: advanceAction,
		},
		{
			Name:   "status",
			Usage:  "print the lottery state",
			Flags:  []cli.Flag{jsonFlag},
			Action: statusAction,
		},
		{
			Name:   "mint",
			Usage:  "mint reward tokens",
			Flags:  []cli.Flag{fromFlag, toFlag, amountFlag},
			Action: mintAction,
		},
		{
			Name:   "withdraw",
			Usage:  "withdraw lottery funds to the owner",
			Flags:  []cli.Flag{fromFlag, amountFlag, erc20Flag},
			Action: withdrawAction,
		},
		{
			Name:   "simulate",
			Usage:  "play rounds on a throwaway in-memory chain",
			Flags:  []cli.Flag{roundsFlag, playersFlag, enableMetricsFlag},
			Action: simulateAction,
		},
		{
			Name:   "serve",
			Usage:  "serve the read-only HTTP API",
			Flags:  []cli.Flag{apiAddrFlag, apiCorsFlag, enableMetricsFlag, enableAPILogsFlag},
			Action: serveAction,
		},
	}
	return app
}
