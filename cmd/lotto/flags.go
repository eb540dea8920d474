// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the chain database and the oracle key",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a yaml genesis config",
	}
	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Usage: "owner of the deployed contracts, also the oracle operator (dev config only)",
	}
	launchTimeFlag = cli.Uint64Flag{
		Name:  "launch-time",
		Usage: "genesis timestamp, defaults to now (dev config only)",
	}
	accountFlag = cli.StringSliceFlag{
		Name:  "account",
		Usage: "prefunded account as <address>:<amount>, may be repeated (dev config only)",
	}

	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "address sending the message",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "recipient address",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount as decimal or 0x prefixed hex",
	}
	valueFlag = cli.StringFlag{
		Name:  "value",
		Usage: "native value to pay, defaults to the entry fee",
	}
	idFlag = cli.StringFlag{
		Name:  "id",
		Usage: "request id, all pending requests if omitted",
	}
	erc20Flag = cli.BoolFlag{
		Name:  "erc20",
		Usage: "withdraw the reward token instead of the native balance",
	}
	blocksFlag = cli.UintFlag{
		Name:  "blocks",
		Value: 1,
		Usage: "number of blocks to advance",
	}
	secondsFlag = cli.Uint64Flag{
		Name:  "seconds",
		Usage: "number of seconds to advance",
	}
	jsonFlag = cli.BoolFlag{
		Name:  "json",
		Usage: "print as JSON",
	}

	roundsFlag = cli.IntFlag{
		Name:  "rounds",
		Value: 10,
		Usage: "number of rounds to simulate",
	}
	playersFlag = cli.IntFlag{
		Name:  "players",
		Value: 5,
		Usage: "number of players entering each round",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}

	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
)
