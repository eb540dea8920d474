// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velalabs/vela/api"
	apilottery "github.com/velalabs/vela/api/lottery"
	"github.com/velalabs/vela/builtin"
	"github.com/velalabs/vela/chain"
	"github.com/velalabs/vela/test"
	"github.com/velalabs/vela/test/testchain"
	"github.com/velalabs/vela/vela"
)

type cliRunner struct {
	t       *testing.T
	dataDir string
	out     bytes.Buffer
}

func (r *cliRunner) run(args ...string) (string, error) {
	r.out.Reset()
	app := newApp()
	app.Writer = &r.out
	err := app.Run(append([]string{"lotto", "--data-dir", r.dataDir, "--verbosity", "0"}, args...))
	return r.out.String(), err
}

func (r *cliRunner) mustRun(args ...string) string {
	out, err := r.run(args...)
	require.NoError(r.t, err, "lotto %v", args)
	return out
}

func TestCommands(t *testing.T) {
	r := &cliRunner{t: t, dataDir: t.TempDir()}

	owner := vela.BytesToAddress([]byte("owner"))
	players := []vela.Address{
		vela.BytesToAddress([]byte("alice")),
		vela.BytesToAddress([]byte("bob")),
		vela.BytesToAddress([]byte("carol")),
	}

	_, err := r.run("status")
	assert.ErrorContains(t, err, "not initialized")

	args := []string{"init", "--owner", owner.String(), "--launch-time", "1700000000"}
	for _, p := range players {
		args = append(args, "--account", p.String()+":1000000000000000000")
	}
	out := r.mustRun(args...)
	assert.Contains(t, out, "Initialized")
	assert.Contains(t, out, owner.String())

	_, err = r.run("init", "--owner", owner.String())
	assert.Error(t, err, "genesis is built once")

	for _, p := range players {
		assert.Contains(t, r.mustRun("join", "--from", p.String()), "joined paying 500000")
	}
	_, err = r.run("join", "--from", players[0].String())
	assert.ErrorContains(t, err, "reverted")

	out = r.mustRun("advance", "--blocks", "1", "--seconds", "14400")
	assert.Contains(t, out, "head #1")

	out = r.mustRun("request", "--from", players[0].String())
	assert.Contains(t, out, "sent, paid 120500")

	_, err = r.run("fulfill")
	assert.ErrorContains(t, err, "reverted", "confirmations not reached")

	r.mustRun("advance", "--blocks", "3")
	assert.Contains(t, r.mustRun("fulfill"), "fulfilled, winner")
	assert.Contains(t, r.mustRun("fulfill"), "no pending requests")

	out = r.mustRun("status")
	assert.Contains(t, out, "Participants  [ 3, accepting true ]")
	assert.Contains(t, out, fmt.Sprintf("Balance       [ %v ]", 3*500000-120500))

	var summary apilottery.Lottery
	require.NoError(t, json.Unmarshal([]byte(r.mustRun("status", "--json")), &summary))
	assert.Equal(t, owner, summary.Owner)
	assert.Equal(t, uint64(3), summary.Participants)
	assert.Equal(t, uint64(1), summary.Requests)

	_, err = r.run("mint", "--from", players[2].String(), "--to", players[2].String(), "--amount", "1")
	assert.ErrorContains(t, err, "OwnableUnauthorizedAccount("+players[2].String()+")")
	assert.Contains(t, r.mustRun("mint", "--from", owner.String(), "--to", players[2].String(), "--amount", "7"),
		"minted 7 to "+players[2].String())

	_, err = r.run("withdraw", "--from", players[1].String(), "--amount", "1000")
	assert.ErrorContains(t, err, "reverted")
	assert.Contains(t, r.mustRun("withdraw", "--from", owner.String(), "--amount", "1000"), "withdrew 1000 native")

	_, err = r.run("withdraw", "--from", owner.String())
	assert.ErrorContains(t, err, "missing required flag --amount")

	_, err = r.run("advance", "--blocks", "4294967296")
	assert.ErrorContains(t, err, "--blocks 4294967296 out of range")
	_, err = r.run("advance", "--blocks", "4294967295")
	assert.ErrorContains(t, err, "head overflow")

	// the oracle key is never regenerated outside init
	require.NoError(t, os.Remove(filepath.Join(r.dataDir, vrfKeyName)))
	_, err = r.run("fulfill")
	assert.ErrorContains(t, err, "oracle key")
	_, err = os.Stat(filepath.Join(r.dataDir, vrfKeyName))
	assert.True(t, os.IsNotExist(err))
}

func TestInitSavesKeyOnlyOnSuccess(t *testing.T) {
	r := &cliRunner{t: t, dataDir: t.TempDir()}
	owner := vela.BytesToAddress([]byte("owner"))
	keyFile := filepath.Join(r.dataDir, vrfKeyName)

	badConfig := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("launch-time: 1\nowner: \"0x0000000000000000000000000000000000000000\"\n"), 0o600))
	_, err := r.run("init", "--config", badConfig)
	assert.ErrorContains(t, err, "owner must be set")
	assert.NoFileExists(t, keyFile)

	r.mustRun("init", "--owner", owner.String())
	assert.FileExists(t, keyFile)
	key, err := loadKey(keyFile)
	require.NoError(t, err)

	db, err := openChainDB(r.dataDir)
	require.NoError(t, err)
	defer db.Close()
	ch, err := chain.Open(db)
	require.NoError(t, err)
	pub, err := builtin.VRFWrapper.WithState(ch.NewState()).PublicKey()
	require.NoError(t, err)
	assert.Equal(t, crypto.CompressPubkey(&key.PublicKey), crypto.CompressPubkey(pub))
}

func TestSimulate(t *testing.T) {
	results, err := simulate(4, 3)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, uint64(i+1), r.ID.Uint64())
		assert.False(t, r.Winner.IsZero())
		assert.Equal(t, uint64(3*500000*85/100), r.Reward.Uint64())
	}

	r := &cliRunner{t: t, dataDir: t.TempDir()}
	out := r.mustRun("simulate", "--rounds", "2", "--players", "2")
	assert.Contains(t, out, "round   1")
	assert.Contains(t, out, "won")

	_, err = r.run("simulate", "--rounds", "0")
	assert.Error(t, err)
}

func TestServe(t *testing.T) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)
	defer tc.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, listener, api.New(tc.Chain(), api.Options{AllowedOrigins: "*"}))
	}()

	url := "http://" + listener.Addr().String() + "/token"
	var body []byte
	require.NoError(t, test.Retry(func() error {
		res, err := http.Get(url) //#nosec G107
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("status %v", res.StatusCode)
		}
		body, err = io.ReadAll(res.Body)
		return err
	}, 10*time.Millisecond, 2*time.Second))
	assert.Contains(t, string(body), `"symbol"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
