// Copyright 2025 The go-trustmesh Authors
// This file is part of go-trustmesh.
//
// go-trustmesh is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-trustmesh is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-trustmesh. If not, see <http://www.gnu.org/licenses/>.

// gtrust is the command-line entry point of the trust registry node. It
// serves the registry over HTTP and ships small operator commands for
// inspecting a data directory.
package main

import (
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"

	"gopkg.in/urfave/cli.v1"

	"github.com/olekukonko/tablewriter"
	"github.com/trustmesh/go-trustmesh/core/ledger"
	"github.com/trustmesh/go-trustmesh/core/rawdb"
	"github.com/trustmesh/go-trustmesh/core/registry"
	"github.com/trustmesh/go-trustmesh/internal/trustapi"
	"github.com/trustmesh/go-trustmesh/log"
	"github.com/trustmesh/go-trustmesh/params"
	"github.com/trustmesh/go-trustmesh/trustdb"
)

const clientIdentifier = "gtrust"

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the registry database (memory-only when empty)",
	}
	policyFlag = cli.StringFlag{
		Name:  "policy",
		Usage: "Registration policy: either, domain, did or open",
	}
	feeFlag = cli.Uint64Flag{
		Name:  "fee",
		Usage: "Registration fee burned per agent (0 disables the fee check)",
	}
	httpAddrFlag = cli.StringFlag{
		Name:  "http.addr",
		Usage: "HTTP API listening interface",
		Value: "127.0.0.1",
	}
	httpPortFlag = cli.IntFlag{
		Name:  "http.port",
		Usage: "HTTP API listening port",
		Value: 8560,
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}

	serverFlags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		policyFlag,
		feeFlag,
		httpAddrFlag,
		httpPortFlag,
		verbosityFlag,
	}
)

var (
	versionCommand = cli.Command{
		Action:    version,
		Name:      "version",
		Usage:     "Print version numbers",
		Category:  "MISCELLANEOUS COMMANDS",
		ArgsUsage: " ",
	}
	inspectCommand = cli.Command{
		Action:    inspect,
		Name:      "inspect",
		Usage:     "Print the agents stored in a data directory",
		Flags:     []cli.Flag{dataDirFlag},
		Category:  "DATABASE COMMANDS",
		ArgsUsage: " ",
	}
)

var app = cli.NewApp()

func init() {
	app.Name = clientIdentifier
	app.Usage = "trust registry node"
	app.Version = params.VersionWithMeta
	app.Action = gtrust
	app.Flags = serverFlags
	app.Commands = []cli.Command{
		versionCommand,
		inspectCommand,
		dumpConfigCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	app.Before = func(ctx *cli.Context) error {
		log.SetLevel(log.Lvl(ctx.GlobalInt(verbosityFlag.Name)))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// gtrust starts the registry node and blocks until the HTTP server
// fails.
func gtrust(ctx *cli.Context) error {
	if args := ctx.Args(); len(args) > 0 {
		return fmt.Errorf("invalid command: %q", args[0])
	}
	cfg := makeConfig(ctx)

	db, err := openDatabase(cfg.DataDir)
	if err != nil {
		fatalf("Failed to open registry database: %v", err)
	}
	defer db.Close()

	var fee registry.FeePolicy
	if amount := cfg.Registry.RegistrationFee; amount != nil {
		allowance := new(big.Int).Mul(amount, big.NewInt(devFeeRegistrations))
		fee = &registry.BurnFee{Amount: amount, Balances: newDevBalances(allowance)}
		log.Info("Registration fee enabled", "fee", amount, "allowance", allowance)
	}
	reg := registry.NewTrustRegistry(&cfg.Registry, fee, db)
	defer reg.Stop()
	go logEvents(reg)

	srv := trustapi.NewServer(reg, ledger.WallClock{})
	endpoint := net.JoinHostPort(cfg.HTTP.Addr, strconv.Itoa(cfg.HTTP.Port))
	log.Info("Starting trust registry", "policy", cfg.Registry.Policy, "agents", reg.Identity.Count(), "endpoint", endpoint)
	return http.ListenAndServe(endpoint, srv.Handler())
}

// logEvents mirrors every registry event into the node log, the
// built-in stand-in for an external indexer.
func logEvents(reg *registry.TrustRegistry) {
	sub := reg.EventMux().Subscribe(
		registry.AgentRegisteredEvent{},
		registry.AgentUpdatedEvent{},
		registry.AgentDeveloperLinkedEvent{},
		registry.FeedbackAuthorizedEvent{},
		registry.ValidationRequestedEvent{},
		registry.ValidationRespondedEvent{},
	)
	defer sub.Unsubscribe()
	for ev := range sub.Chan() {
		switch data := ev.Data.(type) {
		case registry.AgentRegisteredEvent:
			log.Info("Agent registered", "id", data.AgentID, "owner", data.Owner, "domain", data.Domain, "did", data.DID)
		case registry.AgentUpdatedEvent:
			log.Info("Agent updated", "id", data.AgentID, "owner", data.Owner)
		case registry.AgentDeveloperLinkedEvent:
			log.Info("Developer linked", "id", data.AgentID, "developer", data.DeveloperDID)
		case registry.FeedbackAuthorizedEvent:
			log.Info("Feedback authorized", "client", data.ClientAgentID, "server", data.ServerAgentID)
		case registry.ValidationRequestedEvent:
			log.Info("Validation requested", "validator", data.ValidatorAgentID, "server", data.ServerAgentID, "hash", data.DataHash.TerminalString())
		case registry.ValidationRespondedEvent:
			log.Info("Validation responded", "validator", data.ValidatorAgentID, "hash", data.DataHash.TerminalString(), "score", data.Score)
		}
	}
}

func openDatabase(datadir string) (trustdb.Database, error) {
	if datadir == "" {
		log.Warn("No data directory set, registry state is in-memory only")
		return trustdb.NewMemoryDB(), nil
	}
	return trustdb.NewLevelDB(filepath.Join(datadir, "registry"), 0, 0)
}

func version(ctx *cli.Context) error {
	fmt.Println(clientIdentifier)
	fmt.Println("Version:", params.VersionWithMeta)
	fmt.Println("Architecture:", runtime.GOARCH)
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	return nil
}

// inspect dumps the persisted agent table.
func inspect(ctx *cli.Context) error {
	datadir := ctx.String(dataDirFlag.Name)
	if datadir == "" {
		return fmt.Errorf("--%s is required", dataDirFlag.Name)
	}
	db, err := trustdb.NewLevelDB(filepath.Join(datadir, "registry"), 0, 0)
	if err != nil {
		return err
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Owner", "Domain", "DID", "Developer DID"})
	rawdb.ReadAllAgents(db, func(rec *rawdb.AgentRecord) {
		table.Append([]string{
			strconv.FormatUint(rec.ID, 10),
			rec.Owner.Hex(),
			rec.Domain,
			rec.DID,
			rec.DeveloperDID,
		})
	})
	table.Render()
	fmt.Println("Next agent id:", rawdb.ReadNextAgentID(db))
	return nil
}
