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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"unicode"

	"gopkg.in/urfave/cli.v1"

	"github.com/naoina/toml"
	"github.com/trustmesh/go-trustmesh/log"
	"github.com/trustmesh/go-trustmesh/params"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "",
		Flags:       append([]cli.Flag{}, serverFlags...),
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type httpConfig struct {
	Addr string `toml:",omitempty"`
	Port int    `toml:",omitempty"`
}

type gtrustConfig struct {
	DataDir  string `toml:",omitempty"`
	Policy   string `toml:",omitempty"`
	Fee      uint64 `toml:",omitempty"`
	HTTP     httpConfig
	Registry params.RegistryConfig `toml:"-"`
}

func defaultConfig() gtrustConfig {
	return gtrustConfig{
		Policy: params.DefaultRegistryConfig.Policy.String(),
		HTTP:   httpConfig{Addr: "127.0.0.1", Port: 8560},
	}
}

func loadConfig(file string, cfg *gtrustConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the gtrust configuration from defaults, the config
// file and command line flags, in that order of precedence.
func makeConfig(ctx *cli.Context) gtrustConfig {
	cfg := defaultConfig()

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			fatalf("%v", err)
		}
	}
	if ctx.GlobalIsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(policyFlag.Name) {
		cfg.Policy = ctx.GlobalString(policyFlag.Name)
	}
	if ctx.GlobalIsSet(feeFlag.Name) {
		cfg.Fee = ctx.GlobalUint64(feeFlag.Name)
	}
	if ctx.GlobalIsSet(httpAddrFlag.Name) {
		cfg.HTTP.Addr = ctx.GlobalString(httpAddrFlag.Name)
	}
	if ctx.GlobalIsSet(httpPortFlag.Name) {
		cfg.HTTP.Port = ctx.GlobalInt(httpPortFlag.Name)
	}

	policy, ok := params.ParseRegistrationPolicy(cfg.Policy)
	if !ok {
		fatalf("Unknown registration policy %q", cfg.Policy)
	}
	cfg.Registry = params.RegistryConfig{Policy: policy}
	if cfg.Fee > 0 {
		cfg.Registry.RegistrationFee = new(big.Int).SetUint64(cfg.Fee)
	}
	return cfg
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)

	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.Write(out)
	return nil
}

func fatalf(format string, args ...interface{}) {
	log.Crit(fmt.Sprintf(format, args...))
}
