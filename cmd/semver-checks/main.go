// Copyright 2025 The Cratecheck Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/go-logr/zapr"
	"github.com/pterm/pterm"
	"github.com/willabides/kongplete"
	"go.uber.org/zap"

	"github.com/cratecheck/cratecheck/internal/config"
)

// cli is the root command. CheckRelease is the default command: a bare
// invocation with a manifest path behaves like `semver-checks check-release`.
type cli struct {
	Format config.Format    `name:"output" enum:"default,json" default:"default" help:"Report format. Can be: default, json."`
	Quiet  config.QuietFlag `short:"q" name:"quiet" help:"Suppress all output but the final report."`
	Color  string           `name:"color" enum:"auto,always,never" default:"auto" help:"Colorize terminal output. Can be: auto, always, never."`
	Debug  bool             `name:"verbose" help:"Enable debug logging to stderr."`

	CheckRelease       checkCmd                     `cmd:"" default:"1" name:"check-release" help:"Check a crate's API for semver-relevant changes against a baseline."`
	Explain            explainCmd                   `cmd:"" name:"explain" help:"Print a lint's human name, description and reference link without running it."`
	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions."`
}

// AfterApply wires the process-wide logger and terminal styling before any
// subcommand runs.
func (c *cli) AfterApply(ctx *kong.Context) error { //nolint:unparam
	if c.Quiet {
		ctx.Stdout, ctx.Stderr = io.Discard, io.Discard
	}
	if c.Color == "never" {
		pterm.DisableStyling()
	}

	zcfg := zap.NewProductionConfig()
	if c.Debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	zl, err := zcfg.Build()
	if err != nil {
		return err
	}
	log := logging.NewLogrLogger(zapr.NewLogger(zl))
	ctx.Bind(log)
	ctx.Bind(c.Quiet)
	ctx.Bind(c.Format)
	ctx.Bind(config.PrettyFlag(c.Color != "never"))
	return nil
}

func main() {
	c := cli{}

	parser := kong.Must(&c,
		kong.Name("semver-checks"),
		kong.Description("Decide the required semver bump between two rustdoc-JSON API snapshots of a Rust crate."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	kongplete.Complete(parser)

	if len(os.Args) == 1 {
		_, err := parser.Parse([]string{"--help"})
		parser.FatalIfErrorf(err)
		return
	}

	kongCtx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		defer cancel()
		<-sigCh
		kongCtx.Exit(1)
	}()

	kongCtx.BindTo(ctx, (*context.Context)(nil))
	kongCtx.FatalIfErrorf(kongCtx.Run())
}
