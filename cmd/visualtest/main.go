// github.com/orofarne/mapnik - visual regression tests for map styles
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Visualtest renders map styles and compares the images with references.
//
// Usage:
//
//	visualtest [-q] [-s NAME | NAME...]
//
// Without names, every case of the catalog is run.  A single name is
// rendered at a few square sizes, several names at the default size.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/orofarne/mapnik"
	"github.com/orofarne/mapnik/compare"
	"github.com/orofarne/mapnik/config"
	"github.com/orofarne/mapnik/datasource"
	"github.com/orofarne/mapnik/runner"
	"github.com/orofarne/mapnik/state"
	"github.com/orofarne/mapnik/testcases"
)

// initializeAppContext loads the configuration and prepares the logger,
// after the command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		env.Cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if env.Log, err = env.Cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()
	return nil
}

// errWasHandled is set once an error has been logged, so that main does
// not print it again.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:            config.AppName,
		Usage:           "visual regression tests for map styles",
		Version:         runtime.Version(),
		ArgsUsage:       "[NAME...]",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to the console"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "do not narrate every rendered image"},
			&cli.StringFlag{Name: "single", Aliases: []string{"s"}, Usage: "run only the catalog case `NAME`, at its catalog sizes"},
			&cli.BoolFlag{Name: "generate", Aliases: []string{"g"}, Usage: "accept failing and missing images as new references"},
			&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "list the selected cases and exit"},
			&cli.BoolFlag{Name: "dumpconfig", Usage: "print the active configuration (YAML) and exit"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, out)
		},
	}
}

func run(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	env := state.EnvFromContext(ctx)
	cfg := env.Cfg

	if cmd.Bool("dumpconfig") {
		data, err := config.Dump(cfg)
		if err != nil {
			return fmt.Errorf("unable to get configuration: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	catalog := testcases.All
	if cfg.Paths.Catalog != "" {
		var err error
		if catalog, err = testcases.LoadCatalog(cfg.Paths.Catalog); err != nil {
			return err
		}
		env.Log.Debug("Using catalog", zap.String("file", cfg.Paths.Catalog), zap.Int("cases", len(catalog)))
	}

	// "-q" and "-s" may also turn up among the positional arguments
	sel, quiet := testcases.ParseArgs(cmd.Args().Slice())
	if name := cmd.String("single"); name != "" {
		sel = testcases.Selection{Single: name}
	}
	quiet = quiet || cmd.Bool("quiet")
	cases := testcases.Select(catalog, sel)

	if cmd.Bool("list") {
		return listCases(out, cases)
	}

	generate := cmd.Bool("generate")
	cmp := compare.New(compare.Options{
		Threshold:     cfg.Compare.Threshold,
		IncludeAA:     cfg.Compare.IncludeAA,
		DiffDir:       cfg.Compare.DiffDir,
		AcceptMissing: generate,
	}, out, env.Log)

	eng := &engine{
		Engine: mapnik.NewEngine(datasource.Default()),
		strict: cfg.Run.StrictStyles,
	}
	r := runner.New(runner.Config{
		StylesDir:      cfg.Paths.Styles,
		ImagesDir:      cfg.Paths.Images,
		ScratchDir:     cfg.Paths.Scratch,
		OutputDir:      cfg.Paths.Output,
		RequiredPlugin: cfg.Run.RequiredPlugin,
		Quiet:          quiet,
		Generate:       generate,
	}, eng, cmp, out, env.Log)

	stats, err := r.Run(ctx, cases)
	env.Log.Debug("Run finished",
		zap.Bool("skipped", stats.Skipped),
		zap.Int("cases", stats.Cases),
		zap.Int("images", stats.Renders),
		zap.Int("failed", stats.Failed))
	return err
}

func listCases(out io.Writer, cases []testcases.Case) error {
	names := make(natural.StringSlice, 0, len(cases))
	sizes := make(map[string][]testcases.Size, len(cases))
	for _, c := range cases {
		c = c.Resolve()
		names = append(names, c.Name)
		sizes[c.Name] = c.Sizes
	}
	sort.Sort(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(out, "%-24s %v\n", name, sizes[name]); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	var err error
	// os.Exit is called at the end of main, no deferred functions may
	// follow this one
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = newApp(color.Output).Run(ctx, os.Args)
}
