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

// Command update-references renders the reference images of the test
// catalog with the current engine.  Optionally a PDF rendering is written
// next to every image, and the catalog is exported as JSON for external
// reference generators.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/orofarne/mapnik"
	"github.com/orofarne/mapnik/config"
	"github.com/orofarne/mapnik/datasource"
	"github.com/orofarne/mapnik/runner"
	"github.com/orofarne/mapnik/state"
	"github.com/orofarne/mapnik/testcases"
)

type updater struct {
	engine *mapnik.Engine
	paths  runner.Config
	strict bool
	pdf    bool
	out    io.Writer
	log    *zap.Logger
}

// update renders all sizes of all cases.  A case which fails is reported
// and skipped, the errors of all cases are returned together.
func (u *updater) update(ctx context.Context, cases []testcases.Case) (int, error) {
	var errs error
	count := 0
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return count, multierr.Append(errs, err)
		}
		c = c.Resolve()
		for _, size := range c.Sizes {
			if err := u.render(c, size); err != nil {
				u.log.Warn("skipping case", zap.String("style", c.Name), zap.Error(err))
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.Name, err))
				break
			}
			count++
		}
	}
	return count, errs
}

func (u *updater) render(c testcases.Case, size testcases.Size) error {
	m := u.engine.NewMap(size.Width, size.Height)
	if err := mapnik.LoadMap(m, u.paths.StylePath(c.Name), u.strict); err != nil {
		return err
	}
	if c.BBox != nil {
		m.ZoomToBox(*c.BBox)
	} else if err := m.ZoomAll(); err != nil {
		return err
	}

	ref := u.paths.ReferencePath(c.Name, size.Width)
	if err := mapnik.RenderToFile(m, ref); err != nil {
		return err
	}
	if u.pdf {
		if err := mapnik.RenderToFile(m, strings.TrimSuffix(ref, ".png")+".pdf"); err != nil {
			return err
		}
	}
	fmt.Fprintf(u.out, "%s %s\n", color.GreenString("✓"), ref)
	return nil
}

type jsonCase struct {
	Name  string    `json:"name"`
	Sizes [][2]int  `json:"sizes"`
	BBox  []float64 `json:"bbox,omitempty"`
}

// exportCatalog writes the cases, with defaults filled in, as JSON.
func exportCatalog(fname string, cases []testcases.Case) (err error) {
	var out struct {
		Cases []jsonCase `json:"cases"`
	}
	for _, c := range cases {
		c = c.Resolve()
		jc := jsonCase{Name: c.Name}
		for _, s := range c.Sizes {
			jc.Sizes = append(jc.Sizes, [2]int{s.Width, s.Height})
		}
		if c.BBox != nil {
			jc.BBox = []float64{c.BBox.LLx, c.BBox.LLy, c.BBox.URx, c.BBox.URy}
		}
		out.Cases = append(out.Cases, jc)
	}

	if err := os.MkdirAll(filepath.Dir(fname), 0o755); err != nil {
		return err
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// selectCases returns the named catalog cases, or the whole catalog.
func selectCases(catalog []testcases.Case, names []string) ([]testcases.Case, error) {
	if len(names) == 0 {
		return catalog, nil
	}
	cases := make([]testcases.Case, 0, len(names))
	for _, name := range names {
		c, ok := testcases.Lookup(catalog, name)
		if !ok {
			return nil, fmt.Errorf("%s: not in the catalog", name)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func prepare(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	env := state.EnvFromContext(ctx)
	if env.Cfg, err = config.LoadConfiguration(cmd.String("config")); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if env.Log, err = env.Cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	return ctx, nil
}

func finish(ctx context.Context, _ *cli.Command) error {
	state.EnvFromContext(ctx).RestoreStdLog()
	return nil
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "update-references",
		Usage:     "render the reference images of the test catalog",
		ArgsUsage: "[NAME...]",
		Before:    prepare,
		After:     finish,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "pdf", Usage: "also write PDF renderings"},
			&cli.StringFlag{Name: "export", Usage: "write the catalog as JSON to `FILE` instead of rendering"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env := state.EnvFromContext(ctx)
			cfg := env.Cfg

			catalog := testcases.All
			if cfg.Paths.Catalog != "" {
				var err error
				if catalog, err = testcases.LoadCatalog(cfg.Paths.Catalog); err != nil {
					return err
				}
			}
			cases, err := selectCases(catalog, cmd.Args().Slice())
			if err != nil {
				return err
			}

			if fname := cmd.String("export"); fname != "" {
				return exportCatalog(fname, cases)
			}

			u := &updater{
				engine: mapnik.NewEngine(datasource.Default()),
				paths: runner.Config{
					StylesDir: cfg.Paths.Styles,
					ImagesDir: cfg.Paths.Images,
				},
				strict: cfg.Run.StrictStyles,
				pdf:    cfg.References.PDF || cmd.Bool("pdf"),
				out:    out,
				log:    env.Log,
			}
			n, err := u.update(ctx, cases)
			env.Log.Info("References written", zap.Int("images", n))
			return err
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	err := newApp(color.Output).Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
