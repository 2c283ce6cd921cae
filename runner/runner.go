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

// Package runner renders the styles of a test catalog at all configured
// sizes and compares the results with reference images.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"seehuhn.de/go/geom/rect"

	"github.com/orofarne/mapnik/testcases"
)

// Config holds the directories and switches of a run.
type Config struct {
	StylesDir  string // <name>.xml style files
	ImagesDir  string // <name>-<width>-reference.png images
	ScratchDir string // rendered <name>-<width>-agg.png images
	OutputDir  string // canonical <name>-out.xml dumps

	// RequiredPlugin must be provided by the engine, otherwise the run is
	// skipped.
	RequiredPlugin string

	Quiet    bool // suppress per-case narration
	Generate bool // accept failing images as new references
}

// Engine creates maps from style files.
type Engine interface {
	Plugins() []string
	Load(width, height int, stylePath string) (Map, error)
}

// Map is a loaded style, ready for rendering.
type Map interface {
	ZoomToBox(box rect.Rect)
	ZoomAll() error
	RenderToFile(path string) error
	Save(path string) error
}

// Comparator counts differing pixels and reports on a run.
type Comparator interface {
	Compare(actual, expected string) (int, error)
	Summary(generate bool) error
}

// Stats describes a finished run.
type Stats struct {
	Skipped bool // the required plugin was missing
	Cases   int  // cases rendered at all sizes
	Renders int  // (case, size) units
	Failed  int  // units with a nonzero pixel difference
}

// Runner executes test cases.
type Runner struct {
	cfg    Config
	engine Engine
	cmp    Comparator
	out    io.Writer
	log    *zap.Logger
}

var dashes = strings.Repeat("-", 80)

// New returns a runner which writes its narration to out.
func New(cfg Config, engine Engine, cmp Comparator, out io.Writer, log *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		engine: engine,
		cmp:    cmp,
		out:    out,
		log:    log.Named("runner"),
	}
}

// Run processes the cases in order.  Each case is rendered and compared at
// all of its sizes, then its configuration is saved.  The comparator's
// summary is printed at the end.
//
// Nothing is done if the engine lacks the required plugin.  The first
// error from the engine or the comparator aborts the run, as does
// cancellation of ctx, which is checked between units.
func (r *Runner) Run(ctx context.Context, cases []testcases.Case) (Stats, error) {
	var stats Stats
	if !r.pluginAvailable() {
		r.log.Info("required datasource plugin not available, skipping",
			zap.String("plugin", r.cfg.RequiredPlugin))
		stats.Skipped = true
		return stats, nil
	}

	for _, c := range cases {
		c = c.Resolve()

		var m Map
		for _, size := range c.Sizes {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			var diff int
			var err error
			m, diff, err = r.RenderCase(c.Name, size, c.BBox)
			if err != nil {
				return stats, err
			}
			stats.Renders++
			if diff > 0 {
				stats.Failed++
			}
		}

		if m != nil {
			if err := r.Persist(c.Name, m); err != nil {
				return stats, err
			}
		}
		stats.Cases++
	}

	if err := r.cmp.Summary(r.cfg.Generate); err != nil {
		return stats, fmt.Errorf("summary: %w", err)
	}
	return stats, nil
}

func (r *Runner) pluginAvailable() bool {
	if r.cfg.RequiredPlugin == "" {
		return true
	}
	plugins := make(map[string]struct{})
	for _, p := range r.engine.Plugins() {
		plugins[p] = struct{}{}
	}
	_, ok := plugins[r.cfg.RequiredPlugin]
	return ok
}

// RenderCase renders one style at one size into the scratch directory,
// compares the result with its reference image and returns the map
// together with the number of differing pixels.  A nonzero difference is
// reported, even in quiet mode, but is not an error.
func (r *Runner) RenderCase(name string, size testcases.Size, bbox *rect.Rect) (Map, int, error) {
	if !r.cfg.Quiet {
		fmt.Fprintf(r.out, "Rendering style \"%s\" with size %dx%d ... %s\n",
			name, size.Width, size.Height, color.New(color.FgGreen, color.Bold).Sprint("✓"))
		fmt.Fprintln(r.out, dashes)
	}

	m, err := r.engine.Load(size.Width, size.Height, r.cfg.StylePath(name))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}
	if bbox != nil {
		m.ZoomToBox(*bbox)
	} else if err := m.ZoomAll(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}

	if err := os.MkdirAll(r.cfg.ScratchDir, 0o755); err != nil {
		return nil, 0, err
	}
	actual := r.cfg.ActualPath(name, size.Width)
	if err := m.RenderToFile(actual); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}

	diff, err := r.cmp.Compare(actual, r.cfg.ReferencePath(name, size.Width))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}
	r.log.Debug("rendered",
		zap.String("style", name),
		zap.Stringer("size", size),
		zap.Int("diff", diff))

	if diff > 0 {
		fmt.Fprintln(r.out, dashes)
		fmt.Fprintf(r.out, "%s %d different pixels\n", color.YellowString("Error:"), diff)
		fmt.Fprintln(r.out, dashes)
	}
	return m, diff, nil
}

// Persist saves the canonical configuration of m as <name>-out.xml.
func (r *Runner) Persist(name string, m Map) error {
	path := r.cfg.OutputPath(name)
	if err := m.Save(path); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	r.log.Debug("saved map", zap.String("path", path))
	return nil
}

// StylePath returns the location of the style file for a case.
func (cfg Config) StylePath(name string) string {
	return filepath.Join(cfg.StylesDir, name+".xml")
}

// ActualPath returns the location of the rendered image.
func (cfg Config) ActualPath(name string, width int) string {
	return filepath.Join(cfg.ScratchDir, fmt.Sprintf("%s-%d-agg.png", name, width))
}

// ReferencePath returns the location of the reference image.
func (cfg Config) ReferencePath(name string, width int) string {
	return filepath.Join(cfg.ImagesDir, fmt.Sprintf("%s-%d-reference.png", name, width))
}

// OutputPath returns the location of the saved configuration.
func (cfg Config) OutputPath(name string) string {
	return filepath.Join(cfg.OutputDir, name+"-out.xml")
}
