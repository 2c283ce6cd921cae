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

// Package compare counts the pixels which differ between rendered images
// and their references, and reports the results of a run.
package compare

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/orisano/pixelmatch"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options control how images are compared.
type Options struct {
	// Threshold is the per-pixel color distance, between 0 and 1, below
	// which pixels count as equal.
	Threshold float64

	// IncludeAA counts anti-aliased pixels as differences.
	IncludeAA bool

	// DiffDir, if set, receives a three panel image (actual, difference,
	// reference) for every pair of images which differ.
	DiffDir string

	// AcceptMissing records a missing reference as a failed comparison
	// instead of returning an error.  This is used when references are
	// generated.
	AcceptMissing bool
}

// DefaultOptions returns the default comparison settings.
func DefaultOptions() Options {
	return Options{Threshold: 0.1}
}

// Outcome is the result of one comparison.
type Outcome struct {
	Actual   string
	Expected string
	Diff     int  // number of differing pixels
	Missing  bool // the reference did not exist
}

// Comparator compares images and keeps the outcomes until Summary is
// called.
type Comparator struct {
	opts     Options
	out      io.Writer
	log      *zap.Logger
	outcomes []Outcome
}

// New returns a comparator which prints its summary to out.
func New(opts Options, out io.Writer, log *zap.Logger) *Comparator {
	return &Comparator{
		opts: opts,
		out:  out,
		log:  log.Named("compare"),
	}
}

// Compare returns the number of pixels which differ between the images
// stored at actual and expected.  A missing reference is an error
// wrapping fs.ErrNotExist, unless Options.AcceptMissing is set.
func (c *Comparator) Compare(actual, expected string) (int, error) {
	a, err := imaging.Open(actual)
	if err != nil {
		return 0, fmt.Errorf("actual image: %w", err)
	}

	e, err := imaging.Open(expected)
	if errors.Is(err, fs.ErrNotExist) && c.opts.AcceptMissing {
		n := a.Bounds().Dx() * a.Bounds().Dy()
		c.outcomes = append(c.outcomes, Outcome{Actual: actual, Expected: expected, Diff: n, Missing: true})
		c.log.Warn("reference missing", zap.String("expected", expected))
		return n, nil
	} else if err != nil {
		return 0, fmt.Errorf("reference image: %w", err)
	}

	opts := []pixelmatch.MatchOption{pixelmatch.Threshold(c.opts.Threshold)}
	if c.opts.IncludeAA {
		opts = append(opts, pixelmatch.IncludeAntiAlias)
	}
	var diffImg image.Image
	if c.opts.DiffDir != "" {
		opts = append(opts, pixelmatch.WriteTo(&diffImg))
	}

	n, err := pixelmatch.MatchPixel(a, e, opts...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(actual), err)
	}
	c.outcomes = append(c.outcomes, Outcome{Actual: actual, Expected: expected, Diff: n})

	if n > 0 {
		p80, p95, p99 := percentiles(a, e)
		c.log.Debug("images differ",
			zap.String("actual", actual),
			zap.Int("pixels", n),
			zap.Ints("percentiles", []int{p80, p95, p99}))

		if c.opts.DiffDir != "" && diffImg != nil {
			if err := c.writePanel(actual, a, diffImg, e); err != nil {
				c.log.Warn("cannot write diff image", zap.Error(err))
			}
		}
	}
	return n, nil
}

// writePanel writes actual (left), diff (middle) and reference (right)
// side by side.
func (c *Comparator) writePanel(actual string, a, diff, e image.Image) error {
	if err := os.MkdirAll(c.opts.DiffDir, 0o755); err != nil {
		return err
	}
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	panel := imaging.New(3*w, h, color.Black)
	panel = imaging.Paste(panel, a, image.Pt(0, 0))
	panel = imaging.Paste(panel, diff, image.Pt(w, 0))
	panel = imaging.Paste(panel, e, image.Pt(2*w, 0))

	base := strings.TrimSuffix(filepath.Base(actual), filepath.Ext(actual))
	return imaging.Save(panel, filepath.Join(c.opts.DiffDir, base+"-diff.png"))
}

// Outcomes returns the comparisons recorded since the last summary.
func (c *Comparator) Outcomes() []Outcome {
	return c.outcomes
}

// Summary prints how many comparisons passed and lists the failures.
// If generate is set, the actual image of every failure is copied over its
// reference.  The recorded outcomes are cleared.
func (c *Comparator) Summary(generate bool) error {
	defer func() { c.outcomes = nil }()

	var failed []Outcome
	for _, o := range c.outcomes {
		if o.Diff != 0 {
			failed = append(failed, o)
		}
	}
	total := len(c.outcomes)
	fmt.Fprintf(c.out, "%d/%d passed\n", total-len(failed), total)
	for _, o := range failed {
		if o.Missing {
			fmt.Fprintf(c.out, "  %s: no reference image %s\n", o.Actual, o.Expected)
		} else {
			fmt.Fprintf(c.out, "  %s: %d different pixels (reference %s)\n", o.Actual, o.Diff, o.Expected)
		}
	}

	if !generate {
		return nil
	}
	var err error
	for _, o := range failed {
		if cerr := copyFile(o.Actual, o.Expected); cerr != nil {
			err = multierr.Append(err, cerr)
			continue
		}
		c.log.Info("reference updated", zap.String("reference", o.Expected))
	}
	return err
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}
