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

// Package testcases holds the catalog of visual test cases.
//
// Every case names a style resource. The style is rendered once per size,
// and each rendering is compared against a reference image keyed by the
// rendered width.
package testcases

import (
	"fmt"
	"slices"

	"seehuhn.de/go/geom/rect"
)

// Size is the pixel size of a rendered image.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Case defines a single visual test.
type Case struct {
	Name  string     // name of the style resource, without extension
	Sizes []Size     // render sizes, in order (nil means DefaultSizes)
	BBox  *rect.Rect // viewport in map coordinates (nil means fit all data)
}

// Resolve returns a copy of c with defaults filled in.
//
// The defaults are:
//   - Sizes: DefaultSizes
//   - BBox: nil, the renderer fits the full data extent
func (c Case) Resolve() Case {
	res := Case{Name: c.Name}
	if len(c.Sizes) > 0 {
		res.Sizes = slices.Clone(c.Sizes)
	} else {
		res.Sizes = slices.Clone(DefaultSizes)
	}
	if c.BBox != nil {
		bbox := *c.BBox
		res.BBox = &bbox
	}
	return res
}

// box is a helper to create a viewport rectangle.
func box(llx, lly, urx, ury float64) *rect.Rect {
	return &rect.Rect{LLx: llx, LLy: lly, URx: urx, URy: ury}
}
