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

package compare

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// percentiles returns the 80th, 95th and 99th percentile of the absolute
// gray level differences between two images of equal size.
func percentiles(a, b image.Image) (p80, p95, p99 int) {
	ra, rb := a.Bounds(), b.Bounds()
	w, h := ra.Dx(), ra.Dy()
	total := w * h
	if total == 0 || rb.Dx() != w || rb.Dy() != h {
		return 0, 0, 0
	}

	diffs := make([]int, 0, total)
	for y := range h {
		for x := range w {
			ga := color.GrayModel.Convert(a.At(ra.Min.X+x, ra.Min.Y+y)).(color.Gray)
			gb := color.GrayModel.Convert(b.At(rb.Min.X+x, rb.Min.Y+y)).(color.Gray)
			d := int(ga.Y) - int(gb.Y)
			if d < 0 {
				d = -d
			}
			diffs = append(diffs, d)
		}
	}
	sort.Ints(diffs)

	at := func(q float64) int {
		return diffs[int(math.Round(q*float64(total-1)))]
	}
	return at(0.80), at(0.95), at(0.99)
}
