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

package mapnik

import (
	"errors"

	"github.com/paulmach/orb"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/orofarne/mapnik/datasource"
	"github.com/orofarne/mapnik/style"
)

// ErrNoExtent is returned by ZoomAll if no active layer has any geometry.
var ErrNoExtent = errors.New("map has no extent")

// Map is a style configuration together with an output size and a
// viewport.
type Map struct {
	Width, Height int
	Style         *style.Map

	engine  *Engine
	sources []datasource.Datasource // parallel to Style.Layers, nil if inactive

	box    rect.Rect
	zoomed bool
}

// ZoomToBox sets the viewport to box.  The box is grown around its center
// along one axis so that its aspect ratio matches the pixel size of the
// map.
func (m *Map) ZoomToBox(box rect.Rect) {
	m.box = fitAspect(box, float64(m.Width)/float64(m.Height))
	m.zoomed = true
}

// ZoomAll sets the viewport to the union of the extents of all active
// layers.
func (m *Map) ZoomAll() error {
	var all orb.Bound
	found := false
	for _, ds := range m.sources {
		if ds == nil {
			continue
		}
		b, ok := ds.Extent()
		if !ok {
			continue
		}
		if !found {
			all = b
			found = true
		} else {
			all = all.Union(b)
		}
	}
	if !found {
		return ErrNoExtent
	}
	m.ZoomToBox(rect.Rect{LLx: all.Min[0], LLy: all.Min[1], URx: all.Max[0], URy: all.Max[1]})
	return nil
}

// Extent returns the current viewport in world coordinates.
func (m *Map) Extent() rect.Rect {
	return m.box
}

// transform returns the matrix which maps world coordinates to pixel
// coordinates, with the origin in the top-left corner.
func (m *Map) transform() matrix.Matrix {
	s := float64(m.Width) / (m.box.URx - m.box.LLx)
	return matrix.Matrix{s, 0, 0, -s, -m.box.LLx * s, m.box.URy * s}
}

// fitAspect grows box around its center until width/height equals ratio.
// Degenerate boxes are padded first.
func fitAspect(box rect.Rect, ratio float64) rect.Rect {
	w, h := box.URx-box.LLx, box.URy-box.LLy
	if w <= 0 && h <= 0 {
		const pad = 0.5
		box = rect.Rect{LLx: box.LLx - pad, LLy: box.LLy - pad, URx: box.URx + pad, URy: box.URy + pad}
		w, h = box.URx-box.LLx, box.URy-box.LLy
	}

	cx, cy := (box.LLx+box.URx)/2, (box.LLy+box.URy)/2
	if h <= 0 || w/h > ratio {
		h = w / ratio
	} else {
		w = h * ratio
	}
	return rect.Rect{LLx: cx - w/2, LLy: cy - h/2, URx: cx + w/2, URy: cy + h/2}
}

func apply(m matrix.Matrix, p orb.Point) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p[0] + m[2]*p[1] + m[4],
		Y: m[1]*p[0] + m[3]*p[1] + m[5],
	}
}

// RenderToFile is a shorthand for the package level RenderToFile.
func (m *Map) RenderToFile(path string) error {
	return RenderToFile(m, path)
}

// Save is a shorthand for SaveMap.
func (m *Map) Save(path string) error {
	return SaveMap(m, path)
}
