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
	"image/color"
	"math"

	"github.com/paulmach/orb"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"github.com/orofarne/mapnik/datasource"
	"github.com/orofarne/mapnik/style"
)

// scene is a device independent list of drawing operations in pixel
// coordinates.  Both output backends paint from a scene.
type scene struct {
	width, height int
	background    color.NRGBA
	ops           []op
}

type op interface {
	isOp()
}

type fillOp struct {
	path    *path.Data
	color   color.NRGBA
	evenOdd bool
}

type strokeOp struct {
	path  *path.Data
	color color.NRGBA
	width float64
	cap   graphics.LineCapStyle
	join  graphics.LineJoinStyle
	dash  []float64
}

type markerOp struct {
	center      vec.Vec2
	radius      float64
	fill        color.NRGBA
	stroke      color.NRGBA
	strokeWidth float64
}

type labelOp struct {
	text       string
	at         vec.Vec2
	fill       color.NRGBA
	halo       color.NRGBA
	haloRadius float64
}

func (*fillOp) isOp()   {}
func (*strokeOp) isOp() {}
func (*markerOp) isOp() {}
func (*labelOp) isOp()  {}

// buildScene collects the drawing operations for m.  A map which was never
// zoomed is first zoomed to its full extent.
func (m *Map) buildScene() (*scene, error) {
	if !m.zoomed {
		err := m.ZoomAll()
		if errors.Is(err, ErrNoExtent) {
			m.ZoomToBox(m.box)
		} else if err != nil {
			return nil, err
		}
	}

	sc := &scene{width: m.Width, height: m.Height, background: m.Style.Background}
	ctm := m.transform()
	query := orb.Bound{
		Min: orb.Point{m.box.LLx, m.box.LLy},
		Max: orb.Point{m.box.URx, m.box.URy},
	}

	for i, layer := range m.Style.Layers {
		if i >= len(m.sources) || m.sources[i] == nil {
			continue
		}
		features := m.sources[i].Features(query)
		for _, name := range layer.StyleNames {
			st := m.Style.Style(name)
			if st == nil {
				continue
			}
			for _, f := range features {
				sc.applyStyle(st, f, ctm)
			}
		}
	}
	return sc, nil
}

func (sc *scene) applyStyle(st *style.Style, f datasource.Feature, ctm matrix.Matrix) {
	matched := false
	for _, r := range st.Rules {
		if r.ElseFilter || !r.Filter.Match(f.Properties) {
			continue
		}
		matched = true
		sc.applyRule(r, f, ctm)
	}
	if matched {
		return
	}
	for _, r := range st.Rules {
		if r.ElseFilter {
			sc.applyRule(r, f, ctm)
		}
	}
}

func (sc *scene) applyRule(r *style.Rule, f datasource.Feature, ctm matrix.Matrix) {
	for _, sym := range r.Symbolizers {
		switch s := sym.(type) {
		case *style.PolygonSymbolizer:
			c := withOpacity(s.Fill, s.FillOpacity)
			if c.A == 0 {
				continue
			}
			for _, poly := range polygons(f.Geometry) {
				sc.ops = append(sc.ops, &fillOp{path: polygonPath(ctm, poly), color: c, evenOdd: true})
			}

		case *style.LineSymbolizer:
			c := withOpacity(s.Stroke, s.Opacity)
			if c.A == 0 || s.Width <= 0 {
				continue
			}
			p := &path.Data{}
			for _, poly := range polygons(f.Geometry) {
				for _, ring := range poly {
					addPoints(p, ctm, ring, true)
				}
			}
			for _, ls := range lineStrings(f.Geometry) {
				addPoints(p, ctm, ls, false)
			}
			if len(p.Cmds) == 0 {
				continue
			}
			sc.ops = append(sc.ops, &strokeOp{
				path:  p,
				color: c,
				width: s.Width,
				cap:   s.Cap,
				join:  s.Join,
				dash:  s.Dash,
			})

		case *style.MarkersSymbolizer:
			for _, pt := range anchors(f.Geometry) {
				sc.ops = append(sc.ops, &markerOp{
					center:      apply(ctm, pt),
					radius:      s.Width / 2,
					fill:        withOpacity(s.Fill, s.Opacity),
					stroke:      withOpacity(s.Stroke, s.Opacity),
					strokeWidth: s.StrokeWidth,
				})
			}

		case *style.TextSymbolizer:
			text := s.Label(f.Properties)
			if text == "" {
				continue
			}
			for _, pt := range anchors(f.Geometry) {
				at := apply(ctm, pt)
				at.X += s.Dx
				at.Y += s.Dy
				sc.ops = append(sc.ops, &labelOp{
					text:       text,
					at:         at,
					fill:       s.Fill,
					halo:       s.HaloFill,
					haloRadius: s.HaloRadius,
				})
			}
		}
	}
}

func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = min(max(opacity, 0), 1)
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}

// polygons returns the areas of g.
func polygons(g orb.Geometry) []orb.Polygon {
	switch g := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	case orb.Ring:
		return []orb.Polygon{{g}}
	case orb.Collection:
		var res []orb.Polygon
		for _, sub := range g {
			res = append(res, polygons(sub)...)
		}
		return res
	}
	return nil
}

// lineStrings returns the linear parts of g.
func lineStrings(g orb.Geometry) []orb.LineString {
	switch g := g.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return g
	case orb.Collection:
		var res []orb.LineString
		for _, sub := range g {
			res = append(res, lineStrings(sub)...)
		}
		return res
	}
	return nil
}

// anchors returns the placement points for markers and labels: the points
// of point geometries and the bounding box center of everything else.
func anchors(g orb.Geometry) []orb.Point {
	switch g := g.(type) {
	case nil:
		return nil
	case orb.Point:
		return []orb.Point{g}
	case orb.MultiPoint:
		return g
	case orb.Collection:
		var res []orb.Point
		for _, sub := range g {
			res = append(res, anchors(sub)...)
		}
		return res
	}
	return []orb.Point{g.Bound().Center()}
}

func polygonPath(ctm matrix.Matrix, poly orb.Polygon) *path.Data {
	p := &path.Data{}
	for _, ring := range poly {
		addPoints(p, ctm, ring, true)
	}
	return p
}

func addPoints[T ~[]orb.Point](p *path.Data, ctm matrix.Matrix, pts T, closed bool) {
	if len(pts) < 2 {
		return
	}
	p.MoveTo(apply(ctm, pts[0]))
	for _, pt := range pts[1:] {
		p.LineTo(apply(ctm, pt))
	}
	if closed {
		p.Close()
	}
}

// circlePath approximates a circle by four cubic Bézier segments.
func circlePath(c vec.Vec2, r float64) *path.Data {
	const k = 0.5522847498 // 4/3 (sqrt(2) - 1)
	d := k * r
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: c.X + r, Y: c.Y}).
		CubeTo(vec.Vec2{X: c.X + r, Y: c.Y + d}, vec.Vec2{X: c.X + d, Y: c.Y + r}, vec.Vec2{X: c.X, Y: c.Y + r}).
		CubeTo(vec.Vec2{X: c.X - d, Y: c.Y + r}, vec.Vec2{X: c.X - r, Y: c.Y + d}, vec.Vec2{X: c.X - r, Y: c.Y}).
		CubeTo(vec.Vec2{X: c.X - r, Y: c.Y - d}, vec.Vec2{X: c.X - d, Y: c.Y - r}, vec.Vec2{X: c.X, Y: c.Y - r}).
		CubeTo(vec.Vec2{X: c.X + d, Y: c.Y - r}, vec.Vec2{X: c.X + r, Y: c.Y - d}, vec.Vec2{X: c.X + r, Y: c.Y}).
		Close()
}

// walkPath calls the visitor functions for the segments of p.  Quadratic
// segments are raised to cubic ones.
func walkPath(p *path.Data, moveTo, lineTo func(v vec.Vec2), cubeTo func(a, b, c vec.Vec2), closePath func()) {
	var current vec.Vec2
	i := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			current = p.Coords[i]
			moveTo(current)
			i++
		case path.CmdLineTo:
			current = p.Coords[i]
			lineTo(current)
			i++
		case path.CmdQuadTo:
			ctrl, end := p.Coords[i], p.Coords[i+1]
			c1 := vec.Vec2{X: current.X + 2*(ctrl.X-current.X)/3, Y: current.Y + 2*(ctrl.Y-current.Y)/3}
			c2 := vec.Vec2{X: end.X + 2*(ctrl.X-end.X)/3, Y: end.Y + 2*(ctrl.Y-end.Y)/3}
			cubeTo(c1, c2, end)
			current = end
			i += 2
		case path.CmdCubeTo:
			cubeTo(p.Coords[i], p.Coords[i+1], p.Coords[i+2])
			current = p.Coords[i+2]
			i += 3
		case path.CmdClose:
			closePath()
		}
	}
}
