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
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// paintRaster draws a scene into a new anti-aliased RGBA context.
func paintRaster(sc *scene) *gg.Context {
	dc := gg.NewContext(sc.width, sc.height)
	if sc.background.A != 0 {
		dc.SetColor(sc.background)
		dc.Clear()
	}
	dc.SetFontFace(basicfont.Face7x13)

	for _, o := range sc.ops {
		switch o := o.(type) {
		case *fillOp:
			tracePath(dc, o.path)
			if o.evenOdd {
				dc.SetFillRule(gg.FillRuleEvenOdd)
			} else {
				dc.SetFillRule(gg.FillRuleWinding)
			}
			dc.SetColor(o.color)
			dc.Fill()

		case *strokeOp:
			tracePath(dc, o.path)
			dc.SetColor(o.color)
			dc.SetLineWidth(o.width)
			dc.SetLineCap(ggCap(o.cap))
			dc.SetLineJoin(ggJoin(o.join))
			dc.SetDash(o.dash...)
			dc.Stroke()

		case *markerOp:
			dc.DrawCircle(o.center.X, o.center.Y, o.radius)
			dc.SetFillRule(gg.FillRuleWinding)
			dc.SetColor(o.fill)
			if o.strokeWidth > 0 && o.stroke.A != 0 {
				dc.FillPreserve()
				dc.SetColor(o.stroke)
				dc.SetLineWidth(o.strokeWidth)
				dc.SetDash()
				dc.Stroke()
			} else {
				dc.Fill()
			}

		case *labelOp:
			if r := int(o.haloRadius + 0.5); r > 0 && o.halo.A != 0 {
				dc.SetColor(o.halo)
				for dy := -r; dy <= r; dy++ {
					for dx := -r; dx <= r; dx++ {
						if dx*dx+dy*dy > r*r || (dx == 0 && dy == 0) {
							continue
						}
						dc.DrawStringAnchored(o.text, o.at.X+float64(dx), o.at.Y+float64(dy), 0.5, 0.5)
					}
				}
			}
			dc.SetColor(o.fill)
			dc.DrawStringAnchored(o.text, o.at.X, o.at.Y, 0.5, 0.5)
		}
	}
	return dc
}

func tracePath(dc *gg.Context, p *path.Data) {
	walkPath(p,
		func(v vec.Vec2) { dc.MoveTo(v.X, v.Y) },
		func(v vec.Vec2) { dc.LineTo(v.X, v.Y) },
		func(a, b, c vec.Vec2) { dc.CubicTo(a.X, a.Y, b.X, b.Y, c.X, c.Y) },
		dc.ClosePath)
}

func ggCap(c graphics.LineCapStyle) gg.LineCap {
	switch c {
	case graphics.LineCapRound:
		return gg.LineCapRound
	case graphics.LineCapSquare:
		return gg.LineCapSquare
	}
	return gg.LineCapButt
}

// ggJoin maps line joins to gg, which has no miter joins; bevel joins
// are the closest match.
func ggJoin(j graphics.LineJoinStyle) gg.LineJoin {
	if j == graphics.LineJoinRound {
		return gg.LineJoinRound
	}
	return gg.LineJoinBevel
}
