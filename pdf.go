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
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"
)

// writePDF writes a scene as a single page PDF file, with one PDF unit
// per pixel.  Colors are converted to gray levels.  Labels are omitted.
func writePDF(sc *scene, fname string) error {
	w, h := float64(sc.width), float64(sc.height)
	page, err := document.CreateSinglePage(fname, &pdf.Rectangle{URx: w, URy: h}, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	if sc.background.A != 0 {
		page.SetFillColor(pdfcolor.DeviceGray(gray(sc.background)))
		page.Rectangle(0, 0, w, h)
		page.Fill()
	}

	// The scene uses a top-left origin.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, h})
	page.SetMiterLimit(4)

	trace := func(p *path.Data) {
		walkPath(p,
			func(v vec.Vec2) { page.MoveTo(v.X, v.Y) },
			func(v vec.Vec2) { page.LineTo(v.X, v.Y) },
			func(a, b, c vec.Vec2) { page.CurveTo(a.X, a.Y, b.X, b.Y, c.X, c.Y) },
			func() { page.ClosePath() })
	}

	dashed := false
	setDash := func(d []float64) {
		if len(d) > 0 {
			page.SetLineDash(d, 0)
			dashed = true
		} else if dashed {
			page.SetLineDash([]float64{}, 0)
			dashed = false
		}
	}

	for _, o := range sc.ops {
		switch o := o.(type) {
		case *fillOp:
			page.SetFillColor(pdfcolor.DeviceGray(gray(o.color)))
			trace(o.path)
			if o.evenOdd {
				page.FillEvenOdd()
			} else {
				page.Fill()
			}

		case *strokeOp:
			page.SetStrokeColor(pdfcolor.DeviceGray(gray(o.color)))
			page.SetLineWidth(o.width)
			page.SetLineCap(o.cap)
			page.SetLineJoin(o.join)
			setDash(o.dash)
			trace(o.path)
			page.Stroke()

		case *markerOp:
			circle := circlePath(o.center, o.radius)
			if o.fill.A != 0 {
				page.SetFillColor(pdfcolor.DeviceGray(gray(o.fill)))
				trace(circle)
				page.Fill()
			}
			if o.strokeWidth > 0 && o.stroke.A != 0 {
				page.SetStrokeColor(pdfcolor.DeviceGray(gray(o.stroke)))
				page.SetLineWidth(o.strokeWidth)
				setDash(nil)
				trace(circle)
				page.Stroke()
			}
		}
	}

	return page.Close()
}

// gray returns the luminance of c, composited over white.
func gray(c color.NRGBA) float64 {
	y := (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
	a := float64(c.A) / 255
	return 1 - a*(1-y)
}
