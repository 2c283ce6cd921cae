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

package style

import (
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Marshal returns the canonical XML form of m.  Attributes are sorted,
// and symbolizer attributes are only written where they differ from the
// defaults.
func Marshal(m *Map) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("Map")
	if m.Background.A != 0 {
		root.CreateAttr("background-color", FormatColor(m.Background))
	}
	if m.SRS != "" {
		root.CreateAttr("srs", m.SRS)
	}
	root.SortAttrs()

	for _, s := range m.Styles {
		se := root.CreateElement("Style")
		se.CreateAttr("name", s.Name)
		for _, r := range s.Rules {
			writeRule(se, r)
		}
	}

	for _, l := range m.Layers {
		le := root.CreateElement("Layer")
		le.CreateAttr("name", l.Name)
		if l.SRS != "" {
			le.CreateAttr("srs", l.SRS)
		}
		if !l.Active {
			le.CreateAttr("status", "off")
		}
		le.SortAttrs()

		for _, name := range l.StyleNames {
			le.CreateElement("StyleName").SetText(name)
		}
		ds := le.CreateElement("Datasource")
		for _, key := range l.Params.Keys() {
			p := ds.CreateElement("Parameter")
			p.CreateAttr("name", key)
			p.SetText(l.Params[key])
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// Save writes the canonical XML form of m to path, creating the parent
// directory if needed.
func Save(m *Map, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeRule(parent *etree.Element, r *Rule) {
	re := parent.CreateElement("Rule")
	if r.Name != "" {
		re.CreateAttr("name", r.Name)
	}
	if !r.Filter.IsZero() {
		re.CreateElement("Filter").SetText(r.Filter.String())
	}
	if r.ElseFilter {
		re.CreateElement("ElseFilter")
	}
	for _, sym := range r.Symbolizers {
		writeSymbolizer(re, sym)
	}
}

func writeSymbolizer(parent *etree.Element, sym Symbolizer) {
	e := parent.CreateElement(sym.elementName())
	a := attrWriter{e}

	switch s := sym.(type) {
	case *PolygonSymbolizer:
		d := NewPolygonSymbolizer()
		a.color("fill", s.Fill, d.Fill)
		a.float("fill-opacity", s.FillOpacity, d.FillOpacity)
	case *LineSymbolizer:
		d := NewLineSymbolizer()
		a.color("stroke", s.Stroke, d.Stroke)
		a.float("stroke-width", s.Width, d.Width)
		a.float("stroke-opacity", s.Opacity, d.Opacity)
		if s.Cap != d.Cap {
			e.CreateAttr("stroke-linecap", keyOf(capNames, s.Cap))
		}
		if s.Join != d.Join {
			e.CreateAttr("stroke-linejoin", keyOf(joinNames, s.Join))
		}
		if len(s.Dash) > 0 {
			parts := make([]string, len(s.Dash))
			for i, x := range s.Dash {
				parts[i] = formatFloat(x)
			}
			e.CreateAttr("stroke-dasharray", strings.Join(parts, ","))
		}
	case *MarkersSymbolizer:
		d := NewMarkersSymbolizer()
		a.color("fill", s.Fill, d.Fill)
		a.color("stroke", s.Stroke, d.Stroke)
		a.float("stroke-width", s.StrokeWidth, d.StrokeWidth)
		a.float("width", s.Width, d.Width)
		a.float("opacity", s.Opacity, d.Opacity)
	case *TextSymbolizer:
		d := NewTextSymbolizer()
		if s.FaceName != "" {
			e.CreateAttr("face-name", s.FaceName)
		}
		a.float("size", s.Size, d.Size)
		a.color("fill", s.Fill, d.Fill)
		a.color("halo-fill", s.HaloFill, d.HaloFill)
		a.float("halo-radius", s.HaloRadius, d.HaloRadius)
		a.float("dx", s.Dx, d.Dx)
		a.float("dy", s.Dy, d.Dy)
		e.SetText(s.Name)
	}
	e.SortAttrs()
}

type attrWriter struct {
	e *etree.Element
}

func (a attrWriter) color(key string, c, dflt color.NRGBA) {
	if c != dflt {
		a.e.CreateAttr(key, FormatColor(c))
	}
}

func (a attrWriter) float(key string, x, dflt float64) {
	if x != dflt {
		a.e.CreateAttr(key, formatFloat(x))
	}
}

func keyOf[V comparable](m map[string]V, v V) string {
	keys := make([]string, 0, len(m))
	for k, x := range m {
		if x == v {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
