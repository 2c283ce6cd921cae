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
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"seehuhn.de/go/pdf/graphics"

	"github.com/orofarne/mapnik/datasource"
)

// ErrUnknownStyle is reported for a layer which names a style that is
// not defined in the document.
var ErrUnknownStyle = errors.New("unknown style")

var (
	capNames = map[string]graphics.LineCapStyle{
		"butt":   graphics.LineCapButt,
		"round":  graphics.LineCapRound,
		"square": graphics.LineCapSquare,
	}
	joinNames = map[string]graphics.LineJoinStyle{
		"miter": graphics.LineJoinMiter,
		"round": graphics.LineJoinRound,
		"bevel": graphics.LineJoinBevel,
	}
)

// Load reads a style file.  In strict mode unknown elements and
// attributes are errors, otherwise they are ignored.
func Load(path string, strict bool) (*Map, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, err
	}
	m, err := decode(doc, strict)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Base = filepath.Dir(path)
	return m, nil
}

// LoadString parses a style document held in memory.  Relative datasource
// files are resolved against base.
func LoadString(s, base string, strict bool) (*Map, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, err
	}
	m, err := decode(doc, strict)
	if err != nil {
		return nil, err
	}
	m.Base = base
	return m, nil
}

func decode(doc *etree.Document, strict bool) (*Map, error) {
	root := doc.Root()
	if root == nil || root.Tag != "Map" {
		return nil, errors.New("missing <Map> root element")
	}

	l := &loader{strict: strict}
	m := &Map{SRS: root.SelectAttrValue("srs", "")}
	l.checkAttrs(root, "srs", "background-color")
	l.color(root, "background-color", &m.Background)

	for _, e := range root.ChildElements() {
		switch e.Tag {
		case "Style":
			m.Styles = append(m.Styles, l.style(e))
		case "Layer":
			m.Layers = append(m.Layers, l.layer(e))
		default:
			l.unknown(e, root)
		}
	}

	for _, layer := range m.Layers {
		for _, name := range layer.StyleNames {
			if m.Style(name) == nil {
				l.errorf("layer %q: %w %q", layer.Name, ErrUnknownStyle, name)
			}
		}
	}

	if l.err != nil {
		return nil, l.err
	}
	return m, nil
}

// loader collects all problems found in a document.
type loader struct {
	strict bool
	err    error
}

func (l *loader) errorf(format string, args ...any) {
	l.err = multierr.Append(l.err, fmt.Errorf(format, args...))
}

func (l *loader) unknown(e, parent *etree.Element) {
	if l.strict {
		l.errorf("unknown element <%s> in <%s>", e.Tag, parent.Tag)
	}
}

func (l *loader) checkAttrs(e *etree.Element, known ...string) {
	if !l.strict {
		return
	}
	for _, a := range e.Attr {
		if a.Space == "xmlns" || a.Key == "xmlns" {
			continue
		}
		if !slices.Contains(known, a.Key) {
			l.errorf("unknown attribute %q on <%s>", a.Key, e.Tag)
		}
	}
}

func (l *loader) color(e *etree.Element, key string, dst *color.NRGBA) {
	a := e.SelectAttr(key)
	if a == nil {
		return
	}
	c, err := ParseColor(a.Value)
	if err != nil {
		l.errorf("<%s %s>: %v", e.Tag, key, err)
		return
	}
	*dst = c
}

func (l *loader) float(e *etree.Element, key string, dst *float64) {
	a := e.SelectAttr(key)
	if a == nil {
		return
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil {
		l.errorf("<%s %s>: invalid number %q", e.Tag, key, a.Value)
		return
	}
	*dst = x
}

func (l *loader) style(e *etree.Element) *Style {
	l.checkAttrs(e, "name")
	s := &Style{Name: e.SelectAttrValue("name", "")}
	if s.Name == "" {
		l.errorf("<Style> without name")
	}
	for _, c := range e.ChildElements() {
		if c.Tag != "Rule" {
			l.unknown(c, e)
			continue
		}
		s.Rules = append(s.Rules, l.rule(c))
	}
	return s
}

func (l *loader) rule(e *etree.Element) *Rule {
	l.checkAttrs(e, "name")
	r := &Rule{Name: e.SelectAttrValue("name", "")}
	for _, c := range e.ChildElements() {
		switch c.Tag {
		case "Filter":
			f, err := ParseFilter(c.Text())
			if err != nil {
				l.errorf("%v", err)
				continue
			}
			r.Filter = f
		case "ElseFilter":
			r.ElseFilter = true
		case "PolygonSymbolizer":
			r.Symbolizers = append(r.Symbolizers, l.polygon(c))
		case "LineSymbolizer":
			r.Symbolizers = append(r.Symbolizers, l.line(c))
		case "MarkersSymbolizer":
			r.Symbolizers = append(r.Symbolizers, l.markers(c))
		case "TextSymbolizer":
			r.Symbolizers = append(r.Symbolizers, l.text(c))
		default:
			l.unknown(c, e)
		}
	}
	return r
}

func (l *loader) polygon(e *etree.Element) *PolygonSymbolizer {
	l.checkAttrs(e, "fill", "fill-opacity")
	s := NewPolygonSymbolizer()
	l.color(e, "fill", &s.Fill)
	l.float(e, "fill-opacity", &s.FillOpacity)
	return s
}

func (l *loader) line(e *etree.Element) *LineSymbolizer {
	l.checkAttrs(e, "stroke", "stroke-width", "stroke-opacity",
		"stroke-linecap", "stroke-linejoin", "stroke-dasharray")
	s := NewLineSymbolizer()
	l.color(e, "stroke", &s.Stroke)
	l.float(e, "stroke-width", &s.Width)
	l.float(e, "stroke-opacity", &s.Opacity)
	if v := e.SelectAttrValue("stroke-linecap", ""); v != "" {
		if c, ok := capNames[v]; ok {
			s.Cap = c
		} else {
			l.errorf("<LineSymbolizer>: invalid stroke-linecap %q", v)
		}
	}
	if v := e.SelectAttrValue("stroke-linejoin", ""); v != "" {
		if j, ok := joinNames[v]; ok {
			s.Join = j
		} else {
			l.errorf("<LineSymbolizer>: invalid stroke-linejoin %q", v)
		}
	}
	if v := e.SelectAttrValue("stroke-dasharray", ""); v != "" {
		dash, err := parseDash(v)
		if err != nil {
			l.errorf("<LineSymbolizer>: %v", err)
		}
		s.Dash = dash
	}
	return s
}

func (l *loader) markers(e *etree.Element) *MarkersSymbolizer {
	l.checkAttrs(e, "fill", "stroke", "stroke-width", "width", "opacity")
	s := NewMarkersSymbolizer()
	l.color(e, "fill", &s.Fill)
	l.color(e, "stroke", &s.Stroke)
	l.float(e, "stroke-width", &s.StrokeWidth)
	l.float(e, "width", &s.Width)
	l.float(e, "opacity", &s.Opacity)
	return s
}

func (l *loader) text(e *etree.Element) *TextSymbolizer {
	l.checkAttrs(e, "name", "face-name", "size", "fill",
		"halo-fill", "halo-radius", "dx", "dy")
	s := NewTextSymbolizer()
	s.Name = strings.TrimSpace(e.Text())
	if s.Name == "" {
		s.Name = e.SelectAttrValue("name", "")
	}
	s.FaceName = e.SelectAttrValue("face-name", "")
	l.float(e, "size", &s.Size)
	l.color(e, "fill", &s.Fill)
	l.color(e, "halo-fill", &s.HaloFill)
	l.float(e, "halo-radius", &s.HaloRadius)
	l.float(e, "dx", &s.Dx)
	l.float(e, "dy", &s.Dy)
	return s
}

func (l *loader) layer(e *etree.Element) *Layer {
	l.checkAttrs(e, "name", "srs", "status")
	layer := &Layer{
		Name:   e.SelectAttrValue("name", ""),
		SRS:    e.SelectAttrValue("srs", ""),
		Active: true,
	}
	switch status := e.SelectAttrValue("status", "on"); status {
	case "on", "true", "1":
	case "off", "false", "0":
		layer.Active = false
	default:
		l.errorf("layer %q: invalid status %q", layer.Name, status)
	}

	for _, c := range e.ChildElements() {
		switch c.Tag {
		case "StyleName":
			layer.StyleNames = append(layer.StyleNames, strings.TrimSpace(c.Text()))
		case "Datasource":
			layer.Params = l.params(c)
		default:
			l.unknown(c, e)
		}
	}
	if layer.Params == nil {
		l.errorf("layer %q: missing <Datasource>", layer.Name)
	}
	return layer
}

func (l *loader) params(e *etree.Element) datasource.Params {
	p := make(datasource.Params)
	for _, c := range e.ChildElements() {
		if c.Tag != "Parameter" {
			l.unknown(c, e)
			continue
		}
		l.checkAttrs(c, "name")
		name := c.SelectAttrValue("name", "")
		if name == "" {
			l.errorf("<Parameter> without name")
			continue
		}
		p[name] = c.Text()
	}
	return p
}

func parseDash(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	dash := make([]float64, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil || x < 0 {
			return nil, fmt.Errorf("invalid stroke-dasharray %q", s)
		}
		dash = append(dash, x)
	}
	return dash, nil
}
