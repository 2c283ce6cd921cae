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

// Package style implements the XML map style format: the document model,
// a loader and a canonical writer.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"seehuhn.de/go/pdf/graphics"

	"github.com/orofarne/mapnik/datasource"
)

// Map is the root of a style document.
type Map struct {
	SRS        string
	Background color.NRGBA // zero means transparent
	Styles     []*Style
	Layers     []*Layer

	// Base is the directory relative datasource files are resolved
	// against.  It is not written to XML.
	Base string
}

// Style returns the style with the given name, or nil.
func (m *Map) Style(name string) *Style {
	for _, s := range m.Styles {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Style is a named list of rules.
type Style struct {
	Name  string
	Rules []*Rule
}

// Rule applies its symbolizers to the features matching Filter.
// An ElseFilter rule applies only to features which matched no earlier
// rule of the same style.
type Rule struct {
	Name        string
	Filter      Filter
	ElseFilter  bool
	Symbolizers []Symbolizer
}

// Layer binds a datasource to a list of styles.
type Layer struct {
	Name       string
	SRS        string
	StyleNames []string
	Params     datasource.Params
	Active     bool
}

// Symbolizer describes how matching features are drawn.
// It is one of *PolygonSymbolizer, *LineSymbolizer, *MarkersSymbolizer
// or *TextSymbolizer.
type Symbolizer interface {
	elementName() string
}

// PolygonSymbolizer fills areas.
type PolygonSymbolizer struct {
	Fill        color.NRGBA
	FillOpacity float64
}

// NewPolygonSymbolizer returns a symbolizer with default settings.
func NewPolygonSymbolizer() *PolygonSymbolizer {
	return &PolygonSymbolizer{
		Fill:        color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		FillOpacity: 1,
	}
}

func (*PolygonSymbolizer) elementName() string { return "PolygonSymbolizer" }

// LineSymbolizer strokes lines and area outlines.
type LineSymbolizer struct {
	Stroke  color.NRGBA
	Width   float64
	Opacity float64
	Cap     graphics.LineCapStyle
	Join    graphics.LineJoinStyle
	Dash    []float64
}

// NewLineSymbolizer returns a symbolizer with default settings.
func NewLineSymbolizer() *LineSymbolizer {
	return &LineSymbolizer{
		Stroke:  color.NRGBA{A: 255},
		Width:   1,
		Opacity: 1,
		Cap:     graphics.LineCapButt,
		Join:    graphics.LineJoinMiter,
	}
}

func (*LineSymbolizer) elementName() string { return "LineSymbolizer" }

// MarkersSymbolizer draws a circle at each point, or at the center of
// lines and areas.
type MarkersSymbolizer struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
	Width       float64
	Opacity     float64
}

// NewMarkersSymbolizer returns a symbolizer with default settings.
func NewMarkersSymbolizer() *MarkersSymbolizer {
	return &MarkersSymbolizer{
		Fill:        color.NRGBA{B: 255, A: 255},
		Stroke:      color.NRGBA{A: 255},
		StrokeWidth: 0.5,
		Width:       10,
		Opacity:     1,
	}
}

func (*MarkersSymbolizer) elementName() string { return "MarkersSymbolizer" }

// TextSymbolizer places a label at each feature.
type TextSymbolizer struct {
	Name       string // expression like "[name]"
	FaceName   string
	Size       float64
	Fill       color.NRGBA
	HaloFill   color.NRGBA
	HaloRadius float64
	Dx, Dy     float64
}

// NewTextSymbolizer returns a symbolizer with default settings.
func NewTextSymbolizer() *TextSymbolizer {
	return &TextSymbolizer{
		Size:     10,
		Fill:     color.NRGBA{A: 255},
		HaloFill: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func (*TextSymbolizer) elementName() string { return "TextSymbolizer" }

// Label evaluates the Name expression for a feature.  Field references
// "[field]" are replaced by property values; other text is kept.
func (t *TextSymbolizer) Label(props map[string]any) string {
	return expandFields(t.Name, props)
}

func expandFields(expr string, props map[string]any) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(expr, '[')
		if i < 0 {
			break
		}
		j := strings.IndexByte(expr[i:], ']')
		if j < 0 {
			break
		}
		b.WriteString(expr[:i])
		if v, ok := props[expr[i+1:i+j]]; ok && v != nil {
			b.WriteString(formatValue(v))
		}
		expr = expr[i+j+1:]
	}
	b.WriteString(expr)
	return b.String()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprint(v)
}
