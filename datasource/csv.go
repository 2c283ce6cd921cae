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

package datasource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/paulmach/orb"
)

var (
	xColumns = []string{"x", "lon", "lng", "long", "longitude"}
	yColumns = []string{"y", "lat", "latitude"}
)

// OpenCSV reads point features from comma separated values. The first row
// names the columns; coordinates are taken from x/y or lon/lat columns and
// all other columns become properties.
//
// Parameters:
//   - inline, file, base: as for OpenGeoJSON
//   - separator: the field separator, default ","
func OpenCSV(p Params) (Datasource, error) {
	data, err := readSource("csv", p)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.Comment = '#'
	if sep := p.Get("separator", ","); sep != "," {
		c, n := utf8.DecodeRuneInString(sep)
		if n != len(sep) {
			return nil, fmt.Errorf("csv plugin: separator must be a single character, got %q", sep)
		}
		r.Comma = c
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv plugin: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("csv plugin: no header row")
	}

	header := records[0]
	xi := findColumn(header, xColumns)
	yi := findColumn(header, yColumns)
	if xi < 0 || yi < 0 {
		return nil, fmt.Errorf("csv plugin: could not detect x/y columns in %v", header)
	}

	features := make([]Feature, 0, len(records)-1)
	for i, row := range records[1:] {
		line := i + 2
		x, err := strconv.ParseFloat(strings.TrimSpace(row[xi]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv plugin: line %d: %w", line, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(row[yi]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv plugin: line %d: %w", line, err)
		}

		props := make(map[string]any, len(header)-2)
		for j, name := range header {
			if j == xi || j == yi {
				continue
			}
			props[name] = csvValue(row[j])
		}
		features = append(features, Feature{
			ID:         int64(i + 1),
			Geometry:   orb.Point{x, y},
			Properties: props,
		})
	}
	return newMemory(features), nil
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

// csvValue returns numbers as float64 and everything else as string.
func csvValue(s string) any {
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return x
	}
	return s
}
