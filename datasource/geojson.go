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
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// OpenGeoJSON reads a GeoJSON feature collection.
//
// Parameters:
//   - inline: the GeoJSON text itself
//   - file: path of a GeoJSON file (ignored if inline is set)
//   - base: directory prepended to file
func OpenGeoJSON(p Params) (Datasource, error) {
	data, err := readSource("geojson", p)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geojson plugin: %w", err)
	}

	features := make([]Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		features = append(features, Feature{
			ID:         featureID(f.ID, i+1),
			Geometry:   f.Geometry,
			Properties: map[string]any(f.Properties),
		})
	}
	return newMemory(features), nil
}

// featureID uses integral GeoJSON ids and falls back to the 1-based
// position in the collection.
func featureID(id any, pos int) int64 {
	switch id := id.(type) {
	case float64:
		if id == float64(int64(id)) {
			return int64(id)
		}
	case int64:
		return id
	case int:
		return int64(id)
	}
	return int64(pos)
}
