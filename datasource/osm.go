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
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/paulmach/orb"
)

// areaKeys are tags which turn a closed way into a polygon.
var areaKeys = []string{"building", "landuse", "natural", "leisure", "amenity"}

// OpenOSM reads an OpenStreetMap XML file.
//
// Tagged nodes become points. Ways become line strings, except for closed
// ways with an area tag, which become polygons. The extent is taken from
// the <bounds> element if present.
func OpenOSM(p Params) (Datasource, error) {
	data, err := readSource("osm", p)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("osm plugin: %w", err)
	}
	root := doc.SelectElement("osm")
	if root == nil {
		return nil, errors.New("osm plugin: missing <osm> root element")
	}

	var features []Feature
	nodes := make(map[int64]orb.Point)
	for _, n := range root.SelectElements("node") {
		id, err := strconv.ParseInt(n.SelectAttrValue("id", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("osm plugin: node id: %w", err)
		}
		lat, err1 := strconv.ParseFloat(n.SelectAttrValue("lat", ""), 64)
		lon, err2 := strconv.ParseFloat(n.SelectAttrValue("lon", ""), 64)
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("osm plugin: node %d: %w", id, err)
		}
		pt := orb.Point{lon, lat}
		nodes[id] = pt

		if tags := readTags(n); len(tags) > 0 {
			features = append(features, Feature{ID: id, Geometry: pt, Properties: tags})
		}
	}

	for _, w := range root.SelectElements("way") {
		id, err := strconv.ParseInt(w.SelectAttrValue("id", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("osm plugin: way id: %w", err)
		}

		var refs []int64
		var pts []orb.Point
		for _, nd := range w.SelectElements("nd") {
			ref, err := strconv.ParseInt(nd.SelectAttrValue("ref", ""), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("osm plugin: way %d: %w", id, err)
			}
			pt, ok := nodes[ref]
			if !ok {
				continue
			}
			refs = append(refs, ref)
			pts = append(pts, pt)
		}
		if len(pts) < 2 {
			continue
		}

		tags := readTags(w)
		closed := len(refs) > 3 && refs[0] == refs[len(refs)-1]
		var geom orb.Geometry
		if closed && isArea(tags) {
			geom = orb.Polygon{orb.Ring(pts)}
		} else {
			geom = orb.LineString(pts)
		}
		features = append(features, Feature{ID: id, Geometry: geom, Properties: tags})
	}

	m := newMemory(features)
	if b := root.SelectElement("bounds"); b != nil {
		bound, err := readBounds(b)
		if err != nil {
			return nil, fmt.Errorf("osm plugin: %w", err)
		}
		m.extent = bound
		m.hasExtent = true
	}
	return m, nil
}

func readTags(e *etree.Element) map[string]any {
	tags := make(map[string]any)
	for _, tag := range e.SelectElements("tag") {
		k := tag.SelectAttrValue("k", "")
		if k == "" {
			continue
		}
		tags[k] = tag.SelectAttrValue("v", "")
	}
	return tags
}

func isArea(tags map[string]any) bool {
	if tags["area"] == "yes" {
		return true
	}
	if tags["area"] == "no" {
		return false
	}
	for _, k := range areaKeys {
		if _, ok := tags[k]; ok {
			return true
		}
	}
	return false
}

func readBounds(e *etree.Element) (orb.Bound, error) {
	var v [4]float64
	for i, key := range []string{"minlon", "minlat", "maxlon", "maxlat"} {
		x, err := strconv.ParseFloat(e.SelectAttrValue(key, ""), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bounds %s: %w", key, err)
		}
		v[i] = x
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}
