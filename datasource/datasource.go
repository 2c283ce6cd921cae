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

// Package datasource provides the feature sources which map layers read
// from, and the registry of source types ("plugins") known to the engine.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/maruel/natural"
	"github.com/paulmach/orb"
)

// ErrUnknownPlugin is returned by Registry.Open for an unregistered
// datasource type.
var ErrUnknownPlugin = errors.New("unknown datasource plugin")

// Feature is a single geometry with attributes.
type Feature struct {
	ID         int64
	Geometry   orb.Geometry // nil for features without geometry
	Properties map[string]any
}

// Datasource gives access to the features of one layer.
type Datasource interface {
	// Extent returns the bounding box of all features.
	// The second return value is false if the source has no geometry.
	Extent() (orb.Bound, bool)

	// Features returns the features whose bounding box intersects bbox,
	// in source order.
	Features(bbox orb.Bound) []Feature
}

// Params holds the parameters of a <Datasource> element.
type Params map[string]string

// Get returns the value for key, or dflt if the key is not set.
func (p Params) Get(key, dflt string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return dflt
}

// Keys returns the parameter names in sorted order, with "type" first.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k != "type" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if _, ok := p["type"]; ok {
		keys = append([]string{"type"}, keys...)
	}
	return keys
}

// Factory opens a datasource from its parameters.
type Factory func(p Params) (Datasource, error)

// Registry maps datasource type names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with all built-in plugins.
func Default() *Registry {
	r := NewRegistry()
	r.Register("csv", OpenCSV)
	r.Register("geojson", OpenGeoJSON)
	r.Register("osm", OpenOSM)
	return r
}

// Register adds a plugin, replacing any previous one of the same name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered plugin names in natural order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// Has reports whether a plugin is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Open creates a datasource using the plugin named by the "type" parameter.
func (r *Registry) Open(p Params) (Datasource, error) {
	typ, ok := p["type"]
	if !ok {
		return nil, errors.New("datasource: missing <type> parameter")
	}
	f, ok := r.factories[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, typ)
	}
	return f(p)
}

// readSource returns the raw data for file based plugins. The "inline"
// parameter takes precedence over "file"; "base" is prepended to a relative
// "file".
func readSource(plugin string, p Params) ([]byte, error) {
	if inline, ok := p["inline"]; ok {
		return []byte(inline), nil
	}
	file, ok := p["file"]
	if !ok {
		return nil, fmt.Errorf("%s plugin: missing <file> parameter", plugin)
	}
	if base, ok := p["base"]; ok && !filepath.IsAbs(file) {
		file = filepath.Join(base, file)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s plugin: could not open '%s': %w", plugin, file, err)
	}
	return data, nil
}

// memory is an in-memory feature store shared by all built-in plugins.
type memory struct {
	features  []Feature
	extent    orb.Bound
	hasExtent bool
}

func newMemory(features []Feature) *memory {
	m := &memory{features: features}
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if !m.hasExtent {
			m.extent = b
			m.hasExtent = true
		} else {
			m.extent = m.extent.Union(b)
		}
	}
	return m
}

func (m *memory) Extent() (orb.Bound, bool) {
	return m.extent, m.hasExtent
}

func (m *memory) Features(bbox orb.Bound) []Feature {
	var res []Feature
	for _, f := range m.features {
		if f.Geometry == nil {
			continue
		}
		if bbox.Intersects(f.Geometry.Bound()) {
			res = append(res, f)
		}
	}
	return res
}
