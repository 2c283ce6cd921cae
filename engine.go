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
	"fmt"
	"maps"

	"github.com/orofarne/mapnik/datasource"
	"github.com/orofarne/mapnik/style"
)

// Engine creates maps whose layers read from the datasource plugins of
// one registry.
type Engine struct {
	registry *datasource.Registry
}

// NewEngine returns an engine using the given plugin registry.
func NewEngine(reg *datasource.Registry) *Engine {
	return &Engine{registry: reg}
}

var defaultEngine = NewEngine(datasource.Default())

// Plugins returns the names of the datasource plugins available to the
// default engine.
func Plugins() []string {
	return defaultEngine.Plugins()
}

// NewMap returns an empty map of the given pixel size, using the default
// engine.
func NewMap(width, height int) *Map {
	return defaultEngine.NewMap(width, height)
}

// Plugins returns the names of the registered datasource plugins.
func (e *Engine) Plugins() []string {
	return e.registry.Names()
}

// NewMap returns an empty map of the given pixel size.
func (e *Engine) NewMap(width, height int) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Style:  &style.Map{},
		engine: e,
	}
}

// LoadMap replaces the configuration of m by the style file at path and
// opens the datasources of all active layers.
func LoadMap(m *Map, path string, strict bool) error {
	sm, err := style.Load(path, strict)
	if err != nil {
		return err
	}
	return m.setStyle(sm)
}

func (m *Map) setStyle(sm *style.Map) error {
	sources := make([]datasource.Datasource, len(sm.Layers))
	for i, layer := range sm.Layers {
		if !layer.Active {
			continue
		}
		p := maps.Clone(layer.Params)
		if p == nil {
			p = datasource.Params{}
		}
		if _, ok := p["base"]; !ok && sm.Base != "" {
			p["base"] = sm.Base
		}
		ds, err := m.engine.registry.Open(p)
		if err != nil {
			return fmt.Errorf("layer %q: %w", layer.Name, err)
		}
		sources[i] = ds
	}

	m.Style = sm
	m.sources = sources
	m.zoomed = false
	return nil
}

// SaveMap writes the configuration of m as canonical XML.
func SaveMap(m *Map, path string) error {
	return style.Save(m.Style, path)
}
