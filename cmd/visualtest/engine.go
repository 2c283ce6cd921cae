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

package main

import (
	"github.com/orofarne/mapnik"
	"github.com/orofarne/mapnik/runner"
)

// engine loads style files into maps of the rendering engine.
type engine struct {
	*mapnik.Engine
	strict bool
}

func (e *engine) Load(width, height int, stylePath string) (runner.Map, error) {
	m := e.NewMap(width, height)
	if err := mapnik.LoadMap(m, stylePath, e.strict); err != nil {
		return nil, err
	}
	return m, nil
}
