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

package testcases

import (
	"slices"
)

// Selection describes which cases of a catalog should run.
type Selection struct {
	// Single, if non-empty, selects the catalog entry with this name.
	// Names is ignored in this case.
	Single string

	// Names lists style names given on the command line.
	Names []string
}

// Select returns the active subset of catalog for sel.
//
//   - Single set: the catalog entry named Single, or nothing.
//   - no names: the full catalog.
//   - one name: a case for this name using SizesFewSquare, regardless of
//     what the catalog declares for it.
//   - several names: one case per name, using the default sizes only.
func Select(catalog []Case, sel Selection) []Case {
	switch {
	case sel.Single != "":
		var active []Case
		for _, c := range catalog {
			if c.Name == sel.Single {
				active = append(active, c)
			}
		}
		return active
	case len(sel.Names) == 0:
		return slices.Clone(catalog)
	case len(sel.Names) == 1:
		return []Case{{Name: sel.Names[0], Sizes: SizesFewSquare}}
	default:
		active := make([]Case, 0, len(sel.Names))
		for _, name := range sel.Names {
			active = append(active, Case{Name: name})
		}
		return active
	}
}

// Lookup finds the catalog entry with the given name.
func Lookup(catalog []Case, name string) (Case, bool) {
	idx := slices.IndexFunc(catalog, func(c Case) bool { return c.Name == name })
	if idx < 0 {
		return Case{}, false
	}
	return catalog[idx], true
}

// ParseArgs interprets raw command line arguments (without the program
// name). Every "-q" is removed and reported as quiet. After that, "-s" is
// only recognised as the first of at least two remaining arguments; a lone
// "-s" is taken as a style name.
func ParseArgs(args []string) (sel Selection, quiet bool) {
	var rest []string
	for _, arg := range args {
		if arg == "-q" {
			quiet = true
			continue
		}
		rest = append(rest, arg)
	}

	if len(rest) >= 2 && rest[0] == "-s" {
		sel.Single = rest[1]
		return sel, quiet
	}
	sel.Names = rest
	return sel, quiet
}
