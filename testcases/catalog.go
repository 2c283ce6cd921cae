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
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	yaml "gopkg.in/yaml.v3"
)

// SizeSets maps the names usable in catalog files to size sets.
var SizeSets = map[string][]Size{
	"default":             DefaultSizes,
	"many_in_big_range":   SizesManyInBigRange,
	"few_square":          SizesFewSquare,
	"many_in_small_range": SizesManyInSmallRange,
}

// catalogFile is the on-disk form of a catalog:
//
//	cases:
//	  - name: lines-1
//	    sizes: few_square
//	    bbox: [-0.05, -0.01, 0.95, 0.01]
//	  - name: orientation
//	    sizes: [[800, 200]]
type catalogFile struct {
	Cases []catalogEntry `yaml:"cases"`
}

type catalogEntry struct {
	Name  string    `yaml:"name"`
	Sizes sizeList  `yaml:"sizes"`
	BBox  []float64 `yaml:"bbox"`
}

// sizeList is either the name of a size set or a list of [width, height]
// pairs.
type sizeList []Size

func (l *sizeList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		set, ok := SizeSets[node.Value]
		if !ok {
			return fmt.Errorf("line %d: unknown size set %q", node.Line, node.Value)
		}
		*l = slices.Clone(set)
		return nil
	case yaml.SequenceNode:
		var pairs [][]int
		if err := node.Decode(&pairs); err != nil {
			return err
		}
		sizes := make([]Size, 0, len(pairs))
		for _, p := range pairs {
			if len(p) != 2 || p[0] <= 0 || p[1] <= 0 {
				return fmt.Errorf("line %d: size must be [width, height] with positive values, got %v", node.Line, p)
			}
			sizes = append(sizes, Size{Width: p[0], Height: p[1]})
		}
		*l = sizes
		return nil
	default:
		return fmt.Errorf("line %d: sizes must be a size set name or a list", node.Line)
	}
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cases, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// ParseCatalog decodes a YAML catalog. Unknown fields are rejected.
func ParseCatalog(r io.Reader) ([]Case, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Cases))
	cases := make([]Case, 0, len(file.Cases))
	for i, entry := range file.Cases {
		if entry.Name == "" {
			return nil, fmt.Errorf("case %d: missing name", i+1)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("case %q: duplicate name", entry.Name)
		}
		seen[entry.Name] = true

		c := Case{Name: entry.Name, Sizes: []Size(entry.Sizes)}
		if entry.BBox != nil {
			if len(entry.BBox) != 4 {
				return nil, fmt.Errorf("case %q: bbox needs 4 values, got %d", entry.Name, len(entry.BBox))
			}
			b := box(entry.BBox[0], entry.BBox[1], entry.BBox[2], entry.BBox[3])
			if b.LLx >= b.URx || b.LLy >= b.URy {
				return nil, fmt.Errorf("case %q: empty bbox %v", entry.Name, entry.BBox)
			}
			c.BBox = b
		}
		cases = append(cases, c)
	}
	return cases, nil
}
