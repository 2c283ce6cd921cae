// Package mapnik renders map styles to raster and vector images.
//
// A Map combines a style configuration, loaded from XML by LoadMap, with
// an output size and a viewport.  Layers read their features from the
// datasource plugins of an Engine.
package mapnik

//go:generate go run ./cmd/update-references

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned by RenderToFile for unsupported file
// extensions.
var ErrUnknownFormat = errors.New("unknown output format")

// RenderToFile renders m and writes the result to path.  The format is
// chosen by the file extension: ".png" for raster output, ".pdf" for vector
// output.  The directory containing path is created if needed.
func RenderToFile(m *Map, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".pdf" {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}

	sc, err := m.buildScene()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if ext == ".pdf" {
		return writePDF(sc, path)
	}
	return paintRaster(sc).SavePNG(path)
}

// RenderImage renders m into memory.
func RenderImage(m *Map) (image.Image, error) {
	sc, err := m.buildScene()
	if err != nil {
		return nil, err
	}
	return paintRaster(sc).Image(), nil
}
