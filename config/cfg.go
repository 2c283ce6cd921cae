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

// Package config loads the configuration of the visual test programs.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	PathsConfig struct {
		Styles  string `yaml:"styles" sanitize:"path_clean" validate:"required"`
		Images  string `yaml:"images" sanitize:"path_clean" validate:"required"`
		Scratch string `yaml:"scratch" sanitize:"path_clean" validate:"required"`
		Output  string `yaml:"output" sanitize:"path_clean" validate:"required"`
		Catalog string `yaml:"catalog,omitempty" validate:"omitempty,filepath"`
	}

	RunConfig struct {
		RequiredPlugin string `yaml:"required_plugin"`
		StrictStyles   bool   `yaml:"strict_styles"`
	}

	CompareConfig struct {
		Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`
		IncludeAA bool    `yaml:"include_aa"`
		DiffDir   string  `yaml:"diff_dir,omitempty" validate:"omitempty,dirpath"`
	}

	ReferencesConfig struct {
		PDF bool `yaml:"pdf"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Paths      PathsConfig      `yaml:"paths"`
		Run        RunConfig        `yaml:"run"`
		Compare    CompareConfig    `yaml:"compare"`
		References ReferencesConfig `yaml:"references"`
		Logging    LoggingConfig    `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are accepted
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands the configuration template and, if path is not
// empty, superimposes the values from the file at path.  The result is
// sanitized and validated.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns the expanded configuration template.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
