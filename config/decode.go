// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/decode.go
// Summary: Format detection and TOML/YAML/JSON (de)serialisation.

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileFormat names a supported config encoding.
type FileFormat string

const (
	FormatTOML FileFormat = "toml"
	FormatYAML FileFormat = "yaml"
	FormatJSON FileFormat = "json"
)

// Format picks the encoding from the file extension; unknown extensions
// are read as TOML.
func Format(path string) FileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Decode parses data into a Config. Nested tables become Sections.
func Decode(data []byte, format FileFormat) (Config, error) {
	var raw map[string]interface{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("config: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", format, err)
	}
	cfg := make(Config, len(raw))
	for k, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			cfg[k] = Section(m)
			continue
		}
		cfg[k] = v
	}
	return cfg, nil
}

// Encode serialises cfg. Sections are written as plain maps.
func Encode(cfg Config, format FileFormat) ([]byte, error) {
	plain := make(map[string]interface{}, len(cfg))
	for k, v := range cfg {
		if s, ok := v.(Section); ok {
			plain[k] = map[string]interface{}(s)
			continue
		}
		plain[k] = v
	}
	switch format {
	case FormatYAML:
		return yaml.Marshal(plain)
	case FormatJSON:
		return json.MarshalIndent(plain, "", "  ")
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(plain); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("config: unknown format %q", format)
}
