// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/manifest.go
// Summary: Defines widget manifest structure for the registry system.
// Usage: User widgets provide a manifest.json that wraps a built-in widget
//   under a new name, with its own config file and fixed arguments.

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WidgetType specifies how the widget is created.
type WidgetType string

const (
	// TypeBuiltIn uses a factory compiled into the binary.
	TypeBuiltIn WidgetType = "built-in"

	// TypeWrapper runs a built-in widget under another name.
	// Example: emoji = launcher --dmenu with its own colors and size.
	TypeWrapper WidgetType = "wrapper"
)

// Manifest describes a widget.
type Manifest struct {
	// Name is the subcommand and the config file stem.
	Name string `json:"name"`

	DisplayName string `json:"displayName"`
	Description string `json:"description"`

	Type WidgetType `json:"type,omitempty"`

	// Aliases are extra subcommand names, e.g. the pre-texelayer binary
	// names.
	Aliases []string `json:"aliases,omitempty"`

	// Wraps names the built-in widget. Only used by wrappers.
	Wraps string `json:"wraps,omitempty"`

	// Args are prepended to the command-line arguments.
	Args []string `json:"args,omitempty"`
}

// LoadManifest reads dir/manifest.json.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Type == "" {
		m.Type = TypeWrapper
	}
	if m.DisplayName == "" {
		m.DisplayName = m.Name
	}
	return &m, nil
}

// Validate checks that the manifest is well-formed.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	switch m.Type {
	case TypeWrapper:
		if m.Wraps == "" {
			return fmt.Errorf("wrapper widget must specify 'wraps' field")
		}
		if m.Wraps == m.Name {
			return fmt.Errorf("widget %q cannot wrap itself", m.Name)
		}
	case TypeBuiltIn:
		// registered in code
	default:
		return fmt.Errorf("unknown widget type: %s", m.Type)
	}
	return nil
}
