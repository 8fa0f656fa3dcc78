// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded default configuration files.

package defaults

import (
	"embed"
	"fmt"
)

//go:embed texelayer.toml apps/*.toml
var fs embed.FS

// SystemConfig returns the embedded runtime config TOML.
func SystemConfig() ([]byte, error) {
	return fs.ReadFile("texelayer.toml")
}

// AppConfig returns the embedded config TOML for the named widget.
func AppConfig(app string) ([]byte, error) {
	if app == "" {
		return nil, fmt.Errorf("app name is required")
	}
	return fs.ReadFile(fmt.Sprintf("apps/%s.toml", app))
}
