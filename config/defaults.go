// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Defaults that depend on the widget name rather than a file.

package config

func applyAppDefaults(app string, cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("surface", Section{
		"namespace": app,
		"layer":     "overlay",
		"keyboard":  "none",
	})
}
