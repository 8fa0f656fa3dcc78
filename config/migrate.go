// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/migrate.go
// Summary: Legacy config migration helpers.
// Notes: Before texelayer the widgets read flat TOML files from
//   $XDG_CONFIG_HOME/widgets/. Their keys move into the widget section.

package config

import "strings"

// legacyRenames maps flat legacy keys to their current names.
var legacyRenames = map[string]map[string]string{
	"launcher": {
		"window_width":  "surface.width",
		"window_height": "surface.height",
	},
}

func migrateAppFromLegacy(app string, cfg Config) (bool, error) {
	if cfg == nil {
		return false, nil
	}
	path, ok, err := legacyAppPath(app)
	if err != nil || !ok {
		return false, err
	}
	legacy, exists, err := readConfig(path)
	if err != nil {
		return false, err
	}
	if !exists || len(legacy) == 0 {
		return false, nil
	}

	section := cfg.Section(app)
	if section == nil {
		section = make(Section)
		cfg[app] = section
	}
	surface := cfg.Section("surface")

	for key, value := range legacy {
		if _, isTable := value.(Section); isTable {
			continue
		}
		if sk, ok := strings.CutPrefix(legacyRenames[app][key], "surface."); ok {
			if surface == nil {
				surface = make(Section)
				cfg["surface"] = surface
			}
			surface[sk] = value
			continue
		}
		section[key] = value
	}
	return true, nil
}
