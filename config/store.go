// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/store.go
// Summary: Load, reload, and migration logic for config store.

package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/framegrace/texelayer/defaults"
)

func loadSystemLocked() error {
	path, err := systemConfigPath()
	if err != nil {
		log.Printf("Config: Failed to resolve runtime config path: %v", err)
		system = make(Config)
		if def := defaultSystemConfig(); def != nil {
			overlay(system, def)
		}
		return err
	}

	cfg, exists, readErr := readConfig(path)
	if readErr != nil {
		log.Printf("Config: Failed to read runtime config %s: %v", path, readErr)
	}
	if cfg == nil {
		cfg = make(Config)
	}
	if !exists {
		if data, err := defaults.SystemConfig(); err == nil {
			if err := writeRaw(path, data); err != nil {
				log.Printf("Config: Failed to write default runtime config: %v", err)
			}
		}
	}
	if def := defaultSystemConfig(); def != nil {
		overlay(cfg, def)
	}

	system = cfg
	if readErr == nil && exists {
		log.Printf("Config: Loaded runtime config from %s", path)
	}
	return readErr
}

func loadAppLocked(name string) (Config, error) {
	path, err := appConfigPath(name)
	if err != nil {
		return nil, err
	}

	cfg, exists, readErr := readConfig(path)
	if readErr != nil {
		log.Printf("Config: Failed to read app config %s: %v", path, readErr)
	}
	if cfg == nil {
		cfg = make(Config)
	}

	if !exists {
		migrated, migrateErr := migrateAppFromLegacy(name, cfg)
		if migrateErr != nil {
			log.Printf("Config: Legacy app migration error: %v", migrateErr)
			if readErr == nil {
				readErr = migrateErr
			}
		}
		if migrated {
			if def := defaultAppConfig(name); def != nil {
				overlay(cfg, def)
			}
			if err := writeConfig(path, cfg); err != nil {
				log.Printf("Config: Failed to write migrated app config: %v", err)
			}
		} else if data, err := defaults.AppConfig(name); err == nil {
			if err := writeRaw(path, data); err != nil {
				log.Printf("Config: Failed to write default app config: %v", err)
			}
		}
	}

	if def := defaultAppConfig(name); def != nil {
		overlay(cfg, def)
	}
	applyAppDefaults(name, cfg)

	if readErr == nil && exists {
		log.Printf("Config: Loaded app %q config from %s", name, path)
	}
	return cfg, readErr
}

// writeRaw stores embedded defaults byte for byte so their comments
// survive.
func writeRaw(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
