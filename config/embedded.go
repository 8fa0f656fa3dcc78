// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/embedded.go
// Summary: Loads and caches parsed defaults from embedded TOML files.
// The embedded files in defaults/ are the single source of truth.

package config

import (
	"sync"

	"github.com/framegrace/texelayer/defaults"
)

var (
	embeddedSystemOnce sync.Once
	embeddedSystem     Config
	embeddedSystemErr  error

	embeddedApps   = make(map[string]Config)
	embeddedAppsMu sync.RWMutex
)

// embeddedSystemDefaults returns the parsed runtime defaults.
func embeddedSystemDefaults() (Config, error) {
	embeddedSystemOnce.Do(func() {
		data, err := defaults.SystemConfig()
		if err != nil {
			embeddedSystemErr = err
			return
		}
		embeddedSystem, embeddedSystemErr = Decode(data, FormatTOML)
	})
	return embeddedSystem, embeddedSystemErr
}

// embeddedAppDefaults returns the parsed widget defaults, cached per
// widget. A widget without embedded defaults yields nil.
func embeddedAppDefaults(app string) (Config, error) {
	embeddedAppsMu.RLock()
	if cfg, ok := embeddedApps[app]; ok {
		embeddedAppsMu.RUnlock()
		return cfg, nil
	}
	embeddedAppsMu.RUnlock()

	data, err := defaults.AppConfig(app)
	if err != nil {
		return nil, nil
	}
	cfg, err := Decode(data, FormatTOML)
	if err != nil {
		return nil, err
	}

	embeddedAppsMu.Lock()
	embeddedApps[app] = cfg
	embeddedAppsMu.Unlock()
	return cfg, nil
}

func defaultSystemConfig() Config {
	cfg, err := embeddedSystemDefaults()
	if err != nil || cfg == nil {
		return nil
	}
	return Clone(cfg)
}

func defaultAppConfig(app string) Config {
	cfg, err := embeddedAppDefaults(app)
	if err != nil || cfg == nil {
		return nil
	}
	return Clone(cfg)
}

// overlay fills every key cfg lacks from def, section by section. Keys the
// user set always win.
func overlay(cfg, def Config) {
	for k, v := range def {
		if s, ok := v.(Section); ok {
			cfg.RegisterDefaults(k, s)
			continue
		}
		if _, ok := cfg[k]; !ok {
			cfg[k] = v
		}
	}
}
