// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Runtime + widget configuration store for texelayer.

package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

const systemConfigName = "texelayer"

// Config stores configuration sections as decoded TOML/YAML/JSON data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

var (
	mu      sync.RWMutex
	once    sync.Once
	system  Config
	apps    map[string]Config
	loadErr error
)

// Err returns the most recent runtime config load error.
func Err() error {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

// System returns the runtime configuration (texelayer.toml).
func System() Config {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return system
}

// App returns the config for a named widget (<widget>.toml).
func App(name string) Config {
	if name == "" {
		return nil
	}
	once.Do(initStore)

	mu.RLock()
	cfg := apps[name]
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}

	mu.Lock()
	defer mu.Unlock()
	if cfg, ok := apps[name]; ok {
		return cfg
	}

	loaded, err := loadAppLocked(name)
	if err != nil {
		log.Printf("Config: Failed to load app %q config: %v", name, err)
		if loaded == nil {
			loaded = make(Config)
			applyAppDefaults(name, loaded)
		}
	}
	apps[name] = loaded
	return loaded
}

// ReloadApp rereads a widget config from disk, replacing the cached copy.
func ReloadApp(name string) error {
	if name == "" {
		return nil
	}
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	loaded, err := loadAppLocked(name)
	if err != nil {
		return err
	}
	apps[name] = loaded
	return nil
}

// Path returns the file the named widget config is read from, existing or
// not.
func Path(name string) (string, error) {
	return appConfigPath(name)
}

func initStore() {
	mu.Lock()
	defer mu.Unlock()
	system = make(Config)
	apps = make(map[string]Config)
	loadErr = loadSystemLocked()
}

// readConfig reads and decodes path. exists is false when the file is
// missing, which is not an error.
func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	cfg, err := Decode(data, Format(path))
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

func writeConfig(path string, cfg Config) error {
	if cfg == nil {
		cfg = make(Config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := Encode(cfg, Format(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
