// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: XDG path helpers for texelayer configuration and state.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// extensions are tried in order when looking for an existing file.
var extensions = []string{".toml", ".yaml", ".yml", ".json"}

// legacyNames maps widgets to the file stem they used before texelayer.
var legacyNames = map[string]string{
	"launcher":  "grimoire",
	"dashboard": "panel",
}

// Dir is $XDG_CONFIG_HOME/texelayer. Wrapper widgets live in its
// widgets/ subdirectory.
func Dir() (string, error) { return configRoot() }

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "texelayer"), nil
}

// findConfig returns the first existing <dir>/<stem><ext>, or the TOML
// path when none exists.
func findConfig(dir, stem string) string {
	for _, ext := range extensions {
		p := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, stem+".toml")
}

func systemConfigPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return findConfig(root, systemConfigName), nil
}

func appConfigPath(app string) (string, error) {
	if app == "" {
		return "", fmt.Errorf("app name is required")
	}
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return findConfig(root, app), nil
}

func legacyAppPath(app string) (string, bool, error) {
	stem, ok := legacyNames[app]
	if !ok {
		return "", false, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(configDir, "widgets", stem+".toml"), true, nil
}

// StateDir is $XDG_STATE_HOME/texelayer, falling back to
// ~/.local/state/texelayer.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "texelayer"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "texelayer"), nil
}

// CacheDir is the texelayer directory under the user cache dir.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "texelayer"), nil
}

// ExpandPath resolves a leading "~/" against the home directory.
func ExpandPath(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
