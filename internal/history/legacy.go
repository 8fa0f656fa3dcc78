// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/history/legacy.go
// Summary: One-time import of the TOML frecency file used before texelayer.

package history

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/framegrace/texelayer/picker"
)

type legacyEntry struct {
	Count int   `toml:"count"`
	Last  int64 `toml:"last"`
}

// LegacyPath is where the launcher used to keep its frecency table:
// $XDG_STATE_HOME/widgets/grimoire.toml.
func LegacyPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "widgets", "grimoire.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "widgets", "grimoire.toml"), nil
}

// ReadLegacy parses a legacy frecency file. A missing file yields an empty
// history.
func ReadLegacy(path string) (picker.History, error) {
	var raw map[string]legacyEntry
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return picker.History{}, nil
		}
		return nil, fmt.Errorf("read legacy history %s: %w", path, err)
	}
	out := make(picker.History, len(raw))
	for key, e := range raw {
		out[key] = picker.Entry{Count: e.Count, Last: time.Unix(e.Last, 0)}
	}
	return out, nil
}

// ImportLegacy merges the legacy file into an empty database. It is a
// no-op once the database holds any entry.
func (h *DB) ImportLegacy(path string) (int, error) {
	var n int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM launches").Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	entries, err := ReadLegacy(path)
	if err != nil || len(entries) == 0 {
		return 0, err
	}
	if err := h.Import(entries); err != nil {
		return 0, err
	}
	log.Printf("History: Imported %d entries from %s", len(entries), path)
	return len(entries), nil
}
