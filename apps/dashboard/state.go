// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/dashboard/state.go
// Summary: Timer persistence in the dashboard storage scope.
// Notes: The first run imports $XDG_STATE_HOME/widgets/panel/timers.toml
//   from the pre-texelayer panel when the scope is still empty.

package dashboard

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/framegrace/texelayer/apps/clock"
	"github.com/framegrace/texelayer/internal/storage"
)

var timerKeys = [2]string{"timer1", "timer2"}

type legacyTimers struct {
	Timer1Duration int64 `toml:"timer1_duration"`
	Timer1Started  int64 `toml:"timer1_started"`
	Timer2Duration int64 `toml:"timer2_duration"`
	Timer2Started  int64 `toml:"timer2_started"`
}

// LegacyTimersPath is where the old panel kept its timers.
func LegacyTimersPath() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "widgets", "panel", "timers.toml")
}

func readLegacyTimers(path string) ([2]clock.Timer, bool) {
	var lt legacyTimers
	if path == "" {
		return [2]clock.Timer{}, false
	}
	if _, err := toml.DecodeFile(path, &lt); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Dashboard: legacy timers %s: %v", path, err)
		}
		return [2]clock.Timer{}, false
	}
	return [2]clock.Timer{
		{Duration: lt.Timer1Duration, Started: lt.Timer1Started},
		{Duration: lt.Timer2Duration, Started: lt.Timer2Started},
	}, true
}

// timerState loads and saves the two timers.
type timerState struct {
	scope *storage.Scope
}

// load returns the stored timers, the legacy ones, or fresh ones of the
// default durations, in that order of preference.
func (s timerState) load(defaults [2]int64, legacyPath string) [2]clock.Timer {
	out := [2]clock.Timer{clock.NewTimer(defaults[0]), clock.NewTimer(defaults[1])}
	if s.scope == nil {
		return out
	}
	found := 0
	for i, key := range timerKeys {
		var t clock.Timer
		ok, err := s.scope.Get(key, &t)
		if err != nil {
			log.Printf("Dashboard: reading %s: %v", key, err)
			continue
		}
		if ok {
			out[i] = t
			found++
		}
	}
	if found > 0 {
		return out
	}
	if legacy, ok := readLegacyTimers(legacyPath); ok {
		log.Printf("Dashboard: imported timers from %s", legacyPath)
		s.save(legacy)
		return legacy
	}
	return out
}

func (s timerState) save(timers [2]clock.Timer) {
	if s.scope == nil {
		return
	}
	for i, key := range timerKeys {
		if err := s.scope.Set(key, timers[i]); err != nil {
			log.Printf("Dashboard: saving %s: %v", key, err)
		}
	}
}
