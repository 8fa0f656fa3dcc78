// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func resetStore() {
	once = sync.Once{}
	system = nil
	apps = nil
	loadErr = nil
}

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("HOME", root)
	resetStore()
	return root
}

func TestAppDefaultsWritten(t *testing.T) {
	root := isolate(t)

	cfg := App("launcher")
	if got := cfg.GetInt("launcher", "font_size", 0); got != 18 {
		t.Fatalf("expected embedded font_size 18, got %d", got)
	}
	if got := cfg.GetString("surface", "keyboard", ""); got != "exclusive" {
		t.Fatalf("expected exclusive keyboard, got %q", got)
	}

	path := filepath.Join(root, "texelayer", "launcher.toml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected app config to be written: %v", err)
	}
}

func TestRuntimeDefaults(t *testing.T) {
	isolate(t)
	if err := Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	cfg := System()
	if got := cfg.GetInt("runtime", "repeat_rate", -1); got != 0 {
		t.Fatalf("expected repeat_rate 0, got %d", got)
	}
	if got := cfg.GetString("runtime", "cursor", ""); got != "default" {
		t.Fatalf("expected default cursor, got %q", got)
	}
}

func TestUserValuesOverlayDefaults(t *testing.T) {
	root := isolate(t)
	dir := filepath.Join(root, "texelayer")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data := "[launcher]\ncolumns = 4\nterminal = \"foot\"\n"
	if err := os.WriteFile(filepath.Join(dir, "launcher.toml"), []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := App("launcher")
	if got := cfg.GetInt("launcher", "columns", 0); got != 4 {
		t.Fatalf("expected user columns 4, got %d", got)
	}
	if got := cfg.GetString("launcher", "terminal", ""); got != "foot" {
		t.Fatalf("expected user terminal, got %q", got)
	}
	if got := cfg.GetInt("launcher", "icon_size", 0); got != 32 {
		t.Fatalf("expected default icon_size 32, got %d", got)
	}
	if got := cfg.GetInt("surface", "width", 0); got != 600 {
		t.Fatalf("expected default surface width, got %d", got)
	}
}

func TestReloadAppPicksUpEdits(t *testing.T) {
	isolate(t)
	path, err := Path("launcher")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if got := App("launcher").GetInt("launcher", "columns", 0); got == 7 {
		t.Fatalf("unexpected columns before edit")
	}
	if err := os.WriteFile(path, []byte("[launcher]\ncolumns = 7\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ReloadApp("launcher"); err != nil {
		t.Fatalf("ReloadApp: %v", err)
	}
	if got := App("launcher").GetInt("launcher", "columns", 0); got != 7 {
		t.Fatalf("expected reloaded columns 7, got %d", got)
	}
}

func TestYAMLAndJSONConfigs(t *testing.T) {
	cases := []struct {
		name string
		file string
		data string
	}{
		{"yaml", "dashboard.yaml", "dashboard:\n  font_size: 40\n"},
		{"yml", "dashboard.yml", "dashboard:\n  font_size: 40\n"},
		{"json", "dashboard.json", `{"dashboard": {"font_size": 40}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := isolate(t)
			dir := filepath.Join(root, "texelayer")
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, tc.file), []byte(tc.data), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			cfg := App("dashboard")
			if got := cfg.GetInt("dashboard", "font_size", 0); got != 40 {
				t.Fatalf("expected font_size 40, got %d", got)
			}
			if got := cfg.GetInt("dashboard", "timer1_duration", 0); got != 3600 {
				t.Fatalf("expected default timer1 3600, got %d", got)
			}
			path, err := Path("dashboard")
			if err != nil {
				t.Fatalf("Path: %v", err)
			}
			if filepath.Base(path) != tc.file {
				t.Fatalf("expected %s to be used, got %s", tc.file, path)
			}
		})
	}
}

func TestAppMigrationFromLegacy(t *testing.T) {
	root := isolate(t)

	legacyDir := filepath.Join(root, "widgets")
	if err := os.MkdirAll(legacyDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	legacy := "window_width = 800\ncolumns = 3\nterminal = \"foot -e\"\n"
	if err := os.WriteFile(filepath.Join(legacyDir, "grimoire.toml"), []byte(legacy), 0644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	cfg := App("launcher")
	if got := cfg.GetInt("surface", "width", 0); got != 800 {
		t.Fatalf("expected migrated width 800, got %d", got)
	}
	if got := cfg.GetInt("surface", "height", 0); got != 400 {
		t.Fatalf("expected default height 400, got %d", got)
	}
	if got := cfg.GetInt("launcher", "columns", 0); got != 3 {
		t.Fatalf("expected migrated columns 3, got %d", got)
	}
	if got := cfg.GetString("launcher", "terminal", ""); got != "foot -e" {
		t.Fatalf("expected migrated terminal, got %q", got)
	}

	disk, exists, err := readConfig(filepath.Join(root, "texelayer", "launcher.toml"))
	if err != nil || !exists {
		t.Fatalf("expected migrated config on disk: exists=%v err=%v", exists, err)
	}
	if got := disk.GetInt("launcher", "columns", 0); got != 3 {
		t.Fatalf("expected columns 3 on disk, got %d", got)
	}
}

func TestDecodeFormats(t *testing.T) {
	cases := []struct {
		path   string
		format FileFormat
		data   string
	}{
		{"a.toml", FormatTOML, "top = 1\n[s]\nk = \"v\"\nn = [1, 2]\n"},
		{"a.YAML", FormatYAML, "top: 1\ns:\n  k: v\n  n: [1, 2]\n"},
		{"a.json", FormatJSON, `{"top": 1, "s": {"k": "v", "n": [1, 2]}}`},
		{"noext", FormatTOML, "top = 1\n[s]\nk = \"v\"\nn = [1, 2]\n"},
	}
	for _, tc := range cases {
		if got := Format(tc.path); got != tc.format {
			t.Fatalf("%s: expected format %s, got %s", tc.path, tc.format, got)
		}
		cfg, err := Decode([]byte(tc.data), tc.format)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if got := cfg.GetInt("", "top", 0); got != 1 {
			t.Fatalf("%s: expected top 1, got %d", tc.path, got)
		}
		if got := cfg.GetString("s", "k", ""); got != "v" {
			t.Fatalf("%s: expected k=v, got %q", tc.path, got)
		}
		if got := cfg.GetIntSlice("s", "n", nil); !reflect.DeepEqual(got, []int{1, 2}) {
			t.Fatalf("%s: expected [1 2], got %v", tc.path, got)
		}
	}
	if _, err := Decode([]byte("= broken"), FormatTOML); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestEncodeRoundTripsSections(t *testing.T) {
	cfg := Config{"s": Section{"k": "v"}}
	for _, f := range []FileFormat{FormatTOML, FormatYAML, FormatJSON} {
		data, err := Encode(cfg, f)
		if err != nil {
			t.Fatalf("%s: encode: %v", f, err)
		}
		back, err := Decode(data, f)
		if err != nil {
			t.Fatalf("%s: decode: %v", f, err)
		}
		if got := back.GetString("s", "k", ""); got != "v" {
			t.Fatalf("%s: expected k=v, got %q", f, got)
		}
	}
}

func TestGetStringSlice(t *testing.T) {
	cfg := Config{"surface": Section{
		"anchor": []interface{}{"top", 3, "left"},
		"one":    "bottom",
	}}
	if got := cfg.GetStringSlice("surface", "anchor", nil); !reflect.DeepEqual(got, []string{"top", "left"}) {
		t.Fatalf("unexpected anchor list %v", got)
	}
	if got := cfg.GetStringSlice("surface", "one", nil); !reflect.DeepEqual(got, []string{"bottom"}) {
		t.Fatalf("unexpected single value %v", got)
	}
	if got := cfg.GetStringSlice("surface", "missing", []string{"x"}); !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	if got := ExpandPath("~/fonts/a.ttf"); got != "/home/test/fonts/a.ttf" {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := ExpandPath("/abs/~/x"); got != "/abs/~/x" {
		t.Fatalf("absolute path changed: %q", got)
	}
}

func TestStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	dir, err := StateDir()
	if err != nil || dir != "/tmp/state/texelayer" {
		t.Fatalf("unexpected state dir %q (%v)", dir, err)
	}
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/test")
	dir, err = StateDir()
	if err != nil || dir != "/home/test/.local/state/texelayer" {
		t.Fatalf("unexpected fallback state dir %q (%v)", dir, err)
	}
}

func TestWatchReportsRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors.toml")
	if err := os.WriteFile(path, []byte("background=#000000\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 4)
	if err := Watch(ctx, path, func() { fired <- struct{}{} }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	if err := os.WriteFile(path, []byte("background=#ffffff\n"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatalf("no change notification")
	}
}
