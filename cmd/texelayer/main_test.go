// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func TestListShowsBuiltIns(t *testing.T) {
	isolate(t)
	var out, errOut bytes.Buffer
	if code := run([]string{"--quiet", "list"}, nil, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	for _, want := range []string{"clock", "dashboard", "launcher", "wallrun", "alias: grimoire", "alias: panel"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("list output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestListIncludesWrappers(t *testing.T) {
	dir := isolate(t)
	wdir := filepath.Join(dir, "config", "texelayer", "widgets", "emoji")
	if err := os.MkdirAll(wdir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "emoji", "description": "Emoji picker", "type": "wrapper", "wraps": "launcher", "args": ["--dmenu"]}`
	if err := os.WriteFile(filepath.Join(wdir, "manifest.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if code := run([]string{"--quiet", "list"}, nil, &out, &out); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "emoji") || !strings.Contains(out.String(), "(launcher --dmenu)") {
		t.Fatalf("wrapper missing:\n%s", out.String())
	}
}

func TestUnknownWidgetIsUsageError(t *testing.T) {
	isolate(t)
	var out, errOut bytes.Buffer
	if code := run([]string{"--quiet", "nope"}, nil, &out, &errOut); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(errOut.String(), `unknown widget "nope"`) || !strings.Contains(errOut.String(), "usage:") {
		t.Fatalf("unexpected stderr:\n%s", errOut.String())
	}
	if code := run(nil, nil, &out, &errOut); code != 2 {
		t.Fatalf("no arguments: expected exit 2, got %d", code)
	}
}

func TestSnapshotWritesPNG(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "clock.png")
	var out, errOut bytes.Buffer
	code := run([]string{"--quiet", "snapshot", "-o", path, "-scale", "2", "clock"}, nil, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 440 || b.Dy() != 220 {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestLogFileIsPerWidget(t *testing.T) {
	dir := isolate(t)
	var out bytes.Buffer
	if code := run([]string{"snapshot", "-o", filepath.Join(dir, "x.png"), "clock"}, nil, &out, &out); code != 0 {
		t.Fatalf("exit %d: %s", code, out.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, "state", "texelayer", "snapshot.log"))
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), "Snapshot: clock 220x110@1") {
		t.Fatalf("unexpected log:\n%s", data)
	}
}
