// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package theming

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelayer/config"
)

var panelDefaults = map[string]color.NRGBA{
	"background": {0x1e, 0x1e, 0x2e, 0xe6},
	"border":     {0xcd, 0xd6, 0xf4, 0xff},
	"clock":      {0x89, 0xb4, 0xfa, 0xff},
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#f38ba8", color.NRGBA{0xf3, 0x8b, 0xa8, 0xff}, true},
		{"f38ba8", color.NRGBA{0xf3, 0x8b, 0xa8, 0xff}, true},
		{"#fff", color.NRGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"#404090cc", color.NRGBA{0x40, 0x40, 0x90, 0xcc}, true},
		{"white", color.NRGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"#zzzzzz", color.NRGBA{}, false},
		{"notacolor", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseColor(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestParseSkipsJunk(t *testing.T) {
	src := strings.Join([]string{
		"# generated",
		"background=#101010",
		"border = \"#202020\"",
		"background_opacity=0.5",
		"clock=#nothex",
		"no equals sign",
		"selection_opacity=lots",
	}, "\n")
	s, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x10, 0x10, 0x10, 0xff}, s.Colors["background"])
	assert.Equal(t, color.NRGBA{0x20, 0x20, 0x20, 0xff}, s.Colors["border"])
	assert.NotContains(t, s.Colors, "clock")
	assert.Equal(t, 0.5, s.Opacities["background"])
	assert.NotContains(t, s.Opacities, "selection")
}

func TestResolveLayering(t *testing.T) {
	s := Scheme{
		Colors:    map[string]color.NRGBA{"background": {0x10, 0x10, 0x10, 0xff}},
		Opacities: map[string]float64{"border": 0.5},
	}
	p := Resolve(s, "", panelDefaults)

	// plain hex keeps the default's translucency
	assert.Equal(t, color.NRGBA{0x10, 0x10, 0x10, 0xe6}, p.Get("background"))
	assert.Equal(t, uint8(127), p.Get("border").A)
	assert.Equal(t, panelDefaults["clock"], p.Get("clock"))
}

func TestStyleFillsUnsetKeys(t *testing.T) {
	withStyle := Resolve(Scheme{}, "monokai", panelDefaults)
	assert.NotEqual(t, panelDefaults["background"], withStyle.Get("background"))
	assert.Equal(t, panelDefaults["background"].A, withStyle.Get("background").A)

	fromFile := Resolve(Scheme{Colors: map[string]color.NRGBA{"background": {1, 2, 3, 0xff}}}, "monokai", panelDefaults)
	assert.Equal(t, color.NRGBA{1, 2, 3, 0xe6}, fromFile.Get("background"))
}

func TestStyleNames(t *testing.T) {
	assert.Contains(t, StyleNames(), "monokai")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "colors"), "", panelDefaults)
	assert.Equal(t, panelDefaults["border"], p.Get("border"))
}

func TestForAppReadsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors-panel.toml")
	require.NoError(t, os.WriteFile(path, []byte("border=#000000\n"), 0644))
	cfg := config.Config{"dashboard": config.Section{"color_file": path}}

	p := ForApp("dashboard", cfg, panelDefaults)
	assert.Equal(t, color.NRGBA{0, 0, 0, 0xff}, p.Get("border"))

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Nil(t, WatchApp(ctx, "launcher", cfg, panelDefaults))
}

func TestWatchAppFollowsConfigEdits(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)
	dir := filepath.Join(root, "texelayer")
	require.NoError(t, os.MkdirAll(dir, 0755))
	white := filepath.Join(root, "white")
	require.NoError(t, os.WriteFile(white, []byte("border=#ffffff\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := WatchApp(ctx, "launcher", config.Config{}, panelDefaults)
	require.NotNil(t, ch)

	conf := "[launcher]\ncolor_file = \"" + white + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launcher.toml"), []byte(conf), 0644))
	select {
	case p := <-ch:
		assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, p.Get("border"))
	case <-time.After(3 * time.Second):
		t.Fatal("no palette after config edit")
	}
}

func TestWatchDeliversReloadedPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors")
	require.NoError(t, os.WriteFile(path, []byte("border=#000000\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Watch(ctx, path, "", panelDefaults)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("border=#ffffff\n"), 0644))
	select {
	case p := <-ch:
		assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, p.Get("border"))
	case <-time.After(3 * time.Second):
		t.Fatal("no palette after rewrite")
	}
}
