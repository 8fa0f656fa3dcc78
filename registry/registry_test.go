// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/render"
)

type stubWidget struct {
	inv Invocation
}

func (s *stubWidget) Handle(*loop.Context, loop.Event) {}
func (s *stubWidget) Draw(*render.Canvas)              {}

func stubFactory(inv Invocation) (loop.Widget, error) {
	return &stubWidget{inv: inv}, nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := &Registry{
		builtIn:  make(map[string]*Entry),
		wrappers: make(map[string]*Entry),
		aliases:  make(map[string]string),
	}
	r.SetConfigLoader(func(name string) config.Config {
		switch name {
		case "launcher":
			return config.Config{
				"launcher": config.Section{"font_size": int64(18), "columns": int64(1)},
				"surface":  config.Section{"width": int64(600)},
			}
		case "emoji":
			return config.Config{"launcher": config.Section{"columns": int64(8)}}
		}
		return config.Config{}
	})
	r.RegisterBuiltIn(&Manifest{Name: "launcher", Aliases: []string{"grimoire"}}, stubFactory)
	r.RegisterBuiltIn(&Manifest{Name: "dashboard", Aliases: []string{"panel"}}, stubFactory)
	return r
}

func writeManifest(t *testing.T, base, name, body string) {
	t.Helper()
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGetResolvesAliases(t *testing.T) {
	r := newTestRegistry(t)
	tests := []struct {
		name string
		want string
	}{
		{"launcher", "launcher"},
		{"grimoire", "launcher"},
		{"panel", "dashboard"},
	}
	for _, tt := range tests {
		e := r.Get(tt.name)
		if e == nil || e.Manifest.Name != tt.want {
			t.Fatalf("Get(%q) = %v, want %s", tt.name, e, tt.want)
		}
	}
	if r.Get("nope") != nil {
		t.Fatalf("expected nil for unknown widget")
	}
}

func TestCreateBuiltInLoadsConfig(t *testing.T) {
	r := newTestRegistry(t)
	inst, err := r.Create("grimoire", Invocation{Args: []string{"--dmenu"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w := inst.Widget.(*stubWidget)
	if w.inv.Name != "launcher" {
		t.Fatalf("expected canonical name, got %q", w.inv.Name)
	}
	if got := inst.Config.GetInt("surface", "width", 0); got != 600 {
		t.Fatalf("expected loaded config, width=%d", got)
	}
	if !reflect.DeepEqual(w.inv.Args, []string{"--dmenu"}) {
		t.Fatalf("unexpected args %v", w.inv.Args)
	}
}

func TestScanAndCreateWrapper(t *testing.T) {
	base := t.TempDir()
	writeManifest(t, base, "emoji", `{"name":"emoji","wraps":"launcher","args":["--dmenu"]}`)
	writeManifest(t, base, "broken", `{"name":"broken","wraps":"nothing"}`)
	writeManifest(t, base, "shadow", `{"name":"dashboard","wraps":"launcher"}`)
	writeManifest(t, base, "junk", `{`)

	r := newTestRegistry(t)
	if err := r.Scan(base); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if r.Count() != 3 {
		t.Fatalf("expected 2 built-ins + 1 wrapper, got %d", r.Count())
	}

	inst, err := r.Create("emoji", Invocation{Args: []string{"-x"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w := inst.Widget.(*stubWidget)
	if w.inv.Name != "emoji" {
		t.Fatalf("wrapper must keep its own name, got %q", w.inv.Name)
	}
	if !reflect.DeepEqual(w.inv.Args, []string{"--dmenu", "-x"}) {
		t.Fatalf("unexpected args %v", w.inv.Args)
	}
	if got := inst.Config.GetInt("launcher", "columns", 0); got != 8 {
		t.Fatalf("wrapper value must win, columns=%d", got)
	}
	if got := inst.Config.GetInt("launcher", "font_size", 0); got != 18 {
		t.Fatalf("missing keys must come from the wrapped widget, font_size=%d", got)
	}
	if inst.Manifest.Type != TypeWrapper {
		t.Fatalf("unexpected type %s", inst.Manifest.Type)
	}
}

func TestScanMissingDir(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Scan(filepath.Join(t.TempDir(), "none")); err != nil {
		t.Fatalf("missing dir should not fail: %v", err)
	}
}

func TestCreateUnknown(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.Create("nope", Invocation{}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestListIsSorted(t *testing.T) {
	r := newTestRegistry(t)
	var names []string
	for _, e := range r.List() {
		names = append(names, e.Manifest.Name)
	}
	if !reflect.DeepEqual(names, []string{"dashboard", "launcher"}) {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		m  Manifest
		ok bool
	}{
		{Manifest{Name: "a", Type: TypeWrapper, Wraps: "launcher"}, true},
		{Manifest{Name: "", Type: TypeWrapper, Wraps: "launcher"}, false},
		{Manifest{Name: "a", Type: TypeWrapper}, false},
		{Manifest{Name: "a", Type: TypeWrapper, Wraps: "a"}, false},
		{Manifest{Name: "a", Type: "external"}, false},
		{Manifest{Name: "a", Type: TypeBuiltIn}, true},
	}
	for i, tt := range tests {
		if err := tt.m.Validate(); (err == nil) != tt.ok {
			t.Fatalf("case %d: Validate() = %v, want ok=%v", i, err, tt.ok)
		}
	}
}

func TestRegisterFeedsNew(t *testing.T) {
	builtInMu.Lock()
	saved := builtIns
	builtIns = nil
	builtInMu.Unlock()
	t.Cleanup(func() {
		builtInMu.Lock()
		builtIns = saved
		builtInMu.Unlock()
	})

	Register(Manifest{Name: "clock"}, stubFactory)
	Register(Manifest{Name: "ignored"}, nil)
	r := New()
	if r.Count() != 1 || r.Get("clock") == nil {
		t.Fatalf("expected only the registered built-in, count=%d", r.Count())
	}
}
