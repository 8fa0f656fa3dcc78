// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/registry.go
// Summary: Widget registry behind the multi-call binary.
// Usage: Built-in widgets call Register from init; cmd/texelayer builds a
//   Registry with New, optionally Scans ~/.config/texelayer/widgets for
//   wrappers, and Creates the widget named by the subcommand.

package registry

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/loop"
)

// Invocation is what a factory gets to build a widget.
type Invocation struct {
	// Name is the invoked widget, which may be a wrapper.
	Name   string
	Args   []string
	Config config.Config
	Stdin  io.Reader
	Stdout io.Writer
}

// Factory builds a widget. Errors are fatal for the process.
type Factory func(inv Invocation) (loop.Widget, error)

// Entry is a registered widget.
type Entry struct {
	Manifest *Manifest
	Dir      string
	Factory  Factory
}

// Instance is a created widget with the config it was built from.
type Instance struct {
	Widget   loop.Widget
	Config   config.Config
	Manifest *Manifest
}

type builtIn struct {
	manifest Manifest
	factory  Factory
}

var (
	builtInMu sync.RWMutex
	builtIns  []builtIn
)

// Register adds a built-in widget to every registry created afterwards.
func Register(m Manifest, f Factory) {
	if f == nil {
		return
	}
	builtInMu.Lock()
	builtIns = append(builtIns, builtIn{manifest: m, factory: f})
	builtInMu.Unlock()
}

// Registry manages the collection of available widgets.
type Registry struct {
	mu       sync.RWMutex
	builtIn  map[string]*Entry
	wrappers map[string]*Entry
	aliases  map[string]string

	// loadConfig reads a widget config by name.
	loadConfig func(name string) config.Config
}

// New returns a registry holding the init-time built-ins.
func New() *Registry {
	r := &Registry{
		builtIn:    make(map[string]*Entry),
		wrappers:   make(map[string]*Entry),
		aliases:    make(map[string]string),
		loadConfig: config.App,
	}
	builtInMu.RLock()
	defer builtInMu.RUnlock()
	for _, b := range builtIns {
		m := b.manifest
		r.RegisterBuiltIn(&m, b.factory)
	}
	return r
}

// SetConfigLoader overrides how wrapped widgets' configs are read.
// Passing nil restores config.App.
func (r *Registry) SetConfigLoader(fn func(name string) config.Config) {
	if fn == nil {
		fn = config.App
	}
	r.mu.Lock()
	r.loadConfig = fn
	r.mu.Unlock()
}

// RegisterBuiltIn registers a built-in widget and its aliases.
func (r *Registry) RegisterBuiltIn(m *Manifest, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.Type = TypeBuiltIn
	if m.DisplayName == "" {
		m.DisplayName = m.Name
	}
	r.builtIn[m.Name] = &Entry{Manifest: m, Factory: f}
	for _, a := range m.Aliases {
		r.aliases[a] = m.Name
	}
}

// Scan loads wrapper manifests from the subdirectories of baseDir. A
// missing directory is not an error.
func (r *Registry) Scan(baseDir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wrappers = make(map[string]*Entry)

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read widget directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(baseDir, entry.Name())
		if err := r.loadWrapper(dir); err != nil {
			log.Printf("Registry: Failed to load widget from %s: %v", dir, err)
		}
	}
	if len(r.wrappers) > 0 {
		log.Printf("Registry: Loaded %d wrapper widgets", len(r.wrappers))
	}
	return nil
}

func (r *Registry) loadWrapper(dir string) error {
	m, err := LoadManifest(dir)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validate manifest: %w", err)
	}
	if m.Type != TypeWrapper {
		return fmt.Errorf("only wrapper widgets can be loaded from disk")
	}
	if _, ok := r.builtIn[m.Name]; ok {
		return fmt.Errorf("%q shadows a built-in widget", m.Name)
	}
	if _, ok := r.builtIn[m.Wraps]; !ok {
		return fmt.Errorf("wrapped widget %q is not built in", m.Wraps)
	}
	r.wrappers[m.Name] = &Entry{Manifest: m, Dir: dir}
	return nil
}

// Get retrieves a widget by name or alias. Returns nil if unknown.
func (r *Registry) Get(name string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(name)
}

func (r *Registry) getLocked(name string) *Entry {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	if e, ok := r.builtIn[name]; ok {
		return e
	}
	return r.wrappers[name]
}

// List returns all widgets sorted by name.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, len(r.builtIn)+len(r.wrappers))
	for _, e := range r.builtIn {
		entries = append(entries, e)
	}
	for _, e := range r.wrappers {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Manifest.Name < entries[j].Manifest.Name
	})
	return entries
}

// Create builds the named widget. inv.Config is loaded for the canonical
// name when nil. A wrapper runs its built-in with the manifest arguments
// first and inherits the built-in's settings for every key its own config
// lacks.
func (r *Registry) Create(name string, inv Invocation) (*Instance, error) {
	r.mu.RLock()
	entry := r.getLocked(name)
	var base *Entry
	if entry != nil && entry.Manifest.Type == TypeWrapper {
		base = r.builtIn[entry.Manifest.Wraps]
	}
	load := r.loadConfig
	r.mu.RUnlock()

	if entry == nil {
		return nil, fmt.Errorf("unknown widget %q", name)
	}
	m := entry.Manifest
	inv.Name = m.Name
	if inv.Config == nil {
		inv.Config = load(m.Name)
	}

	factory := entry.Factory
	if m.Type == TypeWrapper {
		if base == nil {
			return nil, fmt.Errorf("wrapped widget %q is not built in", m.Wraps)
		}
		factory = base.Factory
		inv.Args = append(append([]string(nil), m.Args...), inv.Args...)
		inv.Config = config.Inherit(inv.Config, load(m.Wraps))
	}
	if factory == nil {
		return nil, fmt.Errorf("widget %q has no factory", m.Name)
	}

	w, err := factory(inv)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", m.Name, err)
	}
	return &Instance{Widget: w, Config: inv.Config, Manifest: m}, nil
}

// Count returns the total number of registered widgets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.builtIn) + len(r.wrappers)
}
