// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/storage/store.go
// Summary: File-backed JSON state for widgets with debounced writes.
// Usage: Open(stateDir) once per process; widgets take a Scope and call
//   Close from their Flush on exit.
// Notes: A scope is one file, <dir>/<scope>.json, holding a key -> JSON map.

package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// DefaultDebounce is how long writes are held back after the last Set.
const DefaultDebounce = 2 * time.Second

// Store caches scopes in memory and writes dirty ones lazily.
type Store struct {
	dir string
	mu  sync.Mutex

	// scope -> key -> value
	cache map[string]map[string]json.RawMessage
	dirty map[string]bool

	debounce   time.Duration
	flushTimer *time.Timer
	flushMu    sync.Mutex

	closed bool
}

// Open creates dir if needed. A debounce <= 0 uses DefaultDebounce.
func Open(dir string, debounce time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Store{
		dir:      dir,
		cache:    make(map[string]map[string]json.RawMessage),
		dirty:    make(map[string]bool),
		debounce: debounce,
	}, nil
}

// Scope returns the view of one state file.
func (s *Store) Scope(name string) *Scope {
	return &Scope{store: s, name: name}
}

func (s *Store) path(scope string) string {
	return filepath.Join(s.dir, scope+".json")
}

// Flush writes every dirty scope now.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	for scope := range s.dirty {
		data, err := json.MarshalIndent(s.cache[scope], "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal scope %s: %w", scope, err)
		}
		if err := writeAtomic(s.path(scope), data); err != nil {
			return fmt.Errorf("failed to write scope %s: %w", scope, err)
		}
		delete(s.dirty, scope)
	}
	return nil
}

// Close stops the pending flush and writes what is dirty. Later Sets are
// kept in memory only.
func (s *Store) Close() error {
	s.flushMu.Lock()
	if s.flushTimer != nil {
		s.flushTimer.Stop()
		s.flushTimer = nil
	}
	s.flushMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.flushLocked()
	s.closed = true
	return err
}

func (s *Store) markDirty(scope string) {
	s.dirty[scope] = true
	if !s.closed {
		s.scheduleFlush()
	}
}

func (s *Store) scheduleFlush() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	if s.flushTimer != nil {
		s.flushTimer.Stop()
	}
	s.flushTimer = time.AfterFunc(s.debounce, func() {
		if err := s.Flush(); err != nil {
			log.Printf("Storage: flush: %v", err)
		}
	})
}

// ensureLoaded reads the scope file on first use. Must be called with s.mu
// held.
func (s *Store) ensureLoaded(scope string) error {
	if _, ok := s.cache[scope]; ok {
		return nil
	}
	data, err := os.ReadFile(s.path(scope))
	if err != nil {
		if os.IsNotExist(err) {
			s.cache[scope] = make(map[string]json.RawMessage)
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}
	var scopeData map[string]json.RawMessage
	if err := json.Unmarshal(data, &scopeData); err != nil || scopeData == nil {
		log.Printf("Storage: %s is corrupt, starting fresh", s.path(scope))
		scopeData = make(map[string]json.RawMessage)
	}
	s.cache[scope] = scopeData
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Scope reads and writes keys of one state file.
type Scope struct {
	store *Store
	name  string
}

func (sc *Scope) Name() string { return sc.name }

// Get decodes key into v. It reports false when the key is absent.
func (sc *Scope) Get(key string, v interface{}) (bool, error) {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(sc.name); err != nil {
		return false, err
	}
	raw, ok := s.cache[sc.name][key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", sc.name, key, err)
	}
	return true, nil
}

// Set stores v under key and schedules a write.
func (sc *Scope) Set(key string, v interface{}) error {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(sc.name); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	s.cache[sc.name][key] = data
	s.markDirty(sc.name)
	return nil
}

func (sc *Scope) Delete(key string) error {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(sc.name); err != nil {
		return err
	}
	if _, ok := s.cache[sc.name][key]; ok {
		delete(s.cache[sc.name], key)
		s.markDirty(sc.name)
	}
	return nil
}

// List returns the keys in sorted order.
func (sc *Scope) List() ([]string, error) {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(sc.name); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.cache[sc.name]))
	for key := range s.cache[sc.name] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear empties the scope; the file is rewritten as "{}" on flush.
func (sc *Scope) Clear() error {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[sc.name] = make(map[string]json.RawMessage)
	s.markDirty(sc.name)
	return nil
}
