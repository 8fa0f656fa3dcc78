// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/watch.go
// Summary: File change notification for config and colors files.
// Usage: Watch(ctx, path, fn) calls fn on its own goroutine after path was
//   written, created or replaced. It stops when ctx is done.

package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle coalesces the burst of events an editor save produces.
const watchSettle = 50 * time.Millisecond

// Watch observes the directory holding path, so atomic replaces by
// editors and tools such as pywal are seen too.
func Watch(ctx context.Context, path string, fn func()) error {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var settle *time.Timer
		var settleC <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if settle != nil {
					settle.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if settle == nil {
					settle = time.NewTimer(watchSettle)
				} else {
					settle.Reset(watchSettle)
				}
				settleC = settle.C
			case <-settleC:
				settleC = nil
				fn()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("Config: watch %s: %v", path, err)
			}
		}
	}()
	return nil
}
