// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtimeadapter/panic_logger.go
// Summary: Captures widget panics into the log and a crash file.

package runtimeadapter

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"
)

// PanicLogger writes stack traces of panics. A widget panic ends the
// process with exit code 2 and nothing on stderr; overlays are started
// from compositor keybinds where stderr goes nowhere.
type PanicLogger struct {
	path string
	mu   sync.Mutex
	exit func(code int)
}

// NewPanicLogger appends crash reports to path when it is non-empty.
func NewPanicLogger(path string) *PanicLogger {
	return &PanicLogger{path: path, exit: os.Exit}
}

// Recover must be deferred directly.
func (p *PanicLogger) Recover(where string) {
	if r := recover(); r != nil {
		p.report(where, r)
		p.exit(2)
	}
}

// Go starts fn on a goroutine with recovery.
func (p *PanicLogger) Go(where string, fn func()) {
	go func() {
		defer p.Recover(where)
		fn()
	}()
}

func (p *PanicLogger) report(where string, r interface{}) {
	buf := make([]byte, 1<<16)
	stack := buf[:runtime.Stack(buf, false)]
	log.Printf("panic in %s: %v\n%s", where, r, stack)
	if p.path == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("panic: unable to write crash file: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] panic in %s: %v\n%s\n", time.Now().Format(time.RFC3339Nano), where, r, stack)
}
