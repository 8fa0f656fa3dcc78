// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelayer/lifecycle/pidfile.go
// Summary: Per-widget PID files for single-instance overlays.
// Usage: `texelayer --toggle launcher` bound to a key opens the launcher,
//   and pressing the key again closes the running one.

package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrNotOwner is returned by Release when the file names another process.
var ErrNotOwner = errors.New("pid file belongs to another process")

// PIDFile records the process running one widget.
type PIDFile struct {
	path string
	pid  int
}

// NewPIDFile returns the PID file for widget inside dir.
func NewPIDFile(dir, widget string) *PIDFile {
	return &PIDFile{path: filepath.Join(dir, widget+".pid"), pid: os.Getpid()}
}

func (p *PIDFile) Path() string { return p.path }

// Read returns the recorded PID.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID format: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID value: %d", pid)
	}
	return pid, nil
}

// Running returns the PID of another live process holding the file. A
// stale file reports false.
func (p *PIDFile) Running() (int, bool) {
	pid, err := p.Read()
	if err != nil || pid == p.pid {
		return 0, false
	}
	// Signal 0 only checks that the process exists.
	if err := syscall.Kill(pid, 0); err != nil && !errors.Is(err, syscall.EPERM) {
		return 0, false
	}
	return pid, true
}

// Acquire records this process.
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("create PID directory: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(fmt.Sprintf("%d\n", p.pid)), 0600); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	return os.Rename(tmp, p.path)
}

// Release removes the file if this process still owns it.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if os.IsNotExist(err) {
		return nil
	}
	if err == nil && pid != p.pid {
		return ErrNotOwner
	}
	err = os.Remove(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Terminate asks the recorded process to exit with SIGTERM. It reports
// false when no other live process holds the file.
func (p *PIDFile) Terminate() (bool, error) {
	pid, ok := p.Running()
	if !ok {
		return false, nil
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return false, fmt.Errorf("signal %d: %w", pid, err)
	}
	return true, nil
}
