// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runner/runner.go
// Summary: External command capability for widgets.
// Usage: Output for short reads (wpctl get-volume), Spawn/Shell for
//   fire-and-forget actions.
// Notes: Spawned children get their own session and null stdio so they
//   outlive the widget.

package runner

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"
)

// Runner is what widgets depend on; tests substitute a fake.
type Runner interface {
	// Output runs name and returns its stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Spawn starts name detached and does not wait for it.
	Spawn(name string, args ...string) error
}

// Exec runs real processes.
type Exec struct {
	// Env is appended to the inherited environment.
	Env []string
}

// ExitError carries the stderr of a failed command.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with %d: %s", e.Name, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s exited with %d", e.Name, e.Code)
}

func (r Exec) command(ctx context.Context, name string, args []string) *exec.Cmd {
	var cmd *exec.Cmd
	if ctx != nil {
		cmd = exec.CommandContext(ctx, name, args...)
	} else {
		cmd = exec.Command(name, args...)
	}
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	return cmd
}

func (r Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := r.command(ctx, name, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx != nil && ctx.Err() != nil {
			return "", ctx.Err()
		}
		if ee, ok := err.(*exec.ExitError); ok {
			return stdout.String(), &ExitError{Name: name, Code: ee.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return "", fmt.Errorf("run %s: %w", name, err)
	}
	return stdout.String(), nil
}

func (r Exec) Spawn(name string, args ...string) error {
	cmd := r.command(nil, name, args)
	// nil stdio is /dev/null
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", name, err)
	}
	// Reap in the background; a long-running widget would otherwise
	// collect zombies.
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("Runner: %s: %v", name, err)
		}
	}()
	return nil
}

// Shell spawns command through sh -c.
func Shell(r Runner, command string) error {
	return r.Spawn("sh", "-c", command)
}

// Split breaks a configured command line into name and arguments on
// whitespace. It reports false for an empty command.
func Split(command string) (string, []string, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}
