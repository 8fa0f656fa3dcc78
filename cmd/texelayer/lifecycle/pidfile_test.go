// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package lifecycle

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	p := NewPIDFile(dir, "launcher")
	if err := p.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	pid, err := p.Read()
	if err != nil || pid != os.Getpid() {
		t.Fatalf("Read = %d, %v", pid, err)
	}
	if _, ok := p.Running(); ok {
		t.Fatalf("own PID must not count as another instance")
	}
	if err := p.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(p.Path()); !os.IsNotExist(err) {
		t.Fatalf("pid file still present: %v", err)
	}
	if err := p.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestReleaseKeepsForeignFile(t *testing.T) {
	p := NewPIDFile(t.TempDir(), "dashboard")
	if err := os.WriteFile(p.Path(), []byte("1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := p.Release(); err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := os.Stat(p.Path()); err != nil {
		t.Fatalf("foreign pid file removed: %v", err)
	}
}

func TestStaleFileIsNotRunning(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Skipf("true: %v", err)
	}
	p := NewPIDFile(t.TempDir(), "clock")
	if err := os.WriteFile(p.Path(), []byte(strconv.Itoa(cmd.Process.Pid)), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Running(); ok {
		t.Fatalf("exited process reported as running")
	}
	sent, err := p.Terminate()
	if err != nil || sent {
		t.Fatalf("Terminate on stale file = %v, %v", sent, err)
	}
}

func TestTerminateSignalsRunningInstance(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("sleep: %v", err)
	}
	defer cmd.Process.Kill()

	p := NewPIDFile(t.TempDir(), "launcher")
	if err := os.WriteFile(p.Path(), []byte(strconv.Itoa(cmd.Process.Pid)), 0600); err != nil {
		t.Fatal(err)
	}
	pid, ok := p.Running()
	if !ok || pid != cmd.Process.Pid {
		t.Fatalf("Running = %d, %v", pid, ok)
	}
	sent, err := p.Terminate()
	if err != nil || !sent {
		t.Fatalf("Terminate = %v, %v", sent, err)
	}
	if err := cmd.Wait(); err == nil {
		t.Fatalf("sleep exited cleanly, expected SIGTERM")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	p := NewPIDFile(t.TempDir(), "x")
	for _, body := range []string{"abc", "0", "-4"} {
		if err := os.WriteFile(p.Path(), []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := p.Read(); err == nil {
			t.Fatalf("%q: expected error", body)
		}
	}
}
