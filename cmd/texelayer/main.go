// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelayer/main.go
// Summary: Multi-call binary running one overlay widget per process.
// Usage: texelayer [flags] <widget> [widget args]
//   texelayer launcher --dmenu < items
//   texelayer --toggle dashboard
//   texelayer list
//   texelayer snapshot -o panel.png dashboard
// Notes: Widgets are started from compositor keybinds, so runtime errors
//   go to the log file only and the process exits 1 without output.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/framegrace/texelayer/cmd/texelayer/lifecycle"
	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/internal/runtimeadapter"
	"github.com/framegrace/texelayer/internal/theming"
	"github.com/framegrace/texelayer/registry"

	_ "github.com/framegrace/texelayer/apps/clock"
	_ "github.com/framegrace/texelayer/apps/dashboard"
	_ "github.com/framegrace/texelayer/apps/launcher"
	_ "github.com/framegrace/texelayer/apps/wallrun"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type globalFlags struct {
	quiet   bool
	logPath string
	toggle  bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	reg := registry.New()
	fs := flag.NewFlagSet("texelayer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var g globalFlags
	fs.BoolVar(&g.quiet, "quiet", false, "discard log output")
	fs.StringVar(&g.logPath, "log", "", "log file (default $XDG_STATE_HOME/texelayer/<widget>.log)")
	fs.BoolVar(&g.toggle, "toggle", false, "close the running instance of the widget instead of starting another")
	fs.Usage = func() { usage(stderr, fs, reg) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	name, wargs := rest[0], rest[1:]

	switch name {
	case "list":
		scanWrappers(reg)
		list(stdout, reg)
		return 0
	case "snapshot":
		closeLog := setupLog("snapshot", g)
		defer closeLog()
		scanWrappers(reg)
		return snapshot(wargs, reg, stdin, stderr)
	}

	closeLog := setupLog(name, g)
	defer closeLog()
	scanWrappers(reg)
	entry := reg.Get(name)
	if entry == nil {
		fmt.Fprintf(stderr, "texelayer: unknown widget %q\n", name)
		fs.Usage()
		return 2
	}
	return runWidget(entry.Manifest.Name, name, wargs, g, reg, stdin, stdout)
}

func runWidget(canonical, name string, args []string, g globalFlags, reg *registry.Registry, stdin io.Reader, stdout io.Writer) int {
	stateDir, err := config.StateDir()
	if err != nil {
		log.Printf("Main: %v", err)
		return 1
	}
	panics := runtimeadapter.NewPanicLogger(filepath.Join(stateDir, "crash.log"))
	defer panics.Recover(canonical)

	if err := config.Err(); err != nil {
		log.Printf("Main: system config: %v", err)
	}

	if g.toggle {
		pf := lifecycle.NewPIDFile(stateDir, canonical)
		sent, err := pf.Terminate()
		if err != nil {
			log.Printf("Main: toggle: %v", err)
			return 1
		}
		if sent {
			log.Printf("Main: Closed running %s", canonical)
			return 0
		}
		if err := pf.Acquire(); err != nil {
			log.Printf("Main: %v", err)
		}
		defer func() {
			if err := pf.Release(); err != nil {
				log.Printf("Main: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inst, err := reg.Create(name, registry.Invocation{Args: args, Stdin: stdin, Stdout: stdout})
	if err != nil {
		log.Printf("Main: %v", err)
		return 1
	}

	opts := runtimeadapter.OptionsFromConfig(config.System())
	if th, ok := inst.Widget.(theming.Themed); ok {
		opts.Reload = theming.WatchApp(ctx, th.ThemeSection(), inst.Config, th.PaletteDefaults())
	}

	log.Printf("Main: Starting %s %s", inst.Manifest.Name, strings.Join(args, " "))
	code, err := runtimeadapter.Run(ctx, inst, opts)
	if err != nil {
		log.Printf("Main: %s: %v", inst.Manifest.Name, err)
		return max(code, 1)
	}
	log.Printf("Main: %s exited with %d", inst.Manifest.Name, code)
	return code
}

// setupLog points the standard logger at the widget's log file. Logging
// is best effort; a log file that cannot be opened discards output.
func setupLog(widget string, g globalFlags) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if g.quiet {
		log.SetOutput(io.Discard)
		return func() {}
	}
	path := g.logPath
	if path == "" {
		dir, err := config.StateDir()
		if err != nil {
			log.SetOutput(io.Discard)
			return func() {}
		}
		path = filepath.Join(dir, widget+".log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}

func scanWrappers(reg *registry.Registry) {
	dir, err := config.Dir()
	if err != nil {
		return
	}
	if err := reg.Scan(filepath.Join(dir, "widgets")); err != nil {
		log.Printf("Main: %v", err)
	}
}

func usage(w io.Writer, fs *flag.FlagSet, reg *registry.Registry) {
	fmt.Fprintln(w, "usage: texelayer [flags] <widget> [widget args]")
	fmt.Fprintln(w, "       texelayer list")
	fmt.Fprintln(w, "       texelayer snapshot [-o file.png] [-scale n] <widget> [widget args]")
	fmt.Fprintln(w, "\nwidgets:")
	list(w, reg)
	fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
}

func list(w io.Writer, reg *registry.Registry) {
	for _, e := range reg.List() {
		m := e.Manifest
		line := fmt.Sprintf("  %-12s %s", m.Name, m.Description)
		if m.Type == registry.TypeWrapper {
			line += fmt.Sprintf(" (%s %s)", m.Wraps, strings.Join(m.Args, " "))
		}
		if len(m.Aliases) > 0 {
			line += fmt.Sprintf(" [alias: %s]", strings.Join(m.Aliases, ", "))
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
