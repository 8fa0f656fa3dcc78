// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/launcher/register.go
// Summary: Registers the launcher and loads its startup data.
// Notes: Fonts, entries with icons and history load in parallel before the
//   surface exists.

package launcher

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/internal/history"
	"github.com/framegrace/texelayer/internal/runner"
	"github.com/framegrace/texelayer/internal/theming"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/picker"
	"github.com/framegrace/texelayer/registry"
)

func init() {
	registry.Register(registry.Manifest{
		Name:        "launcher",
		DisplayName: "Launcher",
		Description: "Application launcher and dmenu-style picker",
		Aliases:     []string{"grimoire"},
	}, Open)
}

// ParseMode reads --drun and --dmenu; the last one wins.
func ParseMode(args []string) (Mode, error) {
	fs := flag.NewFlagSet("launcher", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var dmenu, drun bool
	fs.BoolVar(&dmenu, "dmenu", false, "pick a line from stdin and print it")
	fs.BoolVar(&drun, "drun", false, "list desktop applications")
	if err := fs.Parse(args); err != nil {
		return Drun, fmt.Errorf("launcher: %w", err)
	}
	if fs.NArg() > 0 {
		return Drun, fmt.Errorf("launcher: unexpected argument %q", fs.Arg(0))
	}
	mode := Drun
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dmenu":
			mode = Dmenu
		case "drun":
			mode = Drun
		}
	})
	return mode, nil
}

// Open is the registry factory.
func Open(inv registry.Invocation) (loop.Widget, error) {
	mode, err := ParseMode(inv.Args)
	if err != nil {
		return nil, err
	}
	cfg := inv.Config
	set := SettingsFromConfig(cfg)
	deps := Deps{
		Runner:  runner.Exec{},
		Palette: theming.ForApp(section, cfg, Colors),
		Stdout:  inv.Stdout,
	}

	var (
		lines   []string
		entries []Entry
		icons   []*image.RGBA
		hist    picker.History
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		locale := config.System().GetString("runtime", "locale", "")
		db, families := theming.Fonts(locale, cfg.GetString(section, "font", ""))
		deps.Fonts, deps.Family = db, families[0]
		return nil
	})
	if mode == Dmenu {
		g.Go(func() error {
			var err error
			lines, err = readStdin(inv.Stdin)
			return err
		})
	} else {
		g.Go(func() error {
			entries = ScanEntries(ApplicationDirs())
			icons = iconLoader(set.IconSize).LoadAll(ctx, entries)
			return nil
		})
		g.Go(func() error {
			deps.History, hist = openHistory()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if deps.History != nil {
			deps.History.Close()
		}
		return nil, err
	}

	if mode == Dmenu {
		log.Printf("Launcher: dmenu with %d items", len(lines))
		return NewDmenu(lines, set, deps), nil
	}
	if deps.History != nil && len(entries) > 0 {
		known := make(map[string]bool, len(entries))
		for _, e := range entries {
			known[e.ID] = true
		}
		if n, err := deps.History.Prune(known); err != nil {
			log.Printf("Launcher: prune history: %v", err)
		} else if n > 0 {
			log.Printf("Launcher: Pruned %d uninstalled entries from history", n)
			for key := range hist {
				if !known[key] {
					delete(hist, key)
				}
			}
		}
	}
	log.Printf("Launcher: drun with %d applications", len(entries))
	return NewDrun(entries, icons, hist, set, deps), nil
}

// readStdin reads dmenu items. An interactive terminal has nothing piped
// in and yields no items.
func readStdin(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, nil
	}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		log.Printf("Launcher: stdin is a terminal, no dmenu items")
		return nil, nil
	}
	lines, err := ReadItems(r)
	if err != nil {
		return nil, fmt.Errorf("launcher: reading stdin: %w", err)
	}
	return lines, nil
}

func iconLoader(size int) Icons {
	ic := Icons{Size: size, DataDirs: DataDirs()}
	if dir, err := config.CacheDir(); err == nil {
		ic.CacheDir = filepath.Join(dir, "icons")
	}
	return ic
}

// openHistory opens the launch history, importing the legacy frecency
// file into a fresh database. Failures run the launcher without history.
func openHistory() (*history.DB, picker.History) {
	dir, err := config.StateDir()
	if err != nil {
		log.Printf("Launcher: history disabled: %v", err)
		return nil, nil
	}
	db, err := history.Open(filepath.Join(dir, history.FileName))
	if err != nil {
		log.Printf("Launcher: history disabled: %v", err)
		return nil, nil
	}
	if legacy, err := history.LegacyPath(); err == nil {
		if n, err := db.ImportLegacy(legacy); err != nil {
			log.Printf("Launcher: legacy history: %v", err)
		} else if n > 0 {
			log.Printf("Launcher: Imported %d entries from %s", n, legacy)
		}
	}
	h, err := db.Load()
	if err != nil {
		log.Printf("Launcher: %v", err)
		return db, nil
	}
	return db, h
}
