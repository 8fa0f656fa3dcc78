// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/wallrun/register.go
// Summary: Registers the wallpaper picker and loads its thumbnails.
// Notes: Fonts and thumbnails load in parallel before the surface exists.
//   Thumbnails are rendered for the configured surface width.

package wallrun

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/internal/theming"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/registry"
)

func init() {
	registry.Register(registry.Manifest{
		Name:        "wallrun",
		DisplayName: "Wallrun",
		Description: "Wallpaper picker that prints the chosen image",
	}, Open)
}

// ParseArgs applies --dir and --ext over the configured settings.
func ParseArgs(args []string, set Settings) (Settings, error) {
	fs := flag.NewFlagSet("wallrun", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dir := fs.String("dir", set.Dir, "directory of wallpapers")
	ext := fs.String("ext", "", "comma separated extensions, e.g. png,jpg")
	if err := fs.Parse(args); err != nil {
		return set, fmt.Errorf("wallrun: %w", err)
	}
	if fs.NArg() > 0 {
		return set, fmt.Errorf("wallrun: unexpected argument %q", fs.Arg(0))
	}
	set.Dir = config.ExpandPath(*dir)
	if exts := ParseExtensions(*ext); len(exts) > 0 {
		set.Extensions = exts
	}
	if set.Dir == "" {
		return set, errors.New("wallrun: no wallpaper directory, pass --dir or set dir")
	}
	return set, nil
}

// Open is the registry factory.
func Open(inv registry.Invocation) (loop.Widget, error) {
	cfg := inv.Config
	set, err := ParseArgs(inv.Args, SettingsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	deps := Deps{
		Palette: theming.ForApp(section, cfg, Colors),
		Stdout:  inv.Stdout,
	}
	thumbs := Thumbs{Size: ThumbBox(cfg.GetInt("surface", "width", 800), set.Columns)}
	if dir, err := config.CacheDir(); err == nil {
		thumbs.CacheDir = filepath.Join(dir, "thumbnails")
	}

	var (
		walls  []Wallpaper
		images []*image.RGBA
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		locale := config.System().GetString("runtime", "locale", "")
		db, families := theming.Fonts(locale, cfg.GetString(section, "font", ""))
		deps.Fonts, deps.Family = db, families[0]
		return nil
	})
	g.Go(func() error {
		var err error
		if walls, err = ScanDir(set.Dir, set.Extensions); err != nil {
			return err
		}
		images = thumbs.LoadAll(ctx, walls)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Printf("Wallrun: %d wallpapers in %s", len(walls), set.Dir)
	return New(walls, images, set, deps), nil
}
