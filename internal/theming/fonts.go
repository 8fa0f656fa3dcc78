// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/theming/fonts.go
// Summary: Reads configured font files into a render.FontDB.

package theming

import (
	"image/color"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/render"
)

// Themed is implemented by widgets whose palette can be reloaded from
// their colors file.
type Themed interface {
	// ThemeSection is the config section holding color_file and style.
	ThemeSection() string
	PaletteDefaults() map[string]color.NRGBA
}

// Fonts reads the files concurrently and loads them into a new database
// in argument order. Unreadable or unparsable files are logged and get
// the family ""; faces for it fall back to the first font that loaded.
func Fonts(localeHint string, paths ...string) (*render.FontDB, []string) {
	data := make([][]byte, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		i, p := i, p
		if p == "" {
			continue
		}
		g.Go(func() error {
			b, err := os.ReadFile(config.ExpandPath(p))
			if err != nil {
				log.Printf("Theming: font %s: %v", p, err)
				return nil
			}
			data[i] = b
			return nil
		})
	}
	_ = g.Wait()

	db := render.NewFontDB(localeHint)
	families := make([]string, len(paths))
	for i, b := range data {
		if b == nil {
			continue
		}
		family, err := db.Load(b)
		if err != nil {
			log.Printf("Theming: font %s: %v", paths[i], err)
			continue
		}
		families[i] = family
	}
	return db, families
}
