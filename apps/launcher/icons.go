// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/launcher/icons.go
// Summary: Icon theme lookup with a rasterized PNG cache.
// Usage: Icons.Load resolves an Icon= value and returns it at the
//   configured size; LoadAll does the same for every entry in parallel.

package launcher

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texelayer/internal/imagecache"
	"github.com/framegrace/texelayer/render"
)

// hicolorSizes are the fixed-size theme directories, best first.
var hicolorSizes = []string{"48x48", "64x64", "32x32", "128x128", "256x256"}

// Icons resolves icon names against the hicolor theme of each data dir
// and the pixmaps directory.
type Icons struct {
	Size int
	// DataDirs are searched in order for icons/hicolor and pixmaps.
	DataDirs []string
	// CacheDir holds scaled PNGs, see imagecache. Empty disables the
	// cache.
	CacheDir string
}

// Find returns the file for name, or false.
func (ic Icons) Find(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		return name, exists(name)
	}
	for _, size := range hicolorSizes {
		for _, d := range ic.DataDirs {
			p := filepath.Join(d, "icons", "hicolor", size, "apps", name+".png")
			if exists(p) {
				return p, true
			}
		}
	}
	for _, d := range ic.DataDirs {
		p := filepath.Join(d, "icons", "hicolor", "scalable", "apps", name+".svg")
		if exists(p) {
			return p, true
		}
	}
	for _, ext := range []string{".png", ".svg"} {
		for _, d := range ic.DataDirs {
			p := filepath.Join(d, "pixmaps", name+ext)
			if exists(p) {
				return p, true
			}
		}
	}
	return "", false
}

// Load finds and rasterizes name. Missing icons return nil without error.
func (ic Icons) Load(name string) (*image.RGBA, error) {
	path, ok := ic.Find(name)
	if !ok {
		return nil, nil
	}
	cache := imagecache.Cache{Dir: ic.CacheDir}
	return cache.Get(path, image.Pt(ic.Size, ic.Size), func() (*image.RGBA, error) {
		img, err := render.LoadIcon(path, ic.Size)
		if err != nil {
			return nil, fmt.Errorf("icon %s: %w", path, err)
		}
		return img, nil
	})
}

// LoadAll loads the icon of every entry. Failures leave a nil icon.
func (ic Icons) LoadAll(ctx context.Context, entries []Entry) []*image.RGBA {
	out := make([]*image.RGBA, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, e := range entries {
		i, e := i, e
		if e.Icon == "" {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			img, err := ic.Load(e.Icon)
			if err != nil {
				log.Printf("Launcher: %v", err)
				return nil
			}
			out[i] = img
			return nil
		})
	}
	g.Wait()
	return out
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
