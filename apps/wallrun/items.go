// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/wallrun/items.go
// Summary: Wallpaper discovery and thumbnail rendering.
// Usage: ScanDir lists the images of a directory; Thumbs.LoadAll renders
//   them to fit the thumbnail box through the on-disk cache.

package wallrun

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texelayer/internal/imagecache"
)

// DefaultExtensions are the image types listed when none are configured.
var DefaultExtensions = []string{"png", "jpg", "jpeg", "webp"}

// Wallpaper is one image file.
type Wallpaper struct {
	Path  string
	Label string
}

// ParseExtensions splits a comma separated list such as "png, .JPG" into
// lower-case extensions without dots.
func ParseExtensions(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ScanDir lists the files of dir whose extension is in exts, compared
// without case, sorted by label. The label is the file name without its
// extension.
func ScanDir(dir string, exts []string) ([]Wallpaper, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("wallrun: %w", err)
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}
	var out []Wallpaper
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		ext := filepath.Ext(name)
		if !want[strings.ToLower(strings.TrimPrefix(ext, "."))] {
			continue
		}
		out = append(out, Wallpaper{
			Path:  filepath.Join(dir, name),
			Label: strings.TrimSuffix(name, ext),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// Thumbs renders wallpapers into a box of Size logical pixels.
type Thumbs struct {
	Size image.Point
	// CacheDir holds rendered thumbnails. Empty disables the cache.
	CacheDir string
}

// Load returns the thumbnail of path, keeping its aspect ratio.
func (t Thumbs) Load(path string) (*image.RGBA, error) {
	cache := imagecache.Cache{Dir: t.CacheDir}
	return cache.Get(path, t.Size, func() (*image.RGBA, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return Scale(src, t.Size), nil
	})
}

// LoadAll loads every thumbnail in parallel. A failed image is logged and
// left nil.
func (t Thumbs) LoadAll(ctx context.Context, walls []Wallpaper) []*image.RGBA {
	out := make([]*image.RGBA, len(walls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, w := range walls {
		i, w := i, w
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			img, err := t.Load(w.Path)
			if err != nil {
				log.Printf("Wallrun: skip %s: %v", w.Path, err)
				return nil
			}
			out[i] = img
			return nil
		})
	}
	g.Wait()
	return out
}

// Scale resizes src to the largest size that fits box with the same
// aspect ratio.
func Scale(src image.Image, box image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: Fit(src.Bounds().Size(), box)})
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Fit is the largest size with the aspect ratio of size inside box. Both
// sides are at least one pixel.
func Fit(size, box image.Point) image.Point {
	if size.X <= 0 || size.Y <= 0 || box.X <= 0 || box.Y <= 0 {
		return image.Pt(max(box.X, 1), max(box.Y, 1))
	}
	if size.X*box.Y >= size.Y*box.X {
		return image.Pt(box.X, max(size.Y*box.X/size.X, 1))
	}
	return image.Pt(max(size.X*box.Y/size.Y, 1), box.Y)
}
