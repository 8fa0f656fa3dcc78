// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/imagecache/imagecache.go
// Summary: On-disk PNG cache for scaled icons and thumbnails.
// Usage: Cache{Dir: dir}.Get(src, size, produce) returns the cached
//   rendering of src at size, calling produce and storing its result on a
//   miss.
// Notes: Entries are keyed by source path, source mtime and target size,
//   so an edited source is rendered again. Stale entries are never
//   removed.

package imagecache

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Cache stores scaled images below Dir. An empty Dir disables it.
type Cache struct {
	Dir string
}

// Get returns the rendering of src at size. A cached image is used when it
// fits within size; otherwise produce renders it and the result is stored.
// Failing to store is logged, not returned.
func (c Cache) Get(src string, size image.Point, produce func() (*image.RGBA, error)) (*image.RGBA, error) {
	var path string
	if c.Dir != "" {
		st, err := os.Stat(src)
		if err != nil {
			return nil, err
		}
		path = c.Path(src, st, size)
		if img, err := ReadPNG(path); err == nil && fits(img, size) {
			return img, nil
		}
	}
	img, err := produce()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := WritePNG(path, img); err != nil {
			log.Printf("Cache: %v", err)
		}
	}
	return img, nil
}

// Path is the cache file for src at size. Square sizes share a directory
// named after the edge length, others use WxH.
func (c Cache) Path(src string, st os.FileInfo, size image.Point) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d\x00%d", src, st.ModTime().UnixNano(), size.X, size.Y)
	dir := strconv.Itoa(size.X)
	if size.X != size.Y {
		dir = fmt.Sprintf("%dx%d", size.X, size.Y)
	}
	return filepath.Join(c.Dir, dir, hex.EncodeToString(h.Sum(nil))+".png")
}

func fits(img image.Image, size image.Point) bool {
	b := img.Bounds()
	return !b.Empty() && b.Dx() <= size.X && b.Dy() <= size.Y
}

// ReadPNG decodes a PNG file into RGBA.
func ReadPNG(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst, nil
}

// WritePNG encodes img to path through a temporary file, so readers never
// see a partial image.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
