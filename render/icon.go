// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/icon.go
// Summary: Icon decoding and scaling for PNG and SVG files.

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// LoadIcon decodes the file at path and scales it to size x size. SVGs are
// rasterized directly at the target size.
func LoadIcon(path string, size int) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeIcon(data, filepath.Ext(path), size)
}

// DecodeIcon is LoadIcon on bytes already read. ext selects the decoder.
func DecodeIcon(data []byte, ext string, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("render: icon size %d", size)
	}
	switch strings.ToLower(ext) {
	case ".svg":
		return rasterizeSVG(data, size)
	case ".png":
		src, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("render: decoding png: %w", err)
		}
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		return dst, nil
	}
	return nil, fmt.Errorf("render: unsupported icon format %q", ext)
}

func rasterizeSVG(data []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("render: decoding svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, dst, dst.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return dst, nil
}
