// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtimeadapter/surface_config.go
// Summary: Maps the [surface] config section onto surface.Config.

package runtimeadapter

import (
	"fmt"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/surface"
)

const surfaceSection = "surface"

// SurfaceConfig reads width, height, anchor, margin, exclusive_zone,
// keyboard, layer and namespace.
func SurfaceConfig(cfg config.Config) (surface.Config, error) {
	var sc surface.Config
	sc.Width = cfg.GetInt(surfaceSection, "width", 0)
	sc.Height = cfg.GetInt(surfaceSection, "height", 0)
	sc.ExclusiveZone = cfg.GetInt(surfaceSection, "exclusive_zone", 0)
	sc.Namespace = cfg.GetString(surfaceSection, "namespace", "texelayer")
	sc.Scale = cfg.GetInt(surfaceSection, "scale", 1)

	anchor, err := surface.ParseAnchor(cfg.GetStringSlice(surfaceSection, "anchor", nil))
	if err != nil {
		return sc, err
	}
	sc.Anchor = anchor

	sc.Margins, err = parseMargins(cfg.GetIntSlice(surfaceSection, "margin", nil))
	if err != nil {
		return sc, err
	}
	if sc.Keyboard, err = surface.ParseKeyboard(cfg.GetString(surfaceSection, "keyboard", "none")); err != nil {
		return sc, err
	}
	if sc.Layer, err = surface.ParseLayer(cfg.GetString(surfaceSection, "layer", "overlay")); err != nil {
		return sc, err
	}
	return sc, sc.Validate()
}

// parseMargins follows CSS shorthand: one value for all edges, two for
// vertical and horizontal, four for top, right, bottom, left.
func parseMargins(v []int) (surface.Margins, error) {
	switch len(v) {
	case 0:
		return surface.Margins{}, nil
	case 1:
		return surface.Margins{Top: v[0], Right: v[0], Bottom: v[0], Left: v[0]}, nil
	case 2:
		return surface.Margins{Top: v[0], Right: v[1], Bottom: v[0], Left: v[1]}, nil
	case 4:
		return surface.Margins{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}, nil
	}
	return surface.Margins{}, fmt.Errorf("surface: margin needs 1, 2 or 4 values, got %d", len(v))
}
