// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: surface/config.go
// Summary: Layer surface placement and role configuration.
// Usage: Built by widgets from their config section, passed once to New.

package surface

import (
	"fmt"
	"strings"
)

// SizeAuto requests the compositor-assigned size for a dimension. It is
// only valid when the surface is anchored to both opposing edges.
const SizeAuto = 0

// Anchor is a set of screen edges. The empty set floats the surface in the
// center of the output.
type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight
)

// KeyboardMode mirrors the layer-shell keyboard interactivity modes.
type KeyboardMode int

const (
	KeyboardNone KeyboardMode = iota
	KeyboardOnDemand
	KeyboardExclusive
)

// Layer orders the surface relative to normal windows.
type Layer int

const (
	LayerBackground Layer = iota
	LayerBottom
	LayerTop
	LayerOverlay
)

type Margins struct {
	Top, Right, Bottom, Left int
}

// Config is supplied once at creation.
type Config struct {
	Width, Height int
	Anchor        Anchor
	Margins       Margins
	// ExclusiveZone reserves space along the anchored edge; -1 asks the
	// compositor not to move the surface for other zones.
	ExclusiveZone int
	Keyboard      KeyboardMode
	Layer         Layer
	Namespace     string
	// Scale is the initial buffer scale. The compositor's preferred scale
	// replaces it when advertised.
	Scale int
}

// Validate rejects configurations the compositor would refuse.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("surface: negative size %dx%d", c.Width, c.Height)
	}
	if c.Width == SizeAuto && c.Anchor&(AnchorLeft|AnchorRight) != AnchorLeft|AnchorRight {
		return fmt.Errorf("surface: auto width needs left and right anchors")
	}
	if c.Height == SizeAuto && c.Anchor&(AnchorTop|AnchorBottom) != AnchorTop|AnchorBottom {
		return fmt.Errorf("surface: auto height needs top and bottom anchors")
	}
	return nil
}

// ParseAnchor accepts edge names; "center", "none" and the empty list float.
func ParseAnchor(names []string) (Anchor, error) {
	var a Anchor
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "top":
			a |= AnchorTop
		case "bottom":
			a |= AnchorBottom
		case "left":
			a |= AnchorLeft
		case "right":
			a |= AnchorRight
		case "center", "none", "":
		default:
			return 0, fmt.Errorf("surface: unknown anchor %q", n)
		}
	}
	return a, nil
}

func ParseKeyboard(s string) (KeyboardMode, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return KeyboardNone, nil
	case "on-demand", "on_demand", "ondemand":
		return KeyboardOnDemand, nil
	case "exclusive":
		return KeyboardExclusive, nil
	}
	return KeyboardNone, fmt.Errorf("surface: unknown keyboard mode %q", s)
}

func ParseLayer(s string) (Layer, error) {
	switch strings.ToLower(s) {
	case "background":
		return LayerBackground, nil
	case "bottom":
		return LayerBottom, nil
	case "top":
		return LayerTop, nil
	case "overlay", "":
		return LayerOverlay, nil
	}
	return LayerOverlay, fmt.Errorf("surface: unknown layer %q", s)
}
