// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/theming/style.go
// Summary: Palette fallback taken from a named syntax-highlighting style.

package theming

import (
	"image/color"
	"sort"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

type styleRole struct {
	token      chroma.TokenType
	background bool
}

// styleRoles maps palette keys of both widgets onto style tokens.
var styleRoles = map[string]styleRole{
	"background":       {chroma.Background, true},
	"bar_bg":           {chroma.LineHighlight, true},
	"selection":        {chroma.LineHighlight, true},
	"border":           {chroma.LineNumbers, false},
	"bar_border":       {chroma.LineNumbers, false},
	"divider":          {chroma.LineNumbers, false},
	"text":             {chroma.Text, false},
	"text_comment":     {chroma.Comment, false},
	"text_placeholder": {chroma.CommentSingle, false},
	"dot1":             {chroma.Keyword, false},
	"dot2":             {chroma.LiteralString, false},
	"sun":              {chroma.LiteralNumber, false},
	"clock":            {chroma.NameFunction, false},
	"ui":               {chroma.KeywordType, false},
	"dot6":             {chroma.NameTag, false},
}

// StyleNames lists the registered styles.
func StyleNames() []string {
	names := styles.Names()
	sort.Strings(names)
	return names
}

// StyleColors returns the colors the style sets for the keys in want.
// Alpha comes from want, so a translucent default background stays
// translucent. Unknown styles resolve to chroma's fallback style.
func StyleColors(name string, want map[string]color.NRGBA) map[string]color.NRGBA {
	st := styles.Get(name)
	out := make(map[string]color.NRGBA)
	for key, def := range want {
		role, ok := styleRoles[key]
		if !ok {
			continue
		}
		entry := st.Get(role.token)
		c := entry.Colour
		if role.background {
			c = entry.Background
		}
		if !c.IsSet() {
			continue
		}
		out[key] = color.NRGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: def.A}
	}
	return out
}
