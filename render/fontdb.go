// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/fontdb.go
// Summary: In-memory font database fed with raw font bytes.
// Usage: family, err := db.Load(bytes); face := db.Face(family, 18).
// Notes: No system font directories are scanned. The family name comes
//   from the font's own name table.

package render

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/language"
)

var ErrNoFamily = errors.New("render: font has no family name")

type faceKey struct {
	family string
	size   float64
}

// FontDB holds parsed fonts by family and caches sized faces.
type FontDB struct {
	locale language.Tag
	fonts  map[string]*sfnt.Font
	order  []string
	faces  map[faceKey]*Face
}

// NewFontDB creates an empty database. The locale hint is a BCP 47 tag;
// empty means the process locale.
func NewFontDB(localeHint string) *FontDB {
	return &FontDB{
		locale: resolveLocale(localeHint),
		fonts:  make(map[string]*sfnt.Font),
		faces:  make(map[faceKey]*Face),
	}
}

func resolveLocale(hint string) language.Tag {
	if hint == "" {
		if l, err := locale.GetLocale(); err == nil {
			hint = l
		}
	}
	// POSIX style en_US.UTF-8
	hint = strings.SplitN(hint, ".", 2)[0]
	hint = strings.ReplaceAll(hint, "_", "-")
	tag, err := language.Parse(hint)
	if err != nil {
		return language.English
	}
	return tag
}

// Locale is the resolved locale hint.
func (db *FontDB) Locale() language.Tag { return db.locale }

// Load parses font bytes and returns the family name stored in them,
// localized for the locale hint when the font carries such a name. The
// unlocalized name stays usable as an alias. The first font loaded for a
// family wins.
func (db *FontDB) Load(data []byte) (string, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return "", fmt.Errorf("render: parsing font: %w", err)
	}
	base, err := FamilyName(f)
	if err != nil {
		return "", err
	}
	family := base
	if name, ok := LocalizedFamily(data, db.locale); ok {
		family = name
	}
	if _, dup := db.fonts[family]; !dup {
		db.fonts[family] = f
		db.order = append(db.order, family)
	}
	if _, dup := db.fonts[base]; !dup {
		db.fonts[base] = f
	}
	return family, nil
}

// FamilyName prefers the typographic family (name id 16), which groups
// weights under one name, over the legacy family (id 1).
func FamilyName(f *sfnt.Font) (string, error) {
	var buf sfnt.Buffer
	for _, id := range []sfnt.NameID{sfnt.NameIDTypographicFamily, sfnt.NameIDFamily} {
		name, err := f.Name(&buf, id)
		if err == nil && strings.TrimSpace(name) != "" {
			return name, nil
		}
	}
	return "", ErrNoFamily
}

// Families lists loaded families in load order.
func (db *FontDB) Families() []string {
	return append([]string(nil), db.order...)
}

// Face returns a face for family at size pixels. An unknown family falls
// back to the first loaded font, then to the built-in bitmap face.
func (db *FontDB) Face(family string, size float64) *Face {
	key := faceKey{family, size}
	if f, ok := db.faces[key]; ok {
		return f
	}
	f, ok := db.fonts[family]
	if !ok && len(db.order) > 0 {
		log.Printf("Render: font family %q not loaded, using %q", family, db.order[0])
		family = db.order[0]
		f = db.fonts[family]
	}
	var face *Face
	if f != nil {
		ff, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			log.Printf("Render: sizing %q at %.1f: %v", family, size, err)
		} else {
			face = newFace(ff, family, size)
		}
	}
	if face == nil {
		face = FallbackFace()
	}
	db.faces[key] = face
	return face
}
