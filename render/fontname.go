// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/fontname.go
// Summary: Picks the family name record matching the locale hint.
// Notes: sfnt.Font.Name does not expose record languages, so the name
//   table is read from the raw font bytes. Only Windows platform records
//   carry usable language IDs.

package render

import (
	"encoding/binary"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

const platformWindows = 3

// windowsLanguages maps Windows LCIDs found in localized font names.
var windowsLanguages = map[uint16]language.Tag{
	0x0409: language.AmericanEnglish,
	0x0809: language.BritishEnglish,
	0x0407: language.MustParse("de-DE"),
	0x040c: language.MustParse("fr-FR"),
	0x0410: language.MustParse("it-IT"),
	0x0c0a: language.MustParse("es-ES"),
	0x0413: language.MustParse("nl-NL"),
	0x0415: language.MustParse("pl-PL"),
	0x0416: language.MustParse("pt-BR"),
	0x0816: language.MustParse("pt-PT"),
	0x0419: language.MustParse("ru-RU"),
	0x041d: language.MustParse("sv-SE"),
	0x041f: language.MustParse("tr-TR"),
	0x0405: language.MustParse("cs-CZ"),
	0x0408: language.MustParse("el-GR"),
	0x0411: language.MustParse("ja-JP"),
	0x0412: language.MustParse("ko-KR"),
	0x0804: language.MustParse("zh-CN"),
	0x0404: language.MustParse("zh-TW"),
	0x0c04: language.MustParse("zh-HK"),
}

type nameRecord struct {
	id   sfnt.NameID
	lang language.Tag
	text string
}

// LocalizedFamily returns the family name whose language best matches
// want, trying the typographic family before the legacy one. It reports
// false when no record matches.
func LocalizedFamily(data []byte, want language.Tag) (string, bool) {
	records := windowsNames(data)
	for _, id := range []sfnt.NameID{sfnt.NameIDTypographicFamily, sfnt.NameIDFamily} {
		var tags []language.Tag
		var texts []string
		for _, r := range records {
			if r.id == id && r.text != "" {
				tags = append(tags, r.lang)
				texts = append(texts, r.text)
			}
		}
		if len(tags) == 0 {
			continue
		}
		_, i, conf := language.NewMatcher(tags).Match(want)
		if conf != language.No {
			return texts[i], true
		}
	}
	return "", false
}

// windowsNames reads the family records of the name table. Malformed
// tables yield nothing.
func windowsNames(data []byte) []nameRecord {
	table := findTable(data, "name")
	if len(table) < 6 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(table[2:]))
	strOff := int(binary.BigEndian.Uint16(table[4:]))
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()

	var out []nameRecord
	for i := 0; i < count; i++ {
		if 6+12*(i+1) > len(table) {
			break
		}
		rec := table[6+12*i:]
		platform := binary.BigEndian.Uint16(rec[0:])
		lang := binary.BigEndian.Uint16(rec[4:])
		id := sfnt.NameID(binary.BigEndian.Uint16(rec[6:]))
		n := int(binary.BigEndian.Uint16(rec[8:]))
		off := strOff + int(binary.BigEndian.Uint16(rec[10:]))
		if platform != platformWindows || (id != sfnt.NameIDFamily && id != sfnt.NameIDTypographicFamily) {
			continue
		}
		tag, ok := windowsLanguages[lang]
		if !ok || off+n > len(table) {
			continue
		}
		text, err := dec.Bytes(table[off : off+n])
		if err != nil {
			continue
		}
		out = append(out, nameRecord{id: id, lang: tag, text: string(text)})
	}
	return out
}

// findTable returns the bytes of the table tagged tag.
func findTable(data []byte, tag string) []byte {
	if len(data) < 12 {
		return nil
	}
	n := int(binary.BigEndian.Uint16(data[4:]))
	for i := 0; i < n; i++ {
		if 12+16*(i+1) > len(data) {
			return nil
		}
		rec := data[12+16*i:]
		if string(rec[:4]) != tag {
			continue
		}
		off := int(binary.BigEndian.Uint32(rec[8:]))
		size := int(binary.BigEndian.Uint32(rec[12:]))
		if off < 0 || size < 0 || off+size > len(data) {
			return nil
		}
		return data[off : off+size]
	}
	return nil
}
