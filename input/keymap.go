// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/keymap.go
// Summary: Evdev keycode translation for a US layout.
// Notes: The compositor's xkb keymap is not compiled; widgets only need
//   navigation keys and printable ASCII. Non-US layouts therefore type
//   the character at the US position.

package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Evdev codes used outside the table.
const (
	KeyLeftCtrl   = 29
	KeyLeftShift  = 42
	KeyRightShift = 54
	KeyLeftAlt    = 56
	KeyCapsLock   = 58
	KeyRightCtrl  = 97
	KeyRightAlt   = 100
	KeyLeftMeta   = 125
	KeyRightMeta  = 126
)

// Evdev pointer buttons.
const (
	BtnLeft   = 0x110
	BtnRight  = 0x111
	BtnMiddle = 0x112
	BtnSide   = 0x113
	BtnExtra  = 0x114
)

type keyEntry struct {
	key     tcell.Key
	lower   rune
	shifted rune
}

var specialKeys = map[uint32]tcell.Key{
	1:   tcell.KeyEscape,
	14:  tcell.KeyBackspace2,
	15:  tcell.KeyTab,
	28:  tcell.KeyEnter,
	96:  tcell.KeyEnter,
	102: tcell.KeyHome,
	103: tcell.KeyUp,
	104: tcell.KeyPgUp,
	105: tcell.KeyLeft,
	106: tcell.KeyRight,
	107: tcell.KeyEnd,
	108: tcell.KeyDown,
	109: tcell.KeyPgDn,
	110: tcell.KeyInsert,
	111: tcell.KeyDelete,
	59:  tcell.KeyF1,
	60:  tcell.KeyF2,
	61:  tcell.KeyF3,
	62:  tcell.KeyF4,
	63:  tcell.KeyF5,
	64:  tcell.KeyF6,
	65:  tcell.KeyF7,
	66:  tcell.KeyF8,
	67:  tcell.KeyF9,
	68:  tcell.KeyF10,
	87:  tcell.KeyF11,
	88:  tcell.KeyF12,
}

var printable = map[uint32][2]rune{
	2: {'1', '!'}, 3: {'2', '@'}, 4: {'3', '#'}, 5: {'4', '$'}, 6: {'5', '%'},
	7: {'6', '^'}, 8: {'7', '&'}, 9: {'8', '*'}, 10: {'9', '('}, 11: {'0', ')'},
	12: {'-', '_'}, 13: {'=', '+'},
	16: {'q', 'Q'}, 17: {'w', 'W'}, 18: {'e', 'E'}, 19: {'r', 'R'}, 20: {'t', 'T'},
	21: {'y', 'Y'}, 22: {'u', 'U'}, 23: {'i', 'I'}, 24: {'o', 'O'}, 25: {'p', 'P'},
	26: {'[', '{'}, 27: {']', '}'},
	30: {'a', 'A'}, 31: {'s', 'S'}, 32: {'d', 'D'}, 33: {'f', 'F'}, 34: {'g', 'G'},
	35: {'h', 'H'}, 36: {'j', 'J'}, 37: {'k', 'K'}, 38: {'l', 'L'},
	39: {';', ':'}, 40: {'\'', '"'}, 41: {'`', '~'}, 43: {'\\', '|'},
	44: {'z', 'Z'}, 45: {'x', 'X'}, 46: {'c', 'C'}, 47: {'v', 'V'}, 48: {'b', 'B'},
	49: {'n', 'N'}, 50: {'m', 'M'},
	51: {',', '<'}, 52: {'.', '>'}, 53: {'/', '?'},
	57: {' ', ' '},
	55: {'*', '*'}, 74: {'-', '-'}, 78: {'+', '+'}, 98: {'/', '/'},
	71: {'7', '7'}, 72: {'8', '8'}, 73: {'9', '9'},
	75: {'4', '4'}, 76: {'5', '5'}, 77: {'6', '6'},
	79: {'1', '1'}, 80: {'2', '2'}, 81: {'3', '3'},
	82: {'0', '0'}, 83: {'.', '.'},
}

// IsModifier reports whether code is a modifier key. Modifiers never
// produce key events and never repeat.
func IsModifier(code uint32) bool {
	switch code {
	case KeyLeftCtrl, KeyRightCtrl, KeyLeftShift, KeyRightShift,
		KeyLeftAlt, KeyRightAlt, KeyLeftMeta, KeyRightMeta, KeyCapsLock:
		return true
	}
	return false
}

// Translate maps an evdev key code under the given modifier state. Unknown
// codes report false.
func Translate(code uint32, mods tcell.ModMask, caps bool) (KeyEvent, bool) {
	if k, ok := specialKeys[code]; ok {
		return KeyEvent{Key: k, Mods: mods, Code: code}, true
	}
	pair, ok := printable[code]
	if !ok {
		return KeyEvent{}, false
	}
	r := pair[0]
	shift := mods&tcell.ModShift != 0
	if unicode.IsLetter(r) {
		if shift != caps {
			r = pair[1]
		}
	} else if shift {
		r = pair[1]
	}
	if mods&tcell.ModCtrl != 0 && unicode.IsLetter(r) {
		lower := unicode.ToLower(r)
		return KeyEvent{
			Key:  tcell.KeyCtrlA + tcell.Key(lower-'a'),
			Rune: lower,
			Mods: mods,
			Code: code,
		}, true
	}
	return KeyEvent{Key: tcell.KeyRune, Rune: r, Mods: mods, Code: code}, true
}

// Button maps an evdev button code to tcell's vocabulary.
func Button(code uint32) tcell.ButtonMask {
	switch code {
	case BtnLeft:
		return tcell.Button1
	case BtnRight:
		return tcell.Button2
	case BtnMiddle:
		return tcell.Button3
	case BtnSide:
		return tcell.Button4
	case BtnExtra:
		return tcell.Button5
	}
	return tcell.ButtonNone
}
