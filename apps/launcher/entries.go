// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/launcher/entries.go
// Summary: Desktop entry discovery for drun mode.
// Notes: Only the [Desktop Entry] group is read and localized keys are
//   ignored. A user entry shadows a system entry with the same file name.

package launcher

import (
	"bufio"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fieldCodes are the Exec placeholders a launcher without arguments drops.
const fieldCodes = "fFuUdDnNickvm"

// Entry is one launchable application.
type Entry struct {
	// ID is the desktop file name without extension, the history key.
	ID       string
	Name     string
	Comment  string
	Exec     string
	Icon     string
	Terminal bool
}

// DataDirs are the XDG data directories, user directory first.
func DataDirs() []string {
	var dirs []string
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		dirs = append(dirs, d)
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share"))
	}
	sys := os.Getenv("XDG_DATA_DIRS")
	if sys == "" {
		sys = "/usr/local/share:/usr/share"
	}
	for _, d := range filepath.SplitList(sys) {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// ApplicationDirs are the applications/ subdirectories of DataDirs.
func ApplicationDirs() []string {
	data := DataDirs()
	out := make([]string, len(data))
	for i, d := range data {
		out[i] = filepath.Join(d, "applications")
	}
	return out
}

// StripFieldCodes removes %f-style placeholders from an Exec line and
// unescapes %%.
func StripFieldCodes(exec string) string {
	var b strings.Builder
	b.Grow(len(exec))
	for i := 0; i < len(exec); i++ {
		c := exec[i]
		if c == '%' && i+1 < len(exec) {
			next := exec[i+1]
			if strings.IndexByte(fieldCodes, next) >= 0 {
				i++
				continue
			}
			if next == '%' {
				b.WriteByte('%')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ParseDesktop reads one desktop file. It reports false for entries that
// are not visible applications.
func ParseDesktop(r io.Reader) (Entry, bool) {
	var e Entry
	var inEntry, hidden bool
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] == '[' {
			if inEntry {
				break
			}
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		switch key {
		case "Type":
			if val != "Application" {
				return Entry{}, false
			}
		case "Name":
			e.Name = val
		case "Comment":
			e.Comment = val
		case "Exec":
			e.Exec = StripFieldCodes(val)
		case "Icon":
			e.Icon = val
		case "Terminal":
			e.Terminal = strings.EqualFold(val, "true")
		case "NoDisplay", "Hidden":
			hidden = hidden || strings.EqualFold(val, "true")
		}
	}
	if hidden || e.Name == "" || e.Exec == "" {
		return Entry{}, false
	}
	return e, true
}

// ScanEntries loads the visible applications from dirs, earlier dirs
// shadowing later ones, sorted by name.
func ScanEntries(dirs []string) []Entry {
	seen := make(map[string]bool)
	var out []Entry
	for _, dir := range dirs {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || filepath.Ext(name) != ".desktop" || seen[name] {
				continue
			}
			// A hidden user entry still shadows the system one.
			seen[name] = true
			e, ok := readDesktop(filepath.Join(dir, name))
			if !ok {
				continue
			}
			e.ID = strings.TrimSuffix(name, ".desktop")
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func readDesktop(path string) (Entry, bool) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Launcher: %v", err)
		return Entry{}, false
	}
	defer f.Close()
	return ParseDesktop(f)
}

// ReadItems returns the non-empty lines of r, for dmenu mode.
func ReadItems(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
