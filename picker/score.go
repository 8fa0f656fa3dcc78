// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: picker/score.go
// Summary: Match quality and frecency scoring for picker items.

package picker

import (
	"cmp"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultHalfLife is the recency decay used when none is configured.
const DefaultHalfLife = 72 * time.Hour

// Quality ranks how an item matched the query. Higher is better.
type Quality int

const (
	// QualityAll is the quality of every item under the empty query.
	QualityAll Quality = iota
	QualitySecondary
	QualityFuzzy
	QualitySubstring
	QualityPrefix
)

func (q Quality) String() string {
	switch q {
	case QualityAll:
		return "all"
	case QualitySecondary:
		return "secondary"
	case QualityFuzzy:
		return "fuzzy"
	case QualitySubstring:
		return "substring"
	case QualityPrefix:
		return "prefix"
	}
	return "unknown"
}

// Score is the ordering key of a matched item.
type Score struct {
	Quality  Quality
	Frecency float64
}

// Entry is the launch history of one item.
type Entry struct {
	Count int
	Last  time.Time
}

// History maps Item.Key to its launch history.
type History map[string]Entry

// Frecency is count / (1 + hours since last use / halflife). Items never
// used score zero.
func Frecency(e Entry, now time.Time, halfLife time.Duration) float64 {
	if e.Count <= 0 {
		return 0
	}
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	hours := max(now.Sub(e.Last).Hours(), 0)
	return float64(e.Count) / (1 + hours/halfLife.Hours())
}

// subsequence reports whether every rune of needle appears in haystack in
// order. Extending needle can only remove matches.
func subsequence(haystack, needle string) bool {
	for _, r := range needle {
		for {
			if haystack == "" {
				return false
			}
			h, size := utf8.DecodeRuneInString(haystack)
			haystack = haystack[size:]
			if h == r {
				break
			}
		}
	}
	return true
}

func quality(label, secondary, query string, useSecondary bool) (Quality, bool) {
	switch {
	case query == "":
		return QualityAll, true
	case strings.HasPrefix(label, query):
		return QualityPrefix, true
	case strings.Contains(label, query):
		return QualitySubstring, true
	case subsequence(label, query):
		return QualityFuzzy, true
	case useSecondary && subsequence(secondary, query):
		return QualitySecondary, true
	}
	return 0, false
}

type folded struct {
	label     string
	secondary string
}

// compareMatches is the total order of the filtered list: quality, then
// frecency, then folded label, then original position.
func compareMatches(a, b Match, keys []folded) int {
	if c := cmp.Compare(b.Score.Quality, a.Score.Quality); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Score.Frecency, a.Score.Frecency); c != 0 {
		return c
	}
	if c := strings.Compare(keys[a.Index].label, keys[b.Index].label); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
