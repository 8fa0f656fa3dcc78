// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/clock/format.go
// Summary: Clock and countdown text formatting.

package clock

import (
	"fmt"
	"time"
)

// Layouts for time.Format.
const (
	TimeLayout        = "15:04"
	TimeLayoutSeconds = "15:04:05"
	DateLayout        = "January 2"
)

// Time formats t as a wall clock.
func Time(t time.Time, seconds bool) string {
	if seconds {
		return t.Format(TimeLayoutSeconds)
	}
	return t.Format(TimeLayout)
}

// Date formats t as "<Month> <day>".
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// Duration formats whole seconds as [-]m:ss. Minutes are not wrapped into
// hours: one hour is "60:00".
func Duration(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%d:%02d", sign, secs/60, secs%60)
}

// UntilNextSecond is the delay from t to the next whole second, never
// zero, so a tick armed with it lands just after the display changes.
func UntilNextSecond(t time.Time) time.Duration {
	d := time.Second - time.Duration(t.Nanosecond())
	if d <= 0 {
		d = time.Second
	}
	return d
}

// UntilNextMinute is the delay from t to the next whole minute.
func UntilNextMinute(t time.Time) time.Duration {
	next := t.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(t)
}
