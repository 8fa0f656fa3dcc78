// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/clock/timer.go
// Summary: Countdown timer state shared by the dashboard tiles.
// Notes: Times are unix seconds so the state survives restarts as plain
//   numbers. Started == 0 means paused.

package clock

import "time"

// MinDuration is the smallest duration scrolling can set.
const MinDuration = 60

// Timer is a pausable countdown. The zero Timer is paused at 0:00.
type Timer struct {
	Duration int64 `json:"duration"`
	Started  int64 `json:"started"`
	// Notified is set once expiry has been reported for the current run.
	Notified bool `json:"notified,omitempty"`
}

// NewTimer returns a paused timer of d seconds.
func NewTimer(d int64) Timer {
	return Timer{Duration: d}
}

func (t Timer) Running() bool { return t.Started != 0 }

// Remaining is the number of seconds left at now. It goes negative once
// the timer ran out.
func (t Timer) Remaining(now time.Time) int64 {
	if t.Started == 0 {
		return t.Duration
	}
	return t.Duration - (now.Unix() - t.Started)
}

// Text is Remaining formatted for display.
func (t Timer) Text(now time.Time) string {
	return Duration(t.Remaining(now))
}

// Toggle pauses a running timer, keeping what is left, or starts a paused
// one.
func (t *Timer) Toggle(now time.Time) {
	if t.Running() {
		t.Duration = max(t.Remaining(now), 0)
		t.Started = 0
		return
	}
	t.Started = now.Unix()
	t.Notified = t.Duration <= 0
}

// Reset stops the timer and restores d.
func (t *Timer) Reset(d int64) {
	t.Duration = d
	t.Started = 0
	t.Notified = false
}

// Adjust adds delta seconds, never going below MinDuration.
func (t *Timer) Adjust(delta int64) {
	t.Duration = max(t.Duration+delta, MinDuration)
}

// Expired reports a running timer that reached zero and has not been
// reported yet, and marks it reported.
func (t *Timer) Expired(now time.Time) bool {
	if !t.Running() || t.Notified || t.Remaining(now) > 0 {
		return false
	}
	t.Notified = true
	return true
}
