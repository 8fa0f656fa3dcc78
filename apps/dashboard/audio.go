// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/dashboard/audio.go
// Summary: Default sink volume and output kind through wpctl.

package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/framegrace/texelayer/internal/runner"
)

const (
	defaultSink = "@DEFAULT_AUDIO_SINK@"
	// VolumeMax is the wpctl ceiling the bar maps to its full height.
	VolumeMax = 2.0
)

// Audio is the state shown by the volume and audio tiles.
type Audio struct {
	Volume     float64
	Muted      bool
	Headphones bool
	// Known is false until wpctl answered once, or after it failed.
	Known bool
}

// ParseVolume reads `wpctl get-volume` output such as
// "Volume: 0.45 [MUTED]".
func ParseVolume(out string) (vol float64, muted bool, ok bool) {
	muted = strings.Contains(out, "[MUTED]")
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return 0, muted, false
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, muted, false
	}
	return v, muted, true
}

// IsHeadphones looks for a known headset address or a headset form factor
// in `wpctl inspect` output. Addresses match with colons or underscores.
func IsHeadphones(inspect string, macs ...string) bool {
	s := strings.ToLower(inspect)
	for _, mac := range macs {
		mac = strings.ToLower(strings.TrimSpace(mac))
		if mac == "" {
			continue
		}
		if strings.Contains(s, mac) || strings.Contains(s, strings.ReplaceAll(mac, ":", "_")) {
			return true
		}
	}
	return strings.Contains(s, "headphone") || strings.Contains(s, "headset")
}

// FormatVolume is the set-volume argument.
func FormatVolume(v float64) string {
	return fmt.Sprintf("%.2f", clampVolume(v))
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), VolumeMax)
}

// audioReader reads the sink state with the configured wpctl binary.
type audioReader struct {
	run     runner.Runner
	wpctl   string
	headset []string
}

// Read is the body of the audio background task. A failed get-volume is
// an error; a failed inspect only loses the headphones flag.
func (a audioReader) Read(ctx context.Context) (any, error) {
	out, err := a.run.Output(ctx, a.wpctl, "get-volume", defaultSink)
	if err != nil {
		return nil, err
	}
	vol, muted, ok := ParseVolume(out)
	if !ok {
		return nil, fmt.Errorf("unexpected get-volume output %q", strings.TrimSpace(out))
	}
	st := Audio{Volume: vol, Muted: muted, Known: true}
	if inspect, err := a.run.Output(ctx, a.wpctl, "inspect", defaultSink); err == nil {
		st.Headphones = IsHeadphones(inspect, a.headset...)
	}
	return st, nil
}

// SetVolume starts `wpctl set-volume` without waiting for it.
func (a audioReader) SetVolume(v float64) error {
	return a.run.Spawn(a.wpctl, "set-volume", defaultSink, FormatVolume(v))
}
