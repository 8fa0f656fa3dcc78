// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/dashboard/weather.go
// Summary: Current conditions from Open-Meteo, fetched with curl.

package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/framegrace/texelayer/internal/runner"
)

const (
	weatherEndpoint = "https://api.open-meteo.com/v1/forecast"
	// WeatherRefresh is how often a fetch is attempted.
	WeatherRefresh = 30 * time.Minute
	// WeatherMaxAge is how long a reading is shown before it counts as
	// stale.
	WeatherMaxAge = time.Hour
	weatherTimeout = 15 * time.Second
)

// Weather is one reading.
type Weather struct {
	TempC float64
	Code  int
	At    time.Time
}

// Fresh reports whether w is recent enough to display.
func (w Weather) Fresh(now time.Time) bool {
	return !w.At.IsZero() && now.Sub(w.At) <= WeatherMaxAge
}

// Text is the tile label, "--" when stale.
func (w Weather) Text(now time.Time) string {
	if !w.Fresh(now) {
		return "--"
	}
	t := math.Round(w.TempC)
	if t == 0 {
		// no "-0°"
		t = 0
	}
	return fmt.Sprintf("%.0f°", t)
}

// Glyph maps the WMO weather code to a Font Awesome glyph.
func (w Weather) Glyph() string {
	switch {
	case w.Code <= 1:
		return "\uf185" // sun
	case w.Code <= 3:
		return "\uf6c4" // cloud-sun
	case w.Code == 45 || w.Code == 48:
		return "\uf75f" // smog
	case w.Code >= 95:
		return "\uf0e7" // bolt
	case (w.Code >= 71 && w.Code <= 77) || w.Code == 85 || w.Code == 86:
		return "\uf2dc" // snowflake
	default:
		return "\uf73d" // cloud-rain
	}
}

// WeatherURL builds the current-conditions query.
func WeatherURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", "temperature_2m,weather_code")
	return weatherEndpoint + "?" + q.Encode()
}

type meteoResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode int      `json:"weather_code"`
	} `json:"current"`
	Reason string `json:"reason"`
}

// ParseWeather decodes an Open-Meteo response body.
func ParseWeather(body []byte, at time.Time) (Weather, error) {
	var r meteoResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Weather{}, fmt.Errorf("weather: decode: %w", err)
	}
	if r.Reason != "" {
		return Weather{}, fmt.Errorf("weather: %s", r.Reason)
	}
	if r.Current == nil || r.Current.Temperature == nil {
		return Weather{}, fmt.Errorf("weather: response has no current temperature")
	}
	return Weather{TempC: *r.Current.Temperature, Code: r.Current.WeatherCode, At: at}, nil
}

type weatherFetcher struct {
	run      runner.Runner
	lat, lon float64
}

// Fetch is the body of the weather background task. It runs off the loop
// goroutine, so the reading is stamped when its TaskDone is handled.
func (f weatherFetcher) Fetch(ctx context.Context) (any, error) {
	out, err := f.run.Output(ctx, "curl", "-fsS", "--max-time", "10", WeatherURL(f.lat, f.lon))
	if err != nil {
		return nil, err
	}
	return ParseWeather([]byte(out), time.Time{})
}
