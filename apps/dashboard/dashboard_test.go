// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelayer/apps/clock"
	dash "github.com/framegrace/texelayer/dashboard"
	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/internal/storage"
	"github.com/framegrace/texelayer/loop"
)

const headset = "AC:BF:71:08:A1:D6"

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]error
	spawned []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{
			"wpctl get-volume @DEFAULT_AUDIO_SINK@": "Volume: 0.45\n",
			"wpctl inspect @DEFAULT_AUDIO_SINK@":    `  * api.bluez5.address = "ac:bf:71:08:a1:d6"`,
		},
		fail: map[string]error{},
	}
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	for prefix, err := range f.fail {
		if strings.HasPrefix(line, prefix) {
			return "", err
		}
	}
	return f.outputs[line], nil
}

func (f *fakeRunner) Spawn(name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawned = append(f.spawned, strings.Join(append([]string{name}, args...), " "))
	return nil
}

func (f *fakeRunner) Spawned() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spawned...)
}

func testSettings() Settings {
	return Settings{
		FontSize:      30,
		TimerDefaults: [2]int64{300, 900},
		HoverOpacity:  0.7,
		Headsets:      []string{headset},
		ToggleCommand: "dim.sh",
		SwitchCommand: "switch.sh",
		SwitchTargets: [2]string{headset, "EC:81:93:AC:8B:60"},
		NotifyCommand: "notify-send -u critical",
		Wpctl:         "wpctl",
		ShowSeconds:   true,
	}
}

type fixture struct {
	w   *Widget
	h   *loop.Harness
	run *fakeRunner
	now time.Time
}

func newFixture(t *testing.T, set Settings, store *storage.Store) *fixture {
	t.Helper()
	f := &fixture{run: newFakeRunner(), now: time.Unix(1_700_000_000, 0)}
	f.w = New(set, Deps{Runner: f.run, Store: store})
	f.h = loop.NewHarness(f.w, 320, 202, func() time.Time { return f.now })
	t.Cleanup(f.h.Close)
	return f
}

func (f *fixture) at(id dash.TileID) image.Point {
	return f.w.board.Rect(id).Min.Add(image.Pt(4, 4))
}

func (f *fixture) press(p image.Point, b tcell.ButtonMask) {
	f.h.Send(loop.Pointer{Events: []input.PointerEvent{{Kind: input.PointerPress, Pos: p, Button: b}}})
}

func (f *fixture) scroll(p image.Point, dy float64) {
	f.h.Send(loop.Pointer{Events: []input.PointerEvent{{Kind: input.Scroll, Pos: p, DY: dy}}})
}

func (f *fixture) awaitAudio(t *testing.T) {
	t.Helper()
	done, ok := f.h.AwaitTask(2 * time.Second)
	require.True(t, ok, "audio task did not finish")
	require.Equal(t, taskAudio, done.ID)
}

func TestParseVolume(t *testing.T) {
	v, muted, ok := ParseVolume("Volume: 0.45 [MUTED]\n")
	assert.True(t, ok)
	assert.True(t, muted)
	assert.InDelta(t, 0.45, v, 1e-9)

	_, _, ok = ParseVolume("")
	assert.False(t, ok)
	_, _, ok = ParseVolume("Volume: loud")
	assert.False(t, ok)
}

func TestIsHeadphones(t *testing.T) {
	assert.True(t, IsHeadphones(`device.name = "bluez_output.AC_BF_71_08_A1_D6.1"`, headset))
	assert.True(t, IsHeadphones(`api.bluez5.address = "AC:BF:71:08:A1:D6"`, headset))
	assert.True(t, IsHeadphones(`device.form-factor = "headset"`))
	assert.False(t, IsHeadphones(`node.description = "Built-in Audio Analog Stereo"`, headset, ""))
}

func TestFormatVolumeClamps(t *testing.T) {
	assert.Equal(t, "0.00", FormatVolume(-1))
	assert.Equal(t, "0.55", FormatVolume(0.55))
	assert.Equal(t, "2.00", FormatVolume(3))
}

func TestParseWeather(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	wx, err := ParseWeather([]byte(`{"current":{"temperature_2m":-0.4,"weather_code":71}}`), at)
	require.NoError(t, err)
	assert.Equal(t, 71, wx.Code)
	assert.Equal(t, "0°", wx.Text(at))
	assert.Equal(t, "\uf2dc", wx.Glyph())
	assert.Equal(t, "--", wx.Text(at.Add(WeatherMaxAge+time.Second)))

	_, err = ParseWeather([]byte(`{"error":true,"reason":"bad latitude"}`), at)
	assert.ErrorContains(t, err, "bad latitude")
	_, err = ParseWeather([]byte(`{"current":{}}`), at)
	assert.Error(t, err)

	assert.Equal(t, "--", Weather{}.Text(at))
	assert.Contains(t, WeatherURL(52.52, 13.41), "latitude=52.5200")
}

func TestAudioRefreshOnStart(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	assert.False(t, f.w.Audio().Known, "unknown until wpctl answers")
	f.awaitAudio(t)

	st := f.w.Audio()
	assert.True(t, st.Known)
	assert.InDelta(t, 0.45, st.Volume, 1e-9)
	assert.True(t, st.Headphones)
}

func TestAudioFailureShowsPlaceholder(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	f.awaitAudio(t)
	require.True(t, f.w.Audio().Known)

	f.run.mu.Lock()
	f.run.fail["wpctl get-volume"] = errors.New("no sink")
	f.run.mu.Unlock()
	f.now = f.now.Add(2 * time.Second)
	require.True(t, f.h.Fire(tickAudio))
	f.awaitAudio(t)
	assert.False(t, f.w.Audio().Known)

	// volume input is ignored while the level is unknown
	f.scroll(f.at(dash.Volume), -1)
	assert.Empty(t, f.run.Spawned())
}

func TestVolumeScrollIsRateLimited(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	f.awaitAudio(t)

	f.scroll(f.at(dash.Volume), -1)
	f.scroll(f.at(dash.Volume), -1)
	assert.Equal(t, []string{"wpctl set-volume @DEFAULT_AUDIO_SINK@ 0.50"}, f.run.Spawned())
	assert.InDelta(t, 0.55, f.w.Audio().Volume, 1e-9)

	require.True(t, f.h.Armed(tickVolume))
	f.h.Fire(tickVolume)
	assert.Equal(t, "wpctl set-volume @DEFAULT_AUDIO_SINK@ 0.55", f.run.Spawned()[1])
}

func TestVolumeFromY(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	top, h := f.w.barSpan()
	assert.InDelta(t, VolumeMax, f.w.volumeFromY(top), 1e-9)
	assert.InDelta(t, 0, f.w.volumeFromY(top+h), 1e-9)
	assert.InDelta(t, 1, f.w.volumeFromY(top+h/2), 0.05)
	assert.InDelta(t, VolumeMax, f.w.volumeFromY(top-50), 1e-9)
}

func TestTimerClicks(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	t1 := f.at(dash.Timer1)

	f.press(t1, tcell.Button1)
	require.True(t, f.w.Timers()[0].Running())
	assert.True(t, f.h.Armed(tickTimers))

	f.now = f.now.Add(40 * time.Second)
	f.press(t1, tcell.Button1)
	tm := f.w.Timers()[0]
	assert.False(t, tm.Running())
	assert.Equal(t, int64(260), tm.Duration)
	assert.False(t, f.h.Armed(tickTimers), "fast tick stops with the last timer")

	f.scroll(t1, -1)
	assert.Equal(t, int64(320), f.w.Timers()[0].Duration)
	f.scroll(t1, 1)
	f.scroll(t1, 1)
	assert.Equal(t, int64(200), f.w.Timers()[0].Duration)

	f.press(t1, tcell.Button2)
	assert.Equal(t, clock.NewTimer(300), f.w.Timers()[0])
	assert.Equal(t, clock.NewTimer(900), f.w.Timers()[1])
}

func TestTimerExpiryNotifiesOnce(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	t2 := f.at(dash.Timer2)
	f.press(t2, tcell.Button1)

	f.now = f.now.Add(901 * time.Second)
	f.h.Fire(tickTimers)
	f.h.Fire(tickTimers)
	assert.Equal(t, []string{"notify-send -u critical Timer 2 finished"}, f.run.Spawned())
}

func TestToggleAndAudioSwitch(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	f.awaitAudio(t)

	f.press(f.at(dash.Toggle), tcell.Button1)
	f.press(f.at(dash.Toggle), tcell.Button1)
	f.press(f.at(dash.Audio), tcell.Button1)
	assert.Equal(t, []string{
		"sh -c dim.sh 0",
		"sh -c dim.sh 1",
		"sh -c switch.sh EC:81:93:AC:8B:60",
	}, f.run.Spawned())
	assert.False(t, f.w.Audio().Headphones)
}

func TestHoverOnlyOnInteractiveTiles(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	move := func(p image.Point) {
		f.h.Send(loop.Pointer{Events: []input.PointerEvent{{Kind: input.PointerMove, Pos: p}}})
	}
	move(f.at(dash.Timer1))
	assert.Equal(t, dash.Timer1, f.w.board.Hovered())
	move(f.at(dash.Clock))
	assert.Equal(t, dash.TileNone, f.w.board.Hovered())
	move(f.at(dash.Audio))
	f.h.Send(loop.Pointer{Events: []input.PointerEvent{{Kind: input.PointerLeave}}})
	assert.Equal(t, dash.TileNone, f.w.board.Hovered())
}

func TestTimersPersistAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.Open(dir, time.Hour)
	require.NoError(t, err)
	f := newFixture(t, testSettings(), store)
	f.press(f.at(dash.Timer1), tcell.Button1)
	f.w.Flush()

	store, err = storage.Open(dir, time.Hour)
	require.NoError(t, err)
	w := New(testSettings(), Deps{Store: store})
	assert.Equal(t, f.w.Timers(), w.Timers())
	assert.Equal(t, f.now.Unix(), w.Timers()[0].Started)
}

func TestLegacyTimersImported(t *testing.T) {
	legacy := filepath.Join(t.TempDir(), "timers.toml")
	require.NoError(t, os.WriteFile(legacy, []byte("timer1_duration = 120\ntimer1_started = 0\ntimer2_duration = 45\ntimer2_started = 1700000000\n"), 0o644))
	store, err := storage.Open(t.TempDir(), time.Hour)
	require.NoError(t, err)

	set := testSettings()
	set.LegacyTimers = legacy
	w := New(set, Deps{Store: store})
	assert.Equal(t, [2]clock.Timer{{Duration: 120}, {Duration: 45, Started: 1_700_000_000}}, w.Timers())

	keys, err := store.Scope(section).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"timer1", "timer2"}, keys)
}

func TestLegacyTimersPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	assert.Equal(t, "/tmp/state/widgets/panel/timers.toml", LegacyTimersPath())
}

func TestWeatherTakesTheTaskSlotFirst(t *testing.T) {
	set := testSettings()
	set.Weather = true
	set.Latitude, set.Longitude = 52.52, 13.41
	run := newFakeRunner()
	run.outputs["curl -fsS --max-time 10 "+WeatherURL(52.52, 13.41)] = `{"current":{"temperature_2m":21.6,"weather_code":2}}`

	now := time.Unix(1_700_000_000, 0)
	w := New(set, Deps{Runner: run})
	h := loop.NewHarness(w, 320, 202, func() time.Time { return now })
	defer h.Close()

	assert.False(t, w.board.Rect(dash.Weather).Empty())
	done, ok := h.AwaitTask(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, taskWeather, done.ID)
	assert.Equal(t, "22°", w.forecast.Text(now))
	assert.Equal(t, now, w.forecast.At, "reading is stamped with the loop clock")

	done, ok = h.AwaitTask(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, taskAudio, done.ID, "audio runs once weather freed the slot")
}

func TestDrawPaintsFrame(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	f.awaitAudio(t)
	c := f.h.Draw()
	require.Equal(t, image.Rect(0, 0, 320, 202), c.Bounds())
	assert.Equal(t, Colors["border"], c.At(0, 0))
	assert.Equal(t, Colors["divider"], c.At(3+42, 100))

	// track background shows through the middle of the empty upper bar
	top, _ := f.w.barSpan()
	vol := f.w.board.Rect(dash.Volume)
	px := c.At(vol.Min.X+vol.Dx()/2, top+2)
	assert.NotEqual(t, uint8(0), px.A)
}

func TestRavenLayoutStacksTimers(t *testing.T) {
	set := testSettings()
	set.Layout = "raven"
	w := New(set, Deps{Runner: newFakeRunner()})
	h := loop.NewHarness(w, 410, 230, func() time.Time { return time.Unix(1_700_000_000, 0) })
	defer h.Close()

	assert.Equal(t, image.Rect(62, 114, 176, 227), w.board.Rect(dash.Weather))
	t1, t2 := w.board.Rect(dash.Timer1), w.board.Rect(dash.Timer2)
	assert.Equal(t, t1.Min.X, t2.Min.X)
	assert.Equal(t, t2.Max.Y, t1.Min.Y, "timer2 sits above timer1")

	c := h.Draw()
	assert.Equal(t, Colors["divider"], c.At(252, 50), "divider right of the clock")
	assert.Equal(t, Colors["divider"], c.At(176, 200), "divider right of the weather tile")
}

func TestFillBevelCutsCorners(t *testing.T) {
	f := newFixture(t, testSettings(), nil)
	c := f.h.Draw()
	r := image.Rect(10, 10, 22, 40)
	c.Clear(Colors["background"])
	fillBevel(c, r, 3, Colors["ui"])
	assert.Equal(t, Colors["ui"], c.At(16, 25))
	assert.Equal(t, Colors["ui"], c.At(13, 10))
	assert.NotEqual(t, Colors["ui"], c.At(10, 10), "corner pixel is cut")
	assert.NotEqual(t, Colors["ui"], c.At(21, 39))
}
