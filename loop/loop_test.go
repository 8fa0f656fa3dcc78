// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: loop/loop_test.go
// Summary: Loop behaviour against a fake connection and presenter.

package loop

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelayer/render"
)

const (
	codeA = 30
	codeQ = 16
)

type fakeSource struct {
	mu     sync.Mutex
	queued []func()
	err    error
	ready  chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{ready: make(chan struct{}, 1)}
}

func (s *fakeSource) Ready() <-chan struct{} { return s.ready }

// push queues fn to run on the loop goroutine, like an event read from the
// socket.
func (s *fakeSource) push(fn func()) {
	s.mu.Lock()
	s.queued = append(s.queued, fn)
	s.mu.Unlock()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.push(func() {})
}

func (s *fakeSource) DispatchPending() error {
	s.mu.Lock()
	q, err := s.queued, s.err
	s.queued = nil
	s.mu.Unlock()
	for _, fn := range q {
		fn()
	}
	return err
}

// fakePresenter is only touched from the loop goroutine, except drawn.
type fakePresenter struct {
	inFlight bool
	w, h     int
	pix      []byte
	drawn    chan struct{}
}

func newFakePresenter(w, h int) *fakePresenter {
	return &fakePresenter{w: w, h: h, drawn: make(chan struct{}, 16)}
}

func (p *fakePresenter) CanPresent() bool { return !p.inFlight }
func (p *fakePresenter) BufferSize() (int, int) { return p.w, p.h }
func (p *fakePresenter) frameDone() { p.inFlight = false }
func (p *fakePresenter) Render(fill func([]byte, int) error, _ image.Rectangle) error {
	p.pix = make([]byte, p.w*p.h*4)
	if err := fill(p.pix, p.w*4); err != nil {
		return err
	}
	p.inFlight = true
	p.drawn <- struct{}{}
	return nil
}

type testWidget struct {
	events  []Event
	draws   int
	flushed bool
	handle  func(ctx *Context, ev Event)
}

func (w *testWidget) Handle(ctx *Context, ev Event) {
	w.events = append(w.events, ev)
	if w.handle != nil {
		w.handle(ctx, ev)
	}
}

func (w *testWidget) Draw(c *render.Canvas) {
	w.draws++
	c.Clear(render.RGB(0xff0000))
}

func (w *testWidget) Flush() { w.flushed = true }

type result struct {
	code int
	err  error
}

func start(l *Loop) <-chan result {
	ch := make(chan result, 1)
	go func() {
		code, err := l.Run(context.Background())
		ch <- result{code, err}
	}()
	return ch
}

func wait[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	var zero T
	return zero
}

func exitOnQ(ctx *Context, ev Event) {
	if k, ok := ev.(Key); ok && k.Rune == 'q' {
		ctx.Exit(3)
	}
}

func TestRunDrawsFirstFrameAndExits(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(2, 1)
	w := &testWidget{handle: exitOnQ}
	l := New(src, out, w, Options{})
	done := start(l)

	wait(t, out.drawn)
	src.push(func() { l.PostKey(codeQ, true) })
	res := wait(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, 3, res.code)
	assert.Equal(t, 1, w.draws)
	assert.True(t, w.flushed)
}

func TestRedrawWaitsForFrameCallback(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(2, 2)
	w := &testWidget{handle: func(ctx *Context, ev Event) {
		if k, ok := ev.(Key); ok {
			if k.Rune == 'q' {
				ctx.Exit(0)
				return
			}
			ctx.Redraw()
		}
	}}
	l := New(src, out, w, Options{RepeatRate: 0, RepeatDelay: time.Hour})
	done := start(l)
	wait(t, out.drawn)

	// dirty but the first frame is still in flight
	src.push(func() { l.PostKey(codeA, true) })
	select {
	case <-out.drawn:
		t.Fatal("drew while a frame was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	src.push(out.frameDone)
	wait(t, out.drawn)

	src.push(func() { l.PostKey(codeQ, true) })
	wait(t, done)
	assert.Equal(t, 2, w.draws)
	// pixels went out swizzled
	assert.Equal(t, []byte{0, 0, 0xff, 0xff}, out.pix[:4])
}

func TestConnectionErrorIsFatal(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	w := &testWidget{}
	done := start(New(src, out, w, Options{}))
	wait(t, out.drawn)

	boom := errors.New("broken pipe")
	src.fail(boom)
	res := wait(t, done)
	assert.ErrorIs(t, res.err, boom)
	assert.Equal(t, 1, res.code)
	assert.True(t, w.flushed)
}

func TestCloseEndsLoop(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	w := &testWidget{}
	l := New(src, out, w, Options{})
	done := start(l)
	src.push(l.PostClosed)
	res := wait(t, done)
	require.NoError(t, res.err)
	require.NotEmpty(t, w.events)
	assert.Equal(t, Close{}, w.events[len(w.events)-1])
}

func TestConfigureReachesWidget(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	var got Configure
	w := &testWidget{handle: func(ctx *Context, ev Event) {
		if c, ok := ev.(Configure); ok {
			got = c
			cw, chh := ctx.Size()
			assert.Equal(t, c.Width, cw)
			assert.Equal(t, c.Height, chh)
			ctx.Exit(0)
		}
	}}
	l := New(src, out, w, Options{})
	done := start(l)
	src.push(func() { l.PostConfigure(320, 202, 2) })
	wait(t, done)
	assert.Equal(t, Configure{Width: 320, Height: 202, Scale: 2}, got)
}

func TestSingleBackgroundTask(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	release := make(chan struct{})
	var busyErr, secondErr error
	var finished TaskDone
	var l *Loop
	w := &testWidget{handle: func(ctx *Context, ev Event) {
		switch ev := ev.(type) {
		case Key:
			if ev.Rune == 'a' {
				assert.NoError(t, ctx.Start("weather", 0, func(context.Context) (any, error) {
					<-release
					return 42, nil
				}))
				busyErr = ctx.Start("other", 0, func(context.Context) (any, error) { return nil, nil })
				close(release)
			}
		case TaskDone:
			finished = ev
			assert.False(t, ctx.TaskRunning())
			secondErr = ctx.Start("again", 0, func(context.Context) (any, error) { return nil, nil })
			ctx.Exit(0)
		}
	}}
	l = New(src, out, w, Options{})
	done := start(l)
	src.push(func() { l.PostKey(codeA, true) })
	wait(t, done)

	assert.ErrorIs(t, busyErr, ErrTaskBusy)
	assert.NoError(t, secondErr)
	assert.Equal(t, "weather", finished.ID)
	assert.Equal(t, 42, finished.Result)
	assert.NoError(t, finished.Err)
}

func TestTaskTimeout(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	var finished TaskDone
	var l *Loop
	w := &testWidget{handle: func(ctx *Context, ev Event) {
		switch ev := ev.(type) {
		case Key:
			_ = ctx.Start("slow", 20*time.Millisecond, func(c context.Context) (any, error) {
				<-c.Done()
				return nil, c.Err()
			})
		case TaskDone:
			finished = ev
			ctx.Exit(0)
		}
	}}
	l = New(src, out, w, Options{})
	done := start(l)
	src.push(func() { l.PostKey(codeA, true) })
	wait(t, done)
	assert.ErrorIs(t, finished.Err, ErrTaskTimeout)
}

func TestTimersFireAndCancel(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	var fired []TimerID
	ticks := 0
	var l *Loop
	w := &testWidget{handle: func(ctx *Context, ev Event) {
		switch ev := ev.(type) {
		case Key:
			ctx.After("never", time.Hour)
			ctx.Cancel("never")
			ctx.After("once", 5*time.Millisecond)
			ctx.Every("tick", 5*time.Millisecond)
		case Timer:
			fired = append(fired, ev.ID)
			if ev.ID == "tick" {
				ticks++
				if ticks == 3 {
					ctx.Exit(0)
				}
			}
		}
	}}
	l = New(src, out, w, Options{})
	done := start(l)
	src.push(func() { l.PostKey(codeA, true) })
	wait(t, done)

	assert.Contains(t, fired, TimerID("once"))
	assert.NotContains(t, fired, TimerID("never"))
	assert.Equal(t, 3, ticks)
}

func TestKeyRepeatThroughLoop(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	repeats := 0
	w := &testWidget{handle: func(ctx *Context, ev Event) {
		if k, ok := ev.(Key); ok && k.Repeat {
			repeats++
			if repeats == 2 {
				ctx.Exit(0)
			}
		}
	}}
	l := New(src, out, w, Options{RepeatRate: 100, RepeatDelay: 10 * time.Millisecond})
	done := start(l)
	src.push(func() { l.PostKey(codeA, true) })
	wait(t, done)
	assert.Equal(t, 2, repeats)
}

func TestConfiguredRepeatWinsOverCompositor(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(nil, nil, &testWidget{}, Options{
		RepeatRate:  50,
		RepeatDelay: 100 * time.Millisecond,
		Now:         func() time.Time { return now },
	})
	l.PostRepeatInfo(25, 600)
	l.PostKey(codeA, true)
	at, ok := l.input.NextRepeat()
	require.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, at.Sub(now))
}

func TestCompositorRepeatAppliesWithoutOverride(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(nil, nil, &testWidget{}, Options{Now: func() time.Time { return now }})
	l.PostRepeatInfo(25, 600)
	l.PostKey(codeA, true)
	at, ok := l.input.NextRepeat()
	require.True(t, ok)
	assert.Equal(t, 600*time.Millisecond, at.Sub(now))
}

func TestReloadDelivered(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	reload := make(chan *render.Palette, 1)
	var got *render.Palette
	w := &testWidget{handle: func(ctx *Context, ev Event) {
		if r, ok := ev.(Reload); ok {
			got = r.Palette
			ctx.Exit(0)
		}
	}}
	l := New(src, out, w, Options{Reload: reload})
	done := start(l)
	p := render.NewPalette(nil)
	reload <- p
	wait(t, done)
	assert.Same(t, p, got)
}

func TestContextCancelStopsLoop(t *testing.T) {
	src := newFakeSource()
	out := newFakePresenter(1, 1)
	w := &testWidget{}
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan result, 1)
	go func() {
		code, err := New(src, out, w, Options{}).Run(ctx)
		ch <- result{code, err}
	}()
	cancel()
	res := wait(t, ch)
	assert.NoError(t, res.err)
	assert.True(t, w.flushed)
}
