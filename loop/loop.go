// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: loop/loop.go
// Summary: Single-goroutine event loop that owns widget state.
// Usage: Build with New, feed compositor input through the Post* methods
//   from inside Source.DispatchPending, then call Run.
// Notes: Widget code only ever runs on the goroutine that called Run.
//   Timers and the background task hand results over through channels.

package loop

import (
	"context"
	"errors"
	"image"
	"log"
	"time"

	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/render"
)

var (
	// ErrTaskBusy is returned by Context.Start while a task is running.
	ErrTaskBusy = errors.New("loop: a background task is already running")
	// ErrTaskTimeout is the TaskDone error of a task that ran too long.
	ErrTaskTimeout = errors.New("loop: background task timed out")
)

// Widget is the application side of the loop.
type Widget interface {
	Handle(ctx *Context, ev Event)
	Draw(c *render.Canvas)
}

// Flusher is implemented by widgets with state to persist on exit.
type Flusher interface {
	Flush()
}

// Source is the compositor connection.
type Source interface {
	// Ready is signalled when bytes arrived.
	Ready() <-chan struct{}
	// DispatchPending decodes what arrived and runs the handlers.
	DispatchPending() error
}

// Presenter is the buffer side, normally *surface.Manager.
type Presenter interface {
	CanPresent() bool
	BufferSize() (int, int)
	Render(fill func(pixels []byte, stride int) error, damage image.Rectangle) error
}

// TaskFunc is a background job. It must honour ctx cancellation.
type TaskFunc func(ctx context.Context) (any, error)

type Options struct {
	// Reload delivers palettes from a theme watcher.
	Reload      <-chan *render.Palette
	RepeatRate  int
	RepeatDelay time.Duration
	// Now overrides the clock for key repeat and Context.Now.
	Now func() time.Time
}

type armedTimer struct {
	gen   uint64
	every time.Duration
	t     *time.Timer
}

type timerFire struct {
	id  TimerID
	gen uint64
}

// Loop multiplexes compositor events, timers, the background task and
// reload notifications onto one goroutine.
type Loop struct {
	src    Source
	out    Presenter
	widget Widget
	input  *input.Dispatcher
	canvas *render.Canvas
	ctx    *Context
	now    func() time.Time
	base   context.Context

	pending []Event
	width   int
	height  int
	scale   int

	timers   map[TimerID]*armedTimer
	timerGen uint64
	timerC   chan timerFire

	taskC    chan TaskDone
	taskBusy bool

	reload <-chan *render.Palette

	// repeatFixed is set when the configuration overrides key repeat.
	repeatFixed bool

	redraw bool
	exit   bool
	code   int
	closed bool
	done   chan struct{}
}

func New(src Source, out Presenter, w Widget, opts Options) *Loop {
	l := &Loop{
		src:    src,
		out:    out,
		widget: w,
		input:  input.NewDispatcher(),
		canvas: render.NewCanvas(1, 1),
		now:    opts.Now,
		base:   context.Background(),
		scale:  1,
		timers: make(map[TimerID]*armedTimer),
		timerC: make(chan timerFire, 8),
		taskC:  make(chan TaskDone, 1),
		reload: opts.Reload,
		redraw: true,
		done:   make(chan struct{}),
	}
	if l.now == nil {
		l.now = time.Now
	}
	if opts.RepeatRate != 0 || opts.RepeatDelay != 0 {
		rate, delay := opts.RepeatRate, opts.RepeatDelay
		if delay == 0 {
			delay = input.DefaultRepeatDelay
		}
		l.input.SetRepeat(rate, delay)
		l.repeatFixed = true
	}
	l.ctx = &Context{l: l}
	return l
}

// Input exposes pointer state for cursor handling.
func (l *Loop) Input() *input.Dispatcher { return l.input }

// Post queues an event for the widget.
func (l *Loop) Post(ev Event) {
	l.pending = append(l.pending, ev)
}

// PostConfigure records a new size and scale.
func (l *Loop) PostConfigure(width, height, scale int) {
	l.width, l.height, l.scale = width, height, max(scale, 1)
	l.input.SetScale(l.scale)
	l.redraw = true
	l.Post(Configure{Width: width, Height: height, Scale: l.scale})
}

func (l *Loop) PostPointer(frame input.PointerFrame) {
	if evs := l.input.Pointer(frame); len(evs) > 0 {
		l.Post(Pointer{Events: evs})
	}
}

func (l *Loop) PostKey(code uint32, pressed bool) {
	for _, ev := range l.input.Key(code, pressed, l.now()) {
		l.Post(Key{ev})
	}
}

func (l *Loop) PostModifiers(depressed, latched, locked uint32) {
	l.input.Modifiers(depressed, latched, locked)
}

// PostRepeatInfo applies the compositor's repeat settings unless the
// configuration overrides them.
func (l *Loop) PostRepeatInfo(rate, delayMs int32) {
	if l.repeatFixed {
		return
	}
	l.input.SetRepeat(int(rate), time.Duration(delayMs)*time.Millisecond)
}

func (l *Loop) PostKeyboardLeave() {
	l.input.KeyboardLeave()
}

// PostClosed ends the loop once the widget has seen Close.
func (l *Loop) PostClosed() {
	l.Post(Close{})
}

// Run processes events until the widget exits, the surface is closed, ctx
// is cancelled or the connection fails. It returns the widget's exit code.
func (l *Loop) Run(ctx context.Context) (int, error) {
	l.base = ctx
	defer l.shutdown()
	for {
		if err := l.src.DispatchPending(); err != nil {
			return 1, err
		}
		l.deliver()
		if l.exit || l.closed {
			return l.code, nil
		}
		if err := l.paint(); err != nil {
			return 1, err
		}

		var repeatC <-chan time.Time
		var repeatT *time.Timer
		if at, ok := l.input.NextRepeat(); ok {
			repeatT = time.NewTimer(max(at.Sub(l.now()), 0))
			repeatC = repeatT.C
		}

		select {
		case <-l.src.Ready():
		case <-repeatC:
			for _, ev := range l.input.FireRepeat(l.now()) {
				l.Post(Key{ev})
			}
		case f := <-l.timerC:
			l.fire(f)
		case done := <-l.taskC:
			l.taskBusy = false
			l.Post(done)
		case p, ok := <-l.reload:
			if !ok {
				l.reload = nil
				break
			}
			l.redraw = true
			l.Post(Reload{Palette: p})
		case <-ctx.Done():
			return l.code, nil
		}
		if repeatT != nil {
			repeatT.Stop()
		}
	}
}

func (l *Loop) deliver() {
	for len(l.pending) > 0 {
		ev := l.pending[0]
		l.pending = l.pending[1:]
		l.widget.Handle(l.ctx, ev)
		if _, ok := ev.(Close); ok {
			l.closed = true
		}
	}
	l.pending = nil
}

func (l *Loop) paint() error {
	if !l.redraw || !l.out.CanPresent() {
		return nil
	}
	w, h := l.out.BufferSize()
	if w <= 0 || h <= 0 {
		return nil
	}
	l.redraw = false
	l.canvas.Resize(w, h)
	l.widget.Draw(l.canvas)
	return l.out.Render(func(pix []byte, _ int) error {
		return l.canvas.PresentTo(pix)
	}, image.Rectangle{})
}

func (l *Loop) shutdown() {
	for id := range l.timers {
		l.cancel(id)
	}
	close(l.done)
	if f, ok := l.widget.(Flusher); ok {
		f.Flush()
	}
}

func (l *Loop) arm(id TimerID, d, every time.Duration) {
	l.cancel(id)
	l.timerGen++
	a := &armedTimer{gen: l.timerGen, every: every}
	a.t = time.AfterFunc(max(d, 0), l.sender(timerFire{id: id, gen: a.gen}))
	l.timers[id] = a
}

func (l *Loop) sender(f timerFire) func() {
	return func() {
		select {
		case l.timerC <- f:
		case <-l.done:
		}
	}
}

func (l *Loop) cancel(id TimerID) {
	if a, ok := l.timers[id]; ok {
		a.t.Stop()
		delete(l.timers, id)
	}
}

func (l *Loop) fire(f timerFire) {
	a, ok := l.timers[f.id]
	if !ok || a.gen != f.gen {
		// cancelled or re-armed after this fire was sent
		return
	}
	if a.every > 0 {
		a.t = time.AfterFunc(a.every, l.sender(f))
	} else {
		delete(l.timers, f.id)
	}
	l.Post(Timer{ID: f.id})
}

func (l *Loop) start(id string, timeout time.Duration, fn TaskFunc) error {
	if l.taskBusy {
		return ErrTaskBusy
	}
	l.taskBusy = true
	base := l.base
	go func() {
		var ctx context.Context
		var cancel context.CancelFunc
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(base, timeout)
		} else {
			ctx, cancel = context.WithCancel(base)
		}
		defer cancel()

		res := make(chan TaskDone, 1)
		go func() {
			v, err := fn(ctx)
			res <- TaskDone{ID: id, Result: v, Err: err}
		}()

		var done TaskDone
		select {
		case done = <-res:
		case <-ctx.Done():
			done = TaskDone{ID: id, Err: ctx.Err()}
		}
		if errors.Is(done.Err, context.DeadlineExceeded) {
			done.Err = ErrTaskTimeout
			done.Result = nil
		}
		if done.Err != nil {
			log.Printf("Loop: task %s: %v", id, done.Err)
		}
		select {
		case l.taskC <- done:
		case <-l.done:
		}
	}()
	return nil
}
