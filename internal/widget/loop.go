package widget

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Drain runs eff and every follow-up effect on the calling goroutine until
// the chain ends. One-shot commands use it; it blocks through playback.
func Drain(ctx context.Context, w *Widget, eff Effect) {
	for eff != nil {
		ev := eff(ctx)
		if ev == nil {
			return
		}
		eff = w.Apply(ev)
	}
}

// Loop owns a Widget for front ends without an event loop of their own.
// Operations and effect outcomes are serialized onto the goroutine running
// Run; effects run on their own goroutines.
type Loop struct {
	w        *Widget
	onChange func(State)

	ops  chan func() Effect
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewLoop creates a loop for w. onChange, if set, is called on the loop
// goroutine after every state transition.
func NewLoop(w *Widget, onChange func(State)) *Loop {
	return &Loop{
		w:        w,
		onChange: onChange,
		ops:      make(chan func() Effect),
		done:     make(chan struct{}),
	}
}

// Do schedules op on the loop. It returns false once the loop has stopped.
func (l *Loop) Do(op func(w *Widget) Effect) bool {
	return l.enqueue(func() Effect { return op(l.w) })
}

// Run processes operations until ctx is cancelled, then shuts the widget down.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			l.w.Shutdown()
			return
		case op := <-l.ops:
			eff := op()
			if l.onChange != nil {
				l.onChange(l.w.State())
			}
			l.spawn(ctx, eff)
		}
	}
}

// Wait blocks until every spawned effect has returned.
func (l *Loop) Wait() {
	l.wg.Wait()
}

func (l *Loop) spawn(ctx context.Context, eff Effect) {
	if eff == nil {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ev := eff(ctx)
		if ev == nil {
			return
		}
		if !l.enqueue(func() Effect { return l.w.Apply(ev) }) {
			Release(ev)
		}
	}()
}

func (l *Loop) enqueue(fn func() Effect) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.ops <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Release frees device handles carried by an event nobody will apply.
func Release(ev Event) {
	switch ev := ev.(type) {
	case RecordingStarted:
		if _, err := ev.Capture.Stop(); err != nil {
			log.Debug().Err(err).Msg("widget: release orphaned capture")
		}
	case PlaybackStarted:
		ev.Playback.Stop()
	}
}
