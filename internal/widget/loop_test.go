package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopSerializesSend(t *testing.T) {
	chatter := &fakeChatter{reply: "Use urea..."}
	w := New(Options{Chatter: chatter})

	states := make(chan State, 16)
	loop := NewLoop(w, func(s State) { states <- s })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.True(t, loop.Do(func(w *Widget) Effect {
		w.SetDraft("What fertilizer for rice?")
		return w.Send()
	}))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-states:
			if s.Loading {
				continue
			}
			require.Len(t, s.Messages, 3)
			require.Equal(t, "Use urea...", s.Messages[2].Text)
			return
		case <-deadline:
			t.Fatal("no reply applied")
		}
	}
}

func TestLoopShutsDownOnCancel(t *testing.T) {
	speaker := &fakeSpeaker{}
	w := New(Options{Speaker: speaker})
	loop := NewLoop(w, nil)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()

	require.True(t, loop.Do(func(w *Widget) Effect { return w.ReplayLast() }))
	cancel()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	loop.Wait()

	require.False(t, loop.Do(func(w *Widget) Effect { return nil }))
	require.Equal(t, 1, speaker.closed)
	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	for _, p := range speaker.playbacks {
		require.True(t, p.isStopped())
	}
}
