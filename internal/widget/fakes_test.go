package widget

import (
	"context"
	"sync"

	"github.com/longkey1/merokisan/internal/audio"
)

type fakeChatter struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []string
}

func (f *fakeChatter) Chat(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return f.reply, f.err
}

func (f *fakeChatter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeCapture struct {
	mu    sync.Mutex
	stops int
	err   error
}

func (f *fakeCapture) Stop() (audio.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.err != nil {
		return audio.Clip{}, f.err
	}
	return audio.Clip{Data: []byte("RIFF"), Filename: "audio.wav", Samples: 1}, nil
}

type fakeRecorder struct {
	starts   int
	err      error
	captures []*fakeCapture
}

func (f *fakeRecorder) Start(ctx context.Context) (audio.Capture, error) {
	f.starts++
	if f.err != nil {
		return nil, f.err
	}
	c := &fakeCapture{}
	f.captures = append(f.captures, c)
	return c, nil
}

type fakeTranscriber struct {
	text      string
	err       error
	calls     int
	languages []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, clip audio.Clip, language string) (string, error) {
	f.calls++
	f.languages = append(f.languages, language)
	return f.text, f.err
}

type fakePlayback struct {
	once    sync.Once
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
	err     error
}

func newFakePlayback(finished bool) *fakePlayback {
	p := &fakePlayback{done: make(chan struct{})}
	if finished {
		close(p.done)
	}
	return p
}

func (p *fakePlayback) Wait() error {
	<-p.done
	return p.err
}

func (p *fakePlayback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.once.Do(func() {
		select {
		case <-p.done:
		default:
			close(p.done)
		}
	})
}

func (p *fakePlayback) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

type fakeSpeaker struct {
	mu        sync.Mutex
	finished  bool
	err       error
	texts     []string
	playbacks []*fakePlayback
	closed    int
}

func (f *fakeSpeaker) Speak(ctx context.Context, text string) (audio.Playback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	p := newFakePlayback(f.finished)
	f.playbacks = append(f.playbacks, p)
	return p, nil
}

func (f *fakeSpeaker) Close() error {
	f.closed++
	return nil
}
