package widget

import (
	"context"

	"github.com/longkey1/merokisan/internal/audio"
)

// Effect is asynchronous work requested by a widget operation. It runs off
// the event loop and reports back with an Event, which the loop feeds to
// Widget.Apply. A nil Effect means there is nothing to do.
type Effect func(ctx context.Context) Event

// Event is the outcome of an Effect.
type Event interface {
	event()
}

// ChatReplied carries the backend's reply to a sent message.
type ChatReplied struct {
	Reply string
}

// ChatFailed reports a failed chat request.
type ChatFailed struct {
	Err error
}

// RecordingStarted hands over an acquired microphone.
type RecordingStarted struct {
	Capture audio.Capture
}

// RecordingFailed reports that the microphone could not be acquired.
type RecordingFailed struct {
	Err error
}

// Transcribed carries recognized text for the draft.
type Transcribed struct {
	Text string
}

// TranscriptionFailed reports a failed capture or transcription call.
type TranscriptionFailed struct {
	Err error
}

// PlaybackStarted hands over a running playback for generation Gen.
type PlaybackStarted struct {
	Gen      uint64
	Playback audio.Playback
}

// PlaybackFinished reports the end of playback generation Gen. Err is set
// when synthesis or playback failed.
type PlaybackFinished struct {
	Gen uint64
	Err error
}

func (ChatReplied) event()         {}
func (ChatFailed) event()          {}
func (RecordingStarted) event()    {}
func (RecordingFailed) event()     {}
func (Transcribed) event()         {}
func (TranscriptionFailed) event() {}
func (PlaybackStarted) event()     {}
func (PlaybackFinished) event()    {}
