// Package widget is the chat widget core: conversation, voice capture and
// speech playback state, independent of any particular front end.
//
// A Widget is owned by a single event loop. Operations mutate state
// synchronously and may return an Effect; the loop runs the effect elsewhere
// and feeds the resulting Event back through Apply.
package widget

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/longkey1/merokisan/internal/audio"
	"github.com/longkey1/merokisan/internal/merokisan"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	Greeting      = "Namaste! I am your agriculture assistant. How can I help you today?"
	FallbackReply = "Sorry, I could not understand. Please try again."
	NetworkError  = "Network error. Try again."
)

// TranscriptMode controls how recognized speech lands in the draft.
type TranscriptMode int

const (
	TranscriptReplace TranscriptMode = iota
	TranscriptAppend
)

// Chatter sends a message to the assistant.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Transcriber turns a recorded clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip, language string) (string, error)
}

// Speaker starts spoken playback of text.
type Speaker interface {
	Speak(ctx context.Context, text string) (audio.Playback, error)
}

// Options wires a Widget to its collaborators. Recorder, Transcriber and
// Speaker may be nil to disable the corresponding feature.
type Options struct {
	// ID identifies the instance in logs; a random UUID when empty.
	ID string

	Chatter        Chatter
	Transcriber    Transcriber
	Recorder       audio.Recorder
	Speaker        Speaker
	Language       merokisan.Language
	TranscriptMode TranscriptMode
	AutoSpeak      bool
	Open           bool
}

// State is a snapshot of everything a front end renders.
type State struct {
	Open         bool
	Messages     []merokisan.Message
	Draft        string
	Loading      bool
	Recording    bool
	Transcribing bool
	Speaking     bool
	Language     merokisan.Language
}

// Idle reports whether no voice capture is underway.
func (s State) Idle() bool {
	return !s.Recording && !s.Transcribing
}

// Widget is the chat widget state machine.
type Widget struct {
	id   string
	opts Options
	log  zerolog.Logger

	state State

	acquiring bool
	capture   audio.Capture

	speakGen uint64
	playback audio.Playback

	closed bool
}

// New creates a widget greeted by the assistant.
func New(opts Options) *Widget {
	lang := opts.Language
	if lang == "" {
		lang = merokisan.DefaultLanguage
	}
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	return &Widget{
		id:   id,
		opts: opts,
		log:  log.With().Str("widget_id", id).Logger(),
		state: State{
			Open:     opts.Open,
			Messages: []merokisan.Message{merokisan.BotMessage(Greeting)},
			Language: lang,
		},
	}
}

// ID returns the instance identifier used for log correlation.
func (w *Widget) ID() string {
	return w.id
}

// State returns a snapshot of the current state.
func (w *Widget) State() State {
	s := w.state
	s.Messages = append([]merokisan.Message(nil), w.state.Messages...)
	return s
}

// Messages returns the conversation so far.
func (w *Widget) Messages() []merokisan.Message {
	return append([]merokisan.Message(nil), w.state.Messages...)
}

// LastBotMessage returns the most recent assistant message.
func (w *Widget) LastBotMessage() (merokisan.Message, bool) {
	for i := len(w.state.Messages) - 1; i >= 0; i-- {
		if w.state.Messages[i].IsBot() {
			return w.state.Messages[i], true
		}
	}
	return merokisan.Message{}, false
}

// ToggleOpen opens or closes the panel.
func (w *Widget) ToggleOpen() {
	w.state.Open = !w.state.Open
}

// SetOpen sets the panel state.
func (w *Widget) SetOpen(open bool) {
	w.state.Open = open
}

// SetDraft replaces the unsent input text.
func (w *Widget) SetDraft(text string) {
	w.state.Draft = text
}

// ToggleLanguage flips between Nepali and English.
func (w *Widget) ToggleLanguage() {
	w.state.Language = w.state.Language.Toggle()
}

// SetLanguage selects the input language.
func (w *Widget) SetLanguage(lang merokisan.Language) {
	w.state.Language = lang
}

// Send submits the draft. Blank drafts and sends while a reply is pending
// are ignored.
func (w *Widget) Send() Effect {
	text := strings.TrimSpace(w.state.Draft)
	if text == "" {
		return nil
	}
	if w.state.Loading {
		w.log.Debug().Msg("widget: send ignored, reply pending")
		return nil
	}

	w.state.Messages = append(w.state.Messages, merokisan.UserMessage(text))
	w.state.Draft = ""
	w.state.Loading = true

	chatter := w.opts.Chatter
	return func(ctx context.Context) Event {
		reply, err := chatter.Chat(ctx, text)
		if err != nil {
			return ChatFailed{Err: err}
		}
		return ChatReplied{Reply: reply}
	}
}

// StartRecording clears the draft and acquires the microphone. Only valid
// while idle.
func (w *Widget) StartRecording() Effect {
	if w.opts.Recorder == nil || w.closed {
		return nil
	}
	if !w.state.Idle() || w.acquiring {
		w.log.Debug().Msg("widget: start recording ignored, capture busy")
		return nil
	}

	w.state.Draft = ""
	w.acquiring = true

	recorder := w.opts.Recorder
	return func(ctx context.Context) Event {
		c, err := recorder.Start(ctx)
		if err != nil {
			return RecordingFailed{Err: err}
		}
		return RecordingStarted{Capture: c}
	}
}

// StopRecording finalizes the capture, releases the microphone and submits
// the audio for transcription.
func (w *Widget) StopRecording() Effect {
	if !w.state.Recording || w.capture == nil {
		return nil
	}

	c := w.capture
	w.capture = nil
	w.state.Recording = false
	w.state.Transcribing = true

	transcriber := w.opts.Transcriber
	code := w.state.Language.Code()
	return func(ctx context.Context) Event {
		clip, err := c.Stop()
		if err != nil {
			return TranscriptionFailed{Err: err}
		}
		if transcriber == nil {
			return Transcribed{}
		}
		text, err := transcriber.Transcribe(ctx, clip, code)
		if err != nil {
			return TranscriptionFailed{Err: err}
		}
		return Transcribed{Text: text}
	}
}

// ToggleRecording starts or stops voice capture.
func (w *Widget) ToggleRecording() Effect {
	if w.state.Recording {
		return w.StopRecording()
	}
	return w.StartRecording()
}

// ToggleSpeech stops playback when speaking, otherwise speaks text.
func (w *Widget) ToggleSpeech(text string) Effect {
	if w.state.Speaking {
		w.StopSpeech()
		return nil
	}
	return w.speak(text)
}

// ReplayLast toggles playback of the most recent assistant message.
func (w *Widget) ReplayLast() Effect {
	if w.state.Speaking {
		w.StopSpeech()
		return nil
	}
	last, ok := w.LastBotMessage()
	if !ok {
		return nil
	}
	return w.speak(last.Text)
}

// StopSpeech interrupts playback and invalidates any pending synthesis.
func (w *Widget) StopSpeech() {
	w.speakGen++
	w.state.Speaking = false
	if w.playback != nil {
		w.playback.Stop()
		w.playback = nil
	}
}

// speak replaces any current playback with text.
func (w *Widget) speak(text string) Effect {
	if w.opts.Speaker == nil || w.closed || strings.TrimSpace(text) == "" {
		return nil
	}
	w.StopSpeech()
	w.state.Speaking = true
	gen := w.speakGen

	speaker := w.opts.Speaker
	return func(ctx context.Context) Event {
		p, err := speaker.Speak(ctx, text)
		if err != nil {
			return PlaybackFinished{Gen: gen, Err: err}
		}
		return PlaybackStarted{Gen: gen, Playback: p}
	}
}

// Apply folds an effect's outcome into the state and returns any follow-up.
func (w *Widget) Apply(ev Event) Effect {
	switch ev := ev.(type) {
	case ChatReplied:
		w.state.Loading = false
		reply := ev.Reply
		if strings.TrimSpace(reply) == "" {
			reply = FallbackReply
		}
		w.state.Messages = append(w.state.Messages, merokisan.BotMessage(reply))
		if w.opts.AutoSpeak {
			return w.speak(reply)
		}

	case ChatFailed:
		w.state.Loading = false
		w.log.Error().Err(ev.Err).Msg("widget: chat request failed")
		w.state.Messages = append(w.state.Messages, merokisan.BotMessage(NetworkError))

	case RecordingStarted:
		w.acquiring = false
		if w.closed {
			// torn down while the device was opening
			if _, err := ev.Capture.Stop(); err != nil {
				w.log.Debug().Err(err).Msg("widget: release late capture")
			}
			return nil
		}
		w.capture = ev.Capture
		w.state.Recording = true

	case RecordingFailed:
		w.acquiring = false
		w.log.Error().Err(ev.Err).Msg("widget: microphone access failed")

	case Transcribed:
		w.state.Transcribing = false
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return nil
		}
		if w.opts.TranscriptMode == TranscriptAppend && strings.TrimSpace(w.state.Draft) != "" {
			w.state.Draft = strings.TrimRight(w.state.Draft, " ") + " " + text
		} else {
			w.state.Draft = text
		}

	case TranscriptionFailed:
		w.state.Transcribing = false
		w.log.Error().Err(ev.Err).Msg("widget: transcription failed")

	case PlaybackStarted:
		if ev.Gen != w.speakGen || !w.state.Speaking {
			// stopped or replaced while synthesizing
			ev.Playback.Stop()
			return nil
		}
		w.playback = ev.Playback
		p, gen := ev.Playback, ev.Gen
		return func(ctx context.Context) Event {
			return PlaybackFinished{Gen: gen, Err: p.Wait()}
		}

	case PlaybackFinished:
		if ev.Err != nil {
			w.log.Warn().Err(ev.Err).Msg("widget: speech playback failed")
		}
		if ev.Gen == w.speakGen {
			w.state.Speaking = false
			w.playback = nil
		}
	}
	return nil
}

// Shutdown stops playback and releases the microphone. Late events are still
// accepted so resources handed over after shutdown get released.
func (w *Widget) Shutdown() {
	if w.closed {
		return
	}
	w.closed = true
	w.StopSpeech()
	if w.capture != nil {
		if _, err := w.capture.Stop(); err != nil {
			w.log.Debug().Err(err).Msg("widget: release capture on shutdown")
		}
		w.capture = nil
		w.state.Recording = false
	}
	if closer, ok := w.opts.Speaker.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			w.log.Debug().Err(err).Msg("widget: close speaker")
		}
	}
}
