package widget

import (
	"context"
	"testing"

	"github.com/longkey1/merokisan/internal/merokisan"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestNewWidgetGreets(t *testing.T) {
	w := New(Options{Chatter: &fakeChatter{}})

	s := w.State()
	require.Equal(t, []merokisan.Message{merokisan.BotMessage(Greeting)}, s.Messages)
	require.Equal(t, merokisan.Nepali, s.Language)
	require.False(t, s.Open)
	require.NotEmpty(t, w.ID())
}

func TestSendRejectsBlankDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"newlines and tabs", "\n\t \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatter := &fakeChatter{reply: "unused"}
			w := New(Options{Chatter: chatter})
			w.SetDraft(tt.draft)

			require.Nil(t, w.Send())
			require.Len(t, w.Messages(), 1)
			require.False(t, w.State().Loading)
			require.Equal(t, 0, chatter.calls())
		})
	}
}

func TestSendSuccess(t *testing.T) {
	chatter := &fakeChatter{reply: "Use urea..."}
	w := New(Options{Chatter: chatter})
	w.SetDraft("  What fertilizer for rice?  ")

	eff := w.Send()
	require.NotNil(t, eff)
	s := w.State()
	require.True(t, s.Loading)
	require.Empty(t, s.Draft)

	Drain(ctx, w, eff)

	require.Equal(t, []string{"What fertilizer for rice?"}, chatter.messages)
	require.Equal(t, []merokisan.Message{
		merokisan.BotMessage(Greeting),
		merokisan.UserMessage("What fertilizer for rice?"),
		merokisan.BotMessage("Use urea..."),
	}, w.Messages())
	require.False(t, w.State().Loading)
}

func TestSendMissingReplyFallsBack(t *testing.T) {
	w := New(Options{Chatter: &fakeChatter{reply: ""}})
	w.SetDraft("hello")
	Drain(ctx, w, w.Send())

	msgs := w.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, merokisan.BotMessage(FallbackReply), msgs[2])
}

func TestSendFailureAppendsErrorBubble(t *testing.T) {
	w := New(Options{Chatter: &fakeChatter{err: errors.New("connection refused")}})
	w.SetDraft("hello")
	Drain(ctx, w, w.Send())

	msgs := w.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, merokisan.UserMessage("hello"), msgs[1])
	require.Equal(t, merokisan.BotMessage(NetworkError), msgs[2])
	require.False(t, w.State().Loading)
}

func TestDoubleSubmitIsBlocked(t *testing.T) {
	chatter := &fakeChatter{reply: "ok"}
	w := New(Options{Chatter: chatter})

	w.SetDraft("first")
	first := w.Send()
	require.NotNil(t, first)

	w.SetDraft("second")
	require.Nil(t, w.Send())
	require.Equal(t, "second", w.State().Draft)

	Drain(ctx, w, first)
	require.Equal(t, 1, chatter.calls())
	require.Len(t, w.Messages(), 3)

	// the kept draft can be sent once the reply is in
	Drain(ctx, w, w.Send())
	require.Equal(t, 2, chatter.calls())
}

func TestReplyIsSpokenWhenAutoSpeak(t *testing.T) {
	speaker := &fakeSpeaker{finished: true}
	w := New(Options{Chatter: &fakeChatter{reply: "Use urea..."}, Speaker: speaker, AutoSpeak: true})
	w.SetDraft("rice?")

	Drain(ctx, w, w.Send())

	require.Equal(t, []string{"Use urea..."}, speaker.texts)
	require.False(t, w.State().Speaking)
}

func TestReplyNotSpokenWithoutAutoSpeak(t *testing.T) {
	speaker := &fakeSpeaker{finished: true}
	w := New(Options{Chatter: &fakeChatter{reply: "Use urea..."}, Speaker: speaker})
	w.SetDraft("rice?")

	Drain(ctx, w, w.Send())
	require.Empty(t, speaker.texts)
}

func TestRecordingLifecycle(t *testing.T) {
	recorder := &fakeRecorder{}
	transcriber := &fakeTranscriber{text: "धानमा कुन मल?"}
	w := New(Options{Chatter: &fakeChatter{}, Recorder: recorder, Transcriber: transcriber})
	w.SetDraft("unfinished")

	start := w.StartRecording()
	require.NotNil(t, start)
	require.Empty(t, w.State().Draft)

	require.Nil(t, w.Apply(start(ctx)))
	require.True(t, w.State().Recording)

	stop := w.StopRecording()
	require.NotNil(t, stop)
	s := w.State()
	require.False(t, s.Recording)
	require.True(t, s.Transcribing)

	require.Nil(t, w.Apply(stop(ctx)))
	s = w.State()
	require.False(t, s.Transcribing)
	require.True(t, s.Idle())
	require.Equal(t, "धानमा कुन मल?", s.Draft)
	require.Equal(t, 1, transcriber.calls)
	require.Equal(t, []string{"ne"}, transcriber.languages)
	require.Equal(t, 1, recorder.captures[0].stops)
}

func TestRecordingUsesSelectedLanguage(t *testing.T) {
	transcriber := &fakeTranscriber{text: "rice"}
	w := New(Options{Recorder: &fakeRecorder{}, Transcriber: transcriber})
	w.ToggleLanguage()

	w.Apply(w.StartRecording()(ctx))
	w.Apply(w.StopRecording()(ctx))
	require.Equal(t, []string{"en"}, transcriber.languages)
}

func TestTranscriptAppendMode(t *testing.T) {
	w := New(Options{
		Recorder:       &fakeRecorder{},
		Transcriber:    &fakeTranscriber{text: "and wheat?"},
		TranscriptMode: TranscriptAppend,
	})

	w.Apply(w.StartRecording()(ctx))
	w.SetDraft("fertilizer for rice")
	w.Apply(w.StopRecording()(ctx))
	require.Equal(t, "fertilizer for rice and wheat?", w.State().Draft)
}

func TestToggleRecording(t *testing.T) {
	recorder := &fakeRecorder{}
	transcriber := &fakeTranscriber{text: "rice"}
	w := New(Options{Recorder: recorder, Transcriber: transcriber})

	w.Apply(w.ToggleRecording()(ctx))
	require.True(t, w.State().Recording)

	w.Apply(w.ToggleRecording()(ctx))
	require.False(t, w.State().Recording)
	require.Equal(t, 1, recorder.starts)
	require.Equal(t, 1, transcriber.calls)
}

func TestMicrophoneFailure(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("permission denied")}
	w := New(Options{Recorder: recorder})

	w.Apply(w.StartRecording()(ctx))
	s := w.State()
	require.False(t, s.Recording)
	require.True(t, s.Idle())
	require.Nil(t, w.StopRecording())

	// a failed attempt does not wedge the recorder
	require.NotNil(t, w.StartRecording())
}

func TestTranscriptionFailureLeavesDraft(t *testing.T) {
	tests := []struct {
		name        string
		transcriber *fakeTranscriber
		captureErr  error
	}{
		{"backend error", &fakeTranscriber{err: errors.New("HTTP 500")}, nil},
		{"empty text", &fakeTranscriber{text: "  "}, nil},
		{"capture error", &fakeTranscriber{text: "unused"}, errors.New("encode")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			w := New(Options{Recorder: recorder, Transcriber: tt.transcriber})

			w.Apply(w.StartRecording()(ctx))
			recorder.captures[0].err = tt.captureErr
			w.SetDraft("typed meanwhile")
			w.Apply(w.StopRecording()(ctx))

			s := w.State()
			require.Equal(t, "typed meanwhile", s.Draft)
			require.False(t, s.Transcribing)
		})
	}
}

func TestStartRecordingOnlyFromIdle(t *testing.T) {
	recorder := &fakeRecorder{}
	w := New(Options{Recorder: recorder, Transcriber: &fakeTranscriber{}})

	first := w.StartRecording()
	require.NotNil(t, first)
	require.Nil(t, w.StartRecording(), "second start while acquiring")

	w.Apply(first(ctx))
	require.Nil(t, w.StartRecording(), "start while recording")

	stop := w.StopRecording()
	require.Nil(t, w.StartRecording(), "start while transcribing")
	w.Apply(stop(ctx))
	require.NotNil(t, w.StartRecording())
}

func TestRecordingDisabledWithoutRecorder(t *testing.T) {
	w := New(Options{})
	w.SetDraft("keep")
	require.Nil(t, w.StartRecording())
	require.Equal(t, "keep", w.State().Draft)
}

func TestToggleSpeechWhileSpeakingStops(t *testing.T) {
	speaker := &fakeSpeaker{}
	w := New(Options{Speaker: speaker})

	wait := w.Apply(w.ReplayLast()(ctx))
	require.NotNil(t, wait)
	require.True(t, w.State().Speaking)

	require.Nil(t, w.ToggleSpeech("anything"))
	require.False(t, w.State().Speaking)
	require.True(t, speaker.playbacks[0].isStopped())
	require.Equal(t, []string{Greeting}, speaker.texts)

	// the interrupted playback's completion is stale
	require.Nil(t, w.Apply(wait(ctx)))
	require.False(t, w.State().Speaking)
}

func TestStopBeforeAudioArrivesDiscardsIt(t *testing.T) {
	speaker := &fakeSpeaker{}
	w := New(Options{Speaker: speaker})

	pending := w.ReplayLast()
	require.True(t, w.State().Speaking)
	w.StopSpeech()

	require.Nil(t, w.Apply(pending(ctx)))
	require.False(t, w.State().Speaking)
	require.True(t, speaker.playbacks[0].isStopped())
}

func TestNewReplyReplacesPlayback(t *testing.T) {
	speaker := &fakeSpeaker{}
	w := New(Options{Chatter: &fakeChatter{reply: "second"}, Speaker: speaker, AutoSpeak: true})

	firstWait := w.Apply(w.ReplayLast()(ctx))
	require.NotNil(t, firstWait)

	w.SetDraft("again")
	speak := w.Apply(w.Send()(ctx))
	require.NotNil(t, speak)
	require.True(t, speaker.playbacks[0].isStopped())

	secondWait := w.Apply(speak(ctx))
	require.NotNil(t, secondWait)
	require.True(t, w.State().Speaking)

	// old completion does not clear the new playback
	w.Apply(firstWait(ctx))
	require.True(t, w.State().Speaking)

	speaker.playbacks[1].Stop()
	w.Apply(secondWait(ctx))
	require.False(t, w.State().Speaking)
}

func TestPlaybackErrorClearsSpeaking(t *testing.T) {
	speaker := &fakeSpeaker{err: errors.New("no audio device")}
	w := New(Options{Speaker: speaker})

	w.Apply(w.ReplayLast()(ctx))
	require.False(t, w.State().Speaking)
}

func TestShutdownReleasesDevices(t *testing.T) {
	recorder := &fakeRecorder{}
	speaker := &fakeSpeaker{}
	w := New(Options{Recorder: recorder, Transcriber: &fakeTranscriber{}, Speaker: speaker})

	w.Apply(w.StartRecording()(ctx))
	w.Apply(w.ReplayLast()(ctx))
	late := w.StartRecording()
	require.Nil(t, late)

	w.Shutdown()
	w.Shutdown()

	require.Equal(t, 1, recorder.captures[0].stops)
	require.True(t, speaker.playbacks[0].isStopped())
	require.Equal(t, 1, speaker.closed)
	s := w.State()
	require.False(t, s.Recording)
	require.False(t, s.Speaking)
	require.Nil(t, w.ReplayLast())
}

func TestCaptureArrivingAfterShutdownIsReleased(t *testing.T) {
	recorder := &fakeRecorder{}
	w := New(Options{Recorder: recorder})

	start := w.StartRecording()
	w.Shutdown()
	w.Apply(start(ctx))

	require.False(t, w.State().Recording)
	require.Equal(t, 1, recorder.captures[0].stops)
}

func TestOpenAndLanguageToggles(t *testing.T) {
	w := New(Options{Language: merokisan.English, Open: true})
	require.True(t, w.State().Open)

	w.ToggleOpen()
	require.False(t, w.State().Open)

	w.ToggleLanguage()
	require.Equal(t, merokisan.Nepali, w.State().Language)
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	w := New(Options{})
	s := w.State()
	s.Messages[0].Text = "mutated"
	require.Equal(t, Greeting, w.Messages()[0].Text)
}
