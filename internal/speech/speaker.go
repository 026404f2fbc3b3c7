package speech

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/longkey1/merokisan/internal/audio"
	"github.com/longkey1/merokisan/internal/backend"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Synthesizer fetches synthesized audio; *backend.Client implements it.
type Synthesizer interface {
	Speak(ctx context.Context, text string) (*backend.Speech, error)
}

// BackendSpeaker plays audio synthesized by the backend.
type BackendSpeaker struct {
	synth  Synthesizer
	player audio.Player
}

// NewBackendSpeaker creates a speaker for the backend TTS endpoint
func NewBackendSpeaker(synth Synthesizer, player audio.Player) *BackendSpeaker {
	return &BackendSpeaker{synth: synth, player: player}
}

// Speak fetches audio for text and starts playing it.
func (s *BackendSpeaker) Speak(ctx context.Context, text string) (audio.Playback, error) {
	sp, err := s.synth.Speak(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "synthesize")
	}
	return s.player.Play(ctx, sp.Data)
}

// LocalSpeaker runs an on-device synthesizer, choosing the voice by script.
type LocalSpeaker struct {
	command []string

	mu          sync.Mutex
	voices      []Voice
	unsubscribe func()
}

// NewLocalSpeaker creates a speaker that tracks catalog's voice list until
// Close is called.
func NewLocalSpeaker(command []string, catalog *Catalog) *LocalSpeaker {
	s := &LocalSpeaker{command: command}
	if catalog != nil {
		s.unsubscribe = catalog.Subscribe(s.setVoices)
	}
	return s
}

func (s *LocalSpeaker) setVoices(voices []Voice) {
	s.mu.Lock()
	s.voices = voices
	s.mu.Unlock()
}

// Voice returns the voice that would be used for text.
func (s *LocalSpeaker) Voice(text string) (Voice, bool) {
	s.mu.Lock()
	voices := s.voices
	s.mu.Unlock()
	return SelectVoice(voices, text)
}

// Speak starts the synthesizer for text.
func (s *LocalSpeaker) Speak(ctx context.Context, text string) (audio.Playback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	voice, _ := s.Voice(text)
	argv := ExpandCommand(s.command, map[string]string{
		"voice": voice.ID,
		"text":  text,
	})
	if len(argv) == 0 {
		return nil, errors.New("synth command is empty")
	}
	log.Debug().Str("voice", voice.ID).Str("script", DetectScript(text).String()).Msg("speech: local synthesis")
	return audio.StartProcess(exec.CommandContext(ctx, argv[0], argv[1:]...))
}

// Close drops the voice-list subscription.
func (s *LocalSpeaker) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return nil
}

// ExpandCommand substitutes {name} placeholders in argv. An argument that is
// exactly a placeholder with an empty value is dropped together with the flag
// before it, so "-v {voice}" disappears when no voice was chosen.
// Substituted values are never expanded again.
func ExpandCommand(argv []string, vars map[string]string) []string {
	pairs := make([]string, 0, 2*len(vars))
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	r := strings.NewReplacer(pairs...)

	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		if name, ok := placeholder(arg); ok {
			if vars[name] == "" {
				if n := len(out); n > 1 && strings.HasPrefix(out[n-1], "-") {
					out = out[:n-1]
				}
				continue
			}
		}
		out = append(out, r.Replace(arg))
	}
	return out
}

func placeholder(arg string) (string, bool) {
	if len(arg) > 2 && strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}") {
		return arg[1 : len(arg)-1], true
	}
	return "", false
}
