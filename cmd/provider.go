package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/longkey1/merokisan/internal/audio"
	"github.com/longkey1/merokisan/internal/backend"
	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/longkey1/merokisan/internal/speech"
	"github.com/longkey1/merokisan/internal/widget"
	"github.com/rs/zerolog/log"
)

// newClient creates a backend client tagged with the instance id
func newClient(cfg *config.Config, id string) *backend.Client {
	opts := []backend.Option{backend.WithTimeout(cfg.GetRequestTimeout())}
	if id != "" {
		opts = append(opts, backend.WithRequestID(id))
	}
	return backend.NewClient(cfg.BackendURL, opts...)
}

// newCatalog loads the on-device voice list
func newCatalog(ctx context.Context, cfg *config.Config) *speech.Catalog {
	catalog := speech.NewCatalog(speech.CommandLoader(cfg.VoicesCommand))
	if err := catalog.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("could not list local voices, using the synthesizer default")
	}
	return catalog
}

// newSpeaker creates the speech output selected by speech_mode. A nil
// speaker means speech is off.
func newSpeaker(ctx context.Context, cfg *config.Config, client *backend.Client) (widget.Speaker, error) {
	switch cfg.SpeechMode {
	case config.SpeechBackend:
		return speech.NewBackendSpeaker(client, audio.NewCommandPlayer(cfg.PlayerCommand)), nil
	case config.SpeechLocal:
		return speech.NewLocalSpeaker(cfg.SynthCommand, newCatalog(ctx, cfg)), nil
	case config.SpeechOff:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported speech mode: %s", cfg.SpeechMode)
	}
}

// newWidget wires a widget to the backend, microphone and speech output
func newWidget(ctx context.Context, cfg *config.Config, open bool) (*widget.Widget, error) {
	lang, err := cfg.GetLanguage()
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	client := newClient(cfg, id)
	speaker, err := newSpeaker(ctx, cfg, client)
	if err != nil {
		return nil, err
	}

	mode := widget.TranscriptReplace
	if cfg.TranscriptMode == config.TranscriptAppend {
		mode = widget.TranscriptAppend
	}

	opts := widget.Options{
		ID:             id,
		Chatter:        client,
		Transcriber:    client,
		Recorder:       audio.NewPortAudioRecorder(cfg.SampleRate, cfg.Channels),
		Language:       lang,
		TranscriptMode: mode,
		Speaker:        speaker,
		AutoSpeak:      cfg.AutoSpeak,
		Open:           open,
	}

	log.Debug().Str("widget_id", id).Str("backend", client.BaseURL()).Str("speech_mode", cfg.SpeechMode).Msg("widget configured")
	return widget.New(opts), nil
}
