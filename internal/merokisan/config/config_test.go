package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/longkey1/merokisan/internal/merokisan"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig("/tmp/merokisan.log")
	require.NoError(t, cfg.Validate())

	lang, err := cfg.GetLanguage()
	require.NoError(t, err)
	require.Equal(t, merokisan.Nepali, lang)
	require.Equal(t, 60*time.Second, cfg.GetRequestTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "english language",
			mutate: func(c *Config) { c.Language = "en-US" },
		},
		{
			name:   "local speech",
			mutate: func(c *Config) { c.SpeechMode = SpeechLocal },
		},
		{
			name:   "speech off without player",
			mutate: func(c *Config) { c.SpeechMode = SpeechOff; c.PlayerCommand = nil },
		},
		{
			name:    "empty backend url",
			mutate:  func(c *Config) { c.BackendURL = " " },
			wantErr: true,
		},
		{
			name:    "unknown language",
			mutate:  func(c *Config) { c.Language = "fr-FR" },
			wantErr: true,
		},
		{
			name:    "unknown speech mode",
			mutate:  func(c *Config) { c.SpeechMode = "browser" },
			wantErr: true,
		},
		{
			name:    "unknown transcript mode",
			mutate:  func(c *Config) { c.TranscriptMode = "prepend" },
			wantErr: true,
		},
		{
			name:    "backend speech without player",
			mutate:  func(c *Config) { c.PlayerCommand = nil },
			wantErr: true,
		},
		{
			name:    "three channels",
			mutate:  func(c *Config) { c.Channels = 3 },
			wantErr: true,
		},
		{
			name:    "zero input lines",
			mutate:  func(c *Config) { c.MaxInputLines = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig("")
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("MEROKISAN_TEST_URL", "http://backend:5000")

	tests := []struct {
		input string
		want  string
	}{
		{"http://literal", "http://literal"},
		{"$MEROKISAN_TEST_URL", "http://backend:5000"},
		{"${MEROKISAN_TEST_URL}", "http://backend:5000"},
		{"$MEROKISAN_TEST_UNSET", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, expandEnvVar(tt.input))
		})
	}
}

func TestResolvePathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ResolvePath("~/logs/merokisan.log")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "logs", "merokisan.log"), got)

	got, err = ResolvePath("/var/log/merokisan.log")
	require.NoError(t, err)
	require.Equal(t, "/var/log/merokisan.log", got)
}

func TestLoadConfigFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	defaults := NewDefaultConfig("/tmp/merokisan.log")
	viper.SetDefault("backend_url", "http://127.0.0.1:5000/")
	viper.SetDefault("request_timeout", defaults.RequestTimeout)
	viper.SetDefault("language", "en-US")
	viper.SetDefault("speech_mode", SpeechOff)
	viper.SetDefault("auto_speak", false)
	viper.SetDefault("transcript_mode", TranscriptAppend)
	viper.SetDefault("player_command", defaults.PlayerCommand)
	viper.SetDefault("synth_command", defaults.SynthCommand)
	viper.SetDefault("voices_command", defaults.VoicesCommand)
	viper.SetDefault("sample_rate", defaults.SampleRate)
	viper.SetDefault("channels", defaults.Channels)
	viper.SetDefault("max_input_lines", 4)
	viper.SetDefault("log_file", defaults.LogFile)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:5000", cfg.BackendURL)
	require.Equal(t, "en-US", cfg.Language)
	require.Equal(t, SpeechOff, cfg.SpeechMode)
	require.Equal(t, TranscriptAppend, cfg.TranscriptMode)
	require.Equal(t, 4, cfg.MaxInputLines)
	require.Equal(t, "/tmp/merokisan.log", cfg.LogFile)
}
