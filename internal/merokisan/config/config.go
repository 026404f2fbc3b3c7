package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/longkey1/merokisan/internal/merokisan"
	"github.com/spf13/viper"
)

// Speech modes
const (
	SpeechBackend = "backend" // POST /speak, played through the player command
	SpeechLocal   = "local"   // on-device synthesizer command
	SpeechOff     = "off"
)

// Transcript modes
const (
	TranscriptReplace = "replace"
	TranscriptAppend  = "append"
)

// Config holds the configuration for the chat widget
type Config struct {
	BackendURL     string   `toml:"backend_url" mapstructure:"backend_url"`
	RequestTimeout int      `toml:"request_timeout" mapstructure:"request_timeout"` // seconds, 0 = no timeout
	Language       string   `toml:"language" mapstructure:"language"`               // "ne-NP" or "en-US"
	SpeechMode     string   `toml:"speech_mode" mapstructure:"speech_mode"`         // "backend", "local" or "off"
	AutoSpeak      bool     `toml:"auto_speak" mapstructure:"auto_speak"`
	TranscriptMode string   `toml:"transcript_mode" mapstructure:"transcript_mode"` // "replace" or "append"
	PlayerCommand  []string `toml:"player_command" mapstructure:"player_command"`
	SynthCommand   []string `toml:"synth_command" mapstructure:"synth_command"`
	VoicesCommand  []string `toml:"voices_command" mapstructure:"voices_command"`
	SampleRate     int      `toml:"sample_rate" mapstructure:"sample_rate"`
	Channels       int      `toml:"channels" mapstructure:"channels"`
	MaxInputLines  int      `toml:"max_input_lines" mapstructure:"max_input_lines"`
	Notify         bool     `toml:"notify" mapstructure:"notify"`
	LogLevel       string   `toml:"log_level" mapstructure:"log_level"`
	LogFile        string   `toml:"log_file" mapstructure:"log_file"`
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(logFile string) *Config {
	return &Config{
		BackendURL:     "http://127.0.0.1:5000",
		RequestTimeout: 60,
		Language:       string(merokisan.DefaultLanguage),
		SpeechMode:     SpeechBackend,
		AutoSpeak:      true,
		TranscriptMode: TranscriptReplace,
		PlayerCommand:  []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-"},
		SynthCommand:   []string{"espeak-ng", "-v", "{voice}", "{text}"},
		VoicesCommand:  []string{"espeak-ng", "--voices"},
		SampleRate:     16000,
		Channels:       1,
		MaxInputLines:  6,
		Notify:         false,
		LogLevel:       "info",
		LogFile:        logFile,
	}
}

// GetLanguage parses the configured language tag
func (c *Config) GetLanguage() (merokisan.Language, error) {
	return merokisan.ParseLanguage(c.Language)
}

// GetRequestTimeout returns the HTTP timeout as a duration
func (c *Config) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks enumerated values and numeric bounds
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend URL is not configured. Set it in config file (backend_url) or environment variable (MEROKISAN_BACKEND_URL)")
	}
	if _, err := c.GetLanguage(); err != nil {
		return err
	}
	switch c.SpeechMode {
	case SpeechBackend, SpeechLocal, SpeechOff:
	default:
		return fmt.Errorf("unsupported speech mode: %s (expected backend, local or off)", c.SpeechMode)
	}
	switch c.TranscriptMode {
	case TranscriptReplace, TranscriptAppend:
	default:
		return fmt.Errorf("unsupported transcript mode: %s (expected replace or append)", c.TranscriptMode)
	}
	if c.SpeechMode == SpeechBackend && len(c.PlayerCommand) == 0 {
		return fmt.Errorf("player_command is required when speech_mode is backend")
	}
	if c.SpeechMode == SpeechLocal && len(c.SynthCommand) == 0 {
		return fmt.Errorf("synth_command is required when speech_mode is local")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive (got %d)", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2 (got %d)", c.Channels)
	}
	if c.MaxInputLines < 1 {
		return fmt.Errorf("max_input_lines must be at least 1 (got %d)", c.MaxInputLines)
	}
	return nil
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	config.BackendURL = strings.TrimRight(expandEnvVar(config.BackendURL), "/")

	if config.LogFile != "" {
		logFile, err := ResolvePath(expandEnvVar(config.LogFile))
		if err != nil {
			return nil, fmt.Errorf("error resolving log file path '%s': %v", config.LogFile, err)
		}
		config.LogFile = logFile
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
