package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, backend_url, request_timeout, language, speech_mode, auto_speak, transcript_mode, player_command, synth_command, voices_command, sample_rate, channels, max_input_lines, notify, log_level, log_file"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  merokisan config                # Show all configuration
  merokisan config backend_url    # Show only the backend origin
  merokisan config speech_mode    # Show only the speech mode`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		values := configValues(cfg)

		// If a field is specified, show only that field
		if len(args) > 0 {
			field := strings.ReplaceAll(strings.ToLower(args[0]), "-", "_")
			for _, kv := range values {
				if kv[0] == field {
					fmt.Println(kv[2])
					return nil
				}
			}
			fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
			return fmt.Errorf("unknown field: %s", args[0])
		}

		for _, kv := range values {
			fmt.Printf("%s: %s\n", kv[1], kv[2])
		}
		return nil
	},
}

// configValues lists (field, label, value) for every setting
func configValues(cfg *config.Config) [][3]string {
	return [][3]string{
		{"configfile", "ConfigFile", viper.ConfigFileUsed()},
		{"backend_url", "BackendURL", cfg.BackendURL},
		{"request_timeout", "RequestTimeout", cfg.GetRequestTimeout().String()},
		{"language", "Language", cfg.Language},
		{"speech_mode", "SpeechMode", cfg.SpeechMode},
		{"auto_speak", "AutoSpeak", fmt.Sprint(cfg.AutoSpeak)},
		{"transcript_mode", "TranscriptMode", cfg.TranscriptMode},
		{"player_command", "PlayerCommand", strings.Join(cfg.PlayerCommand, " ")},
		{"synth_command", "SynthCommand", strings.Join(cfg.SynthCommand, " ")},
		{"voices_command", "VoicesCommand", strings.Join(cfg.VoicesCommand, " ")},
		{"sample_rate", "SampleRate", fmt.Sprint(cfg.SampleRate)},
		{"channels", "Channels", fmt.Sprint(cfg.Channels)},
		{"max_input_lines", "MaxInputLines", fmt.Sprint(cfg.MaxInputLines)},
		{"notify", "Notify", fmt.Sprint(cfg.Notify)},
		{"log_level", "LogLevel", cfg.LogLevel},
		{"log_file", "LogFile", cfg.LogFile},
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
}
