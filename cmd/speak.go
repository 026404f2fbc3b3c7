package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/longkey1/merokisan/internal/audio"
	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/spf13/cobra"
)

var speakOutput string

// speakCmd represents the speak command
var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Synthesize speech with the backend",
	Long: `Send text to the backend text-to-speech endpoint (POST /speak).
The audio is played through player_command, or written to a file with -o ("-" for stdout).

If no text is provided as an argument, it reads from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := setupConsoleLogging(cfg); err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}

		var text string
		if len(args) > 0 {
			text = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			text = string(input)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("text is empty")
		}

		speech, err := newClient(cfg, "").Speak(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("speech synthesis failed: %w", err)
		}

		switch speakOutput {
		case "":
			playback, err := audio.NewCommandPlayer(cfg.PlayerCommand).Play(cmd.Context(), speech.Data)
			if err != nil {
				return fmt.Errorf("starting player: %w", err)
			}
			if err := playback.Wait(); err != nil {
				return fmt.Errorf("playback failed: %w", err)
			}
		case "-":
			if _, err := os.Stdout.Write(speech.Data); err != nil {
				return fmt.Errorf("writing audio: %w", err)
			}
		default:
			if err := os.WriteFile(speakOutput, speech.Data, 0644); err != nil {
				return fmt.Errorf("writing audio: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d bytes (%s) to %s\n", len(speech.Data), speech.ContentType, speakOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speakCmd)

	speakCmd.Flags().StringVarP(&speakOutput, "output", "o", "", "Write the audio to a file instead of playing it")
}
