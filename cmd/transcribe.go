package cmd

import (
	"bufio"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/longkey1/merokisan/internal/audio"
	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/spf13/cobra"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [file]",
	Short: "Convert speech to text",
	Long: `Send audio to the backend speech-to-text endpoint and print the text.

With a file argument the file is uploaded as is.
Without one, the microphone records until Enter is pressed.
The language comes from --language or the language setting (ne-NP sends "ne", en-US sends "en").`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := setupConsoleLogging(cfg); err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		lang, err := cfg.GetLanguage()
		if err != nil {
			return err
		}

		var clip audio.Clip
		if len(args) > 0 {
			clip, err = clipFromFile(args[0])
		} else {
			clip, err = recordUntilEnter(cmd, cfg)
		}
		if err != nil {
			return err
		}
		if clip.Empty() {
			return fmt.Errorf("no audio captured")
		}

		text, err := newClient(cfg, "").Transcribe(cmd.Context(), clip, lang.Code())
		if err != nil {
			return fmt.Errorf("transcription failed: %w", err)
		}
		if text == "" {
			return fmt.Errorf("no speech recognized")
		}
		fmt.Println(text)
		return nil
	},
}

func clipFromFile(path string) (audio.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("reading audio file: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return audio.Clip{Data: data, Filename: filepath.Base(path), ContentType: contentType}, nil
}

func recordUntilEnter(cmd *cobra.Command, cfg *config.Config) (audio.Clip, error) {
	recorder := audio.NewPortAudioRecorder(cfg.SampleRate, cfg.Channels)
	capture, err := recorder.Start(cmd.Context())
	if err != nil {
		return audio.Clip{}, fmt.Errorf("microphone access failed: %w", err)
	}

	fmt.Fprintln(os.Stderr, "● Listening… press Enter to stop")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')

	clip, err := capture.Stop()
	if err != nil {
		return audio.Clip{}, fmt.Errorf("finishing recording: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Recorded %s, processing voice…\n", clip.Duration().Round(100*time.Millisecond))
	return clip, nil
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}
