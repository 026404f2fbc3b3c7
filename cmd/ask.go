package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/longkey1/merokisan/internal/widget"
	"github.com/spf13/cobra"
)

var (
	useEditor bool
	askSpeak  bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the assistant one question",
	Long: `Send one message to the assistant and print the reply.

If no message is provided as an argument, it reads from stdin.
If --editor flag is set, it opens the default editor (from EDITOR environment variable) to compose the message.
With --speak the reply is also spoken and the command waits until playback ends.

Examples:
  merokisan ask "What fertilizer for rice?"
  echo "धानमा कुन मल हाल्ने?" | merokisan ask --speak`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := setupConsoleLogging(cfg); err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}

		// Get message from arguments, editor, or stdin
		var message string
		if useEditor {
			message, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("getting message from editor: %w", err)
			}
		} else if len(args) > 0 {
			message = strings.Join(args, " ")
		} else {
			input, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = string(input)
		}
		if strings.TrimSpace(message) == "" {
			return fmt.Errorf("message is empty")
		}

		cfg.AutoSpeak = askSpeak
		if !askSpeak {
			cfg.SpeechMode = config.SpeechOff
		}
		w, err := newWidget(cmd.Context(), cfg, true)
		if err != nil {
			return fmt.Errorf("creating widget: %w", err)
		}
		defer w.Shutdown()

		w.SetDraft(message)
		widget.Drain(cmd.Context(), w, w.Send())

		reply, _ := w.LastBotMessage()
		fmt.Println(reply.Text)
		if reply.Text == widget.NetworkError {
			return fmt.Errorf("chat request to %s failed", cfg.BackendURL)
		}
		return nil
	},
}

// getMessageFromEditor opens the default editor and returns the edited message
func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return "", fmt.Errorf("EDITOR environment variable is not set")
	}

	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "merokisan-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	// Open the editor
	cmd := exec.Command(editor, tmpFile.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %v", err)
	}

	// Read the edited content
	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited content: %v", err)
	}

	return strings.TrimSpace(string(content)), nil
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "Use default editor (from EDITOR environment variable) to compose message")
	askCmd.Flags().BoolVar(&askSpeak, "speak", false, "Speak the reply and wait for playback to finish")
}
