/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/longkey1/merokisan/internal/merokisan"
	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/longkey1/merokisan/internal/tui"
	"github.com/longkey1/merokisan/internal/widget"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	plainMode bool
	collapsed bool
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the chat widget",
	Long: `Open the Mero Kisan chat widget.

When stdin and stdout are terminals a full-screen widget is shown:
  enter       send            alt+enter  newline
  ctrl+r      start/stop voice input
  ctrl+l      switch language (नेपाली / EN)
  ctrl+s      speak or stop the last reply
  ctrl+y      copy the last reply
  ctrl+o      open/close the panel, esc closes it
  pgup/pgdn   scroll the conversation (the mouse wheel works too)
  ctrl+c      quit

Otherwise, or with --plain, a line-mode session is started instead.
Type '/help' there for the available commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if plainMode || !isTerminal() {
			if err := setupConsoleLogging(cfg); err != nil {
				return fmt.Errorf("setting up logging: %w", err)
			}
			w, err := newWidget(ctx, cfg, true)
			if err != nil {
				return fmt.Errorf("creating widget: %w", err)
			}
			return runInteractiveMode(ctx, w)
		}

		logFile, err := setupFileLogging(cfg)
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		defer logFile.Close()

		w, err := newWidget(ctx, cfg, !collapsed)
		if err != nil {
			return fmt.Errorf("creating widget: %w", err)
		}

		// effects, and the player processes they start, end with the program
		runCtx, cancelRun := context.WithCancel(ctx)
		model := tui.New(runCtx, w, tui.Options{
			MaxInputLines: cfg.MaxInputLines,
			Notify:        cfg.Notify,
		})
		p := tea.NewProgram(model,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
			tea.WithContext(ctx),
		)
		_, err = p.Run()
		w.Shutdown()
		cancelRun()
		model.Wait()
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("running chat widget: %w", err)
		}
		return nil
	},
}

func isTerminal() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// replPrinter renders widget state changes as lines of text
type replPrinter struct {
	mu      sync.Mutex
	printed int
	prev    widget.State
	spinner chan bool
}

func (p *replPrinter) onChange(s widget.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Loading != p.prev.Loading {
		if s.Loading {
			p.startSpinner("Thinking…")
		} else {
			p.stopSpinner()
		}
	}
	if s.Transcribing != p.prev.Transcribing {
		if s.Transcribing {
			p.startSpinner("Processing voice…")
		} else {
			p.stopSpinner()
			if s.Draft != "" && s.Draft != p.prev.Draft {
				fmt.Fprintf(os.Stderr, "Heard> %s\n(press Enter to send it, or type a new message)\n", s.Draft)
			}
		}
	}
	if s.Recording && !p.prev.Recording {
		fmt.Fprintln(os.Stderr, "● Listening… type /voice again to stop")
	}
	if s.Language != p.prev.Language && p.prev.Language != "" {
		fmt.Fprintf(os.Stderr, "Language: %s\n", s.Language.Label())
	}

	for _, msg := range s.Messages[min(p.printed, len(s.Messages)):] {
		if msg.IsBot() {
			fmt.Printf("\nMero Kisan> %s\n\n", msg.Text)
		}
	}
	p.printed = len(s.Messages)
	p.prev = s
}

func (p *replPrinter) startSpinner(label string) {
	p.stopSpinner()
	p.spinner = make(chan bool)
	go showSpinner(p.spinner, label)
}

func (p *replPrinter) stopSpinner() {
	if p.spinner == nil {
		return
	}
	p.spinner <- true
	close(p.spinner)
	p.spinner = nil
}

// runInteractiveMode starts a line-mode chat session
func runInteractiveMode(ctx context.Context, w *widget.Widget) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n=== Mero Kisan ===\n")
	fmt.Fprintf(os.Stderr, "Type '/help' for commands, '/exit' or 'Ctrl+D' to quit\n")
	fmt.Fprintf(os.Stderr, "==================\n")

	printer := &replPrinter{}
	loop := widget.NewLoop(w, printer.onChange)
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
		loop.Wait()
		printer.mu.Lock()
		printer.stopSpinner()
		printer.mu.Unlock()
	}()

	// print the greeting
	loop.Do(func(w *widget.Widget) widget.Effect { return nil })

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "\nGoodbye!")
			return nil
		case err := <-scanErr:
			if err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			// Clean EOF
			fmt.Fprintln(os.Stderr, "\nGoodbye!")
			return nil
		case line := <-lines:
			input := strings.TrimSpace(line)

			if strings.HasPrefix(input, "/") {
				if handleSpecialCommand(input, loop) {
					continue
				}
				return nil
			}

			loop.Do(func(w *widget.Widget) widget.Effect {
				// an empty line sends a transcribed draft
				if input != "" {
					w.SetDraft(input)
				}
				return w.Send()
			})
		}
	}
}

// showSpinner displays a spinner animation until done is signalled
func showSpinner(done chan bool, label string) {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	i := 0
	for {
		select {
		case <-done:
			// Clear the spinner line
			fmt.Fprint(os.Stderr, "\r\033[K")
			return
		default:
			fmt.Fprintf(os.Stderr, "\r%s %s", spinners[i], label)
			i = (i + 1) % len(spinners)
			time.Sleep(80 * time.Millisecond)
		}
	}
}

// handleSpecialCommand processes special commands in interactive mode
// Returns true to continue the loop, false to exit
func handleSpecialCommand(command string, loop *widget.Loop) bool {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(command)))
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "/help", "/h":
		fmt.Fprintln(os.Stderr, "\nAvailable commands:")
		fmt.Fprintln(os.Stderr, "  /help, /h        - Show this help message")
		fmt.Fprintln(os.Stderr, "  /voice, /v       - Start or stop voice input")
		fmt.Fprintln(os.Stderr, "  /lang [ne|en]    - Switch or set the input language")
		fmt.Fprintln(os.Stderr, "  /speak, /s       - Speak the last reply (again to stop)")
		fmt.Fprintln(os.Stderr, "  /stop            - Stop speaking")
		fmt.Fprintln(os.Stderr, "  /exit, /quit     - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "  Ctrl+D           - Exit interactive mode")
		fmt.Fprintln(os.Stderr, "")
		return true

	case "/voice", "/v":
		loop.Do(func(w *widget.Widget) widget.Effect { return w.ToggleRecording() })
		return true

	case "/lang", "/l":
		if len(fields) > 1 {
			lang, err := merokisan.ParseLanguage(fields[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return true
			}
			loop.Do(func(w *widget.Widget) widget.Effect {
				w.SetLanguage(lang)
				return nil
			})
			return true
		}
		loop.Do(func(w *widget.Widget) widget.Effect {
			w.ToggleLanguage()
			return nil
		})
		return true

	case "/speak", "/s":
		loop.Do(func(w *widget.Widget) widget.Effect { return w.ReplayLast() })
		return true

	case "/stop":
		loop.Do(func(w *widget.Widget) widget.Effect {
			w.StopSpeech()
			return nil
		})
		return true

	case "/exit", "/quit", "/q":
		fmt.Fprintln(os.Stderr, "Goodbye!")
		return false

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s (type '/help' for available commands)\n", fields[0])
		return true
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().BoolVar(&plainMode, "plain", false, "Use the line-mode interface even on a terminal")
	chatCmd.Flags().BoolVar(&collapsed, "collapsed", false, "Start with the panel closed (launcher only)")
}
