package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/longkey1/merokisan/internal/speech"
	"github.com/spf13/cobra"
)

// voicesCmd represents the voices command
var voicesCmd = &cobra.Command{
	Use:   "voices [sample text]",
	Short: "List on-device voices",
	Long: `List the voices reported by voices_command (espeak-ng --voices by default),
as used when speech_mode is "local".

With sample text, also show which voice would read it. Text containing
Devanagari prefers a Nepali voice, then Hindi; other text prefers US English, then English.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := setupConsoleLogging(cfg); err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}

		catalog := speech.NewCatalog(speech.CommandLoader(cfg.VoicesCommand))
		if err := catalog.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("listing voices: %w", err)
		}
		voices := catalog.Voices()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLANGUAGE\tNAME")
		for _, v := range voices {
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, v.Language, v.Name)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if len(args) > 0 {
			sample := strings.Join(args, " ")
			voice, ok := speech.SelectVoice(voices, sample)
			if !ok {
				fmt.Printf("\nNo voice available for %s text\n", speech.DetectScript(sample))
				return nil
			}
			fmt.Printf("\n%s text → %s (%s)\n", speech.DetectScript(sample), voice.ID, voice.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}
