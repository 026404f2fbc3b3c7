package cmd

import (
	"fmt"
	"time"

	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := setupConsoleLogging(cfg); err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}

		client := newClient(cfg, "")
		start := time.Now()
		banner, err := client.Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("backend %s unreachable: %w", client.BaseURL(), err)
		}
		fmt.Printf("%s: %s (%s)\n", client.BaseURL(), banner, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
