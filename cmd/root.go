/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/longkey1/merokisan/internal/merokisan/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "merokisan",
	Short: "A terminal chat widget for the Mero Kisan agriculture assistant",
	Long: `merokisan is a terminal chat widget for the Mero Kisan agriculture assistant.
Ask questions by typing or speaking, in Nepali or English, and hear the replies.
The assistant itself runs as a separate backend service (POST /chat, /transcribe, /speak).
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/merokisan/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("backend-url", "", "backend origin (overrides backend_url)")
	rootCmd.PersistentFlags().StringP("language", "l", "", "input language: ne-NP or en-US (overrides language)")
	rootCmd.PersistentFlags().String("speech-mode", "", "speech output: backend, local or off (overrides speech_mode)")

	cobra.CheckErr(viper.BindPFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend-url")))
	cobra.CheckErr(viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language")))
	cobra.CheckErr(viper.BindPFlag("speech_mode", rootCmd.PersistentFlags().Lookup("speech-mode")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env in the working directory may carry MEROKISAN_* settings
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("MEROKISAN")
	viper.AutomaticEnv()

	userConfigDir, err := config.UserConfigDir()
	cobra.CheckErr(err)

	defaultConfig := config.NewDefaultConfig(filepath.Join(userConfigDir, "merokisan.log"))

	viper.SetDefault("backend_url", defaultConfig.BackendURL)
	viper.SetDefault("request_timeout", defaultConfig.RequestTimeout)
	viper.SetDefault("language", defaultConfig.Language)
	viper.SetDefault("speech_mode", defaultConfig.SpeechMode)
	viper.SetDefault("auto_speak", defaultConfig.AutoSpeak)
	viper.SetDefault("transcript_mode", defaultConfig.TranscriptMode)
	viper.SetDefault("player_command", defaultConfig.PlayerCommand)
	viper.SetDefault("synth_command", defaultConfig.SynthCommand)
	viper.SetDefault("voices_command", defaultConfig.VoicesCommand)
	viper.SetDefault("sample_rate", defaultConfig.SampleRate)
	viper.SetDefault("channels", defaultConfig.Channels)
	viper.SetDefault("max_input_lines", defaultConfig.MaxInputLines)
	viper.SetDefault("notify", defaultConfig.Notify)
	viper.SetDefault("log_level", defaultConfig.LogLevel)
	viper.SetDefault("log_file", defaultConfig.LogFile)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/merokisan",
			"/usr/local/etc/merokisan",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		// Try to read system-wide config
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  MEROKISAN_BACKEND_URL:", viper.GetString("backend_url"))
		fmt.Fprintln(os.Stderr, "  MEROKISAN_LANGUAGE:", viper.GetString("language"))
		fmt.Fprintln(os.Stderr, "  MEROKISAN_SPEECH_MODE:", viper.GetString("speech_mode"))
	}
}
