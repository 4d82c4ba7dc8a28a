// Command datagen generates synthetic depression-screening dialogues.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"screening-datagen/internal/config"
	"screening-datagen/internal/logger"
)

var (
	configPath string
	logLevel   string
	model      string
	provider   string

	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "datagen",
	Short: "Synthetic depression-screening dialogue generator",
	Long: `datagen samples latent patient profiles, plays LLM-driven doctor/patient
screening sessions against them and stores the transcripts with their ground truth.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if configPath != "" {
			if err := cfg.LoadFile(configPath); err != nil {
				return err
			}
		}
		flags := cmd.Flags()
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if flags.Changed("model") {
			cfg.Model = model
		}
		if flags.Changed("provider") {
			cfg.Provider = provider
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log = logger.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logger.Minimal, "Log verbosity: minimal, light or heavy")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "LLM model")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider: openai or gemini")

	rootCmd.AddCommand(generateCmd, profileCmd, migrateCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
