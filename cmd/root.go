package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "datagen",
	Short:         "Content-to-training-data pipeline",
	Long:          "Ingests text, files, web pages, and chat messages, generates instruction/output pairs per chunk, and builds quality-tiered JSONL training datasets.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if err := cfg.EnsureDirs(); err != nil {
			return fmt.Errorf("ensure dirs: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
