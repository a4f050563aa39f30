package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Merges defaults, config.yaml, and DATAGEN_ environment overrides and prints the result. Secrets are redacted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := *cfg
		out.Generation.Key = redact(out.Generation.Key)
		out.Recognition.Key = redact(out.Recognition.Key)
		out.Telegram.BotToken = redact(out.Telegram.BotToken)

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "encode config")
		}
		return enc.Close()
	},
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[set]"
}

func init() {
	rootCmd.AddCommand(configCmd)
}
