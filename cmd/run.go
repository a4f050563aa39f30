package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/model"
)

var (
	runInput   string
	runType    string
	runDataset string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a single input into a training dataset",
	Long:  "Accepts plain text, a file path, or a URL. The source type is detected automatically unless --type is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		srcType := model.SourceType(runType)
		if runType != "" && srcType != model.SourceAuto && !srcType.Valid() {
			return eris.Errorf("invalid --type %q (text, file, web, chat, auto)", runType)
		}

		runner := initPipeline()

		result := runner.Run(ctx, ingest.Input{Text: runInput, Type: srcType}, runDataset)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return eris.Wrap(err, "encode result")
		}

		if !result.Success {
			zap.L().Error("run failed",
				zap.String("stage", string(result.Stage)),
				zap.String("error", result.Error),
			)
			return eris.Errorf("run failed at %s: %s", result.Stage, result.Error)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "text, file path, or URL to process (required)")
	runCmd.Flags().StringVar(&runType, "type", "auto", "source type: text, file, web, auto")
	runCmd.Flags().StringVar(&runDataset, "dataset", "", "dataset name (default: timestamped)")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
