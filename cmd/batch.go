package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/model"
)

var (
	batchFile    string
	batchDataset string
)

var batchCmd = &cobra.Command{
	Use:   "batch [inputs...]",
	Short: "Process multiple inputs concurrently",
	Long:  "Inputs come from positional arguments or from --file (one per line). Each input becomes its own numbered dataset; per-input failures do not stop the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		inputs, err := collectInputs(args)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return eris.New("no inputs given")
		}

		base := batchDataset
		if base == "" {
			base = "batch"
		}

		runner := initPipeline()

		var (
			succeeded atomic.Int64
			failed    atomic.Int64
			mu        sync.Mutex
			results   = make([]*model.RunResult, len(inputs))
		)

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentRuns)

		for i, input := range inputs {
			i, input := i, input
			g.Go(func() error {
				name := fmt.Sprintf("%s_%d", base, i+1)
				result := runner.Run(gCtx, ingest.Input{Text: input}, name)

				mu.Lock()
				results[i] = result
				mu.Unlock()

				if result.Success {
					succeeded.Add(1)
				} else {
					failed.Add(1)
					zap.L().Warn("batch: input failed",
						zap.Int("index", i),
						zap.String("stage", string(result.Stage)),
						zap.String("error", result.Error),
					)
				}
				return nil
			})
		}
		_ = g.Wait()

		zap.L().Info("batch complete",
			zap.Int("inputs", len(inputs)),
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)

		summary := struct {
			Total     int                `json:"total"`
			Succeeded int64              `json:"succeeded"`
			Failed    int64              `json:"failed"`
			Results   []*model.RunResult `json:"results"`
		}{len(inputs), succeeded.Load(), failed.Load(), results}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

// collectInputs merges positional args with the lines of --file. Blank lines
// and #-comments in the file are skipped.
func collectInputs(args []string) ([]string, error) {
	inputs := append([]string{}, args...)
	if batchFile == "" {
		return inputs, nil
	}

	f, err := os.Open(batchFile)
	if err != nil {
		return nil, eris.Wrap(err, "open batch file")
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "read batch file")
	}
	return inputs, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with one input per line")
	batchCmd.Flags().StringVar(&batchDataset, "dataset", "", "base dataset name (default \"batch\")")
	rootCmd.AddCommand(batchCmd)
}
