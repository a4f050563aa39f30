package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/chunker"
	"github.com/corpusforge/datagen/internal/dataset"
	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/pipeline"
	"github.com/corpusforge/datagen/internal/scrape"
	"github.com/corpusforge/datagen/internal/telegram"
	"github.com/corpusforge/datagen/pkg/qagen"
	"github.com/corpusforge/datagen/pkg/recognition"
	telegrampkg "github.com/corpusforge/datagen/pkg/telegram"
	"github.com/corpusforge/datagen/pkg/youtube"
)

// initPipeline wires all stage dependencies from config and builds the
// Runner shared by the run/batch/serve commands. Optional services come up
// degraded rather than failing startup: media without a recognition URL,
// chat without a bot token.
func initPipeline() *pipeline.Runner {
	recClient := recognition.NewClient(
		cfg.Recognition.URL,
		cfg.Recognition.Key,
		cfg.Recognition.Language,
		time.Duration(cfg.Recognition.TimeoutSecs)*time.Second,
	)
	if cfg.Recognition.URL == "" {
		zap.L().Debug("recognition url not set, audio transcription disabled")
	}

	pdfExtractor := ingest.NewPDFExtractor(cfg.Media.PdfToTextPath)
	mediaConverter := ingest.NewMediaConverter(cfg.Media, recClient)
	files := ingest.NewFileExtractor(pdfExtractor, mediaConverter)

	ytClient := youtube.NewClient(time.Duration(cfg.Scrape.TimeoutSecs) * time.Second)
	chain := scrape.NewChain(
		scrape.NewYouTubeScraper(ytClient),
		scrape.NewLocalScraper(cfg.Scrape),
	)

	botClient := telegrampkg.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIBase)
	if !botClient.Configured() {
		zap.L().Debug("telegram bot token not set, document downloads disabled")
	}
	chat := telegram.NewProcessor(botClient, files, cfg.Media.TempDir)

	ingestor := ingest.New(files, chain, chat)

	var generator qagen.Client
	if cfg.Generation.Key != "" {
		generator = qagen.NewClient(cfg.Generation)
	} else {
		zap.L().Warn("generation key not set, runs will fail at qa_generation")
	}

	builder := dataset.New(cfg.Quality, cfg.Dataset)

	return pipeline.New(ingestor, chunker.New(cfg.Chunker), generator, builder)
}
