package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Components receive the
// sub-config they need at construction; nothing reads globals at call time.
type Config struct {
	Chunker     ChunkerConfig     `yaml:"chunker" mapstructure:"chunker"`
	Quality     QualityConfig     `yaml:"quality" mapstructure:"quality"`
	Dataset     DatasetConfig     `yaml:"dataset" mapstructure:"dataset"`
	Generation  GenerationConfig  `yaml:"generation" mapstructure:"generation"`
	Scrape      ScrapeConfig      `yaml:"scrape" mapstructure:"scrape"`
	Media       MediaConfig       `yaml:"media" mapstructure:"media"`
	Recognition RecognitionConfig `yaml:"recognition" mapstructure:"recognition"`
	Telegram    TelegramConfig    `yaml:"telegram" mapstructure:"telegram"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ChunkerConfig configures content chunking.
type ChunkerConfig struct {
	SizeWords    int `yaml:"size_words" mapstructure:"size_words"`
	OverlapWords int `yaml:"overlap_words" mapstructure:"overlap_words"`
	MinChunkLen  int `yaml:"min_chunk_len" mapstructure:"min_chunk_len"`
}

// QualityConfig configures candidate filtering and deduplication.
type QualityConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	// SimilarityThreshold gates the optional near-duplicate matcher. The
	// default dedup path is exact normalized matching; fuzzy matching is an
	// explicit opt-in.
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	FuzzyDedup          bool    `yaml:"fuzzy_dedup" mapstructure:"fuzzy_dedup"`
	HeuristicGate       bool    `yaml:"heuristic_gate" mapstructure:"heuristic_gate"`
}

// DatasetConfig configures dataset persistence.
type DatasetConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// GenerationConfig configures the QA generation service.
type GenerationConfig struct {
	Key              string  `yaml:"key" mapstructure:"key"`
	Model            string  `yaml:"model" mapstructure:"model"`
	MaxTokens        int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxPairsPerChunk int     `yaml:"max_pairs_per_chunk" mapstructure:"max_pairs_per_chunk"`
}

// ScrapeConfig configures web content extraction.
type ScrapeConfig struct {
	TimeoutSecs      int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxContentLength int `yaml:"max_content_length" mapstructure:"max_content_length"`
}

// MediaConfig configures audio/video handling.
type MediaConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	TempDir    string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// PdfToTextPath locates the pdftotext binary for document extraction.
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// RecognitionConfig configures the remote speech recognition service.
type RecognitionConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Key         string `yaml:"key" mapstructure:"key"`
	Language    string `yaml:"language" mapstructure:"language"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// TelegramConfig holds messaging platform credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
	APIBase  string `yaml:"api_base" mapstructure:"api_base"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DATAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("chunker.size_words", 800)
	v.SetDefault("chunker.overlap_words", 100)
	v.SetDefault("chunker.min_chunk_len", 50)
	v.SetDefault("quality.threshold", 0.6)
	v.SetDefault("quality.similarity_threshold", 0.85)
	v.SetDefault("quality.fuzzy_dedup", false)
	v.SetDefault("quality.heuristic_gate", false)
	v.SetDefault("dataset.output_dir", "datasets")
	v.SetDefault("generation.model", "claude-haiku-4-5-20251001")
	v.SetDefault("generation.max_tokens", 2048)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.max_pairs_per_chunk", 5)
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.max_content_length", 15000)
	v.SetDefault("media.ffmpeg_path", "ffmpeg")
	v.SetDefault("media.pdftotext_path", "pdftotext")
	v.SetDefault("media.temp_dir", filepath.Join(os.TempDir(), "datagen"))
	v.SetDefault("recognition.url", "")
	v.SetDefault("recognition.language", "en-US")
	v.SetDefault("recognition.timeout_secs", 60)
	v.SetDefault("telegram.api_base", "https://api.telegram.org")
	v.SetDefault("batch.max_concurrent_runs", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// EnsureDirs creates the directories the pipeline writes to. Called once by
// the process entry point; the config itself performs no side effects.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Dataset.OutputDir, c.Media.TempDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "config: create dir %s", dir)
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
