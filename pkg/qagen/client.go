// Package qagen wraps the question/answer generation service. The pipeline
// treats it as an opaque collaborator: one chunk in, zero or more scored
// candidate pairs out.
package qagen

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/config"
	"github.com/corpusforge/datagen/internal/model"
)

// Client generates candidate instruction/output pairs from a content chunk.
// A per-chunk failure is returned as an error and skipped by the caller; it
// is never fatal to the run.
type Client interface {
	Generate(ctx context.Context, chunk model.Chunk) ([]model.CandidatePair, error)
}

const systemPrompt = `You create instruction/output pairs for supervised fine-tuning.
Given a passage, produce self-contained questions answerable from the passage alone,
each with a complete answer. Respond with a JSON array only, no prose:
[{"instruction": "...", "output": "...", "quality": 0.0-1.0, "confidence": 0.0-1.0}]`

// sdkClient implements Client against the Anthropic Messages API.
type sdkClient struct {
	client sdk.Client
	cfg    config.GenerationConfig
}

// NewClient creates a generation client from config.
func NewClient(cfg config.GenerationConfig) Client {
	return &sdkClient{
		client: sdk.NewClient(option.WithAPIKey(cfg.Key)),
		cfg:    cfg,
	}
}

func (c *sdkClient) Generate(ctx context.Context, chunk model.Chunk) ([]model.CandidatePair, error) {
	maxPairs := c.cfg.MaxPairsPerChunk
	if maxPairs <= 0 {
		maxPairs = 5
	}

	var sb strings.Builder
	sb.WriteString("Generate at most ")
	sb.WriteString(strconv.Itoa(maxPairs))
	sb.WriteString(" pairs from this passage:\n\n")
	sb.WriteString(chunk.Content)

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(sb.String())),
		},
		Temperature: sdk.Float(c.cfg.Temperature),
	})
	if err != nil {
		return nil, eris.Wrap(err, "qagen: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	pairs, err := ParseCandidates(text.String())
	if err != nil {
		return nil, eris.Wrapf(err, "qagen: parse response for chunk %d", chunk.Seq)
	}

	now := time.Now().UTC()
	for i := range pairs {
		pairs[i].ResourceID = chunk.ResourceID
		pairs[i].GeneratedAt = now
		pairs[i].Method = "llm_generated"
	}

	zap.L().Debug("qagen: chunk generated",
		zap.String("resource_id", chunk.ResourceID),
		zap.Int("chunk", chunk.Seq),
		zap.Int("pairs", len(pairs)),
	)
	return pairs, nil
}

// rawCandidate is the wire shape the model is asked to emit.
type rawCandidate struct {
	Instruction string   `json:"instruction"`
	Input       string   `json:"input"`
	Output      string   `json:"output"`
	Quality     *float64 `json:"quality"`
	Confidence  float64  `json:"confidence"`
}

// ParseCandidates extracts a JSON candidate array from model output,
// tolerating fenced code blocks and surrounding prose.
func ParseCandidates(text string) ([]model.CandidatePair, error) {
	payload := extractJSONArray(text)
	if payload == "" {
		return nil, eris.New("no JSON array in response")
	}

	var raw []rawCandidate
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, eris.Wrap(err, "unmarshal candidates")
	}

	pairs := make([]model.CandidatePair, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Instruction) == "" || strings.TrimSpace(r.Output) == "" {
			continue
		}
		pairs = append(pairs, model.CandidatePair{
			Instruction: r.Instruction,
			Input:       r.Input,
			Output:      r.Output,
			Quality:     r.Quality,
			Confidence:  r.Confidence,
		})
	}
	return pairs, nil
}

// extractJSONArray returns the outermost [...] span in text, stripping any
// markdown fences around it.
func extractJSONArray(text string) string {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
