// Package ingest turns raw inputs into content resources. An input is plain
// text, a filesystem path, a URL, or a chat message; the ingestor detects
// which, extracts readable text, and wraps it with provenance metadata.
// Extraction failures never abort a run: they come back as resources whose
// metadata carries the error.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/model"
	"github.com/corpusforge/datagen/internal/scrape"
)

// Input is a single unit of work for the ingestor. Message takes precedence
// over Text; Type may be left as SourceAuto for detection.
type Input struct {
	Text    string
	Type    model.SourceType
	Message *model.ChatMessage
}

// ChatProcessor extracts content from a chat message. Implemented by the
// telegram processor; defined here so ingest does not depend on it.
type ChatProcessor interface {
	Process(ctx context.Context, msg *model.ChatMessage) (string, model.ResourceMeta, error)
}

// Ingestor routes inputs to the right extractor and assembles resources.
type Ingestor struct {
	files *FileExtractor
	web   scrape.Scraper
	chat  ChatProcessor
}

// New creates an Ingestor. web and chat may be nil; inputs of those types
// then produce error resources instead of panics.
func New(files *FileExtractor, web scrape.Scraper, chat ChatProcessor) *Ingestor {
	return &Ingestor{files: files, web: web, chat: chat}
}

// Detect classifies a raw input. Chat messages are detected by the caller
// populating Input.Message; for text this checks URL shape and then the
// filesystem, falling back to plain text.
func Detect(in Input) model.SourceType {
	if in.Type != "" && in.Type != model.SourceAuto {
		return in.Type
	}
	if in.Message != nil {
		return model.SourceChat
	}
	s := strings.TrimSpace(in.Text)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return model.SourceWeb
	}
	if looksLikePath(s) {
		if _, err := os.Stat(s); err == nil {
			return model.SourceFile
		}
	}
	return model.SourceText
}

// looksLikePath guards os.Stat against arbitrary prose: long multi-line text
// is never a path. Anything short and single-line may be one, spaces and all;
// the filesystem check decides.
func looksLikePath(s string) bool {
	return s != "" && len(s) <= 512 && !strings.ContainsAny(s, "\n\r")
}

// Ingest processes one input into a resource. The returned resource is never
// nil; failure is reported through its metadata status.
func (i *Ingestor) Ingest(ctx context.Context, in Input) *model.Resource {
	srcType := Detect(in)
	res := &model.Resource{
		ID:      ResourceID(srcType, in.locator()),
		Type:    srcType,
		Locator: in.locator(),
	}

	log := zap.L().With(
		zap.String("resource_id", res.ID),
		zap.String("type", string(srcType)),
	)

	var content string
	var meta model.ResourceMeta
	var err error

	switch srcType {
	case model.SourceText:
		content = strings.TrimSpace(in.Text)
		meta.Title = titleFromText(content)
		if content == "" {
			err = errEmptyInput
		}
	case model.SourceFile:
		content, meta, err = i.files.Extract(ctx, strings.TrimSpace(in.Text))
	case model.SourceWeb:
		content, meta, err = i.scrapeWeb(ctx, strings.TrimSpace(in.Text))
	case model.SourceChat:
		content, meta, err = i.processChat(ctx, in.Message)
	default:
		err = eris.Errorf("ingest: unsupported source type %q", srcType)
	}

	meta.ProcessedAt = time.Now().UTC()
	meta.ContentLength = len(content)
	if err != nil {
		meta.Status = model.StatusError
		meta.ErrorDetail = err.Error()
		log.Warn("ingest: extraction failed", zap.Error(err))
	} else {
		meta.Status = model.StatusSuccess
		log.Info("ingest: resource ready", zap.Int("content_length", len(content)))
	}

	res.Content = content
	res.Metadata = meta
	return res
}

func (i *Ingestor) scrapeWeb(ctx context.Context, rawURL string) (string, model.ResourceMeta, error) {
	if i.web == nil {
		return "", model.ResourceMeta{}, eris.New("ingest: web scraping not configured")
	}
	page, err := i.web.Scrape(ctx, rawURL)
	if err != nil {
		return "", model.ResourceMeta{}, err
	}
	meta := model.ResourceMeta{
		Title:        page.Title,
		Author:       page.Author,
		SourceDetail: rawURL,
		Extra:        page.Extra,
	}
	return page.Content, meta, nil
}

func (i *Ingestor) processChat(ctx context.Context, msg *model.ChatMessage) (string, model.ResourceMeta, error) {
	if msg == nil {
		return "", model.ResourceMeta{}, errEmptyInput
	}
	if i.chat == nil {
		return "", model.ResourceMeta{}, eris.New("ingest: chat processing not configured")
	}
	return i.chat.Process(ctx, msg)
}

// locator is the stable string identifying the input source, used for
// hashing and provenance.
func (in Input) locator() string {
	if in.Message != nil {
		return fmt.Sprintf("chat_message_%d", in.Message.MessageID)
	}
	return strings.TrimSpace(in.Text)
}

// ResourceID builds the canonical resource identifier:
// <type>_<YYYYMMDD_HHMMSS>_<first 8 hex of sha256(locator)>.
func ResourceID(t model.SourceType, locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return fmt.Sprintf("%s_%s_%s",
		t,
		time.Now().Format("20060102_150405"),
		hex.EncodeToString(sum[:])[:8],
	)
}

// titleFromText derives a short title from the first line of the content.
func titleFromText(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	const maxTitle = 80
	if len(line) > maxTitle {
		line = line[:maxTitle]
	}
	return line
}

var errEmptyInput = eris.New("ingest: empty input")
