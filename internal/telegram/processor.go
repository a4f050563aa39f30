// Package telegram extracts content from bot messages: plain text verbatim,
// attached documents through the file extractors, photos via their caption.
package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/model"
	"github.com/corpusforge/datagen/pkg/telegram"
)

const placeholderPhoto = "[Photo received: no caption text]"

// Processor turns chat messages into resource content. It implements
// ingest.ChatProcessor.
type Processor struct {
	client  *telegram.Client
	files   *ingest.FileExtractor
	tempDir string
}

// NewProcessor creates a Processor. client may be unconfigured; document
// messages then fail with a structured error while text still works.
func NewProcessor(client *telegram.Client, files *ingest.FileExtractor, tempDir string) *Processor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Processor{client: client, files: files, tempDir: tempDir}
}

// Process extracts content from one message. Precedence: attached document,
// then photo, then message text.
func (p *Processor) Process(ctx context.Context, msg *model.ChatMessage) (string, model.ResourceMeta, error) {
	meta := model.ResourceMeta{
		SourceDetail: fmt.Sprintf("telegram_message_%d", msg.MessageID),
		Extra:        map[string]string{},
	}
	if msg.Chat != nil {
		meta.Author = msg.Chat.Username
	}

	switch {
	case msg.Document != nil:
		return p.processDocument(ctx, msg, meta)
	case len(msg.Photo) > 0:
		meta.Extra["attachment"] = "photo"
		if msg.Caption != "" {
			return msg.Caption, meta, nil
		}
		return placeholderPhoto, meta, nil
	case msg.Text != "":
		return msg.Text, meta, nil
	}
	return "", meta, eris.New("telegram: message has no extractable content")
}

// processDocument downloads the attachment to a temp file and runs it through
// the file extractors. The temp copy is removed before returning.
func (p *Processor) processDocument(ctx context.Context, msg *model.ChatMessage, meta model.ResourceMeta) (string, model.ResourceMeta, error) {
	doc := msg.Document
	meta.Title = doc.FileName
	meta.Extra["attachment"] = "document"
	meta.Extra["mime_type"] = doc.MIMEType

	if p.client == nil || !p.client.Configured() {
		return "", meta, eris.Wrap(telegram.ErrNoToken, "telegram: cannot download document")
	}

	data, err := p.client.DownloadFile(ctx, doc.FileID)
	if err != nil {
		return "", meta, eris.Wrap(err, "telegram: download document")
	}

	path, err := p.writeTemp(doc.FileName, data)
	if err != nil {
		return "", meta, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			zap.L().Warn("telegram: temp file cleanup failed",
				zap.String("path", path), zap.Error(rmErr))
		}
	}()

	content, fileMeta, err := p.files.Extract(ctx, path)
	if err != nil {
		return "", meta, eris.Wrap(err, "telegram: extract document")
	}
	// Keep message provenance; merge format details from the file pass.
	for k, v := range fileMeta.Extra {
		meta.Extra[k] = v
	}
	if msg.Caption != "" {
		content = msg.Caption + "\n\n" + content
	}
	return content, meta, nil
}

// writeTemp persists the download under its original name so extension
// dispatch in the file extractor works.
func (p *Processor) writeTemp(fileName string, data []byte) (string, error) {
	if err := os.MkdirAll(p.tempDir, 0o755); err != nil {
		return "", eris.Wrap(err, "telegram: create temp dir")
	}
	name := filepath.Base(fileName)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "attachment"
	}
	path := filepath.Join(p.tempDir, fmt.Sprintf("%d_%s", os.Getpid(), name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrap(err, "telegram: write temp file")
	}
	return path, nil
}
