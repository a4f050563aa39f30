package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusforge/datagen/internal/ingest"
	"github.com/corpusforge/datagen/internal/model"
	telegrampkg "github.com/corpusforge/datagen/pkg/telegram"
)

func TestProcessTextMessage(t *testing.T) {
	p := NewProcessor(nil, ingest.NewFileExtractor(nil, nil), t.TempDir())

	msg := &model.ChatMessage{
		MessageID: 7,
		Text:      "Notes from today's planning session.",
		Chat:      &model.ChatRef{Username: "ops_team"},
	}

	content, meta, err := p.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "Notes from today's planning session.", content)
	assert.Equal(t, "ops_team", meta.Author)
	assert.Equal(t, "telegram_message_7", meta.SourceDetail)
}

func TestProcessPhotoCaption(t *testing.T) {
	p := NewProcessor(nil, ingest.NewFileExtractor(nil, nil), t.TempDir())

	msg := &model.ChatMessage{
		MessageID: 8,
		Photo:     []model.ChatPhoto{{FileID: "p1"}},
		Caption:   "Whiteboard from the strategy workshop",
	}

	content, meta, err := p.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "Whiteboard from the strategy workshop", content)
	assert.Equal(t, "photo", meta.Extra["attachment"])
}

func TestProcessPhotoWithoutCaption(t *testing.T) {
	p := NewProcessor(nil, ingest.NewFileExtractor(nil, nil), t.TempDir())

	msg := &model.ChatMessage{MessageID: 9, Photo: []model.ChatPhoto{{FileID: "p1"}}}

	content, _, err := p.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, placeholderPhoto, content)
}

func TestProcessDocumentWithoutToken(t *testing.T) {
	p := NewProcessor(telegrampkg.NewClient("", ""), ingest.NewFileExtractor(nil, nil), t.TempDir())

	msg := &model.ChatMessage{
		MessageID: 10,
		Document:  &model.ChatDocument{FileID: "d1", FileName: "report.txt"},
	}

	_, meta, err := p.Process(context.Background(), msg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "token"))
	assert.Equal(t, "document", meta.Extra["attachment"])
	assert.Equal(t, "report.txt", meta.Title)
}

func TestProcessDocumentDownloadsAndExtracts(t *testing.T) {
	const fileBody = "Quarterly summary: pipeline throughput doubled."

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "getFile"):
			fmt.Fprint(w, `{"ok": true, "result": {"file_id": "d1", "file_path": "documents/report.txt"}}`)
		case strings.Contains(r.URL.Path, "/file/"):
			fmt.Fprint(w, fileBody)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := telegrampkg.NewClient("test-token", srv.URL)
	p := NewProcessor(client, ingest.NewFileExtractor(nil, nil), t.TempDir())

	msg := &model.ChatMessage{
		MessageID: 11,
		Document:  &model.ChatDocument{FileID: "d1", FileName: "report.txt", MIMEType: "text/plain"},
		Caption:   "Attached the summary",
	}

	content, meta, err := p.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Contains(t, content, "Attached the summary")
	assert.Contains(t, content, "throughput doubled")
	assert.Equal(t, "text/plain", meta.Extra["mime_type"])
	assert.Equal(t, "txt", meta.Extra["format"])
}

func TestProcessEmptyMessage(t *testing.T) {
	p := NewProcessor(nil, ingest.NewFileExtractor(nil, nil), t.TempDir())

	_, _, err := p.Process(context.Background(), &model.ChatMessage{MessageID: 12})
	assert.Error(t, err)
}
