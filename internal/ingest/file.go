package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/corpusforge/datagen/internal/model"
)

// FileExtractor extracts readable text from local files, dispatching on
// extension. Formats it cannot decode degrade to a byte-count placeholder
// rather than failing the resource.
type FileExtractor struct {
	pdf   *PDFExtractor
	media *MediaConverter
}

// NewFileExtractor creates a FileExtractor. pdf and media may be nil; those
// formats then degrade to placeholders.
func NewFileExtractor(pdf *PDFExtractor, media *MediaConverter) *FileExtractor {
	return &FileExtractor{pdf: pdf, media: media}
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true, ".aac": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
}

// Extract reads the file at path and returns its text content plus metadata.
func (f *FileExtractor) Extract(ctx context.Context, path string) (string, model.ResourceMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", model.ResourceMeta{}, eris.Wrap(err, "ingest: stat file")
	}
	if info.IsDir() {
		return "", model.ResourceMeta{}, eris.Errorf("ingest: %s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	meta := model.ResourceMeta{
		Title:        filepath.Base(path),
		SourceDetail: path,
		Extra:        map[string]string{"format": strings.TrimPrefix(ext, ".")},
	}

	var content string
	switch {
	case ext == ".txt" || ext == ".md" || ext == ".json" || ext == ".jsonl":
		content, err = readText(path)
	case ext == ".csv":
		content, err = extractCSV(path)
	case ext == ".xlsx":
		content, err = extractXLSX(path)
	case ext == ".docx":
		content, err = extractDocx(path)
	case ext == ".pdf":
		content, err = f.extractPDF(ctx, path, meta.Extra)
	case audioExts[ext] || videoExts[ext]:
		content, err = f.extractMedia(ctx, path, videoExts[ext], meta.Extra)
	default:
		content, err = extractUnknown(path, info.Size())
	}
	if err != nil {
		return "", meta, err
	}
	return content, meta, nil
}

func (f *FileExtractor) extractPDF(ctx context.Context, path string, extra map[string]string) (string, error) {
	if f.pdf == nil {
		return placeholderPDFUnavailable, nil
	}
	return f.pdf.Extract(ctx, path, extra)
}

func (f *FileExtractor) extractMedia(ctx context.Context, path string, isVideo bool, extra map[string]string) (string, error) {
	if f.media == nil {
		return placeholderMediaTools, nil
	}
	return f.media.Transcribe(ctx, path, isVideo, extra)
}

// readText reads a UTF-8 text file, falling back through common legacy
// single-byte encodings when the bytes are not valid UTF-8.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "ingest: read file")
	}
	return decodeText(data), nil
}

// decodeText decodes bytes as UTF-8, then ISO 8859-1, then Windows-1252.
// The single-byte decoders cannot fail, so this always returns something.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		if out, err := cm.NewDecoder().Bytes(data); err == nil && utf8.Valid(out) {
			zap.L().Debug("ingest: decoded with legacy charset", zap.String("charset", cm.String()))
			return string(out)
		}
	}
	return string(data)
}

// extractCSV re-serializes rows as comma-joined lines so downstream chunking
// sees one record per line. Ragged rows are tolerated.
func extractCSV(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", eris.Wrap(err, "ingest: open csv")
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", eris.Wrap(err, "ingest: parse csv")
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, ", "))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// extractXLSX flattens every sheet into text, one row per line, with a sheet
// heading when the workbook has more than one sheet.
func extractXLSX(path string) (string, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return "", eris.Wrap(err, "ingest: open xlsx")
	}

	var sb strings.Builder
	for _, sheet := range wb.Sheets {
		if len(wb.Sheets) > 1 {
			fmt.Fprintf(&sb, "## %s\n", sheet.Name)
		}
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			line := strings.TrimSpace(strings.Join(cells, ", "))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// extractUnknown tries to treat an unrecognized extension as text; binary
// content degrades to a byte-count placeholder.
func extractUnknown(path string, size int64) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "ingest: read file")
	}
	if utf8.Valid(data) && !looksBinary(data) {
		return string(data), nil
	}
	if out := decodeText(data); !looksBinary([]byte(out)) {
		return out, nil
	}
	return fmt.Sprintf("[Binary file: %d bytes]", size), nil
}

// looksBinary flags content with NUL bytes in its leading window.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > 1024 {
		n = 1024
	}
	for _, b := range data[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
