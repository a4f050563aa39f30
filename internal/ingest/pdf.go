package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const placeholderPDFUnavailable = "[PDF file detected: text extraction tools unavailable]"

// PDFExtractor extracts text from PDFs page by page with the pdftotext CLI,
// using pdfcpu to validate the file and count pages up front.
type PDFExtractor struct {
	binPath   string
	available bool
}

// NewPDFExtractor creates a PDFExtractor. If binPath is empty, "pdftotext"
// is used. Binary availability is resolved once at construction.
func NewPDFExtractor(binPath string) *PDFExtractor {
	if binPath == "" {
		binPath = "pdftotext"
	}
	_, err := exec.LookPath(binPath)
	if err != nil {
		zap.L().Warn("ingest: pdftotext not found, PDF extraction degraded",
			zap.String("bin", binPath))
	}
	return &PDFExtractor{binPath: binPath, available: err == nil}
}

// Extract returns the PDF's text with per-page markers. A missing pdftotext
// binary degrades to a placeholder; a corrupt PDF is an error.
func (p *PDFExtractor) Extract(ctx context.Context, path string, extra map[string]string) (string, error) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		return "", eris.Wrap(err, "ingest: pdf page count")
	}
	if extra != nil {
		extra["pages"] = strconv.Itoa(pages)
	}

	if !p.available {
		return placeholderPDFUnavailable, nil
	}

	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		text, err := p.extractPage(ctx, path, page)
		if err != nil {
			zap.L().Warn("ingest: pdf page extraction failed",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n\n", page, text)
	}

	if sb.Len() == 0 {
		return "", eris.Errorf("ingest: no extractable text in %d-page pdf", pages)
	}
	return sb.String(), nil
}

func (p *PDFExtractor) extractPage(ctx context.Context, path string, page int) (string, error) {
	n := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, p.binPath, "-f", n, "-l", n, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "pdftotext page %d: %s", page, stderr.String())
	}
	return stdout.String(), nil
}
