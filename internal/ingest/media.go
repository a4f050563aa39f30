package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/corpusforge/datagen/internal/config"
	"github.com/corpusforge/datagen/pkg/recognition"
)

// Placeholder contents for the media outcomes that produce no transcript.
// Each is distinct so downstream consumers can tell why text is missing.
const (
	placeholderMediaTools    = "[Media file detected: conversion tools unavailable]"
	placeholderNoSpeech      = "[Audio processed: no clear speech detected]"
	placeholderRecognitionDn = "[Audio detected: speech recognition service unavailable]"
)

// MediaConverter turns audio and video files into transcripts: ffmpeg
// converts to a canonical WAV, then the recognition service transcribes it.
type MediaConverter struct {
	ffmpegPath string
	available  bool
	tempDir    string
	recognizer recognition.Client
}

// NewMediaConverter creates a MediaConverter. ffmpeg availability is
// resolved once here; conversions degrade to a placeholder when it is absent.
func NewMediaConverter(cfg config.MediaConfig, rec recognition.Client) *MediaConverter {
	bin := cfg.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	_, err := exec.LookPath(bin)
	if err != nil {
		zap.L().Warn("ingest: ffmpeg not found, media extraction degraded",
			zap.String("bin", bin))
	}
	return &MediaConverter{
		ffmpegPath: bin,
		available:  err == nil,
		tempDir:    cfg.TempDir,
		recognizer: rec,
	}
}

// Transcribe converts the media file to 16kHz mono PCM WAV and sends it for
// speech recognition. The intermediate WAV is removed before returning. A
// failed conversion degrades to sending the original file as-is.
func (m *MediaConverter) Transcribe(ctx context.Context, path string, isVideo bool, extra map[string]string) (string, error) {
	if extra != nil {
		if isVideo {
			extra["media"] = "video"
		} else {
			extra["media"] = "audio"
		}
	}

	if !m.available || m.recognizer == nil {
		return placeholderMediaTools, nil
	}

	wavPath, err := m.toWAV(ctx, path)
	if err != nil {
		zap.L().Warn("ingest: media conversion failed, transcribing original file",
			zap.String("path", path), zap.Error(err))
		wavPath = path
	} else {
		defer func() {
			if rmErr := os.Remove(wavPath); rmErr != nil {
				zap.L().Warn("ingest: temp wav cleanup failed",
					zap.String("path", wavPath), zap.Error(rmErr))
			}
		}()
	}

	text, err := m.recognizer.Transcribe(ctx, wavPath)
	switch {
	case err == nil:
		return text, nil
	case eris.Is(err, recognition.ErrNoSpeech):
		return placeholderNoSpeech, nil
	case eris.Is(err, recognition.ErrServiceUnavailable):
		return placeholderRecognitionDn, nil
	}
	return "", eris.Wrap(err, "ingest: transcribe media")
}

// toWAV runs ffmpeg to demux and resample into the recognition service's
// expected format: 16kHz, mono, signed 16-bit PCM.
func (m *MediaConverter) toWAV(ctx context.Context, path string) (string, error) {
	if err := os.MkdirAll(m.tempDir, 0o755); err != nil {
		return "", eris.Wrap(err, "ingest: create temp dir")
	}

	base := filepath.Base(path)
	out := filepath.Join(m.tempDir, fmt.Sprintf("%s_%d.wav", base, os.Getpid()))

	cmd := exec.CommandContext(ctx, m.ffmpegPath,
		"-y",
		"-i", path,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// ffmpeg may have written a partial output before failing
		_ = os.Remove(out)
		return "", eris.Wrapf(err, "ingest: ffmpeg convert %s: %s", base, tail(stderr.String(), 400))
	}
	return out, nil
}

// tail returns the last n bytes of s; ffmpeg's useful error is at the end.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
