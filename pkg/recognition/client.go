// Package recognition is a client for a remote speech-to-text service. It
// consumes PCM WAV audio, calibrates against leading ambient noise, and
// returns a transcript. Sentinel errors distinguish "no speech detected"
// from "service unavailable" so callers can degrade differently.
package recognition

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Sentinel errors for the two non-transcript outcomes. Callers map these to
// placeholder strings rather than propagating them.
var (
	ErrNoSpeech           = eris.New("recognition: no clear speech detected")
	ErrServiceUnavailable = eris.New("recognition: service unavailable")
)

// calibrationWindow is the leading slice of audio used to estimate the
// ambient noise floor.
const calibrationWindow = 500 * time.Millisecond

// Client transcribes WAV audio against a remote recognition endpoint.
type Client interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// HTTPClient implements Client over a simple HTTP API: the WAV payload is
// POSTed and the response carries transcript alternatives.
type HTTPClient struct {
	url      string
	key      string
	language string
	http     *http.Client
}

// NewClient creates a recognition client. timeout bounds the full request;
// a timeout is reported as service unavailability, not a run abort.
func NewClient(url, key, language string, timeout time.Duration, opts ...Option) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &HTTPClient{
		url:      url,
		key:      key,
		language: language,
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// transcribeResponse is the service's wire format.
type transcribeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe reads the WAV file, runs ambient-noise calibration, and sends
// the audio for recognition. Audio whose energy never rises above the
// calibrated floor short-circuits to ErrNoSpeech without a network call.
func (c *HTTPClient) Transcribe(ctx context.Context, wavPath string) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", eris.Wrap(err, "recognition: read audio")
	}

	wav, err := parseWAV(data)
	if err != nil {
		return "", eris.Wrap(err, "recognition: parse audio")
	}

	if !wav.hasSpeechAbove(ambientFloor(wav, calibrationWindow)) {
		return "", ErrNoSpeech
	}

	if c.url == "" {
		return "", ErrServiceUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", eris.Wrap(err, "recognition: create request")
	}
	req.Header.Set("Content-Type", "audio/wav")
	q := req.URL.Query()
	q.Set("lang", c.language)
	if c.key != "" {
		q.Set("key", c.key)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("recognition: request failed", zap.Error(err))
		return "", ErrServiceUnavailable
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrServiceUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("recognition: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", eris.Wrap(err, "recognition: read response")
	}

	var tr transcribeResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", eris.Wrap(err, "recognition: decode response")
	}

	var sb bytes.Buffer
	for _, r := range tr.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.Alternatives[0].Transcript)
	}
	if sb.Len() == 0 {
		return "", ErrNoSpeech
	}
	return sb.String(), nil
}

// wavAudio holds decoded 16-bit PCM samples.
type wavAudio struct {
	sampleRate int
	samples    []int16
}

// parseWAV decodes a RIFF/WAVE file containing 16-bit PCM data. Only the
// canonical format produced by the media converter is supported.
func parseWAV(data []byte) (*wavAudio, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, eris.New("not a RIFF/WAVE file")
	}

	var sampleRate int
	var bitsPerSample int
	var pcm []byte

	// Walk chunks: fmt describes the encoding, data carries samples.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size >= 16 {
				sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
				bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			}
		case "data":
			pcm = data[body : body+size]
		}
		off = body + size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if sampleRate == 0 || pcm == nil {
		return nil, eris.New("missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return nil, eris.Errorf("unsupported bit depth %d", bitsPerSample)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i : 2*i+2]))
	}
	return &wavAudio{sampleRate: sampleRate, samples: samples}, nil
}

// ambientFloor estimates the noise floor as the RMS of the leading window.
func ambientFloor(w *wavAudio, window time.Duration) float64 {
	n := int(float64(w.sampleRate) * window.Seconds())
	if n > len(w.samples) {
		n = len(w.samples)
	}
	if n == 0 {
		return 0
	}
	return rms(w.samples[:n])
}

// hasSpeechAbove reports whether any later window's energy clearly exceeds
// the ambient floor.
func (w *wavAudio) hasSpeechAbove(floor float64) bool {
	if len(w.samples) == 0 {
		return false
	}
	// Windows of 100ms, compared against 2x the floor with a small absolute
	// minimum so near-silent files don't pass on all-zero floors.
	win := w.sampleRate / 10
	if win == 0 {
		win = len(w.samples)
	}
	threshold := math.Max(floor*2, 100)
	for start := 0; start < len(w.samples); start += win {
		end := start + win
		if end > len(w.samples) {
			end = len(w.samples)
		}
		if rms(w.samples[start:end]) > threshold {
			return true
		}
	}
	return false
}

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}
