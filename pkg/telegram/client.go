// Package telegram is a minimal Bot API client covering the file-download
// surface needed to process forwarded documents and photos.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNoToken is returned when the client was constructed without a bot token.
var ErrNoToken = eris.New("telegram: bot token not configured")

// Client downloads files from the Telegram Bot API.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

// NewClient creates a Client. apiBase defaults to the public Bot API host and
// exists as a parameter so tests can point at a local server.
func NewClient(token, apiBase string) *Client {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &Client{
		token:   token,
		apiBase: apiBase,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether a bot token is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

// getFileResponse is the Bot API envelope for getFile.
type getFileResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		FileID   string `json:"file_id"`
		FilePath string `json:"file_path"`
		FileSize int64  `json:"file_size"`
	} `json:"result"`
}

// DownloadFile resolves a file_id to a server path via getFile, then fetches
// the file bytes.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNoToken
	}

	path, err := c.filePath(ctx, fileID)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/file/bot%s/%s", c.apiBase, c.token, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "telegram: create download request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "telegram: download file")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("telegram: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, eris.Wrap(err, "telegram: read file body")
	}
	return data, nil
}

func (c *Client) filePath(ctx context.Context, fileID string) (string, error) {
	u := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", c.apiBase, c.token, url.QueryEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", eris.Wrap(err, "telegram: create getFile request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "telegram: getFile")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", eris.Wrap(err, "telegram: read getFile response")
	}

	var fr getFileResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return "", eris.Wrap(err, "telegram: decode getFile response")
	}
	if !fr.OK {
		return "", eris.Errorf("telegram: getFile failed: %s", fr.Description)
	}
	if fr.Result.FilePath == "" {
		return "", eris.New("telegram: getFile returned empty file_path")
	}
	return fr.Result.FilePath, nil
}
