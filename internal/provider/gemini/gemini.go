// Package gemini implements provider.Generator against the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/voicebot/internal/config"
	"github.com/nadzzz/voicebot/internal/extract"
	"github.com/nadzzz/voicebot/internal/provider"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// maxResponseBytes bounds how much of a provider body is read.
const maxResponseBytes = 10 << 20

// Client calls the Gemini API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a Gemini client from config.
func New(cfg config.ProviderConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: base,
		// A zero timeout leaves provider calls unbounded.
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "gemini" }

type content struct {
	Parts []provider.Part `json:"parts"`
}

type request struct {
	Contents         []content                 `json:"contents"`
	GenerationConfig provider.GenerationConfig `json:"generationConfig"`
}

// Generate posts the request to models/{model}:generateContent.
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	bodyBytes, err := json.Marshal(request{
		Contents:         []content{{Parts: req.Parts}},
		GenerationConfig: req.Config,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("gemini returned non-200 status",
			"status", resp.StatusCode,
			"model", c.model,
			"body", truncate(respBody, 512))
	}

	slog.Debug("gemini response received", "status", resp.StatusCode, "bytes", len(respBody))
	return &provider.Response{
		Status: resp.StatusCode,
		Body:   extract.Decode(respBody),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
