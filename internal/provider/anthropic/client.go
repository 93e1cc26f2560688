// Package anthropic implements models.Provider against the Anthropic
// messages API. Documents are attached as base64 PDF content blocks so the
// model reads them directly; no local text extraction happens first.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pactscan/pactscan/internal/provider"
	"github.com/pactscan/pactscan/pkg/models"
)

const apiVersion = "2023-06-01"

// Config for one tier client.
type Config struct {
	Name      string // tier identifier used in logs and errors
	APIKey    string
	BaseURL   string // default https://api.anthropic.com
	Model     string
	MaxTokens int
	Timeout   time.Duration // per-call ceiling for this tier
}

// Client implements models.Provider for one inference tier.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
	}
}

func (c *Client) Name() string  { return c.cfg.Name }
func (c *Client) Model() string { return c.cfg.Model }

// request/response wire shapes for the messages API.
type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *blockSource `json:"source,omitempty"`
}

type blockSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends the payload and returns the raw model text. Failures are
// *provider.Error; Invoke never retries — retry policy belongs to the
// escalation controller.
func (c *Client) Invoke(ctx context.Context, payload models.PromptPayload) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("provider.invoke.start",
		"req_id", rid,
		"tier", c.cfg.Name,
		"model", c.cfg.Model,
		"mode", payload.Mode,
		"documents", len(payload.Documents),
	)

	blocks := make([]contentBlock, 0, len(payload.Documents)+1)
	for _, d := range payload.Documents {
		blocks = append(blocks, contentBlock{
			Type: "document",
			Source: &blockSource{
				Type:      "base64",
				MediaType: d.MediaType,
				Data:      d.Data,
			},
		})
	}
	blocks = append(blocks, contentBlock{Type: "text", Text: payload.Instructions})

	body, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  []message{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return "", provider.NewError(c.cfg.Name, provider.KindMalformedResponse, fmt.Errorf("encode request: %w", err))
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", provider.NewError(c.cfg.Name, provider.KindUnavailable, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		provErr := provider.Classify(c.cfg.Name, err)
		c.logger.Error("provider.invoke.transport_error",
			"req_id", rid, "tier", c.cfg.Name, "kind", provErr.Kind, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", provErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", provider.NewError(c.cfg.Name, provider.KindMalformedResponse, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		provErr := c.classifyStatus(resp.StatusCode, raw)
		c.logger.Error("provider.invoke.api_error",
			"req_id", rid, "tier", c.cfg.Name, "status", resp.StatusCode, "kind", provErr.Kind,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", provErr
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", provider.NewError(c.cfg.Name, provider.KindMalformedResponse, fmt.Errorf("decode response: %w", err))
	}

	var sb strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", provider.NewError(c.cfg.Name, provider.KindMalformedResponse, fmt.Errorf("response contains no text content"))
	}

	c.logger.Info("provider.invoke.ok",
		"req_id", rid,
		"tier", c.cfg.Name,
		"model", c.cfg.Model,
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func (c *Client) classifyStatus(status int, raw []byte) *provider.Error {
	var ae apiError
	_ = json.Unmarshal(raw, &ae)
	detail := ae.Error.Message
	if detail == "" {
		detail = http.StatusText(status)
	}
	err := fmt.Errorf("status %d: %s", status, detail)

	switch {
	case status == http.StatusTooManyRequests:
		return provider.NewError(c.cfg.Name, provider.KindRateLimited, err)
	case status == http.StatusRequestTimeout:
		return provider.NewError(c.cfg.Name, provider.KindTimeout, err)
	case status >= 500:
		return provider.NewError(c.cfg.Name, provider.KindUnavailable, err)
	default:
		return provider.NewError(c.cfg.Name, provider.KindUnavailable, err)
	}
}

var _ models.Provider = (*Client)(nil)
