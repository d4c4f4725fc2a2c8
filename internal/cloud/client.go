// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the Together AI chat completions client.
//
// Together exposes an OpenAI-compatible API, so requests go through
// go-openai pointed at the Together base URL. One call carries the whole
// conversation and returns exactly one reply; there is no streaming and no
// retry.
package cloud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/juwamardott/chatbot/internal/model"
)

// Configuration constants for the Together API.
const (
	// DefaultBaseURL is the base URL for the Together API. The client posts
	// to DefaultBaseURL + "/chat/completions".
	DefaultBaseURL = "https://api.together.xyz/v1"

	// DefaultModel is the model every request names.
	DefaultModel = "meta-llama/Llama-Vision-Free"
)

// Client is a client for the Together chat completions endpoint.
// It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger

	api *openai.Client
}

// NewClient creates a client with the given API key. It fails with
// ErrNotConfigured when the key is empty after trimming, so a client that
// cannot authenticate is never built.
func NewClient(apiKey string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: newHTTPClient(),
		logger:     zerolog.Nop(),
	}
	c.rebuild()
	return c, nil
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	c.rebuild()
	return c
}

// WithModel overrides the model identifier.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// WithHTTPClient replaces the HTTP client used for requests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	c.rebuild()
	return c
}

// WithTimeout bounds every request. Zero means no bound.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	hc := *c.httpClient
	hc.Timeout = timeout
	c.httpClient = &hc
	c.rebuild()
	return c
}

// WithLogger sets the logger used for request and response lines.
func (c *Client) WithLogger(logger zerolog.Logger) *Client {
	c.logger = logger
	c.rebuild()
	return c
}

func (c *Client) rebuild() {
	cfg := openai.DefaultConfig(c.apiKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = wrapTransport(c.httpClient, c.logger)
	c.api = openai.NewClientWithConfig(cfg)
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// KeyFingerprint returns a short SHA-256 prefix identifying the key.
func (c *Client) KeyFingerprint() string {
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete sends the conversation and returns the first choice's message
// exactly as received. Any non-2xx status, transport failure or body
// without a first choice is an error.
func (c *Client) Complete(ctx context.Context, turns []model.Turn) (model.Turn, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toMessages(turns),
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return model.Turn{}, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return model.Turn{}, errors.Wrap(ErrMalformedResponse, "no choices")
	}
	msg := resp.Choices[0].Message
	reply := model.NewTurn(model.Role(msg.Role), msg.Content)
	if reply.IsZero() {
		return model.Turn{}, errors.Wrap(ErrMalformedResponse, "first choice has no message")
	}

	if !reply.Role.IsKnown() {
		c.logger.Warn().Str("role", msg.Role).Msg("reply has an unknown role")
	}

	c.logger.Debug().
		Str("id", resp.ID).
		Str("model", c.model).
		Int("total_tokens", resp.Usage.TotalTokens).
		Dur("duration", time.Since(start)).
		Msg("completion received")

	return reply, nil
}

func toMessages(turns []model.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, len(turns))
	for i, t := range turns {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Content,
		}
	}
	return msgs
}
