package llm

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

	apperrors "github.com/zgojin/tempban-bot/internal/errors"
	"github.com/zgojin/tempban-bot/pkg/config"
	"github.com/zgojin/tempban-bot/pkg/metrics"
)

// Client is an OpenAI-compatible chat-completions client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	log        *slog.Logger
}

// NewClient builds a Client from the llm configuration section.
func NewClient(cfg config.LLMConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		log:        log,
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the conversation to the backend and returns the assistant
// reply, retrying transient failures.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	var reply string
	err := apperrors.WithRetry(ctx, func() error {
		var callErr error
		reply, callErr = c.complete(ctx, req)
		return callErr
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordLLMRequest(status, time.Since(start))

	return reply, err
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: req.Messages})
	if err != nil {
		return "", apperrors.NewProviderError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewProviderError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.NewProviderError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperrors.NewProviderError(err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("backend returned non-200 status",
			slog.Int("status", resp.StatusCode),
			slog.String("model", c.model),
		)
		return "", apperrors.NewProviderError(fmt.Errorf("status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperrors.NewProviderError(err)
	}
	if parsed.Error != nil {
		return "", apperrors.NewProviderError(fmt.Errorf("backend error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.NewProviderError(fmt.Errorf("empty choices in response"))
	}

	return parsed.Choices[0].Message.Content, nil
}
