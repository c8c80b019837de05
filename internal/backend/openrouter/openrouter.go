// Package openrouter implements the remote model backend against an
// OpenRouter-compatible chat completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ragchat/internal/domain"
)

// Backend calls POST {base}/chat/completions with Bearer auth.
type Backend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config configures the remote backend. APIKey and BaseURL are
// required; a missing credential fails construction, not first use.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func New(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is not set")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("openrouter: base URL is not set")
	}
	if cfg.Model == "" {
		cfg.Model = "mistralai/mistral-small-3.1-24b-instruct:free"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &Backend{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

func (b *Backend) Name() string { return "remote" }

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []domain.Turn `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message domain.Turn `json:"message"`
	} `json:"choices"`
}

// Complete sends the message sequence and returns the first choice.
func (b *Backend) Complete(ctx context.Context, messages []domain.Turn) (string, error) {
	data, err := json.Marshal(completionRequest{Model: b.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "http://localhost")
	req.Header.Set("X-Title", "ragchat")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openrouter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter returned %s", resp.Status)
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openrouter returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
