// Package ollama implements the local model backend against the Ollama
// chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ragchat/internal/domain"
)

// Backend calls POST {base}/api/chat on a local Ollama server.
type Backend struct {
	baseURL string
	model   string
	client  *http.Client
}

// Config configures the local backend.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

func New(cfg Config) *Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1:8b"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 120 * time.Second
	}
	return &Backend{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}
}

func (b *Backend) Name() string { return "local" }

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []domain.Turn  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options"`
}

type chatResponse struct {
	Message domain.Turn `json:"message"`
}

// Complete sends the message sequence and returns the model's reply.
func (b *Backend) Complete(ctx context.Context, messages []domain.Turn) (string, error) {
	reqBody := chatRequest{
		Model:    b.model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": 0.3,
			"top_p":       0.9,
			"num_predict": 1000,
		},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %s", resp.Status)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return out.Message.Content, nil
}
