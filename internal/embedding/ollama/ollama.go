// Package ollama implements the embedding provider against the Ollama
// embeddings API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragchat/internal/domain"
)

// Client calls POST {base}/api/embeddings with bounded retries.
type Client struct {
	baseURL    string
	model      string
	client     *http.Client
	maxRetries int
}

// Config configures the embeddings client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient creates an embeddings client with sane defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding vector for text. Transient server
// failures are retried with exponential backoff before giving up.
func (c *Client) Embed(ctx context.Context, text string) (domain.Vector, error) {
	url := c.baseURL + "/api/embeddings"
	body, err := json.Marshal(embedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay(attempt - 1)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("embeddings endpoint returned %s", resp.Status)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("embeddings endpoint returned %s", resp.Status)
		}
		var out embedResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decoding response: %w", err)
			continue
		}
		if len(out.Embedding) == 0 {
			return nil, errors.New("no embedding returned")
		}
		return out.Embedding, nil
	}
	return nil, lastErr
}

func retryDelay(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
