package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{BaseURL: "https://openrouter.ai/api/v1"})
	assert.Error(t, err)

	_, err = New(Config{APIKey: "sk-test"})
	assert.Error(t, err)
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("HTTP-Referer"))
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some/model", req.Model)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hello"}},
			},
		})
	}))
	defer server.Close()

	b, err := New(Config{BaseURL: server.URL, APIKey: "sk-test", Model: "some/model"})
	require.NoError(t, err)

	got, err := b.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	b, err := New(Config{BaseURL: server.URL, APIKey: "sk-test"})
	require.NoError(t, err)
	_, err = b.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}})
	assert.Error(t, err)
}

func TestCompleteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	b, err := New(Config{BaseURL: server.URL, APIKey: "bad-key"})
	require.NoError(t, err)
	_, err = b.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}})
	assert.Error(t, err)
}
