package ollama

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

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, domain.RoleSystem, req.Messages[0].Role)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "پاسخ"},
		})
	}))
	defer server.Close()

	b := New(Config{BaseURL: server.URL, Model: "test-model"})
	got, err := b.Complete(context.Background(), []domain.Turn{
		{Role: domain.RoleSystem, Content: "system"},
		{Role: domain.RoleUser, Content: "گربه کجاست"},
	})
	require.NoError(t, err)
	assert.Equal(t, "پاسخ", got)
}

func TestCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	b := New(Config{BaseURL: server.URL})
	_, err := b.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "x"}})
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "local", New(Config{}).Name())
}
