package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
	"ragchat/internal/extract"
	"ragchat/internal/index"
)

type countingProvider struct {
	mu    sync.Mutex
	calls int
}

func (p *countingProvider) Embed(ctx context.Context, text string) (domain.Vector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return domain.Vector{1, 0, 0}, nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newIngestor(t *testing.T, provider domain.EmbeddingProvider) *Ingestor {
	t.Helper()
	store, err := index.NewStore(t.TempDir())
	require.NoError(t, err)
	return NewIngestor(extract.New(), index.NewBuilder(provider, store, 3), 500)
}

func TestIngestTextDocument(t *testing.T) {
	provider := &countingProvider{}
	g := newIngestor(t, provider)
	path := writeDoc(t, t.TempDir(), "cats.txt", "گربه روی حصار است. سگ در باغ است.")

	res, err := g.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "cats", res.DocID)
	assert.Equal(t, 1, res.Index.Len())
	assert.Contains(t, res.Text, "گربه")
}

func TestIngestSecondRunSkipsEmbedding(t *testing.T) {
	provider := &countingProvider{}
	g := newIngestor(t, provider)
	path := writeDoc(t, t.TempDir(), "cats.txt", "گربه روی حصار است.")

	_, err := g.Ingest(context.Background(), path)
	require.NoError(t, err)
	first := provider.count()
	require.Greater(t, first, 0)

	_, err = g.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first, provider.count())
}

func TestIngestEmptyDocument(t *testing.T) {
	g := newIngestor(t, &countingProvider{})
	path := writeDoc(t, t.TempDir(), "empty.txt", "   ")

	res, err := g.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Index.Len())
}

func TestIngestUnsupported(t *testing.T) {
	g := newIngestor(t, &countingProvider{})
	_, err := g.Ingest(context.Background(), "photo.png")
	assert.Error(t, err)
}
