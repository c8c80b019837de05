package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
	"ragchat/internal/extract"
	"ragchat/internal/index"
	"ragchat/internal/service"
)

type fixedProvider struct{}

func (fixedProvider) Embed(ctx context.Context, text string) (domain.Vector, error) {
	return domain.Vector{1, 0}, nil
}

func TestWatchIndexesNewDocument(t *testing.T) {
	docsDir := t.TempDir()
	store, err := index.NewStore(t.TempDir())
	require.NoError(t, err)
	ingestor := service.NewIngestor(extract.New(), index.NewBuilder(fixedProvider{}, store, 2), 500)

	w, err := New(ingestor)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, docsDir) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(docsDir, "fresh.txt")
	require.NoError(t, os.WriteFile(path, []byte("گربه روی حصار است."), 0o644))

	assert.Eventually(t, func() bool {
		return store.Exists("fresh")
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatchSkipsUnsupportedFiles(t *testing.T) {
	docsDir := t.TempDir()
	store, err := index.NewStore(t.TempDir())
	require.NoError(t, err)
	ingestor := service.NewIngestor(extract.New(), index.NewBuilder(fixedProvider{}, store, 2), 500)

	w, err := New(ingestor)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, docsDir) }()

	time.Sleep(100 * time.Millisecond)
	// Editor swap file first, then a real document; only the latter
	// must be indexed.
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "notes.txt.swp"), []byte("junk"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "notes.txt"), []byte("گربه روی حصار است."), 0o644))

	assert.Eventually(t, func() bool {
		return store.Exists("notes")
	}, 3*time.Second, 50*time.Millisecond)
	assert.False(t, store.Exists("notes.txt"), "swap file must not be ingested")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
