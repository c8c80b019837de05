package index

import (
	"context"
	"log"
	"sync"

	"ragchat/internal/domain"
)

const embedWorkers = 4

// Builder computes and persists document indexes. Embedding calls fan
// out over a fixed worker pool; a failed or empty embedding becomes a
// zero vector so one bad chunk never aborts the batch.
type Builder struct {
	provider    domain.EmbeddingProvider
	store       *Store
	fallbackDim int
}

// NewBuilder creates a Builder. fallbackDim sizes zero-vector
// placeholders when no chunk of a batch embedded successfully.
func NewBuilder(provider domain.EmbeddingProvider, store *Store, fallbackDim int) *Builder {
	if fallbackDim <= 0 {
		fallbackDim = 384
	}
	return &Builder{provider: provider, store: store, fallbackDim: fallbackDim}
}

// Ensure returns the persisted index for docID, building and saving it
// from chunks only when absent. An already-indexed document is success,
// not a cache-invalidation bug: there is no content-hash check, so a
// stale index after a document edit is accepted.
func (b *Builder) Ensure(ctx context.Context, docID string, chunks []domain.Chunk) (*Index, error) {
	if ix, err := b.store.Load(docID); err == nil {
		log.Printf("index: %s already indexed (%d entries)", docID, ix.Len())
		return ix, nil
	}
	ix := b.build(ctx, chunks)
	if err := b.store.Save(docID, ix); err != nil {
		return nil, err
	}
	log.Printf("index: built %s (%d entries)", docID, ix.Len())
	return ix, nil
}

func (b *Builder) build(ctx context.Context, chunks []domain.Chunk) *Index {
	vectors := make([]domain.Vector, len(chunks))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < embedWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := b.provider.Embed(ctx, chunks[i].Text)
				if err != nil || len(vec) == 0 {
					if err != nil {
						log.Printf("index: embedding chunk on page %d failed: %v", chunks[i].Page, err)
					}
					continue // left nil, zero-filled below
				}
				vectors[i] = vec
			}
		}()
	}
	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	dim := b.fallbackDim
	for _, v := range vectors {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	ix := New()
	for i, ch := range chunks {
		vec := vectors[i]
		if len(vec) == 0 {
			vec = make(domain.Vector, dim)
		}
		ix.Add(ch.Text, vec)
	}
	return ix
}
