// Package service wires extraction, chunking and index building into
// one document ingestion path shared by the CLI, the watcher and the
// chat entrypoint.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ragchat/internal/chunker"
	"ragchat/internal/domain"
	"ragchat/internal/extract"
	"ragchat/internal/index"
)

// Ingestor turns a document file into a persisted embedding index.
type Ingestor struct {
	extractor domain.Extractor
	builder   *index.Builder
	chunkMax  int
}

// Result is the outcome of ingesting one document.
type Result struct {
	DocID string
	Index *index.Index
	Text  string // full extracted text, page order
}

func NewIngestor(extractor domain.Extractor, builder *index.Builder, chunkMax int) *Ingestor {
	if chunkMax <= 0 {
		chunkMax = 500
	}
	return &Ingestor{extractor: extractor, builder: builder, chunkMax: chunkMax}
}

// Supported reports whether path is a document this ingestor can read.
func (g *Ingestor) Supported(path string) bool {
	return g.extractor.Supported(path)
}

// Ingest extracts path, chunks every page, and ensures a persisted
// index exists for the document. Pages without extractable text yield
// no chunks; the document stays partially searchable.
func (g *Ingestor) Ingest(ctx context.Context, path string) (*Result, error) {
	if !g.extractor.Supported(path) {
		return nil, fmt.Errorf("unsupported document: %s", path)
	}
	pages, err := g.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	docID := extract.DocumentID(path)

	ch := chunker.NewSentenceChunker(docID, g.chunkMax)
	var chunks []domain.Chunk
	var text strings.Builder
	for _, page := range pages {
		pageChunks := ch.Chunk(page.Text, page.Number)
		if len(pageChunks) == 0 {
			log.Printf("ingest: page %d of %s has no usable text", page.Number, docID)
			continue
		}
		chunks = append(chunks, pageChunks...)
		text.WriteString(page.Text)
		text.WriteString("\n")
	}

	ix, err := g.builder.Ensure(ctx, docID, chunks)
	if err != nil {
		return nil, err
	}
	return &Result{DocID: docID, Index: ix, Text: text.String()}, nil
}
