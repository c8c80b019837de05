package domain

import "context"

// Vector is a fixed-dimension embedding produced by an external model.
// All vectors compared against each other must share dimensionality.
type Vector = []float64

// Chunk is a sentence-aligned segment of extracted document text with
// page provenance. Immutable once created.
type Chunk struct {
	Text     string
	Page     int
	SourceID string
}

// Page is one unit of extracted document text.
type Page struct {
	Number int
	Text   string
}

// RankedResult is a chunk text paired with its similarity to a query.
// Produced transiently by ranking; never persisted.
type RankedResult struct {
	Text       string
	Similarity float64
}

// Role tags a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// EmbeddingProvider converts free text into an embedding vector.
// Implementations call an external model and may fail; batch callers
// substitute zero vectors rather than aborting.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// ModelBackend produces a natural-language completion for an ordered
// message sequence.
type ModelBackend interface {
	Name() string
	Complete(ctx context.Context, messages []Turn) (string, error)
}

// WebSearcher returns relevant text snippets for a live web query, or
// an empty string when nothing relevant was found.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Chunker splits one page of extracted text into bounded chunks.
type Chunker interface {
	Chunk(pageText string, pageNumber int) []Chunk
}

// Extractor reads a document file and returns its pages of text.
type Extractor interface {
	Extract(path string) ([]Page, error)
	Supported(path string) bool
}
