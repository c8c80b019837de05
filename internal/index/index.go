// Package index maintains the per-document mapping from chunk text to
// its embedding vector, persisted as one human-inspectable JSON file
// per document.
package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ragchat/internal/domain"
)

// ErrNotFound reports a missing persisted index for a document.
var ErrNotFound = errors.New("index not found")

// Entry is one chunk text with its embedding vector.
type Entry struct {
	Text   string
	Vector domain.Vector
}

// Index maps chunk text to its embedding for one document. Entries keep
// insertion order so ranking tie-breaks stay stable across a round-trip
// through disk. Chunk text doubles as the key: two chunks with
// byte-identical text collapse to one entry, keeping the first
// insertion's position.
type Index struct {
	entries []Entry
	byText  map[string]int
}

func New() *Index {
	return &Index{byText: make(map[string]int)}
}

// Add inserts or replaces the vector for text.
func (ix *Index) Add(text string, vec domain.Vector) {
	if i, ok := ix.byText[text]; ok {
		ix.entries[i].Vector = vec
		return
	}
	ix.byText[text] = len(ix.entries)
	ix.entries = append(ix.entries, Entry{Text: text, Vector: vec})
}

// Entries returns the entries in insertion order. The slice is shared;
// callers must not mutate it.
func (ix *Index) Entries() []Entry { return ix.entries }

func (ix *Index) Len() int { return len(ix.entries) }

// Vector returns the stored vector for text.
func (ix *Index) Vector(text string) (domain.Vector, bool) {
	i, ok := ix.byText[text]
	if !ok {
		return nil, false
	}
	return ix.entries[i].Vector, true
}

// MarshalJSON writes the flat {"chunk text": [v, ...]} object, entries
// in insertion order.
func (ix *Index) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range ix.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Text)
		if err != nil {
			return nil, err
		}
		vec, err := json.Marshal(e.Vector)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(vec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the flat object with a token decoder so file
// order, which is build order, is preserved.
func (ix *Index) UnmarshalJSON(data []byte) error {
	ix.entries = nil
	ix.byText = make(map[string]int)
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("index file: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("index file: non-string key %v", keyTok)
		}
		var vec domain.Vector
		if err := dec.Decode(&vec); err != nil {
			return fmt.Errorf("index file: vector for %q: %w", key, err)
		}
		ix.Add(key, vec)
	}
	_, err = dec.Token() // closing brace
	return err
}

// Store persists one index file per source document under dir,
// identified by the document's filename stem.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(docID string) string {
	return filepath.Join(s.dir, docID+".json")
}

// Exists reports whether a persisted index is present for docID.
func (s *Store) Exists(docID string) bool {
	_, err := os.Stat(s.path(docID))
	return err == nil
}

// Load reads the persisted index for docID, or ErrNotFound.
func (s *Store) Load(docID string) (*Index, error) {
	data, err := os.ReadFile(s.path(docID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
		}
		return nil, err
	}
	ix := New()
	if err := json.Unmarshal(data, ix); err != nil {
		return nil, fmt.Errorf("loading index %s: %w", docID, err)
	}
	return ix, nil
}

// Save writes the index for docID, indented so the file stays readable
// in a text editor.
func (s *Store) Save(docID string, ix *Index) error {
	data, err := json.Marshal(ix)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "    "); err != nil {
		return err
	}
	return os.WriteFile(s.path(docID), pretty.Bytes(), 0o644)
}
