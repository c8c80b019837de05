// Package extract reads source documents and returns their text one
// page at a time, so chunks can carry page provenance.
package extract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"ragchat/internal/domain"
)

// SetLicenseKey registers the unipdf metered license key. PDF
// extraction fails without one; plain-text documents are unaffected.
func SetLicenseKey(key string) error {
	if key == "" {
		return nil
	}
	return license.SetMeteredKey(key)
}

// FileExtractor handles PDF, TXT and MD documents.
type FileExtractor struct{}

func New() *FileExtractor { return &FileExtractor{} }

// Supported reports whether path has an extension this extractor reads.
func (e *FileExtractor) Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// DocumentID returns the identifier for a document path: its filename
// stem, which also names the persisted index file.
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extract returns the document's pages of text. Plain-text formats
// count as a single page. A PDF page that yields no text is logged and
// skipped; the rest of the document stays searchable.
func (e *FileExtractor) Extract(path string) ([]domain.Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []domain.Page{{Number: 1, Text: string(data)}}, nil
	case ".pdf":
		return extractPDF(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func extractPDF(path string) ([]domain.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, err
	}

	var pages []domain.Page
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			log.Printf("extract: page %d of %s unreadable: %v", i, filepath.Base(path), err)
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			log.Printf("extract: page %d of %s unreadable: %v", i, filepath.Base(path), err)
			continue
		}
		text, err := ex.ExtractText()
		if err != nil || strings.TrimSpace(text) == "" {
			log.Printf("extract: page %d of %s has no extractable text", i, filepath.Base(path))
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}
	return pages, nil
}
