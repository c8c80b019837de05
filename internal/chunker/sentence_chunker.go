package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"ragchat/internal/domain"
)

// SentenceChunker splits page text into sentence-aligned chunks bounded
// by a character cap. The cap is a soft target: a single sentence longer
// than the cap is still emitted whole, never truncated mid-sentence.
type SentenceChunker struct {
	maxChars int
	sourceID string
	splitter *regexp.Regexp
}

// sentence terminators cover Latin punctuation plus the Arabic question
// mark used in Persian text.
var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?؟]+[.!?؟])`)

func NewSentenceChunker(sourceID string, maxChars int) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = 500
	}
	return &SentenceChunker{
		maxChars: maxChars,
		sourceID: sourceID,
		splitter: sentenceRe,
	}
}

// Chunk greedily accumulates sentences into chunks of at most maxChars
// characters, tagged with the page number. Empty page text yields nil.
func (c *SentenceChunker) Chunk(pageText string, pageNumber int) []domain.Chunk {
	sentences := c.splitter.FindAllString(pageText, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(pageText)
		if trimmed == "" {
			return nil
		}
		sentences = []string{trimmed}
	}
	var chunks []domain.Chunk
	var buf strings.Builder
	bufLen := 0
	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			chunks = append(chunks, domain.Chunk{Text: text, Page: pageNumber, SourceID: c.sourceID})
		}
		buf.Reset()
		bufLen = 0
	}
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n := utf8.RuneCountInString(s)
		if bufLen > 0 && bufLen+n+1 > c.maxChars {
			flush()
		}
		if bufLen > 0 {
			buf.WriteString(" ")
			bufLen++
		}
		buf.WriteString(s)
		bufLen += n
	}
	flush()
	return chunks
}
