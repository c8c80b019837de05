// Package summarizer produces a short extractive summary of a
// document, shown as the chat header after indexing.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	tokenRe        = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	summSentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?؟]+[.!?؟])`)
)

// Summarize ranks sentences by normalized token frequency (stopwords
// excluded) and returns the top maxSentences in their original order.
func Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := summSentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range tokens(sent) {
			if _, ok := stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		toks := tokens(sent)
		s := 0.0
		for _, tok := range toks {
			s += freq[tok]
		}
		if n := float64(len(toks)); n > 0 {
			s /= math.Sqrt(n) // long sentences should not win by length alone
		}
		scores[i] = scored{i, s}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

func tokens(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

var stopwords = toSet(
	// English
	"a", "an", "the", "and", "or", "but", "if", "for", "to", "of", "in",
	"on", "at", "by", "with", "as", "is", "are", "was", "were", "be",
	"it", "this", "that", "these", "those", "from", "so", "such", "into",
	"about", "than", "too", "very", "can", "will", "just", "not", "now",
	// Persian
	"و", "در", "به", "از", "که", "این", "را", "با", "است", "برای",
	"آن", "یک", "تا", "بر", "هم", "نیز", "یا", "اما", "هر", "می",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
