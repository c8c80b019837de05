// Package assembler builds a single context string from ranked results
// under a character budget.
package assembler

import (
	"strings"
	"unicode/utf8"

	"ragchat/internal/domain"
)

// Assemble appends result texts in ranking order, skipping any
// candidate that would push the total past maxChars. A chunk is never
// truncated: downstream models get whole sentences or nothing. Returns
// "" when no result fits or none exists.
func Assemble(results []domain.RankedResult, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 1000
	}
	var sb strings.Builder
	total := 0
	for _, r := range results {
		n := utf8.RuneCountInString(r.Text)
		sep := 0
		if total > 0 {
			sep = 1 // newline between chunks counts against the budget
		}
		if total+sep+n > maxChars {
			break
		}
		if sep == 1 {
			sb.WriteString("\n")
		}
		sb.WriteString(r.Text)
		total += sep + n
	}
	return sb.String()
}
