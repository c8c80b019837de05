package tui

import "regexp"

// Model output occasionally carries stray markup or symbols the speech
// layer cannot read; keep Persian and Latin letters, digits, whitespace
// and basic punctuation.
var cleanRe = regexp.MustCompile(`[^\x{0600}-\x{06FF}a-zA-Z0-9\s.,!?؟]`)

// CleanResponse strips characters outside the allowed set from an
// assistant reply before display.
func CleanResponse(response string) string {
	return cleanRe.ReplaceAllString(response, "")
}
