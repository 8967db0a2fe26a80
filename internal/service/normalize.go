package service

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRunRe   = regexp.MustCompile(` {2,}`)
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText cleans raw extracted page text: control characters other
// than newline are removed, runs of spaces collapse to one, runs of three
// or more newlines collapse to a paragraph break, and the result is
// trimmed. Normalizing twice yields the same result as normalizing once.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	clean := spaceRunRe.ReplaceAllString(b.String(), " ")
	clean = newlineRunRe.ReplaceAllString(clean, "\n\n")
	return strings.TrimSpace(clean)
}
