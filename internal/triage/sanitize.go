package triage

import (
	"regexp"
	"strings"
)

// Sanitation strips provider meta-commentary before a reply reaches the
// user: think-block markup, bracketed or parenthesised asides, and
// "as an AI" style self-reference.
var (
	tagBlockRe = regexp.MustCompile(`(?is)<[^>]+>.*?</[^>]+>`)
	asideRe    = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	metaRe     = regexp.MustCompile(`(?i)thinking:|let me|i should|as an ai|as a chatbot`)
	spaceRe    = regexp.MustCompile(`[ \t]+`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// Sanitize removes meta-commentary markers from a reply and collapses
// whitespace, keeping line breaks intact. May return the empty string;
// callers substitute a default re-prompt in that case.
func Sanitize(text string) string {
	text = tagBlockRe.ReplaceAllString(text, "")
	text = asideRe.ReplaceAllString(text, "")
	text = metaRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
