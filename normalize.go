package main

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decompose, strip combining marks, recompose. Turns "pré-eclâmpsia" into
// "pre-eclampsia" before the punctuation pass.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// normalizeText canonicalizes free-text diagnosis input: lower-case,
// diacritics stripped, punctuation replaced by spaces, whitespace collapsed.
// Idempotent: normalizeText(normalizeText(s)) == normalizeText(s).
func normalizeText(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))

	stripped, _, err := transform.String(diacriticStripper, lowered)
	if err != nil {
		// Transform failures leave the input usable as-is
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
