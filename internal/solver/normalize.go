package solver

import (
	"strings"
	"unicode"
)

// Normalizer cleans raw OCR output into a canonical candidate string:
// whitespace is stripped and only runes from the allowed set survive.
// Normalization is idempotent and never fails; an input with no valid
// characters yields the empty string, which the voter filters out.
type Normalizer struct {
	allowed map[rune]bool
}

// NewNormalizer creates a normalizer keeping only the given characters
func NewNormalizer(charset string) *Normalizer {
	allowed := make(map[rune]bool, len(charset))
	for _, r := range charset {
		if !unicode.IsSpace(r) {
			allowed[r] = true
		}
	}
	return &Normalizer{allowed: allowed}
}

// Normalize produces the canonical form of a raw OCR string
func (n *Normalizer) Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range strings.TrimSpace(raw) {
		if n.allowed[r] {
			b.WriteRune(r)
		}
	}

	return b.String()
}
