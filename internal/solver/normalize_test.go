package solver

import (
	"testing"

	"github.com/ameyrk/captcha-solver/internal/config"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(config.DefaultAllowedCharset)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already clean", raw: "Ab3XyZ", want: "Ab3XyZ"},
		{name: "surrounding whitespace", raw: "  Qw8rTp \n", want: "Qw8rTp"},
		{name: "embedded whitespace", raw: "Qw 8r\tTp", want: "Qw8rTp"},
		{name: "newlines", raw: "AB\n12\r\n", want: "AB12"},
		{name: "punctuation stripped", raw: "A-B_1.2!", want: "AB12"},
		{name: "only junk", raw: " \n\t*#@! ", want: ""},
		{name: "empty", raw: "", want: ""},
		{name: "unicode outside set", raw: "Ab≤3Ωyz", want: "Ab3yz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(config.DefaultAllowedCharset)

	inputs := []string{
		"Ab3XyZ",
		"  m1 x3 dRt \n",
		"!!##$$",
		"",
		"data with spaces and 123",
		"ÄÖÜ abc",
	}

	for _, raw := range inputs {
		once := n.Normalize(raw)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", raw, once, twice)
		}
	}
}

func TestNormalizeCustomCharset(t *testing.T) {
	// Digits-only captchas
	n := NewNormalizer("0123456789")

	if got := n.Normalize("a1b2c3"); got != "123" {
		t.Errorf("Normalize = %q, want %q", got, "123")
	}
}

func TestNormalizeWhitespaceNeverAllowed(t *testing.T) {
	// Whitespace in the configured charset must not survive normalization
	n := NewNormalizer("AB C")

	if got := n.Normalize("A B C"); got != "ABC" {
		t.Errorf("Normalize = %q, want %q", got, "ABC")
	}
}
