// Package textnorm canonicalizes raw transaction descriptions into the token
// strings the feature encoder is fit on.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// nonWord matches anything that is not a letter, number, underscore or whitespace.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// noise is removed after lowercasing. "aplpay " is the Apple Pay prefix some
// issuers put in front of the payee; "com" is what is left of ".com" once
// punctuation has been stripped.
var noise = []string{"aplpay ", "com"}

// Normalize turns a raw description into a lowercase, single-spaced string
// free of punctuation, digit-bearing tokens and single-rune tokens.
//
// Removing noise substrings can expose new single-rune tokens or new noise
// ("ccomom" becomes "com"), so the pass repeats until nothing changes. Every
// pass that changes its input strictly shortens it, so the loop terminates
// and Normalize(Normalize(s)) == Normalize(s).
func Normalize(description string) string {
	s := description
	for {
		next := pass(s)
		if next == s {
			return next
		}
		s = next
	}
}

func pass(s string) string {
	s = nonWord.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, tok := range tokens {
		if hasDigit(tok) || utf8.RuneCountInString(tok) == 1 {
			continue
		}
		kept = append(kept, tok)
	}

	s = strings.ToLower(strings.Join(kept, " "))
	for _, n := range noise {
		s = strings.ReplaceAll(s, n, "")
	}

	return strings.Join(strings.Fields(s), " ")
}

func hasDigit(tok string) bool {
	return strings.IndexFunc(tok, unicode.IsDigit) >= 0
}

// NormalizeAll applies Normalize to every description.
func NormalizeAll(descriptions []string) []string {
	out := make([]string, len(descriptions))
	for i, d := range descriptions {
		out[i] = Normalize(d)
	}
	return out
}
