// Package textutil holds the text normalisation shared by the matcher, the
// commitment detector and the keyword interest classifier.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s with surrounding space trimmed.
// A new Caser is created per call because cases.Caser is not safe for concurrent use.
func Fold(s string) string {
	return strings.TrimSpace(cases.Fold().String(s))
}

// Tokens folds s and splits it into runs of letters and digits.
// "Don't care!" becomes ["don", "t", "care"].
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Words folds s and splits it on whitespace and punctuation, keeping
// hyphenated and apostrophe-joined words whole: "co-op, CO!" becomes ["co-op", "co"].
func Words(s string) []string {
	fields := strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "-'"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ContainsPhrase reports whether phrase appears as a contiguous run inside tokens.
// An empty phrase never matches.
func ContainsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j := range phrase {
			if tokens[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// ContainsText tokenizes text and reports whether it appears inside tokens.
func ContainsText(tokens []string, text string) bool {
	return ContainsPhrase(tokens, Tokens(text))
}

// ContainsAny reports whether any of the phrases appears inside tokens.
func ContainsAny(tokens []string, phrases []string) bool {
	for _, p := range phrases {
		if ContainsText(tokens, p) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first phrase that appears inside tokens.
func FirstMatch(tokens []string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if ContainsText(tokens, p) {
			return p, true
		}
	}
	return "", false
}
