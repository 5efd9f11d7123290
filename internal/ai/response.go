package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// maxResponseBytes bounds what DecodeJSON will look at; classifier answers are a few dozen bytes
const maxResponseBytes = 64 << 10

var (
	// ErrEmptyResponse is returned for a blank model answer
	ErrEmptyResponse = errors.New("empty model response")
	// ErrNoJSON is returned when no repair yields decodable JSON
	ErrNoJSON = errors.New("no decodable JSON in model response")
)

var (
	fencedBlock   = regexp.MustCompile("(?s)```(?:json|js)?\\s*(.*?)\\s*```")
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	bareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	lineComment   = regexp.MustCompile(`(?m)\s//[^"\n]*$`)
	blockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// repair rewrites a model answer into something closer to plain JSON.
// Repairs run in order, each on the previous one's output.
type repair struct {
	name  string
	apply func(string) string
}

var repairs = []repair{
	{"unfence", unfence},
	{"fix syntax", fixSyntax},
	{"extract", extractValue},
}

// DecodeJSON decodes a model answer into T. Models wrap JSON in code fences,
// add prose around it, leave trailing commas or bare keys; each repair is
// tried until one decodes.
func DecodeJSON[T any](text string) (T, error) {
	var zero T
	if len(text) > maxResponseBytes {
		return zero, fmt.Errorf("model response too large (%d bytes, limit %d)", len(text), maxResponseBytes)
	}
	candidate := strings.TrimSpace(text)
	if candidate == "" {
		return zero, ErrEmptyResponse
	}

	v, err := decode[T](candidate)
	if err == nil {
		return v, nil
	}
	firstErr := err

	for _, r := range repairs {
		next := r.apply(candidate)
		if next == "" || next == candidate {
			continue
		}
		candidate = next
		if v, err := decode[T](candidate); err == nil {
			slog.Debug("decoded model response after repair", "repair", r.name)
			return v, nil
		}
	}

	slog.Debug("model response is not JSON", "error", firstErr, "preview", preview(text, 80))
	return zero, ErrNoJSON
}

// DecodeJSONOr is DecodeJSON with a fallback value instead of an error
func DecodeJSONOr[T any](text string, fallback T) T {
	v, err := DecodeJSON[T](text)
	if err != nil {
		return fallback
	}
	return v
}

func decode[T any](s string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}

// unfence returns the body of the first fenced block, or s with wrapping backticks removed
func unfence(s string) string {
	if m := fencedBlock.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(strings.Trim(s, "`"))
}

// fixSyntax drops comments and trailing commas and quotes bare object keys.
// Single quotes are left alone so apostrophes inside strings survive.
func fixSyntax(s string) string {
	s = blockComment.ReplaceAllString(s, "")
	s = lineComment.ReplaceAllString(s, "")
	s = trailingComma.ReplaceAllString(s, "$1")
	s = bareKey.ReplaceAllString(s, `$1"$2":`)
	return strings.TrimSpace(s)
}

// extractValue cuts the outermost object or array out of surrounding prose.
// Whichever opening bracket comes first decides the kind.
func extractValue(s string) string {
	obj := strings.IndexByte(s, '{')
	arr := strings.IndexByte(s, '[')
	open, closer := obj, byte('}')
	if obj < 0 || (arr >= 0 && arr < obj) {
		open, closer = arr, ']'
	}
	if open < 0 {
		return ""
	}
	end := strings.LastIndexByte(s, closer)
	if end <= open {
		return ""
	}
	return s[open : end+1]
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
