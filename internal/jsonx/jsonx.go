// Package jsonx recovers structured data from free-text model output.
//
// Generation models frequently wrap JSON payloads in markdown code fences or
// surround them with prose. Decoding happens in two explicit steps: a tolerant
// extraction that isolates the JSON fragment, then a strict decode into the
// caller's type. Callers treat a decode failure as a signal to build their
// deterministic fallback, never as an exception path.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoPayload reports that no JSON fragment could be located in the input.
var ErrNoPayload = errors.New("jsonx: no json payload found")

// Decode extracts the JSON fragment from raw model output and unmarshals it
// into T. The zero value of T is returned alongside any error.
func Decode[T any](raw string) (T, error) {
	var zero T
	fragment := ExtractFragment(raw)
	if fragment == "" {
		return zero, ErrNoPayload
	}
	var decoded T
	if err := json.Unmarshal([]byte(fragment), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

// ExtractFragment strips code fences and surrounding prose, returning the
// substring between the first opening and last closing bracket. It returns an
// empty string when no bracket pair exists.
func ExtractFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
