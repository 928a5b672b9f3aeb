package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when no balanced, valid JSON object can be found in a text.
var ErrNoJSONObject = errors.New("no JSON object found")

// ExtractJSONObject returns the first balanced {...} span of s that is valid JSON.
// Models often wrap the object in prose or code fences; braces inside string
// literals are skipped.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		if end := matchBrace(s, start); end > start {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// DecodeJSONObject extracts the first JSON object from a model response and decodes it into T.
func DecodeJSONObject[T any](raw string) (T, error) {
	var out T
	obj, ok := ExtractJSONObject(stripFences(raw))
	if !ok {
		return out, ErrNoJSONObject
	}
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return out, fmt.Errorf("decode json object: %w", err)
	}
	return out, nil
}
