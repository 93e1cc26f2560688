// Package parse extracts a JSON object from raw model text. Output
// reliability varies by tier and prompt adherence is not guaranteed, so
// extraction falls through three attempts: direct parse, markdown fence
// strip, then a balanced-brace scan over the whole text.
package parse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a hard parse failure. It carries the original text so callers can
// log it for diagnostics.
type Error struct {
	Raw string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("no JSON object found in model output: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Extract returns the first JSON object found in raw.
func Extract(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	// 1) direct parse
	if obj, err := decodeObject(trimmed); err == nil {
		return obj, nil
	}

	// 2) strip a markdown code fence, tolerating surrounding prose
	if inner, ok := stripFence(trimmed); ok {
		if obj, err := decodeObject(inner); err == nil {
			return obj, nil
		}
	}

	// 3) balanced-brace scan
	if span, ok := firstObjectSpan(trimmed); ok {
		obj, err := decodeObject(span)
		if err == nil {
			return obj, nil
		}
		return nil, &Error{Raw: raw, Err: err}
	}

	return nil, &Error{Raw: raw, Err: fmt.Errorf("no opening brace")}
}

func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("JSON value is null")
	}
	return obj, nil
}

// stripFence returns the content of the first ``` fence in s. The fence
// language tag (```json) is skipped along with anything before the fence and
// after its closer.
func stripFence(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open < 0 {
		return "", false
	}
	rest := s[open+3:]
	// drop the language tag line, if any
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{}") {
			rest = rest[nl+1:]
		}
	}
	closing := strings.Index(rest, "```")
	if closing < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:closing]), true
}

// firstObjectSpan finds the first balanced {...} span via bracket counting,
// ignoring braces inside JSON strings. Naive regex greediness would grab too
// much when prose after the object contains another brace.
func firstObjectSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
