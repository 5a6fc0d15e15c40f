// Package extract pulls JSON values out of free-form generated text.
package extract

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"diderot/internal/core"
	"diderot/internal/logger"
)

const rawPreviewLen = 200

// Structured slices the text from the first '[' (or '{' when there is no '[') to the
// last matching closing bracket and parses it. Without any bracket the whole text is
// parsed. Any failure yields an empty []any and is logged; it never panics.
//
// The slicing is deliberately naive: prose containing stray brackets or several JSON
// blocks will mis-slice and come back empty.
func Structured(text string) any {
	candidate := slice(text, '[', ']')
	if candidate == "" {
		candidate = slice(text, '{', '}')
	}
	if candidate == "" {
		candidate = strings.TrimSpace(text)
	}

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		logger.Debug("Failed to extract JSON from generated text", "error", err.Error(), "raw", preview(text))
		return []any{}
	}
	return v
}

// Decode extracts the JSON value matching target's shape and unmarshals it into target.
// Slice targets are sliced on '[' ... ']', maps and structs on '{' ... '}'. A missing
// or unparseable value is reported as core.ErrMalformedGeneration.
func Decode(text string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}

	open, closing := byte('{'), byte('}')
	if rv.Elem().Kind() == reflect.Slice || rv.Elem().Kind() == reflect.Array {
		open, closing = '[', ']'
	}

	candidate := slice(text, open, closing)
	if candidate == "" {
		candidate = strings.TrimSpace(text)
	}
	if candidate == "" {
		return fmt.Errorf("%w: empty response", core.ErrMalformedGeneration)
	}

	if err := json.Unmarshal([]byte(candidate), target); err != nil {
		logger.Debug("Generated text did not match expected shape", "error", err.Error(), "target", fmt.Sprintf("%T", target), "raw", preview(text))
		return fmt.Errorf("%w: %v", core.ErrMalformedGeneration, err)
	}
	return nil
}

// slice returns text[first open : last closing+1], or "" when either bracket is missing
// or they are out of order.
func slice(text string, open, closing byte) string {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(text, closing)
	if end < start {
		return ""
	}
	return text[start : end+1]
}

// preview returns the first rawPreviewLen characters of text.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= rawPreviewLen {
		return text
	}
	return string(runes[:rawPreviewLen]) + "..."
}
