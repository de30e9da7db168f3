// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package jsonrepair salvages malformed JSON produced by LLMs.
//
// Models frequently wrap JSON in markdown fences despite instructions, and
// responses that hit the completion token limit arrive truncated mid-string
// or mid-object. This package provides two pure text transformations:
//
//   - Sanitize removes markdown code-fence markers and surrounding whitespace.
//   - Repair rewrites the tail of a truncated JSON document so that it
//     parses again, without fabricating any content.
//
// Neither function parses JSON itself; callers decide when a document is
// broken (a failed json.Unmarshal) and whether the repaired text is
// acceptable (a second json.Unmarshal).
package jsonrepair

import (
	"regexp"
	"strings"
)

var (
	// fenceMarker matches ``` and ```json markers anywhere in the text.
	fenceMarker = regexp.MustCompile("```(?:json)?")

	// danglingKey matches a trailing object key that has a colon but no
	// value, e.g. `, "expected_result":` at the end of the document.
	danglingKey = regexp.MustCompile(`,?\s*"[^"]*"\s*:\s*$`)

	// unterminatedKey matches a trailing key fragment whose literal never
	// closed, e.g. `, "expected_res` at the end of the document. The
	// character class excludes structural characters so a complete value
	// followed by closers is never mistaken for a key fragment.
	unterminatedKey = regexp.MustCompile(`,?\s*"[^"{}\[\]:,]+$`)

	// trailingComma matches a comma immediately preceding } or ].
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

	// trailingCommaEOF matches a comma left dangling at the very end.
	trailingCommaEOF = regexp.MustCompile(`,\s*$`)
)

// Sanitize strips markdown code-fence markers (with or without a language
// tag) wherever they appear and trims surrounding whitespace.
//
// Sanitize is idempotent: applying it twice yields the same result as once.
func Sanitize(raw string) string {
	return strings.TrimSpace(fenceMarker.ReplaceAllString(raw, ""))
}

// Repair rewrites the tail of a malformed JSON document so it becomes
// syntactically valid again. The input is sanitized first, then the
// following rewrites are applied in order:
//
//  1. Strip a string literal opened at the tail and never closed,
//     accounting for escaped quotes.
//  2. Strip a trailing key that has a colon but no value.
//  3. Strip a trailing key fragment whose literal never closed.
//  4. Strip trailing commas before closing delimiters.
//  5. Close every { and [ still open at the end, innermost first,
//     ignoring delimiters that appear inside string literals.
//  6. Strip any trailing comma the new closers exposed.
//
// Repair never invents values: it only removes broken fragments and closes
// structures that were already open. The result is not guaranteed to parse;
// callers must re-attempt decoding and treat a second failure as fatal.
func Repair(raw string) string {
	s := Sanitize(raw)

	s = stripUnterminatedString(s)
	s = danglingKey.ReplaceAllString(s, "")
	s = unterminatedKey.ReplaceAllString(s, "")
	s = trailingComma.ReplaceAllString(s, "${1}")
	s = trailingCommaEOF.ReplaceAllString(s, "")

	s += missingClosers(s)

	return trailingComma.ReplaceAllString(s, "${1}")
}

// stripUnterminatedString removes a string literal that was opened but never
// closed at the end of the text, along with the comma that introduced it.
// The scan tracks escape state so \" inside the literal does not count as a
// terminator. Text that does not end inside a string is returned unchanged.
func stripUnterminatedString(s string) string {
	var inString, escaped bool
	openQuote := -1

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
			if inString {
				openQuote = i
			}
		}
	}

	if !inString {
		return s
	}

	s = strings.TrimRight(s[:openQuote], " \t\r\n")
	return strings.TrimSuffix(s, ",")
}

// missingClosers returns the closing delimiters needed to balance the text,
// innermost structure first. Open delimiters are tracked on a stack; a
// matching closer pops, anything inside a string literal is ignored, and
// surplus or mismatched closers are left for the decoder to reject.
func missingClosers(s string) string {
	var stack []byte
	var inString, escaped bool

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				stack = append(stack, '}')
			}
		case '[':
			if !inString {
				stack = append(stack, ']')
			}
		case '}', ']':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == ch {
				stack = stack[:len(stack)-1]
			}
		}
	}

	closers := make([]byte, len(stack))
	for i := range stack {
		closers[i] = stack[len(stack)-1-i]
	}
	return string(closers)
}
