package services

import (
	"regexp"
	"strings"
)

// confusables maps characters OCR engines commonly misread for digits.
// Kept as a single table so the rule set stays auditable.
var confusables = map[rune]rune{
	'O': '0', 'o': '0', 'D': '0',
	'I': '1', 'l': '1', '|': '1', '!': '1',
	'S': '5', 's': '5',
	'B': '8',
	'Z': '2', 'z': '2',
	'q': '9', 'g': '9',
}

// National IDs are 8 digits, occasionally 7-9 on older cards.
var (
	rxExact8 = regexp.MustCompile(`\b\d{8}\b`)
	rxRun    = regexp.MustCompile(`\b\d{7,9}\b`)
)

// FoldConfusables rewrites OCR-confusable characters to the digits they were
// most likely misread from.
func FoldConfusables(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := confusables[r]; ok {
			return d
		}
		return r
	}, s)
}

// NormalizeNationalID folds confusable characters in raw OCR or hand-typed
// text and extracts a candidate national ID: the leftmost exact 8-digit run,
// falling back to the leftmost 7-9 digit run. Returns false when neither
// pattern matches. Pure; an already-extracted digit run passes through
// unchanged.
func NormalizeNationalID(raw string) (string, bool) {
	norm := FoldConfusables(raw)
	if m := rxExact8.FindString(norm); m != "" {
		return m, true
	}
	if m := rxRun.FindString(norm); m != "" {
		return m, true
	}
	return "", false
}
