// Package sqlfmt renders raw CSV cell text as Postgres SQL literals.
//
// Every function takes the cell exactly as read and returns a literal that is
// safe to splice into a VALUES tuple:
//
//   - String:    NULL, or a single-quoted string with quotes doubled
//   - Decimal:   the validated numeric text, NULL, or a declared default
//   - Bool:      TRUE / FALSE (anything unrecognized is TRUE)
//   - TextArray: ARRAY['a', 'b']::TEXT[] or ARRAY[]::TEXT[]
//
// Numeric cells are validated but never re-rendered, so precision and the
// author's formatting survive the round trip into the database.
package sqlfmt

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Null is the SQL NULL literal.
const Null = "NULL"

// EmptyTextArray is the typed empty array literal used for label columns.
const EmptyTextArray = "ARRAY[]::TEXT[]"

// Quote doubles single quotes in s and wraps it in single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// String returns NULL for an empty value; otherwise it truncates v to max
// characters (when max > 0) and quotes it. Truncation counts runes so a
// multi-byte character is never cut in half.
func String(v string, max int) string {
	if v == "" {
		return Null
	}
	return Quote(Truncate(v, max))
}

// Truncate returns the first max runes of v. A max <= 0 disables truncation.
func Truncate(v string, max int) string {
	if max <= 0 || utf8.RuneCountInString(v) <= max {
		return v
	}
	n := 0
	for i := range v {
		if n == max {
			return v[:i]
		}
		n++
	}
	return v
}

// IsNullText reports whether v is empty or the literal text "null" in any case.
func IsNullText(v string) bool {
	return v == "" || strings.EqualFold(v, "null")
}

// ValidNumber reports whether v (ignoring surrounding spaces) parses as a
// finite decimal number.
func ValidNumber(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}

// Decimal renders a numeric cell. A valid number is returned as its own
// (space-trimmed) text. Empty, "null" or unparsable input yields def when
// notNull is set and NULL otherwise. ok is false only when v had content that
// failed validation, so callers can warn about it.
func Decimal(v string, notNull bool, def string) (lit string, ok bool) {
	fallback := Null
	if notNull {
		fallback = def
	}
	if IsNullText(v) {
		return fallback, true
	}
	if !ValidNumber(v) {
		return fallback, false
	}
	return strings.TrimSpace(v), true
}

// Bool renders a boolean cell. Recognized false spellings (false, 0, no, f;
// case-insensitive) yield FALSE. Everything else, including empty input and
// unrecognized text, yields TRUE.
func Bool(v string) string {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "t":
		return "TRUE"
	case "false", "0", "no", "f":
		return "FALSE"
	}
	return "TRUE"
}

// SplitList splits a comma-separated cell into trimmed, non-empty items.
func SplitList(v string) []string {
	parts := strings.Split(v, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// TextArray renders a comma-separated cell as a TEXT[] literal. Empty input,
// "null", or a list with no non-blank items yields EmptyTextArray, never NULL.
func TextArray(v string) string {
	if IsNullText(v) {
		return EmptyTextArray
	}
	items := SplitList(v)
	if len(items) == 0 {
		return EmptyTextArray
	}

	var b strings.Builder
	b.WriteString("ARRAY[")
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Quote(it))
	}
	b.WriteString("]::TEXT[]")
	return b.String()
}
