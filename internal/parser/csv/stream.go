// Package csv streams header-keyed CSV records without buffering the file.
//
// The first row is the header. Every following row is delivered as a map from
// normalized header name to raw cell text; values are never trimmed. Short
// rows simply lack the missing keys and cells beyond the header width are
// dropped, so width mismatches are not errors. Rows encoding/csv cannot parse
// are reported through onError and the stream continues.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Options tunes the reader.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// HeaderMap renames normalized header names, e.g. "kcal" -> "calories".
	HeaderMap map[string]string
}

// Row is one data record.
type Row struct {
	// Index counts data rows from 1, including rows later rejected.
	Index int
	// Line is the physical line the record starts on (header is line 1).
	Line   int
	Fields map[string]string
}

// Stats summarizes a Stream call.
type Stats struct {
	Rows      int
	Malformed int
}

// ErrStop may be returned by the row callback to end the stream early
// without an error.
var ErrStop = errors.New("csv: stop")

// Stream reads r and calls fn for every data row. A non-nil error from fn
// (other than ErrStop) aborts the stream and is returned. An empty input
// yields no rows and no error.
func Stream(
	ctx context.Context,
	r io.Reader,
	opt Options,
	fn func(Row) error,
	onError func(line int, err error),
) (Stats, error) {
	var st Stats

	cr := csv.NewReader(SkipBOM(r))
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, opt.HeaderMap)

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		rec, err := cr.Read()
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			st.Malformed++
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			if onError != nil {
				onError(line, fmt.Errorf("parse: %w", err))
			}
			continue
		}

		st.Rows++
		line, _ := cr.FieldPos(0)
		row := Row{Index: st.Rows, Line: line, Fields: make(map[string]string, len(headers))}
		for i, v := range rec {
			if i >= len(headers) {
				break
			}
			if headers[i] == "" {
				continue
			}
			row.Fields[headers[i]] = v
		}

		if err := fn(row); err != nil {
			if errors.Is(err, ErrStop) {
				return st, nil
			}
			return st, err
		}
	}
}

// normalizeHeaders trims, lowercases and snake-cases header names, then
// applies headerMap.
func normalizeHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
		if m, ok := headerMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}
