// Package split partitions a generated SQL script into chunk files small
// enough for a web SQL editor.
//
// A script is a header, a run of statements that each start with a fixed
// marker, and an optional COMMIT trailer. Every chunk repeats the header and
// ends with the trailer, so each file is a complete transaction.
package split

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Marker starts every statement written by the formatter.
const Marker = "INSERT INTO simple_ingredients"

// DefaultPerFile is the default number of statements per chunk.
const DefaultPerFile = 500

// DefaultTrailer ends chunks of scripts that had no COMMIT of their own.
const DefaultTrailer = "\nCOMMIT;\n"

var ErrNoStatements = errors.New("split: no statements found")

// Script is a parsed SQL file. Header + Σ(Marker + body) + Trailer
// reproduces the input byte for byte.
type Script struct {
	Marker     string
	Header     string
	Statements []string
	Trailer    string
}

// Parse cuts content at every occurrence of marker. The trailing COMMIT line
// of the last statement, with the newline before it, becomes the Trailer.
func Parse(content, marker string) Script {
	if marker == "" {
		marker = Marker
	}
	parts := strings.Split(content, marker)
	s := Script{Marker: marker, Header: parts[0]}
	if len(parts) == 1 {
		return s
	}
	s.Statements = parts[1:]

	last := len(s.Statements) - 1
	body := s.Statements[last]
	if i := strings.LastIndex(body, "COMMIT;"); i >= 0 && strings.TrimSpace(body[i:]) == "COMMIT;" {
		if i > 0 && body[i-1] == '\n' {
			i--
		}
		s.Trailer = body[i:]
		s.Statements[last] = body[:i]
	}
	return s
}

// String reassembles the script.
func (s Script) String() string {
	var b strings.Builder
	b.WriteString(s.Header)
	for _, st := range s.Statements {
		b.WriteString(s.Marker)
		b.WriteString(st)
	}
	b.WriteString(s.Trailer)
	return b.String()
}

// Chunk is a contiguous slice of a script's statements.
type Chunk struct {
	Index, Total int // Index is 1-based
	script       *Script
	from, to     int
}

// Statements returns the chunk's statement bodies.
func (c Chunk) Statements() []string { return c.script.Statements[c.from:c.to] }

// Len is the number of statements in the chunk.
func (c Chunk) Len() int { return c.to - c.from }

// Render returns the chunk file content.
func (c Chunk) Render() string {
	s := c.script
	var b strings.Builder
	b.WriteString(s.Header)
	for _, st := range c.Statements() {
		b.WriteString(s.Marker)
		b.WriteString(st)
	}
	if s.Trailer != "" {
		b.WriteString(s.Trailer)
	} else {
		b.WriteString(DefaultTrailer)
	}
	return b.String()
}

// Plan groups the statements into chunks of at most perFile.
func Plan(s Script, perFile int) ([]Chunk, error) {
	if perFile <= 0 {
		return nil, fmt.Errorf("split: statements per file must be positive, got %d", perFile)
	}
	n := len(s.Statements)
	total := (n + perFile - 1) / perFile
	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		from := i * perFile
		chunks = append(chunks, Chunk{
			Index:  i + 1,
			Total:  total,
			script: &s,
			from:   from,
			to:     min(from+perFile, n),
		})
	}
	return chunks, nil
}

// FileName names chunk index of total, zero-padded to at least two digits.
func FileName(prefix string, index, total int) string {
	w := max(2, len(fmt.Sprint(total)))
	return fmt.Sprintf("%s_part_%0*d_of_%0*d.sql", prefix, w, index, w, total)
}

// Prefix derives a file name prefix from the input path: the base name
// without extension, reduced to letters, digits, '-' and '_'.
func Prefix(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	p := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			return r
		}
		return '_'
	}, base)
	p = strings.Trim(p, "_")
	if p == "" {
		return "split"
	}
	return p
}
