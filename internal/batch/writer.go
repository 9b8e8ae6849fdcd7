// Package batch writes rows of SQL literals as grouped multi-row INSERT
// statements inside a single transaction.
//
// Output shape:
//
//	-- Generated SQL for <table> table
//	-- Source: <source>
//	-- Date: <timestamp>
//
//	BEGIN;
//
//	INSERT INTO <table> (<columns>)
//	VALUES
//	  (...),
//	  (...)
//	ON CONFLICT (<key>) DO NOTHING;
//
//	COMMIT;
//
// Rows are buffered until Size is reached, then flushed as one statement.
// Close flushes the remainder and writes COMMIT, so a closed Writer always
// leaves a balanced BEGIN/COMMIT pair behind.
//
// Logging: on every flush a progress line is emitted with the batch number,
// running totals and rows/sec since the previous flush.
package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nutrition/internal/metrics"
)

// DefaultSize is the number of rows per INSERT when Options.Size is zero.
const DefaultSize = 100

// DateLayout renders the generation timestamp in the header.
const DateLayout = "2006-01-02 15:04:05.000000"

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("batch: writer closed")

// Options configures a Writer.
type Options struct {
	// Table is the destination table named in every INSERT.
	Table string

	// Columns lists the destination columns; every row must have one literal
	// per column.
	Columns []string

	// ConflictColumn is the unique key used in ON CONFLICT ... DO NOTHING.
	ConflictColumn string

	// Size caps the rows per INSERT statement. Zero means DefaultSize.
	Size int

	// Groups optionally breaks the column list and each VALUES tuple into
	// lines of the given widths. Widths must sum to len(Columns).
	Groups []int

	// Preamble is emitted after BEGIN, before the first batch (e.g. DDL).
	Preamble string

	// Job labels metrics; Logger receives per-batch progress.
	Job    string
	Logger zerolog.Logger
}

// Stats reports what a Writer has flushed so far.
type Stats struct {
	Batches int
	Rows    int64
}

// Writer accumulates rows and emits them as batched INSERT statements.
// A Writer is not safe for concurrent use.
type Writer struct {
	out    *bufio.Writer
	opt    Options
	prefix string

	batch  [][]string
	stats  Stats
	closed bool
	err    error

	lastFlush time.Time
	lastRows  int64
}

// NewWriter validates opt and returns a Writer over w.
func NewWriter(w io.Writer, opt Options) (*Writer, error) {
	if opt.Size == 0 {
		opt.Size = DefaultSize
	}
	if opt.Size < 0 {
		return nil, fmt.Errorf("batch: size must be > 0, got %d", opt.Size)
	}
	if opt.Table == "" {
		return nil, fmt.Errorf("batch: table must not be empty")
	}
	if len(opt.Columns) == 0 {
		return nil, fmt.Errorf("batch: no columns configured")
	}
	if opt.ConflictColumn == "" {
		return nil, fmt.Errorf("batch: conflict column must not be empty")
	}
	if len(opt.Groups) > 0 {
		sum := 0
		for _, g := range opt.Groups {
			if g <= 0 {
				return nil, fmt.Errorf("batch: group width must be > 0, got %d", g)
			}
			sum += g
		}
		if sum != len(opt.Columns) {
			return nil, fmt.Errorf("batch: groups cover %d columns, have %d", sum, len(opt.Columns))
		}
	}

	bw := &Writer{
		out:   bufio.NewWriterSize(w, 64*1024),
		opt:   opt,
		batch: make([][]string, 0, opt.Size),
	}
	bw.prefix = fmt.Sprintf("INSERT INTO %s (%s)\nVALUES\n",
		opt.Table, bw.join(opt.Columns))
	return bw, nil
}

// Begin writes the header comment block and BEGIN. It must be called once,
// before the first Add.
func (w *Writer) Begin(source string, now time.Time) error {
	w.lastFlush = time.Now()
	w.printf("-- Generated SQL for %s table\n", w.opt.Table)
	w.printf("-- Source: %s\n", source)
	w.printf("-- Date: %s\n\n", now.Format(DateLayout))
	w.printf("BEGIN;\n\n")
	if w.opt.Preamble != "" {
		w.printf("%s\n\n", w.opt.Preamble)
	}
	return w.err
}

// Add buffers one row of literals and flushes when the batch is full.
func (w *Writer) Add(literals []string) error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	if len(literals) != len(w.opt.Columns) {
		return fmt.Errorf("batch: row has %d values, want %d", len(literals), len(w.opt.Columns))
	}
	w.batch = append(w.batch, literals)
	if len(w.batch) >= w.opt.Size {
		return w.flush()
	}
	return nil
}

// Close flushes buffered rows, writes COMMIT and flushes the underlying
// buffer. It does not close the destination io.Writer.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if err := w.flush(); err != nil {
		return err
	}
	w.printf("\nCOMMIT;\n")
	if w.err == nil {
		w.err = w.out.Flush()
	}
	w.opt.Logger.Debug().
		Int("batches", w.stats.Batches).
		Int64("rows", w.stats.Rows).
		Msg("writer closed")
	return w.err
}

// Stats returns the flushed batch and row counts.
func (w *Writer) Stats() Stats { return w.stats }

func (w *Writer) flush() error {
	if len(w.batch) == 0 || w.err != nil {
		return w.err
	}

	w.printf("%s", w.prefix)
	for i, row := range w.batch {
		if i > 0 {
			w.printf(",\n")
		}
		w.printf("  (%s)", w.join(row))
	}
	w.printf("\nON CONFLICT (%s) DO NOTHING;\n\n", w.opt.ConflictColumn)
	if w.err != nil {
		return w.err
	}

	n := int64(len(w.batch))
	w.batch = w.batch[:0]
	w.stats.Batches++
	w.stats.Rows += n
	metrics.RecordBatches(w.opt.Job, 1)

	now := time.Now()
	sinceLast := now.Sub(w.lastFlush)
	rps := float64(0)
	if sinceLast > 0 {
		rps = float64(w.stats.Rows-w.lastRows) / sinceLast.Seconds()
	}
	w.opt.Logger.Info().
		Int("batch", w.stats.Batches).
		Int64("rows", n).
		Int64("total_rows", w.stats.Rows).
		Float64("rps", rps).
		Msgf("processed batch %d (%d rows)", w.stats.Batches, n)
	w.lastFlush = now
	w.lastRows = w.stats.Rows
	return nil
}

// join renders items separated by ", ", breaking lines between groups.
func (w *Writer) join(items []string) string {
	if len(w.opt.Groups) == 0 {
		return strings.Join(items, ", ")
	}
	var b strings.Builder
	pos := 0
	for gi, width := range w.opt.Groups {
		if gi > 0 {
			b.WriteString(",\n    ")
		}
		b.WriteString(strings.Join(items[pos:pos+width], ", "))
		pos += width
	}
	return b.String()
}

func (w *Writer) printf(format string, a ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, format, a...)
}
