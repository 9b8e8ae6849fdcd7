// Package convert turns an ingredient CSV into a transactional SQL script.
//
// The pipeline is sequential: rows are streamed from the input, rendered by
// ingredient.Format, and handed to a batch.Writer that emits multi-row
// INSERT statements. Rows missing a name or category are skipped with a
// warning; invalid numbers fall back to NULL or the column default with a
// warning. The output file only appears once the whole script is written.
//
// Row accounting, reported in Summary:
//
//	Read == Written + Skipped
//
// Malformed rows never reach Read; they are counted on their own.
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nutrition/internal/batch"
	"nutrition/internal/datasource"
	"nutrition/internal/datasource/file"
	"nutrition/internal/ingredient"
	"nutrition/internal/metrics"
	"nutrition/internal/parser/csv"
)

// Options configures Run.
type Options struct {
	Input  datasource.Source
	Output string

	// BatchSize caps rows per INSERT; zero means batch.DefaultSize.
	BatchSize int
	// Table overrides the destination table name.
	Table string
	// HeaderMap renames CSV headers before lookup.
	HeaderMap map[string]string
	// CreateTable prepends CREATE TABLE IF NOT EXISTS inside the transaction.
	CreateTable bool

	Job    string
	Logger zerolog.Logger
	// Now stamps the header; defaults to time.Now.
	Now func() time.Time
}

// Summary reports what a run did.
type Summary struct {
	Read       int
	Written    int64
	Skipped    int
	Malformed  int
	Duplicates int
	Batches    int
	Output     string
}

// Run converts opt.Input into opt.Output.
func Run(ctx context.Context, opt Options) (Summary, error) {
	if opt.Job == "" {
		opt.Job = "formatter"
	}
	start := time.Now()
	sum, err := run(ctx, opt)
	metrics.RecordStep(opt.Job, "format", err, time.Since(start))
	if err != nil {
		return sum, err
	}

	metrics.RecordRow(opt.Job, "read", int64(sum.Read))
	metrics.RecordRow(opt.Job, "written", sum.Written)
	metrics.RecordRow(opt.Job, "skipped", int64(sum.Skipped))
	metrics.RecordRow(opt.Job, "malformed", int64(sum.Malformed))
	metrics.RecordRow(opt.Job, "duplicate", int64(sum.Duplicates))

	opt.Logger.Info().
		Int("read", sum.Read).
		Int64("written", sum.Written).
		Int("skipped", sum.Skipped).
		Int("malformed", sum.Malformed).
		Int("duplicates", sum.Duplicates).
		Int("batches", sum.Batches).
		Dur("elapsed", time.Since(start)).
		Msg("summary")
	if int64(sum.Read) != sum.Written+int64(sum.Skipped) {
		opt.Logger.Warn().
			Int("read", sum.Read).
			Int64("accounted", sum.Written+int64(sum.Skipped)).
			Msg("row accounting mismatch")
	}
	return sum, nil
}

func run(ctx context.Context, opt Options) (Summary, error) {
	sum := Summary{Output: opt.Output}
	if opt.Input == nil {
		return sum, errors.New("convert: no input")
	}
	if opt.Output == "" {
		return sum, errors.New("convert: no output path")
	}
	table := opt.Table
	if table == "" {
		table = ingredient.Table
	}
	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}
	log := opt.Logger

	rc, err := opt.Input.Open(ctx)
	if err != nil {
		return sum, fmt.Errorf("open input: %w", err)
	}
	defer rc.Close()

	out, err := file.Create(opt.Output)
	if err != nil {
		return sum, fmt.Errorf("create output: %w", err)
	}
	defer out.Abort()

	var preamble string
	if opt.CreateTable {
		if preamble, err = ingredient.CreateTableSQL(table); err != nil {
			return sum, err
		}
	}
	bw, err := batch.NewWriter(out, batch.Options{
		Table:          table,
		Columns:        ingredient.ColumnNames(),
		ConflictColumn: ingredient.ConflictColumn,
		Size:           opt.BatchSize,
		Groups:         ingredient.Groups,
		Preamble:       preamble,
		Job:            opt.Job,
		Logger:         log,
	})
	if err != nil {
		return sum, err
	}
	if err := bw.Begin(opt.Input.Name(), now()); err != nil {
		return sum, fmt.Errorf("write header: %w", err)
	}

	dups := ingredient.NewDuplicates()
	st, err := csv.Stream(ctx, rc, csv.Options{HeaderMap: opt.HeaderMap},
		func(row csv.Row) error {
			sum.Read++
			rec := ingredient.Record(row.Fields)
			vals, err := ingredient.Format(rec)
			if errors.Is(err, ingredient.ErrMissingRequired) {
				sum.Skipped++
				log.Warn().Int("row", row.Index).Err(err).
					Msgf("Skipping row %d - missing name or category", row.Index)
				return nil
			}
			if err != nil {
				return fmt.Errorf("row %d: %w", row.Index, err)
			}
			for _, col := range vals.Fallbacks {
				log.Warn().Int("row", row.Index).Str("column", col).Str("value", rec[col]).
					Msg("invalid number, using default")
			}
			if first, dup := dups.Seen(rec.Name(), row.Index); dup {
				log.Warn().Int("row", row.Index).Int("first_row", first).Str("name", rec.Name()).
					Msg("duplicate name; ON CONFLICT will keep the first")
			}
			return bw.Add(vals.Literals)
		},
		func(line int, err error) {
			log.Warn().Int("line", line).Err(err).Msg("malformed csv row")
		},
	)
	sum.Malformed = st.Malformed
	sum.Duplicates = dups.Count()
	if err != nil {
		return sum, fmt.Errorf("convert %s: %w", opt.Input.Name(), err)
	}

	if err := bw.Close(); err != nil {
		return sum, fmt.Errorf("write output: %w", err)
	}
	if err := out.Commit(); err != nil {
		return sum, err
	}
	stats := bw.Stats()
	sum.Written = stats.Rows
	sum.Batches = stats.Batches
	return sum, nil
}
