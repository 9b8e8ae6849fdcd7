package split

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"nutrition/internal/datasource/file"
	"nutrition/internal/metrics"
)

// Written describes one chunk file on disk.
type Written struct {
	Path       string
	Statements int
}

// WriteChunks writes every chunk into dir using at most workers concurrent
// writers (0 means GOMAXPROCS). Each file is published atomically; the first
// failure cancels the remaining writes. Results are in chunk order.
func WriteChunks(ctx context.Context, dir, prefix string, chunks []Chunk, workers int) ([]Written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("split: create %s: %w", dir, err)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]Written, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range chunks {
		path := filepath.Join(dir, FileName(prefix, c.Index, c.Total))
		out[i] = Written{Path: path, Statements: c.Len()}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := file.WriteFile(path, []byte(c.Render())); err != nil {
				return fmt.Errorf("split: write %s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type Options struct {
	Input     string
	OutputDir string
	Prefix    string // defaults to Prefix(Input)
	Marker    string // defaults to Marker
	PerFile   int
	Workers   int
	Job       string
	Logger    zerolog.Logger
}

// Result summarizes a split.
type Result struct {
	Statements int
	Files      []Written
}

// Run reads opt.Input and writes its chunks under opt.OutputDir. An input
// without statements writes nothing and returns ErrNoStatements.
func Run(ctx context.Context, opt Options) (Result, error) {
	if opt.Job == "" {
		opt.Job = "splitter"
	}
	start := time.Now()
	res, err := run(ctx, opt)
	metrics.RecordStep(opt.Job, "split", err, time.Since(start))
	if err != nil && !errors.Is(err, ErrNoStatements) {
		return res, err
	}
	metrics.RecordRow(opt.Job, "statements", int64(res.Statements))
	metrics.RecordRow(opt.Job, "files", int64(len(res.Files)))
	opt.Logger.Info().
		Int("statements", res.Statements).
		Int("files", len(res.Files)).
		Dur("elapsed", time.Since(start)).
		Msg("summary")
	return res, err
}

func run(ctx context.Context, opt Options) (Result, error) {
	var res Result
	if opt.PerFile <= 0 {
		return res, fmt.Errorf("split: statements per file must be positive, got %d", opt.PerFile)
	}
	if opt.Prefix == "" {
		opt.Prefix = Prefix(opt.Input)
	}

	data, err := file.ReadAll(ctx, opt.Input)
	if err != nil {
		return res, err
	}
	s := Parse(string(data), opt.Marker)
	res.Statements = len(s.Statements)
	opt.Logger.Info().
		Str("input", opt.Input).
		Str("output_dir", opt.OutputDir).
		Int("per_file", opt.PerFile).
		Msgf("Found %d INSERT statements", res.Statements)
	if res.Statements == 0 {
		opt.Logger.Warn().Str("marker", s.Marker).Msg("no statements found, nothing written")
		return res, ErrNoStatements
	}

	chunks, err := Plan(s, opt.PerFile)
	if err != nil {
		return res, err
	}
	res.Files, err = WriteChunks(ctx, opt.OutputDir, opt.Prefix, chunks, opt.Workers)
	if err != nil {
		return res, err
	}
	for _, w := range res.Files {
		opt.Logger.Debug().Str("path", w.Path).Int("statements", w.Statements).Msg("chunk written")
	}
	return res, nil
}
