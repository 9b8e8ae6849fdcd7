package portion

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"nutrition/internal/fdc"
	"nutrition/internal/metrics"
)

// Searcher is the part of the FDC client the aggregator uses.
type Searcher interface {
	Search(ctx context.Context, req fdc.SearchRequest) (*fdc.SearchResult, error)
	Food(ctx context.Context, fdcID int64) (*fdc.Food, error)
}

// DefaultMaxResults is how many search hits per query are inspected.
const DefaultMaxResults = 10

// DefaultInterval is the minimum spacing between FDC requests.
const DefaultInterval = time.Second

type Options struct {
	Client       Searcher
	DataTypes    []string
	PageSize     int
	MaxResults   int
	Interval     time.Duration // 0 disables pacing
	FetchDetails bool
	Job          string
	Logger       zerolog.Logger
}

// Aggregator accumulates the category map across queries. It is not safe
// for concurrent use.
type Aggregator struct {
	opt     Options
	limiter *rate.Limiter

	categories CategoryMap
	units      Set
	failed     []string
	foods      int
}

func New(opt Options) (*Aggregator, error) {
	if opt.Client == nil {
		return nil, errors.New("portion: nil client")
	}
	if opt.Interval < 0 {
		return nil, errors.New("portion: negative request interval")
	}
	if opt.MaxResults <= 0 {
		opt.MaxResults = DefaultMaxResults
	}
	if opt.PageSize <= 0 {
		opt.PageSize = fdc.DefaultPageSize
	}
	if opt.Job == "" {
		opt.Job = "aggregator"
	}
	limit := rate.Inf
	if opt.Interval > 0 {
		limit = rate.Every(opt.Interval)
	}
	return &Aggregator{
		opt:        opt,
		limiter:    rate.NewLimiter(limit, 1),
		categories: CategoryMap{},
		units:      Set{},
	}, nil
}

// Run searches every query in order and merges what it finds. A query that
// fails is logged and remembered but does not stop the run; only context
// cancellation does.
func (a *Aggregator) Run(ctx context.Context, queries []string) error {
	start := time.Now()
	err := a.run(ctx, queries)
	metrics.RecordStep(a.opt.Job, "aggregate", err, time.Since(start))

	a.opt.Logger.Info().
		Int("queries", len(queries)).
		Int("failed", len(a.failed)).
		Int("foods", a.foods).
		Int("categories", len(a.categories)).
		Int("units", len(a.units)).
		Dur("elapsed", time.Since(start)).
		Msg("summary")
	return err
}

func (a *Aggregator) run(ctx context.Context, queries []string) error {
	total := len(queries)
	for i, q := range queries {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		a.opt.Logger.Info().Msgf("[%d/%d] Searching: %s", i+1, total, q)

		res, err := a.opt.Client.Search(ctx, fdc.SearchRequest{
			Query:     q,
			DataTypes: a.opt.DataTypes,
			PageSize:  a.opt.PageSize,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.failed = append(a.failed, q)
			metrics.RecordRow(a.opt.Job, "query_failed", 1)
			a.opt.Logger.Warn().Err(err).Str("query", q).Msg("search failed")
			continue
		}
		metrics.RecordRow(a.opt.Job, "query_ok", 1)

		foods := res.Foods
		a.opt.Logger.Info().Msgf("Found %d foods", len(foods))
		if len(foods) > a.opt.MaxResults {
			foods = foods[:a.opt.MaxResults]
		}
		for _, f := range foods {
			if err := a.add(ctx, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// add merges one search hit, optionally enriched with its detail record.
func (a *Aggregator) add(ctx context.Context, f fdc.Food) error {
	category, units := Extract(f)
	if a.opt.FetchDetails && f.FdcID != 0 {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		detail, err := a.opt.Client.Food(ctx, f.FdcID)
		switch {
		case err == nil:
			_, more := Extract(*detail)
			units.Merge(more)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			a.opt.Logger.Warn().Err(err).Int64("fdc_id", f.FdcID).Msg("food details failed")
		}
	}

	a.foods++
	metrics.RecordRow(a.opt.Job, "food", 1)
	if len(units) == 0 {
		return nil
	}
	a.categories.Merge(category, units)
	a.units.Merge(units)
	return nil
}

// Failed lists the queries whose search failed, in run order.
func (a *Aggregator) Failed() []string {
	return append([]string(nil), a.failed...)
}

// Report snapshots the accumulated map.
func (a *Aggregator) Report(now time.Time) Report {
	cats := a.categories.Sorted()
	return Report{
		Metadata: Metadata{
			Source:            Source,
			APIVersion:        APIVersion,
			GeneratedDate:     now.Format(time.DateOnly),
			TotalCategories:   len(cats),
			TotalPortionUnits: len(a.units),
			FailedQueries:     a.Failed(),
		},
		AllPortionUnits: a.units.Sorted(),
		Categories:      cats,
	}
}
