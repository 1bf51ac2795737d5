// Package services runs multi-entity search rounds over the entity adapters.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
	"github.com/campushub/portal/backend/internal/query/loaders"
	"github.com/campushub/portal/backend/internal/query/normalize"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

// Fetcher is one entity adapter.
type Fetcher interface {
	Type() entities.ResultType
	Applies(f entities.SearchFilters) bool
	Fetch(ctx context.Context, query string, f entities.SearchFilters) ([]entities.Record, error)
	Get(ctx context.Context, ids []string) ([]entities.Record, error)
}

// SearchTracker receives completed rounds.
type SearchTracker interface {
	TrackSearch(ctx context.Context, event *entities.SearchEvent)
}

// Outcome is the merged result of one round.
type Outcome struct {
	Results []entities.SearchResult
	// FailedTypes lists the adapters whose contribution was dropped, in merge order.
	FailedTypes []entities.ResultType
	// Skipped is set when the round had nothing to search for.
	Skipped bool
}

// Partial reports whether any adapter failed.
func (o *Outcome) Partial() bool {
	return len(o.FailedTypes) > 0
}

// Option configures a SearchService.
type Option func(*SearchService)

// WithAdapterTimeout bounds each adapter's fetch. Zero disables the bound.
func WithAdapterTimeout(d time.Duration) Option {
	return func(s *SearchService) { s.adapterTimeout = d }
}

// WithTracker reports every completed round to t.
func WithTracker(t SearchTracker) Option {
	return func(s *SearchService) { s.tracker = t }
}

// WithMetrics records adapter fetch metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *SearchService) { s.metrics = m }
}

// WithBatchWait sets how long detail lookups collect ids before querying.
func WithBatchWait(d time.Duration) Option {
	return func(s *SearchService) { s.batchWait = d }
}

// SearchService fans a search out to the entity adapters and merges their
// results in a fixed order: notes, events, lost & found.
type SearchService struct {
	fetchers       []Fetcher
	adapterTimeout time.Duration
	batchWait      time.Duration
	tracker        SearchTracker
	metrics        *observability.Metrics
}

// NewSearchService builds a service over the three entity adapters.
func NewSearchService(notes, events, lostFound Fetcher, opts ...Option) *SearchService {
	s := &SearchService{
		fetchers:  []Fetcher{notes, events, lostFound},
		batchWait: 2 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type contribution struct {
	results []entities.SearchResult
	err     error
}

// Search runs one round. Adapter failures and timeouts never fail the round:
// the failing adapter contributes nothing and is listed in FailedTypes. The
// only error returned is ctx's, when the caller cancels the round.
func (s *SearchService) Search(ctx context.Context, query string, filters entities.SearchFilters) (*Outcome, error) {
	query = strings.TrimSpace(query)
	if filters.ContentType == "" {
		filters.ContentType = entities.ContentAll
	}

	if query == "" && filters.ContentType == entities.ContentAll {
		return &Outcome{Results: []entities.SearchResult{}, Skipped: true}, nil
	}

	ctx, span := observability.StartSpan(ctx, "search.round",
		attribute.String("search.query", query),
		attribute.String("search.content_type", string(filters.ContentType)),
	)
	defer span.End()
	start := time.Now()

	slots := make([]contribution, len(s.fetchers))
	active := make([]bool, len(s.fetchers))

	var wg sync.WaitGroup
	for i, f := range s.fetchers {
		if !f.Applies(filters) {
			continue
		}
		active[i] = true
		wg.Add(1)
		go func(i int, f Fetcher) {
			defer wg.Done()
			slots[i] = s.fetch(ctx, f, query, filters)
		}(i, f)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Outcome{Results: []entities.SearchResult{}}
	for i, slot := range slots {
		if !active[i] {
			continue
		}
		if slot.err != nil {
			out.FailedTypes = append(out.FailedTypes, s.fetchers[i].Type())
			continue
		}
		out.Results = append(out.Results, slot.results...)
	}

	span.SetAttributes(
		attribute.Int("search.result_count", len(out.Results)),
		attribute.Int("search.failed_adapters", len(out.FailedTypes)),
	)

	if s.tracker != nil {
		s.tracker.TrackSearch(ctx, &entities.SearchEvent{
			Query:       query,
			ContentType: filters.ContentType,
			ResultCount: len(out.Results),
			FailedTypes: out.FailedTypes,
			LatencyMs:   int(time.Since(start).Milliseconds()),
		})
	}

	return out, nil
}

func (s *SearchService) fetch(ctx context.Context, f Fetcher, query string, filters entities.SearchFilters) contribution {
	ctx, span := observability.StartSpan(ctx, "search.fetch", attribute.String("search.type", string(f.Type())))
	defer span.End()

	if s.adapterTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.adapterTimeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan contribution, 1)
	go func() {
		records, err := f.Fetch(ctx, query, filters)
		if err != nil {
			done <- contribution{err: err}
			return
		}
		results, err := normalize.Results(records, f.Type())
		done <- contribution{results: results, err: err}
	}()

	var c contribution
	select {
	case c = <-done:
	case <-ctx.Done():
		c = contribution{err: ctx.Err()}
	}

	failed := c.err != nil
	observability.RecordFetchMetric(ctx, s.metrics, string(f.Type()), time.Since(start), failed)
	if failed {
		observability.RecordError(span, c.err)
		event := observability.LoggerFromContext(ctx).Warn().
			Err(c.err).
			Str("type", string(f.Type()))
		if errors.Is(c.err, context.DeadlineExceeded) {
			event = event.Dur("timeout", s.adapterTimeout)
		}
		event.Msg("Dropping adapter contribution")
	}
	return c
}

func (s *SearchService) fetcher(t entities.ResultType) Fetcher {
	for _, f := range s.fetchers {
		if f.Type() == t {
			return f
		}
	}
	return nil
}

// Get returns a single result by type and id.
func (s *SearchService) Get(ctx context.Context, t entities.ResultType, id string) (*entities.SearchResult, error) {
	f := s.fetcher(t)
	if f == nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown result type %q", t))
	}

	records, err := f.Get(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", t, id))
	}

	result, err := normalize.Result(records[0], t)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Resolve looks up many references with one query per collection. Results
// keep the order of refs; references that no longer exist are skipped.
func (s *SearchService) Resolve(ctx context.Context, refs []entities.ResultRef) ([]entities.SearchResult, error) {
	lookups := make([]loaders.Lookup, 0, len(s.fetchers))
	for _, f := range s.fetchers {
		lookups = append(lookups, f)
	}
	l := loaders.NewLoaders(s.batchWait, lookups...)

	thunks := make([]func() (entities.SearchResult, error), len(refs))
	for i, ref := range refs {
		thunks[i] = l.Load(ctx, ref)
	}

	out := make([]entities.SearchResult, 0, len(refs))
	for _, thunk := range thunks {
		r, err := thunk()
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
