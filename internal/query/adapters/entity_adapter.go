// Package adapters queries one record collection per searchable entity.
package adapters

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
	"github.com/campushub/portal/backend/internal/query/predicates"
)

// EntityAdapter fetches the records of one result type.
type EntityAdapter struct {
	resultType entities.ResultType
	store      repositories.RecordStore
	orderBy    repositories.OrderBy
	build      func(query string, f entities.SearchFilters) repositories.Condition
	limit      int
}

// NewNotesAdapter lists notes newest first.
func NewNotesAdapter(store repositories.RecordStore, limit int) *EntityAdapter {
	return &EntityAdapter{
		resultType: entities.ResultNote,
		store:      store,
		orderBy:    repositories.OrderBy{Field: "created_at", Direction: repositories.Desc},
		build:      predicates.Notes,
		limit:      limit,
	}
}

// NewEventsAdapter lists events soonest first.
func NewEventsAdapter(store repositories.RecordStore, limit int) *EntityAdapter {
	return &EntityAdapter{
		resultType: entities.ResultEvent,
		store:      store,
		orderBy:    repositories.OrderBy{Field: "event_date", Direction: repositories.Asc},
		build:      predicates.Events,
		limit:      limit,
	}
}

// NewLostFoundAdapter lists lost & found reports newest first.
func NewLostFoundAdapter(store repositories.RecordStore, limit int) *EntityAdapter {
	return &EntityAdapter{
		resultType: entities.ResultLostFound,
		store:      store,
		orderBy:    repositories.OrderBy{Field: "created_at", Direction: repositories.Desc},
		build:      predicates.LostFound,
		limit:      limit,
	}
}

// Type returns the result type this adapter produces.
func (a *EntityAdapter) Type() entities.ResultType {
	return a.resultType
}

// Applies reports whether a search with these filters covers this adapter.
func (a *EntityAdapter) Applies(f entities.SearchFilters) bool {
	return f.Includes(a.resultType)
}

// Fetch returns the matching records in the adapter's default order. It
// returns an empty slice without touching the store when the filters select
// another content type.
func (a *EntityAdapter) Fetch(ctx context.Context, query string, f entities.SearchFilters) ([]entities.Record, error) {
	if !a.Applies(f) {
		return []entities.Record{}, nil
	}

	query = strings.TrimSpace(query)
	records, err := a.store.QueryCollection(ctx, repositories.CollectionQuery{
		Collection: a.resultType.Collection(),
		Where:      a.build(query, f),
		OrderBy:    a.orderBy,
		Limit:      a.limit,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("collection", a.resultType.Collection()).
			Str("query", query).
			Msg("Collection search failed")
		return nil, err
	}
	return records, nil
}

// Get returns the records whose id is in ids, in store order. Ids that are
// not UUIDs match nothing.
func (a *EntityAdapter) Get(ctx context.Context, ids []string) ([]entities.Record, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []entities.Record{}, nil
	}

	records, err := a.store.QueryCollection(ctx, repositories.CollectionQuery{
		Collection: a.resultType.Collection(),
		Where:      repositories.Condition{}.And(repositories.Predicate{Field: "id", Op: repositories.OpIn, Value: ids}),
		OrderBy:    a.orderBy,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("collection", a.resultType.Collection()).
			Int("ids", len(ids)).
			Msg("Collection lookup failed")
		return nil, err
	}
	return records, nil
}

// validIDs keeps the ids the id column can hold. Anything else can never
// match a row, so it is dropped rather than sent to the store.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
