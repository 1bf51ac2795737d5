// Package loaders batches per-id result lookups into one query per collection.
package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/query/normalize"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

// Lookup fetches raw records of one result type by id.
type Lookup interface {
	Type() entities.ResultType
	Get(ctx context.Context, ids []string) ([]entities.Record, error)
}

// Loaders holds one loader per result type. Create a fresh set per request
// so cached results never outlive it.
type Loaders struct {
	byType map[entities.ResultType]*dataloader.Loader[string, entities.SearchResult]
}

// NewLoaders builds loaders over lookups. wait is how long a loader collects
// keys before issuing its batch.
func NewLoaders(wait time.Duration, lookups ...Lookup) *Loaders {
	l := &Loaders{byType: make(map[entities.ResultType]*dataloader.Loader[string, entities.SearchResult], len(lookups))}
	for _, lookup := range lookups {
		l.byType[lookup.Type()] = dataloader.NewBatchedLoader(
			batchFn(lookup),
			dataloader.WithWait[string, entities.SearchResult](wait),
		)
	}
	return l
}

func batchFn(lookup Lookup) dataloader.BatchFunc[string, entities.SearchResult] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[entities.SearchResult] {
		results := make([]*dataloader.Result[entities.SearchResult], len(keys))

		records, err := lookup.Get(ctx, keys)
		var found []entities.SearchResult
		if err == nil {
			found, err = normalize.Results(records, lookup.Type())
		}

		byID := make(map[string]entities.SearchResult, len(found))
		for _, r := range found {
			byID[r.ID] = r
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[entities.SearchResult]{Error: err}
			} else if r, ok := byID[key]; ok {
				results[i] = &dataloader.Result[entities.SearchResult]{Data: r}
			} else {
				results[i] = &dataloader.Result[entities.SearchResult]{
					Error: apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", lookup.Type(), key)),
				}
			}
		}
		return results
	}
}

// Load queues ref and returns a thunk that blocks until its batch completes.
func (l *Loaders) Load(ctx context.Context, ref entities.ResultRef) dataloader.Thunk[entities.SearchResult] {
	loader, ok := l.byType[ref.Type]
	if !ok {
		err := apperrors.NewValidationError(fmt.Sprintf("no lookup for result type %q", ref.Type))
		return func() (entities.SearchResult, error) {
			return entities.SearchResult{}, err
		}
	}
	return loader.Load(ctx, ref.ID)
}
