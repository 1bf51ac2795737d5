package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

// searchableCollections are the only tables QueryCollection reads from.
var searchableCollections = map[string]struct{}{
	entities.CollectionNotes:     {},
	entities.CollectionEvents:    {},
	entities.CollectionLostFound: {},
}

// RecordStore implements repositories.RecordStore on Postgres.
type RecordStore struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRecordStore creates a new Postgres record store
func NewRecordStore(client *postgres.Client) repositories.RecordStore {
	return &RecordStore{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// QueryCollection selects every column of the matching rows.
func (s *RecordStore) QueryCollection(ctx context.Context, q repositories.CollectionQuery) ([]entities.Record, error) {
	query, args, err := s.buildQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError(fmt.Sprintf("failed to query %s", q.Collection), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewStoreError(fmt.Sprintf("failed to read %s columns", q.Collection), err)
	}

	records := []entities.Record{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewStoreError(fmt.Sprintf("failed to scan %s row", q.Collection), err)
		}

		record := make(entities.Record, len(columns))
		for i, col := range columns {
			// lib/pq hands uuid and array columns back as raw text.
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
				continue
			}
			record[col] = values[i]
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError(fmt.Sprintf("error iterating %s", q.Collection), err)
	}

	return records, nil
}

func (s *RecordStore) buildQuery(q repositories.CollectionQuery) (string, []interface{}, error) {
	if _, ok := searchableCollections[q.Collection]; !ok {
		return "", nil, apperrors.NewValidationError(fmt.Sprintf("unknown collection %q", q.Collection))
	}

	ds := s.db.From(q.Collection)

	for _, group := range q.Where {
		exprs := make([]exp.Expression, 0, len(group))
		for _, p := range group {
			e, err := predicateExpression(p)
			if err != nil {
				return "", nil, err
			}
			exprs = append(exprs, e)
		}
		switch len(exprs) {
		case 0:
		case 1:
			ds = ds.Where(exprs[0])
		default:
			ds = ds.Where(goqu.Or(exprs...))
		}
	}

	if q.OrderBy.Field != "" {
		col := goqu.I(q.OrderBy.Field)
		if q.OrderBy.Direction == repositories.Desc {
			ds = ds.Order(col.Desc())
		} else {
			ds = ds.Order(col.Asc())
		}
	}

	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s query", q.Collection), err)
	}
	return query, args, nil
}

func predicateExpression(p repositories.Predicate) (exp.Expression, error) {
	col := goqu.I(p.Field)
	switch p.Op {
	case repositories.OpSubstring:
		s, ok := p.Value.(string)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("substring predicate on %s needs a string", p.Field))
		}
		return col.ILike("%" + escapeLike(s) + "%"), nil
	case repositories.OpEq:
		return col.Eq(p.Value), nil
	case repositories.OpGte:
		return col.Gte(p.Value), nil
	case repositories.OpLte:
		return col.Lte(p.Value), nil
	case repositories.OpIn:
		return col.In(p.Value), nil
	}
	return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported operator %q", p.Op))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
