package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

const searchAnalyticsTable = "search_analytics"

type SearchAnalyticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

func NewSearchAnalyticsAdapter(client *postgres.Client) repositories.SearchAnalyticsRepository {
	return &SearchAnalyticsAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	failed := pq.StringArray{}
	for _, t := range event.FailedTypes {
		failed = append(failed, string(t))
	}

	query, _, err := a.db.Insert(searchAnalyticsTable).Rows(goqu.Record{
		"id":           event.ID,
		"query":        event.Query,
		"content_type": string(event.ContentType),
		"result_count": event.ResultCount,
		"failed_types": failed,
		"latency_ms":   event.LatencyMs,
		"created_at":   event.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build search event insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query); err != nil {
		return apperrors.NewStoreError("failed to log search event", err)
	}
	return nil
}

func (a *SearchAnalyticsAdapter) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query, _, err := a.db.From(searchAnalyticsTable).
		Select("id", "query", "content_type", "result_count", "failed_types", "latency_ms", "created_at").
		Where(goqu.C("result_count").Eq(0)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build zero result query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to get zero result queries", err)
	}
	defer rows.Close()

	events := []*entities.SearchEvent{}
	for rows.Next() {
		e := &entities.SearchEvent{}
		var contentType string
		var failed pq.StringArray
		if err := rows.Scan(&e.ID, &e.Query, &contentType, &e.ResultCount, &failed, &e.LatencyMs, &e.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("failed to scan search event", err)
		}
		e.ContentType = entities.ContentType(contentType)
		for _, t := range failed {
			e.FailedTypes = append(e.FailedTypes, entities.ResultType(t))
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("failed to read search events", err)
	}

	return events, nil
}
