package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

func newMockAnalytics(t *testing.T) (repositories.SearchAnalyticsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSearchAnalyticsAdapter(postgres.NewFromDB(db)), mock
}

func TestSearchAnalyticsAdapter_LogEvent(t *testing.T) {
	repo, mock := newMockAnalytics(t)

	mock.ExpectExec(sqlPattern(
		`INSERT INTO "search_analytics"`,
		`'lost_found'`,
		`'{"lost_found"}'`,
		`'wallet'`,
	)).WillReturnResult(sqlmock.NewResult(0, 1))

	event := &entities.SearchEvent{
		Query:       "wallet",
		ContentType: entities.ContentLostFound,
		ResultCount: 0,
		FailedTypes: []entities.ResultType{entities.ResultLostFound},
		LatencyMs:   12,
	}
	err := repo.LogEvent(context.Background(), event)

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchAnalyticsAdapter_LogEventFailure(t *testing.T) {
	repo, mock := newMockAnalytics(t)

	mock.ExpectExec(`INSERT INTO "search_analytics"`).WillReturnError(errors.New("relation does not exist"))

	err := repo.LogEvent(context.Background(), &entities.SearchEvent{Query: "x"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStore))
}

func TestSearchAnalyticsAdapter_GetZeroResultQueries(t *testing.T) {
	repo, mock := newMockAnalytics(t)
	at := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlPattern(
		`FROM "search_analytics"`,
		`"result_count" = 0`,
		`ORDER BY "created_at" DESC`,
		`LIMIT 100`,
	)).WillReturnRows(sqlmock.NewRows([]string{"id", "query", "content_type", "result_count", "failed_types", "latency_ms", "created_at"}).
		AddRow([]byte("a1"), "origami club", "events", 0, []byte("{}"), 8, at).
		AddRow([]byte("a2"), "chem notes", "all", 0, []byte("{note,event}"), 40, at))

	events, err := repo.GetZeroResultQueries(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a1", events[0].ID)
	assert.Equal(t, entities.ContentEvents, events[0].ContentType)
	assert.Empty(t, events[0].FailedTypes)
	assert.Equal(t, []entities.ResultType{entities.ResultNote, entities.ResultEvent}, events[1].FailedTypes)
	assert.Equal(t, 40, events[1].LatencyMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
