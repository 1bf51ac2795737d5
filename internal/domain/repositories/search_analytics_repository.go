package repositories

import (
	"context"

	"github.com/campushub/portal/backend/internal/domain/entities"
)

// SearchAnalyticsRepository persists search rounds.
type SearchAnalyticsRepository interface {
	LogEvent(ctx context.Context, event *entities.SearchEvent) error
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}
