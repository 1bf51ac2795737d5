package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
)

const trackTimeout = 5 * time.Second

type SearchAnalyticsService struct {
	repo    repositories.SearchAnalyticsRepository
	pending sync.WaitGroup
}

func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo}
}

// TrackSearch records the event in the background. It never blocks the caller.
func (s *SearchAnalyticsService) TrackSearch(ctx context.Context, event *entities.SearchEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	logger := observability.LoggerFromContext(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		// The request context is usually gone by the time this runs.
		bgCtx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()

		if err := s.repo.LogEvent(bgCtx, event); err != nil {
			logger.Warn().Err(err).Str("query", event.Query).Msg("Failed to log search event")
		}
	}()
}

// Flush waits for in-flight TrackSearch writes.
func (s *SearchAnalyticsService) Flush() {
	s.pending.Wait()
}

func (s *SearchAnalyticsService) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	return s.repo.GetZeroResultQueries(ctx, limit)
}
