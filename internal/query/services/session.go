package services

import (
	"context"
	"strings"
	"sync"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
)

// State is the lifecycle of a Session's current round.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	// StateErrorPartial means the round finished but at least one adapter failed.
	StateErrorPartial State = "error_partial"
)

// Searcher runs one search round.
type Searcher interface {
	Search(ctx context.Context, query string, filters entities.SearchFilters) (*Outcome, error)
}

// Snapshot is a consistent view of a Session.
type Snapshot struct {
	Round       uint64
	Query       string
	Filters     entities.SearchFilters
	Results     []entities.SearchResult
	IsLoading   bool
	State       State
	FailedTypes []entities.ResultType
}

// Session keeps the latest results for a changing (query, filters) pair.
// Every Trigger starts a new round and cancels the one before it; only the
// most recent round may publish.
type Session struct {
	searcher Searcher
	base     context.Context
	stop     context.CancelFunc

	mu     sync.Mutex
	round  uint64
	cancel context.CancelFunc
	done   chan struct{}
	snap   Snapshot
}

// NewSession returns an idle session. Rounds inherit values from ctx and
// stop when it is cancelled or Close is called.
func NewSession(ctx context.Context, searcher Searcher) *Session {
	base, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	close(done)
	return &Session{
		searcher: searcher,
		base:     base,
		stop:     stop,
		done:     done,
		snap:     Snapshot{Results: []entities.SearchResult{}, State: StateIdle},
	}
}

// Trigger starts a round for query and filters and returns its number.
func (s *Session) Trigger(query string, filters entities.SearchFilters) uint64 {
	query = strings.TrimSpace(query)
	if filters.ContentType == "" {
		filters.ContentType = entities.ContentAll
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.round++
	round := s.round
	done := make(chan struct{})
	s.done = done

	s.snap.Round = round
	s.snap.Query = query
	s.snap.Filters = filters

	if query == "" && filters.ContentType == entities.ContentAll {
		s.snap.Results = []entities.SearchResult{}
		s.snap.FailedTypes = nil
		s.snap.IsLoading = false
		s.snap.State = StateIdle
		close(done)
		return round
	}

	// Previous results stay visible until this round publishes.
	s.snap.IsLoading = true
	s.snap.State = StateLoading

	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	go s.run(ctx, round, done, query, filters)

	return round
}

func (s *Session) run(ctx context.Context, round uint64, done chan struct{}, query string, filters entities.SearchFilters) {
	defer close(done)

	out, err := s.searcher.Search(ctx, query, filters)

	s.mu.Lock()
	defer s.mu.Unlock()

	if round != s.round {
		observability.LoggerFromContext(ctx).Debug().
			Uint64("round", round).
			Uint64("current", s.round).
			Msg("Discarding superseded search round")
		return
	}

	s.cancel = nil
	s.snap.IsLoading = false
	if err != nil {
		// Only a cancelled session gets here; keep what was last shown.
		s.snap.State = StateIdle
		return
	}

	s.snap.Results = out.Results
	s.snap.FailedTypes = out.FailedTypes
	if out.Partial() {
		s.snap.State = StateErrorPartial
	} else {
		s.snap.State = StateReady
	}
}

// Snapshot returns the current results and loading state together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snap
	snap.Results = append([]entities.SearchResult(nil), s.snap.Results...)
	if snap.Results == nil {
		snap.Results = []entities.SearchResult{}
	}
	snap.FailedTypes = append([]entities.ResultType(nil), s.snap.FailedTypes...)
	return snap
}

// Wait blocks until the latest round settles, following any rounds
// triggered while waiting.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		done, round := s.done, s.round
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}

		s.mu.Lock()
		settled := round == s.round
		s.mu.Unlock()
		if settled {
			return s.Snapshot(), nil
		}
	}
}

// Close cancels the running round. Later Triggers start rounds that end
// immediately.
func (s *Session) Close() {
	s.stop()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}
