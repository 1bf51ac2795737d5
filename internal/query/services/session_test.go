package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal/backend/internal/domain/entities"
)

type searchFunc func(ctx context.Context, query string, filters entities.SearchFilters) (*Outcome, error)

func (f searchFunc) Search(ctx context.Context, query string, filters entities.SearchFilters) (*Outcome, error) {
	return f(ctx, query, filters)
}

func noteOutcome(ids ...string) *Outcome {
	out := &Outcome{Results: []entities.SearchResult{}}
	for _, id := range ids {
		out.Results = append(out.Results, entities.NewNoteResult(&entities.Note{ID: id, Title: id}))
	}
	return out
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSession_LoadingThenReady(t *testing.T) {
	release := make(chan struct{})
	s := NewSession(context.Background(), searchFunc(func(ctx context.Context, q string, f entities.SearchFilters) (*Outcome, error) {
		<-release
		return noteOutcome("n1"), nil
	}))
	defer s.Close()

	s.Trigger("optics", entities.SearchFilters{})

	snap := s.Snapshot()
	assert.True(t, snap.IsLoading)
	assert.Equal(t, StateLoading, snap.State)
	assert.Equal(t, "optics", snap.Query)
	assert.Equal(t, entities.ContentAll, snap.Filters.ContentType)

	close(release)
	snap, err := s.Wait(waitCtx(t))

	require.NoError(t, err)
	assert.False(t, snap.IsLoading)
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, []string{"note:n1"}, ids(snap.Results))
}

func TestSession_EmptyQueryAllIsIdle(t *testing.T) {
	var calls atomic.Int32
	s := NewSession(context.Background(), searchFunc(func(ctx context.Context, q string, f entities.SearchFilters) (*Outcome, error) {
		calls.Add(1)
		return noteOutcome("n1"), nil
	}))
	defer s.Close()

	s.Trigger("  ", entities.SearchFilters{ContentType: entities.ContentAll})
	snap := s.Snapshot()

	assert.False(t, snap.IsLoading)
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Results)
	assert.Zero(t, calls.Load())
}

func TestSession_PartialFailure(t *testing.T) {
	notes := newFake(entities.ResultNote, "n1")
	events := newFake(entities.ResultEvent)
	events.err = errors.New("events unavailable")
	svc := NewSearchService(notes, events, newFake(entities.ResultLostFound, "l1"))

	s := NewSession(context.Background(), svc)
	defer s.Close()

	s.Trigger("lab", entities.SearchFilters{})
	snap, err := s.Wait(waitCtx(t))

	require.NoError(t, err)
	assert.False(t, snap.IsLoading)
	assert.Equal(t, StateErrorPartial, snap.State)
	assert.Equal(t, []string{"note:n1", "lost_found:l1"}, ids(snap.Results))
	assert.Equal(t, []entities.ResultType{entities.ResultEvent}, snap.FailedTypes)
}

func TestSession_SupersededRoundIsDiscarded(t *testing.T) {
	releaseA := make(chan struct{})
	var aCancelled atomic.Bool
	var aReturned atomic.Bool

	s := NewSession(context.Background(), searchFunc(func(ctx context.Context, q string, f entities.SearchFilters) (*Outcome, error) {
		if q == "A" {
			<-ctx.Done()
			aCancelled.Store(true)
			<-releaseA
			defer aReturned.Store(true)
			// Simulates a slow backend answering after the round was replaced.
			return noteOutcome("from-a"), nil
		}
		return noteOutcome("from-b"), nil
	}))
	defer s.Close()

	first := s.Trigger("A", entities.SearchFilters{})
	second := s.Trigger("B", entities.SearchFilters{})
	assert.Greater(t, second, first)

	snap, err := s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"note:from-b"}, ids(snap.Results))
	assert.Equal(t, second, snap.Round)

	assert.Eventually(t, aCancelled.Load, time.Second, 5*time.Millisecond)
	close(releaseA)
	assert.Eventually(t, aReturned.Load, time.Second, 5*time.Millisecond)

	assert.Never(t, func() bool {
		return len(s.Snapshot().Results) != 1 || s.Snapshot().Results[0].ID != "from-b"
	}, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, "B", s.Snapshot().Query)
}

func TestSession_WaitFollowsNewRounds(t *testing.T) {
	gate := make(chan struct{})
	s := NewSession(context.Background(), searchFunc(func(ctx context.Context, q string, f entities.SearchFilters) (*Outcome, error) {
		if q == "slow" {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return noteOutcome(q), nil
	}))
	defer s.Close()

	s.Trigger("slow", entities.SearchFilters{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Trigger("fast", entities.SearchFilters{})
	}()

	snap, err := s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "fast", snap.Query)
	assert.Equal(t, []string{"note:fast"}, ids(snap.Results))
	assert.False(t, snap.IsLoading)
}

func TestSession_WaitRespectsContext(t *testing.T) {
	s := NewSession(context.Background(), searchFunc(func(ctx context.Context, q string, f entities.SearchFilters) (*Outcome, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	defer s.Close()

	s.Trigger("stuck", entities.SearchFilters{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, s.Snapshot().IsLoading)
}

func TestSession_CloseCancelsRound(t *testing.T) {
	s := NewSession(context.Background(), searchFunc(func(ctx context.Context, q string, f entities.SearchFilters) (*Outcome, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	s.Trigger("x", entities.SearchFilters{})
	s.Close()

	snap, err := s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.False(t, snap.IsLoading)
	assert.Equal(t, StateIdle, snap.State)
}
