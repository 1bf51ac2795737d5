package loaders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal/backend/internal/domain/entities"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

type stubLookup struct {
	typ     entities.ResultType
	records map[string]entities.Record
	err     error

	mu      sync.Mutex
	batches [][]string
}

func (s *stubLookup) Type() entities.ResultType { return s.typ }

func (s *stubLookup) Get(ctx context.Context, ids []string) ([]entities.Record, error) {
	s.mu.Lock()
	s.batches = append(s.batches, append([]string(nil), ids...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []entities.Record
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestLoaders_BatchesPerType(t *testing.T) {
	notes := &stubLookup{typ: entities.ResultNote, records: map[string]entities.Record{
		"n1": {"id": "n1", "title": "Optics"},
		"n2": {"id": "n2", "title": "Waves"},
	}}
	events := &stubLookup{typ: entities.ResultEvent, records: map[string]entities.Record{
		"e1": {"id": "e1", "title": "Hackathon"},
	}}
	l := NewLoaders(5*time.Millisecond, notes, events)
	ctx := context.Background()

	t1 := l.Load(ctx, entities.ResultRef{Type: entities.ResultNote, ID: "n1"})
	t2 := l.Load(ctx, entities.ResultRef{Type: entities.ResultEvent, ID: "e1"})
	t3 := l.Load(ctx, entities.ResultRef{Type: entities.ResultNote, ID: "n2"})

	r1, err := t1()
	require.NoError(t, err)
	r2, err := t2()
	require.NoError(t, err)
	r3, err := t3()
	require.NoError(t, err)

	assert.Equal(t, "Optics", r1.Title)
	assert.Equal(t, entities.ResultEvent, r2.Type)
	assert.Equal(t, "Waves", r3.Title)

	require.Len(t, notes.batches, 1)
	assert.ElementsMatch(t, []string{"n1", "n2"}, notes.batches[0])
	assert.Len(t, events.batches, 1)
}

func TestLoaders_Missing(t *testing.T) {
	notes := &stubLookup{typ: entities.ResultNote, records: map[string]entities.Record{}}
	l := NewLoaders(time.Millisecond, notes)

	_, err := l.Load(context.Background(), entities.ResultRef{Type: entities.ResultNote, ID: "gone"})()

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestLoaders_StoreFailure(t *testing.T) {
	notes := &stubLookup{typ: entities.ResultNote, err: apperrors.NewStoreError("failed to query notes", errors.New("boom"))}
	l := NewLoaders(time.Millisecond, notes)

	_, err := l.Load(context.Background(), entities.ResultRef{Type: entities.ResultNote, ID: "n1"})()

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStore))
}

func TestLoaders_UnknownType(t *testing.T) {
	l := NewLoaders(time.Millisecond)

	_, err := l.Load(context.Background(), entities.ResultRef{Type: entities.ResultLostFound, ID: "x"})()

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
