package feed

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrangle.org/core/models"
)

type countingDirectory struct {
	calls atomic.Int64
}

func (d *countingDirectory) Lookup(ctx context.Context, userID string) (models.Profile, error) {
	d.calls.Add(1)
	return models.Profile{ID: userID, DisplayName: "User " + userID}, nil
}

func TestSessionAuthorMemoizedPerPass(t *testing.T) {
	dir := &countingDirectory{}
	s := NewSession("viewer", dir)

	snap := Snapshot{
		Events: []models.Event{
			{ID: "e1", CreatedBy: "alice", Date: ts(200)},
			{ID: "e2", CreatedBy: "alice", Date: ts(100)},
		},
	}

	entries := s.Recompose(snap)
	require.Len(t, entries, 2)

	ctx := context.Background()
	a := s.Author(ctx, entries[0])
	b := s.Author(ctx, entries[1])

	assert.Equal(t, a, b)
	assert.Equal(t, int64(1), dir.calls.Load(), "same author resolves once per pass")
}

func TestSessionRecomposeDropsAuthorCache(t *testing.T) {
	dir := &countingDirectory{}
	s := NewSession("viewer", dir)

	snap := Snapshot{
		Events: []models.Event{{ID: "e1", CreatedBy: "alice", Date: ts(100)}},
	}

	entries := s.Recompose(snap)
	s.Author(context.Background(), entries[0])

	entries = s.Recompose(snap)
	s.Author(context.Background(), entries[0])

	assert.Equal(t, int64(2), dir.calls.Load(), "author cache must not outlive a pass")
}

func TestSessionInjectableClock(t *testing.T) {
	s := NewSession("viewer", nil)
	assert.NotNil(t, s.Now)
	assert.NotEmpty(t, s.ID)
}
