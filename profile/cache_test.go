package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrangle.org/core/models"
)

func TestCacheDirectoryMemoizesHits(t *testing.T) {
	dir := &fakeDirectory{
		profiles: map[string]models.Profile{
			"alice": {ID: "alice", DisplayName: "Alice"},
		},
	}
	cached, err := NewCacheDirectory(dir)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := cached.Lookup(ctx, "alice")
	require.NoError(t, err)
	cached.Wait()

	second, err := cached.Lookup(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), dir.lookups.Load())
}

func TestCacheDirectoryCachesNegativeLookups(t *testing.T) {
	dir := &fakeDirectory{}
	cached, err := NewCacheDirectory(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.Lookup(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	cached.Wait()

	// The miss is remembered: the second lookup serves the sentinel
	// without going back to the backend.
	p, err := cached.Lookup(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, p.Unknown())
	assert.Equal(t, int64(1), dir.lookups.Load())
}

func TestCacheDirectoryPurge(t *testing.T) {
	dir := &fakeDirectory{
		profiles: map[string]models.Profile{
			"alice": {ID: "alice", DisplayName: "Alice"},
		},
	}
	cached, err := NewCacheDirectory(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.Lookup(ctx, "alice")
	require.NoError(t, err)
	cached.Wait()

	cached.Purge("alice")
	cached.Wait()

	_, err = cached.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), dir.lookups.Load(), "a purged entry resolves through the backend again")
}
