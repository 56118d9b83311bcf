package profile

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"

	"quadrangle.org/core/models"
)

// CacheDirectory layers a process-wide ristretto cache over another
// directory. Hits and misses are cached with separate TTLs: a failed
// lookup is remembered briefly so a feed full of entries by a deleted
// account does not hammer the backend.
type CacheDirectory struct {
	inner Directory
	cache *ristretto.Cache

	hitTTL      time.Duration
	negativeTTL time.Duration
}

func NewCacheDirectory(inner Directory) (*CacheDirectory, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &CacheDirectory{
		inner:       inner,
		cache:       cache,
		hitTTL:      24 * time.Hour,
		negativeTTL: 5 * time.Minute,
	}, nil
}

func (d *CacheDirectory) Lookup(ctx context.Context, userID string) (models.Profile, error) {
	if v, ok := d.cache.Get(userID); ok {
		return v.(models.Profile), nil
	}

	p, err := d.inner.Lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			d.cache.SetWithTTL(userID, models.UnknownProfile(userID), 1, d.negativeTTL)
		}
		return models.Profile{}, err
	}

	d.cache.SetWithTTL(userID, p, 1, d.hitTTL)
	return p, nil
}

// Purge drops a cached entry, typically after the user edits their
// profile.
func (d *CacheDirectory) Purge(userID string) {
	d.cache.Del(userID)
}

// Wait blocks until buffered cache writes have been applied. Lookups
// race the write buffer otherwise.
func (d *CacheDirectory) Wait() {
	d.cache.Wait()
}
