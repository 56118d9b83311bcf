package profile

import (
	"context"
	"sync"

	"quadrangle.org/core/models"
)

// PassCache memoizes author lookups for the lifetime of one
// composition pass. It is discarded and rebuilt on every recompose:
// cross-pass caching is the CacheDirectory's job.
//
// Entries double as in-flight markers. The first Resolve for an
// identifier issues the lookup; any Resolve that arrives while it is
// still running waits for that same result instead of issuing a
// duplicate.
type PassCache struct {
	dir Directory

	mu      sync.Mutex
	entries map[string]*passEntry
}

type passEntry struct {
	done    chan struct{}
	profile models.Profile
}

func NewPassCache(dir Directory) *PassCache {
	return &PassCache{
		dir:     dir,
		entries: make(map[string]*passEntry),
	}
}

// Resolve returns the author's profile, or the Unknown sentinel when
// the identifier is empty or the lookup fails. Failures are cached:
// the pass never retries an identifier.
func (c *PassCache) Resolve(ctx context.Context, userID string) models.Profile {
	c.mu.Lock()
	if e, ok := c.entries[userID]; ok {
		c.mu.Unlock()
		<-e.done
		return e.profile
	}

	e := &passEntry{done: make(chan struct{})}
	c.entries[userID] = e
	c.mu.Unlock()

	defer close(e.done)

	if userID == "" || c.dir == nil {
		e.profile = models.UnknownProfile(userID)
		return e.profile
	}

	p, err := c.dir.Lookup(ctx, userID)
	if err != nil {
		e.profile = models.UnknownProfile(userID)
		return e.profile
	}

	e.profile = p
	return p
}

// Len reports the number of distinct identifiers seen this pass.
func (c *PassCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ResolveAll resolves a set of identifiers with bounded concurrency
// and returns the results keyed by identifier. The per-identifier
// de-duplication of Resolve makes repeats free.
func (c *PassCache) ResolveAll(ctx context.Context, userIDs []string) map[string]models.Profile {
	const maxInFlight = 8

	sem := make(chan struct{}, maxInFlight)
	var wg sync.WaitGroup

	results := make([]models.Profile, len(userIDs))
	for i, id := range userIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = c.Resolve(ctx, id)
		}(i, id)
	}
	wg.Wait()

	out := make(map[string]models.Profile, len(userIDs))
	for i, id := range userIDs {
		out[id] = results[i]
	}
	return out
}
