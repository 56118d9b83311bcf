package feed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quadrangle.org/core/models"
	"quadrangle.org/core/profile"
)

// Session is the explicit composition-session state that the original
// screens kept as scattered component-locals: the active filter, the
// viewing user, the clock, and the author cache for the current pass.
// Passing it around instead of sharing globals keeps the composer and
// the highlight controller independently testable.
type Session struct {
	ID       string
	Filter   Filter
	ViewerID string

	// Now is injected so tests can pin evaluation time.
	Now func() time.Time

	directory profile.Directory
	profiles  *profile.PassCache
}

func NewSession(viewerID string, dir profile.Directory) *Session {
	return &Session{
		ID:        uuid.NewString(),
		ViewerID:  viewerID,
		Now:       time.Now,
		directory: dir,
		profiles:  profile.NewPassCache(dir),
	}
}

// Recompose runs a fresh composition pass over the snapshot. The
// author cache is discarded and rebuilt: profiles are memoized per
// pass, never across passes.
func (s *Session) Recompose(snap Snapshot) []Entry {
	s.profiles = profile.NewPassCache(s.directory)
	return Compose(snap)
}

// Author resolves the profile for an entry's author through the
// current pass's cache.
func (s *Session) Author(ctx context.Context, e Entry) models.Profile {
	return s.profiles.Resolve(ctx, e.CreatedBy())
}

// Profiles exposes the current pass cache, mainly for tests.
func (s *Session) Profiles() *profile.PassCache {
	return s.profiles
}
