package feedview

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"quadrangle.org/core/feed"
	"quadrangle.org/core/feedview/config"
	"quadrangle.org/core/feedview/db"
	"quadrangle.org/core/log"
	"quadrangle.org/core/models"
	"quadrangle.org/core/profile"
	"quadrangle.org/core/stream"
	"quadrangle.org/core/stream/cursor"
	"quadrangle.org/core/upcoming"
)

// pruneHorizon is how long finished events stay in the cold-start
// snapshot before the scheduled refresh drops them.
const pruneHorizon = 30 * 24 * time.Hour

// State owns the live feed: the latest snapshot per collection, the
// composed entries derived from it, and the resolved author profiles
// for the current pass. Every delivery recomputes all derived state
// and swaps it in atomically; readers never observe a half-finished
// pass.
type State struct {
	cfg         *config.Config
	collections *config.Collections
	db          *db.DB
	consumer    *stream.Consumer
	directory   profile.Directory
	crond       *cron.Cron
	logger      *slog.Logger

	mu      sync.RWMutex
	snap    feed.Snapshot
	entries []feed.Entry
	authors map[string]models.Profile

	cancels []func()
}

func Make(ctx context.Context, cfg *config.Config) (*State, error) {
	logger := log.FromContext(ctx)

	collections, err := config.LoadCollections(cfg.Core.CollectionsFile)
	if err != nil {
		return nil, err
	}

	d, err := db.Make(cfg.Core.DbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	directory, err := profile.NewCacheDirectory(profile.NewHTTPDirectory(cfg.Core.BackendHost))
	if err != nil {
		return nil, err
	}

	cursors, err := makeCursorStore(cfg)
	if err != nil {
		return nil, err
	}

	s := &State{
		cfg:         cfg,
		collections: collections,
		db:          d,
		directory:   directory,
		logger:      logger,
		authors:     make(map[string]models.Profile),
	}

	s.consumer = stream.NewConsumer(stream.ConsumerConfig{
		Endpoint:          cfg.Stream.Endpoint,
		Collections:       collections.Kinds(),
		RetryInterval:     cfg.Stream.RetryInterval,
		MaxRetryInterval:  cfg.Stream.MaxRetryInterval,
		ConnectionTimeout: cfg.Stream.ConnectionTimeout,
		Logger:            log.SubLogger(logger, "stream"),
		CursorStore:       cursors,
	})

	for _, kind := range collections.Kinds() {
		kind := kind
		cancel, err := s.consumer.Subscribe(kind, func(recs stream.Records) {
			s.onDelivery(ctx, recs)
		})
		if err != nil {
			return nil, err
		}
		s.cancels = append(s.cancels, cancel)
	}

	// Cold start: compose whatever the previous run persisted so the
	// API serves a feed before the stream reconnects.
	snap, err := db.LoadSnapshot(d)
	if err != nil {
		logger.Error("failed to load persisted snapshot", "err", err)
	} else {
		s.mu.Lock()
		s.snap = snap
		s.mu.Unlock()
		s.recompose(ctx)
	}

	s.crond = cron.New()
	_, err = s.crond.AddFunc(cfg.Core.RefreshCron, func() {
		s.refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", cfg.Core.RefreshCron, err)
	}

	return s, nil
}

func makeCursorStore(cfg *config.Config) (cursor.Store, error) {
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cursor.NewRedisStore(rdb), nil
	}
	return cursor.NewSQLiteStore(cfg.Core.DbPath, cursor.WithTableName("stream_cursors"))
}

// Start begins consuming the live stream and running the scheduled
// refresh. It returns immediately.
func (s *State) Start(ctx context.Context) {
	s.consumer.Start(ctx)
	s.crond.Start()
}

func (s *State) Close() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.crond.Stop()
	s.consumer.Stop()
	return s.db.Close()
}

// Consumer exposes the live subscriber for per-connection consumers
// like the upcoming-events push channel.
func (s *State) Consumer() stream.Subscriber {
	return s.consumer
}

func (s *State) Collections() *config.Collections {
	return s.collections
}

func (s *State) Directory() profile.Directory {
	return s.directory
}

// onDelivery folds one full-collection delivery into the snapshot,
// persists it, and recomposes.
func (s *State) onDelivery(ctx context.Context, recs stream.Records) {
	s.mu.Lock()
	switch recs.Kind {
	case models.KindEvent:
		s.snap.Events = recs.Events
	case models.KindGroup:
		s.snap.Groups = recs.Groups
	case models.KindResource:
		s.snap.Resources = recs.Resources
	}
	s.mu.Unlock()

	if err := s.persistRecords(recs); err != nil {
		s.logger.Error("failed to persist snapshot", "kind", recs.Kind, "err", err)
	}

	s.recompose(ctx)
}

// persistRecords writes the snapshot transactionally: a cold start
// never observes one kind half-replaced.
func (s *State) persistRecords(recs stream.Records) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := db.ReplaceRecords(tx, recs); err != nil {
		return err
	}
	return tx.Commit()
}

// recompose runs a full composition pass: compose, resolve authors
// through a fresh per-pass cache, then swap everything in at once.
func (s *State) recompose(ctx context.Context) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	entries := feed.Compose(snap)

	ids := distinctAuthors(entries)
	pass := profile.NewPassCache(s.directory)
	authors := pass.ResolveAll(ctx, ids)

	for _, p := range authors {
		if err := db.PutProfile(s.db, p); err != nil {
			s.logger.Error("failed to persist profile", "id", p.ID, "err", err)
			break
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.authors = authors
	s.mu.Unlock()

	s.logger.Debug("recomposed feed", "entries", len(entries), "authors", len(ids))
}

func (s *State) refresh(ctx context.Context) {
	s.recompose(ctx)

	if n, err := db.PruneEventsBefore(s.db, time.Now().Add(-pruneHorizon)); err != nil {
		s.logger.Error("prune failed", "err", err)
	} else if n > 0 {
		s.logger.Info("pruned stale events", "count", n)
	}
}

func distinctAuthors(entries []feed.Entry) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range entries {
		id := e.CreatedBy()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Entries returns the current composed feed. The slice is shared and
// must be treated as read-only.
func (s *State) Entries() []feed.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Snapshot returns the latest raw record sets.
func (s *State) Snapshot() feed.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Author returns the resolved profile for an author id as of the
// current pass, or the Unknown sentinel.
func (s *State) Author(id string) models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.authors[id]; ok {
		return p
	}
	return models.UnknownProfile(id)
}

// UpcomingFor computes the user's upcoming events from the current
// snapshot.
func (s *State) UpcomingFor(userID string, now time.Time) []models.Event {
	snap := s.Snapshot()
	return upcoming.Resolve(userID, snap.Groups, snap.Events, now)
}
