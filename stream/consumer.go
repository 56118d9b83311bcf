package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quadrangle.org/core/log"
	"quadrangle.org/core/models"
	"quadrangle.org/core/stream/cursor"
)

// ConsumerConfig tunes the websocket consumer. Zero values are filled
// with defaults by NewConsumer.
type ConsumerConfig struct {
	// Endpoint is the backend's snapshot-stream websocket URL.
	Endpoint string
	// Collections are subscribed on connect.
	Collections []models.EntityKind

	RetryInterval     time.Duration
	MaxRetryInterval  time.Duration
	ConnectionTimeout time.Duration
	Logger            *slog.Logger
	CursorStore       cursor.Store
}

// Consumer maintains one websocket connection to the backend's
// snapshot stream and fans full-collection deliveries out to local
// subscribers. It reconnects with capped backoff and resumes from the
// cursor store, so a restart replays at most one snapshot per
// collection.
type Consumer struct {
	id     string
	cfg    ConsumerConfig
	dialer *websocket.Dialer
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[models.EntityKind]map[string]func(Records)
	latest map[models.EntityKind]*Records

	connMu sync.Mutex
	conn   *websocket.Conn

	wg sync.WaitGroup
}

func NewConsumer(cfg ConsumerConfig) *Consumer {
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 2 * time.Second
	}
	if cfg.MaxRetryInterval == 0 {
		cfg.MaxRetryInterval = 2 * time.Minute
	}
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New("stream")
	}
	if cfg.CursorStore == nil {
		cfg.CursorStore = &cursor.MemoryStore{}
	}

	return &Consumer{
		id:     uuid.NewString(),
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
		logger: cfg.Logger,
		subs:   make(map[models.EntityKind]map[string]func(Records)),
		latest: make(map[models.EntityKind]*Records),
	}
}

// Subscribe registers fn for one collection. The latest known delivery
// is replayed synchronously before Subscribe returns, so consumers
// start from current state instead of waiting for the next push.
func (c *Consumer) Subscribe(kind models.EntityKind, fn func(Records)) (func(), error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("subscribe: unknown entity kind %q", kind)
	}

	key := uuid.NewString()

	c.mu.Lock()
	if c.subs[kind] == nil {
		c.subs[kind] = make(map[string]func(Records))
	}
	c.subs[kind][key] = fn
	replay := c.latest[kind]
	c.mu.Unlock()

	if replay != nil {
		fn(*replay)
	}

	cancel := func() {
		c.mu.Lock()
		delete(c.subs[kind], key)
		c.mu.Unlock()
	}
	return cancel, nil
}

// Start runs the connection loop until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.connectionLoop(ctx)
	}()
}

// Stop closes the active connection and waits for the loop to exit.
// Call only after the Start context is cancelled.
func (c *Consumer) Stop() {
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()
	c.wg.Wait()
}

func (c *Consumer) connectionLoop(ctx context.Context) {
	err := retry.Do(
		func() error {
			if err := c.runConnection(ctx); err != nil {
				c.logger.Error("connection lost", "endpoint", c.cfg.Endpoint, "err", err)
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0), // retry forever, ctx cancellation stops us
		retry.Delay(c.cfg.RetryInterval),
		retry.MaxDelay(c.cfg.MaxRetryInterval),
		retry.MaxJitter(c.cfg.RetryInterval/5),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
	)
	if err != nil && ctx.Err() == nil {
		c.logger.Error("connection loop exited", "err", err)
	}
}

type subscribeMsg struct {
	Subscribe string `json:"subscribe"`
	Cursor    int64  `json:"cursor,omitempty"`
}

func (c *Consumer) runConnection(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectionTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dialCtx, c.cfg.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.Endpoint, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	defer conn.Close()

	for _, kind := range c.cfg.Collections {
		msg := subscribeMsg{
			Subscribe: string(kind),
			Cursor:    c.cfg.CursorStore.Get(c.cursorKey(kind)),
		}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", kind, err)
		}
	}

	c.logger.Info("connected", "endpoint", c.cfg.Endpoint, "collections", c.cfg.Collections)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var f frame
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &f); err != nil {
			c.logger.Error("malformed frame", "err", err)
			continue
		}

		recs, err := decodeFrame(f)
		if err != nil {
			// A bad snapshot is dropped; the next push for the
			// collection supersedes it anyway.
			c.logger.Error("dropping snapshot", "kind", f.Kind, "err", err)
			continue
		}

		c.cfg.CursorStore.Set(c.cursorKey(recs.Kind), f.Cursor)
		c.dispatch(recs)
	}
}

// dispatch replaces the latest known delivery for the collection and
// notifies subscribers. Handlers run on the read loop, one delivery at
// a time: no subscriber ever observes interleaved snapshots.
func (c *Consumer) dispatch(recs Records) {
	c.mu.Lock()
	c.latest[recs.Kind] = &recs
	fns := make([]func(Records), 0, len(c.subs[recs.Kind]))
	for _, fn := range c.subs[recs.Kind] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(recs)
	}
}

func (c *Consumer) cursorKey(kind models.EntityKind) string {
	return c.cfg.Endpoint + "/" + string(kind)
}
