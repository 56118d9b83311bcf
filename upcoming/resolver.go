package upcoming

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"quadrangle.org/core/log"
	"quadrangle.org/core/models"
	"quadrangle.org/core/stream"
)

// Resolver keeps one user's upcoming-events list live. It subscribes
// to the groups collection, derives the user's membership sets from
// every delivery, and holds exactly one events subscription at a time:
// when membership changes, the old events subscription is cancelled
// before a new one is opened, so membership churn never leaks
// listeners.
type Resolver struct {
	userID   string
	sub      stream.Subscriber
	onChange func([]models.Event)
	now      func() time.Time
	logger   *slog.Logger

	mu           sync.Mutex
	groups       []models.Group
	events       []models.Event
	fingerprint  *string
	cancelGroups func()
	cancelEvents func()
	closed       bool
}

type ResolverOpt func(*Resolver)

// WithClock pins the resolver's evaluation time, for tests.
func WithClock(now func() time.Time) ResolverOpt {
	return func(r *Resolver) { r.now = now }
}

func WithLogger(l *slog.Logger) ResolverOpt {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver wires a resolver for one user. onChange receives the
// recomputed upcoming list after every relevant delivery.
func NewResolver(userID string, sub stream.Subscriber, onChange func([]models.Event), opts ...ResolverOpt) *Resolver {
	r := &Resolver{
		userID:   userID,
		sub:      sub,
		onChange: onChange,
		now:      time.Now,
		logger:   log.New("upcoming"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Resolver) Start() error {
	cancel, err := r.sub.Subscribe(models.KindGroup, r.handleGroups)
	if err != nil {
		return fmt.Errorf("subscribe groups: %w", err)
	}

	r.mu.Lock()
	r.cancelGroups = cancel
	r.mu.Unlock()
	return nil
}

// Close releases both subscriptions. No onChange call is made after
// Close returns.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	cg, ce := r.cancelGroups, r.cancelEvents
	r.cancelGroups, r.cancelEvents = nil, nil
	r.mu.Unlock()

	if ce != nil {
		ce()
	}
	if cg != nil {
		cg()
	}
}

func (r *Resolver) handleGroups(recs stream.Records) {
	fp := membershipFingerprint(r.userID, recs.Groups)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.groups = recs.Groups
	changed := r.fingerprint == nil || *r.fingerprint != fp
	r.fingerprint = &fp
	oldCancel := r.cancelEvents
	if changed {
		r.cancelEvents = nil
	}
	r.mu.Unlock()

	if !changed {
		r.emit()
		return
	}

	// Membership changed: tear down the previous events subscription
	// first, then open the replacement. The subscriber replays the
	// latest events snapshot synchronously, so the list is recomputed
	// against the new membership immediately.
	if oldCancel != nil {
		oldCancel()
	}

	cancel, err := r.sub.Subscribe(models.KindEvent, r.handleEvents)
	if err != nil {
		r.logger.Error("failed to resubscribe events", "user", r.userID, "err", err)
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return
	}
	r.cancelEvents = cancel
	r.mu.Unlock()
}

func (r *Resolver) handleEvents(recs stream.Records) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.events = recs.Events
	r.mu.Unlock()

	r.emit()
}

func (r *Resolver) emit() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	groups := r.groups
	events := r.events
	r.mu.Unlock()

	r.onChange(Resolve(r.userID, groups, events, r.now()))
}

// membershipFingerprint canonically encodes the joined/owned sets so
// deliveries that reshuffle unrelated group fields do not trigger a
// resubscription.
func membershipFingerprint(userID string, groups []models.Group) string {
	m := DeriveMemberships(userID, groups)

	ids := make([]string, 0, len(m.Joined)+len(m.Owned))
	for id := range m.Joined {
		ids = append(ids, "j:"+id)
	}
	for id := range m.Owned {
		ids = append(ids, "o:"+id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
