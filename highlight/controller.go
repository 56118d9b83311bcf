package highlight

import (
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"quadrangle.org/core/feed"
	"quadrangle.org/core/log"
)

// State is the controller's position in its lifecycle. Locating and
// the NotFound outcome are synchronous, so observable states are Idle,
// Scrolling and Highlighted.
type State int

const (
	StateIdle State = iota
	StateLocating
	StateScrolling
	StateHighlighted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocating:
		return "locating"
	case StateScrolling:
		return "scrolling"
	case StateHighlighted:
		return "highlighted"
	}
	return "unknown"
}

// Viewport is the rendered list the controller drives. ScrollToIndex
// fails when the virtualized list has not measured that far yet;
// ScrollToOffset always lands somewhere close enough for a retry to
// succeed.
type Viewport interface {
	ScrollToIndex(i int) error
	ScrollToOffset(px float64)
	AverageItemExtent() float64
}

const (
	defaultSettleDelay     = 300 * time.Millisecond
	defaultHighlightWindow = 2 * time.Second
	scrollRetryAttempts    = 3
)

// Controller drives the scroll-and-highlight behavior for deep-link
// and search hand-offs. Activating an absent target is a silent no-op;
// activating the same target again before its highlight clears
// restarts the window instead of stacking timers.
type Controller struct {
	vp     Viewport
	logger *slog.Logger

	settleDelay     time.Duration
	highlightWindow time.Duration

	mu          sync.Mutex
	state       State
	target      string
	gen         int
	settleTimer *time.Timer
	clearTimer  *time.Timer
}

type Opt func(*Controller)

// WithDelays overrides the settle delay and highlight window, mainly
// so tests run in milliseconds.
func WithDelays(settle, window time.Duration) Opt {
	return func(c *Controller) {
		c.settleDelay = settle
		c.highlightWindow = window
	}
}

func WithLogger(l *slog.Logger) Opt {
	return func(c *Controller) { c.logger = l }
}

func NewController(vp Viewport, opts ...Opt) *Controller {
	c := &Controller{
		vp:              vp,
		logger:          log.New("highlight"),
		settleDelay:     defaultSettleDelay,
		highlightWindow: defaultHighlightWindow,
		state:           StateIdle,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Activate locates targetID in the composed list and, if present,
// schedules the scroll after a settle delay and highlights the entry
// for the highlight window. A missing target leaves all state
// untouched: the entry may simply be filtered out right now.
func (c *Controller) Activate(targetID string, entries []feed.Entry) {
	idx := feed.Locate(entries, targetID)
	if idx < 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Restart rather than stack: any pending timers belong to a
	// previous activation and are dead from here on.
	c.gen++
	gen := c.gen
	if c.settleTimer != nil {
		c.settleTimer.Stop()
	}
	if c.clearTimer != nil {
		c.clearTimer.Stop()
	}

	c.target = targetID
	c.state = StateScrolling

	c.settleTimer = time.AfterFunc(c.settleDelay, func() {
		c.scroll(gen, idx)
	})
	c.clearTimer = time.AfterFunc(c.settleDelay+c.highlightWindow, func() {
		c.clear(gen)
	})
}

// Reset cancels any pending scroll and clears the highlight
// immediately.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.settleTimer != nil {
		c.settleTimer.Stop()
	}
	if c.clearTimer != nil {
		c.clearTimer.Stop()
	}
	c.state = StateIdle
	c.target = ""
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Target returns the currently highlighted identifier, or "".
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateScrolling || c.state == StateHighlighted {
		return c.target
	}
	return ""
}

func (c *Controller) scroll(gen, idx int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.vp.ScrollToIndex(idx); err != nil {
		// The list has not measured that far yet. Jump to an
		// approximate offset so it renders the neighborhood, then
		// retry the precise scroll.
		c.logger.Debug("scroll-to-index failed, approximating", "index", idx, "err", err)
		c.vp.ScrollToOffset(float64(idx) * c.vp.AverageItemExtent())

		err = retry.Do(
			func() error { return c.vp.ScrollToIndex(idx) },
			retry.Attempts(scrollRetryAttempts),
			retry.Delay(c.settleDelay/2),
			retry.DelayType(retry.FixedDelay),
		)
		if err != nil {
			c.logger.Error("scroll-to-index never landed", "index", idx, "err", err)
		}
	}

	c.mu.Lock()
	if gen == c.gen && c.state == StateScrolling {
		c.state = StateHighlighted
	}
	c.mu.Unlock()
}

func (c *Controller) clear(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.state = StateIdle
	c.target = ""
}
