package highlight

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrangle.org/core/feed"
	"quadrangle.org/core/models"
	"quadrangle.org/core/temporal"
)

type fakeViewport struct {
	mu            sync.Mutex
	measuredUpTo  int
	indexCalls    []int
	offsetCalls   []float64
	failUntilCall int
}

func (v *fakeViewport) ScrollToIndex(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.indexCalls = append(v.indexCalls, i)
	if len(v.indexCalls) <= v.failUntilCall {
		return errors.New("index not measured")
	}
	return nil
}

func (v *fakeViewport) ScrollToOffset(px float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offsetCalls = append(v.offsetCalls, px)
}

func (v *fakeViewport) AverageItemExtent() float64 { return 80 }

func (v *fakeViewport) indexCallCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.indexCalls)
}

func (v *fakeViewport) offsets() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]float64(nil), v.offsetCalls...)
}

func (v *fakeViewport) indexes() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]int(nil), v.indexCalls...)
}

func testEntries(n int) []feed.Entry {
	entries := make([]feed.Entry, n)
	for i := range n {
		entries[i] = feed.Entry{
			Kind:    models.KindEvent,
			Instant: temporal.At(time.Unix(int64(1000-i), 0)),
			Event:   &models.Event{ID: string(rune('a' + i))},
		}
	}
	return entries
}

func fastController(vp Viewport) *Controller {
	return NewController(vp, WithDelays(5*time.Millisecond, 30*time.Millisecond))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestActivateMissingTargetIsNoOp(t *testing.T) {
	vp := &fakeViewport{}
	c := fastController(vp)

	c.Activate("missing-id", testEntries(5))

	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Target())
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, vp.indexCallCount(), "no scroll may be issued for a missing target")
}

func TestActivateFullLifecycle(t *testing.T) {
	vp := &fakeViewport{}
	c := fastController(vp)
	entries := testEntries(8)

	c.Activate("f", entries) // index 5

	assert.Equal(t, StateScrolling, c.State())
	assert.Equal(t, "f", c.Target())

	waitFor(t, func() bool { return c.State() == StateHighlighted })
	require.Equal(t, 1, vp.indexCallCount())
	assert.Equal(t, []int{5}, vp.indexes())

	// Auto-clears after the highlight window.
	waitFor(t, func() bool { return c.State() == StateIdle })
	assert.Empty(t, c.Target())
}

func TestActivateFallsBackToOffsetScroll(t *testing.T) {
	vp := &fakeViewport{failUntilCall: 1}
	c := fastController(vp)

	c.Activate("e", testEntries(8)) // index 4

	waitFor(t, func() bool { return c.State() == StateHighlighted })

	// First precise scroll failed: approximate by average extent, then
	// retry.
	assert.Equal(t, []float64{4 * 80}, vp.offsets())
	assert.GreaterOrEqual(t, vp.indexCallCount(), 2)
}

func TestReactivateRestartsWindow(t *testing.T) {
	vp := &fakeViewport{}
	c := fastController(vp)
	entries := testEntries(4)

	c.Activate("b", entries)
	waitFor(t, func() bool { return c.State() == StateHighlighted })

	// Re-activate mid-window: the highlight must survive past the
	// original expiry.
	time.Sleep(20 * time.Millisecond)
	c.Activate("b", entries)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "b", c.Target(), "restarted window must still be open")

	waitFor(t, func() bool { return c.State() == StateIdle })
}

func TestReset(t *testing.T) {
	vp := &fakeViewport{}
	c := fastController(vp)

	c.Activate("a", testEntries(3))
	require.NotEqual(t, StateIdle, c.State())

	c.Reset()
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, c.Target())

	// The cancelled settle timer must not fire a scroll.
	calls := vp.indexCallCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, vp.indexCallCount())
}
