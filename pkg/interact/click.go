package interact

import (
	"time"

	"github.com/ha1tch/nodegraph/pkg/geom"
)

// DoubleClickWindow is the longest gap between two clicks of a double-click.
const DoubleClickWindow = 400 * time.Millisecond

// ClickTracker recognises double-clicks from a stream of single clicks.
type ClickTracker struct {
	Window time.Duration
	Slop   float64 // max distance between the two clicks

	Now func() time.Time // for tests; defaults to time.Now

	last   time.Time
	lastAt geom.Point
	armed  bool
}

// NewClickTracker returns a tracker with the default window and a slop of
// 4 units.
func NewClickTracker() *ClickTracker {
	return &ClickTracker{Window: DoubleClickWindow, Slop: 4}
}

// Click records a click at p and reports whether it completes a
// double-click. A third quick click starts a new sequence.
func (t *ClickTracker) Click(p geom.Point) bool {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	at := now()

	if t.armed && at.Sub(t.last) < t.Window && geom.Distance(p, t.lastAt) <= t.Slop {
		// Reset to prevent triple-click
		t.armed = false
		return true
	}
	t.armed = true
	t.last = at
	t.lastAt = p
	return false
}

// Reset forgets the previous click.
func (t *ClickTracker) Reset() {
	t.armed = false
}
