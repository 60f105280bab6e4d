package chart

import "time"

// LiveInterval is the minimum spacing between accepted ticks and between
// points appended to the live window.
const LiveInterval = time.Second

// Gate accepts at most one event per interval. Its last-accepted time starts
// at the Unix epoch so the first event is always let through.
type Gate struct {
	interval     time.Duration
	lastAccepted time.Time
}

func NewGate(interval time.Duration) *Gate {
	return &Gate{
		interval:     interval,
		lastAccepted: time.Unix(0, 0),
	}
}

// Allow reports whether an event at now passes the gate and, if so,
// records now as the last accepted time.
func (g *Gate) Allow(now time.Time) bool {
	if now.Sub(g.lastAccepted) < g.interval {
		return false
	}
	g.lastAccepted = now
	return true
}

func (g *Gate) LastAccepted() time.Time { return g.lastAccepted }

func (g *Gate) Reset() {
	g.lastAccepted = time.Unix(0, 0)
}

// Throttle emits at most once per interval and keeps only the latest value
// offered while it is closed. A value offered when the interval has elapsed
// is emitted immediately; otherwise it becomes the pending value and is
// emitted by Flush once the interval has passed.
type Throttle struct {
	interval    time.Duration
	lastEmitted time.Time
	emitted     bool
	pending     *Point
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Offer submits p at now. It returns true when p should be emitted right
// away. Otherwise it returns the delay after which Flush will release the
// pending value.
func (t *Throttle) Offer(p Point, now time.Time) (bool, time.Duration) {
	if !t.emitted || now.Sub(t.lastEmitted) >= t.interval {
		t.lastEmitted = now
		t.emitted = true
		t.pending = nil
		return true, 0
	}
	t.pending = &p
	return false, t.interval - now.Sub(t.lastEmitted)
}

// Flush releases the pending value if the interval has elapsed.
func (t *Throttle) Flush(now time.Time) (Point, bool) {
	if t.pending == nil || now.Sub(t.lastEmitted) < t.interval {
		return Point{}, false
	}
	p := *t.pending
	t.pending = nil
	t.lastEmitted = now
	return p, true
}

// Pending reports whether a value is waiting for the next window.
func (t *Throttle) Pending() bool { return t.pending != nil }

func (t *Throttle) Reset() {
	t.emitted = false
	t.lastEmitted = time.Time{}
	t.pending = nil
}
