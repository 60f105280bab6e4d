package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var ErrMalformedTick = errors.New("malformed tick")

// Tick is a single trade message from the exchange stream.
type Tick struct {
	Price     string `json:"p"`
	TradeTime int64  `json:"T"` // milliseconds since the epoch
}

// Result describes what happened to an offered tick.
type Result struct {
	Accepted bool          // passed the ingestion gate
	Appended bool          // landed in the window immediately
	FlushIn  time.Duration // >0 when a point is waiting in the throttle
}

// Aggregator turns a raw tick stream into the live chart series. Ticks pass
// an ingestion gate, then an emission throttle, then land in a bounded
// window. It is not safe for concurrent use; the owner serialises calls.
type Aggregator struct {
	window   *LiveWindow
	gate     *Gate
	throttle *Throttle
}

func NewAggregator(capacity int) *Aggregator {
	return &Aggregator{
		window:   NewLiveWindow(capacity),
		gate:     NewGate(LiveInterval),
		throttle: NewThrottle(LiveInterval),
	}
}

// ParseTick converts a tick to a point. The price must be a finite number.
func ParseTick(t Tick) (Point, error) {
	price, err := strconv.ParseFloat(t.Price, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return Point{}, fmt.Errorf("%w: price %q", ErrMalformedTick, t.Price)
	}
	return Point{Time: time.UnixMilli(t.TradeTime), Price: price}, nil
}

// Offer feeds one tick observed at now. A malformed tick is rejected
// before it reaches the gate.
func (a *Aggregator) Offer(t Tick, now time.Time) (Result, error) {
	p, err := ParseTick(t)
	if err != nil {
		return Result{}, err
	}
	if !a.gate.Allow(now) {
		return Result{}, nil
	}

	emit, wait := a.throttle.Offer(p, now)
	if emit {
		a.window.Append(p)
		return Result{Accepted: true, Appended: true}, nil
	}
	return Result{Accepted: true, FlushIn: wait}, nil
}

// Flush appends the throttled point if its window has elapsed.
func (a *Aggregator) Flush(now time.Time) bool {
	p, ok := a.throttle.Flush(now)
	if !ok {
		return false
	}
	a.window.Append(p)
	return true
}

// Seed places historical pts ahead of the points already streamed into the
// window, keeping the newest that fit. History at or after the first
// streamed point is dropped. Gate and throttle state are left untouched.
func (a *Aggregator) Seed(pts []Point) {
	live := a.window.Points()
	a.window.Reset()
	for _, p := range pts {
		if len(live) > 0 && !p.Time.Before(live[0].Time) {
			continue
		}
		a.window.Append(p)
	}
	for _, p := range live {
		a.window.Append(p)
	}
}

func (a *Aggregator) Points() []Point { return a.window.Points() }

func (a *Aggregator) Last() (Point, bool) { return a.window.Last() }

func (a *Aggregator) Len() int { return a.window.Len() }

// Reset clears the window and returns both throttling stages to their
// initial state.
func (a *Aggregator) Reset() {
	a.window.Reset()
	a.gate.Reset()
	a.throttle.Reset()
}
