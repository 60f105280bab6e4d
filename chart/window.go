package chart

import "time"

// DefaultWindow is the number of points kept by the live chart.
const DefaultWindow = 300

// Point is one sample of a price series.
type Point struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// LiveWindow is a bounded FIFO of points. When an append pushes it past its
// capacity the oldest point is evicted.
type LiveWindow struct {
	points   []Point
	capacity int
}

// NewLiveWindow creates a window holding at most capacity points.
// A non-positive capacity falls back to DefaultWindow.
func NewLiveWindow(capacity int) *LiveWindow {
	if capacity <= 0 {
		capacity = DefaultWindow
	}
	return &LiveWindow{
		points:   make([]Point, 0, capacity),
		capacity: capacity,
	}
}

// Append adds p at the tail, evicting from the head when full.
func (w *LiveWindow) Append(p Point) {
	w.points = append(w.points, p)
	if len(w.points) > w.capacity {
		// shift in place so the backing array does not grow without bound
		n := copy(w.points, w.points[len(w.points)-w.capacity:])
		w.points = w.points[:n]
	}
}

// Points returns a copy of the window contents in insertion order.
func (w *LiveWindow) Points() []Point {
	out := make([]Point, len(w.points))
	copy(out, w.points)
	return out
}

// Last returns the most recent point.
func (w *LiveWindow) Last() (Point, bool) {
	if len(w.points) == 0 {
		return Point{}, false
	}
	return w.points[len(w.points)-1], true
}

func (w *LiveWindow) Len() int { return len(w.points) }

func (w *LiveWindow) Cap() int { return w.capacity }

// Reset drops every point.
func (w *LiveWindow) Reset() {
	w.points = w.points[:0]
}
