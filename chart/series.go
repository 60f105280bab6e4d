package chart

import "time"

// Domain is the vertical range of a plotted series.
type Domain struct {
	Lo, Hi float64
}

// YDomain returns the price range of pts padded by 3% of its span on both
// sides. An empty series yields [0, 1].
func YDomain(pts []Point) Domain {
	if len(pts) == 0 {
		return Domain{0, 1}
	}
	lo, hi := pts[0].Price, pts[0].Price
	for _, p := range pts[1:] {
		if p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}
	pad := (hi - lo) * 0.03
	return Domain{lo - pad, hi + pad}
}

// Closest returns the point whose time is nearest to t.
func Closest(pts []Point, t time.Time) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	best := pts[0]
	bestDist := absDuration(best.Time.Sub(t))
	for _, p := range pts[1:] {
		if d := absDuration(p.Time.Sub(t)); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}

// Change returns the percentage move from the first to the last point.
func Change(pts []Point) float64 {
	if len(pts) < 2 || pts[0].Price == 0 {
		return 0
	}
	first, last := pts[0].Price, pts[len(pts)-1].Price
	return (last - first) / first * 100
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
