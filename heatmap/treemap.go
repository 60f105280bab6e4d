package heatmap

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Area() float64 { return r.W * r.H }

// SliceDice lays weights out inside bounds with the alternating
// slice-and-dice scheme. The first weight takes a share of the current axis
// proportional to weights[0]/sum(weights), the remainder is laid out
// recursively on the other axis. horizontal selects a split along the
// x-axis (side-by-side) for the first level. A zero sum gives every item but
// the last a zero-size rectangle. The result has one rectangle per weight,
// in the same order, and depends only on its arguments.
func SliceDice(weights []float64, bounds Rect, horizontal bool) []Rect {
	rects := make([]Rect, 0, len(weights))
	return sliceDice(rects, weights, bounds, horizontal)
}

func sliceDice(acc []Rect, weights []float64, rect Rect, horizontal bool) []Rect {
	switch len(weights) {
	case 0:
		return acc
	case 1:
		return append(acc, rect)
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	frac := 0.0
	if total > 0 {
		frac = weights[0] / total
	}

	var first, rest Rect
	if horizontal {
		w := rect.W * frac
		first = Rect{X: rect.X, Y: rect.Y, W: w, H: rect.H}
		rest = Rect{X: rect.X + w, Y: rect.Y, W: rect.W - w, H: rect.H}
	} else {
		h := rect.H * frac
		first = Rect{X: rect.X, Y: rect.Y, W: rect.W, H: h}
		rest = Rect{X: rect.X, Y: rect.Y + h, W: rect.W, H: rect.H - h}
	}

	acc = append(acc, first)
	return sliceDice(acc, weights[1:], rest, !horizontal)
}
