package heatmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overlaps(a, b Rect) bool {
	const eps = 1e-9
	return a.X+eps < b.X+b.W && b.X+eps < a.X+a.W &&
		a.Y+eps < b.Y+b.H && b.Y+eps < a.Y+a.H
}

func TestSliceDiceEmpty(t *testing.T) {
	assert.Empty(t, SliceDice(nil, Rect{W: 10, H: 10}, true))
}

func TestSliceDiceSingleItemFillsBounds(t *testing.T) {
	bounds := Rect{X: 3, Y: 4, W: 100, H: 50}
	rects := SliceDice([]float64{42}, bounds, false)
	require.Len(t, rects, 1)
	assert.Equal(t, bounds, rects[0])
}

func TestSliceDiceAlternatesAxes(t *testing.T) {
	rects := SliceDice([]float64{50, 25, 25}, Rect{W: 100, H: 100}, true)
	require.Len(t, rects, 3)

	assert.Equal(t, Rect{X: 0, Y: 0, W: 50, H: 100}, rects[0])
	assert.Equal(t, Rect{X: 50, Y: 0, W: 50, H: 50}, rects[1])
	assert.Equal(t, Rect{X: 50, Y: 50, W: 50, H: 50}, rects[2])
}

func TestSliceDiceAreasAndOverlap(t *testing.T) {
	weights := []float64{900, 400, 300, 120, 80, 55, 30, 12, 2, 1}
	bounds := Rect{X: 10, Y: 20, W: 320, H: 180}
	rects := SliceDice(weights, bounds, false)
	require.Len(t, rects, len(weights))

	var area, total float64
	for _, w := range weights {
		total += w
	}
	for i, r := range rects {
		area += r.Area()
		assert.GreaterOrEqual(t, r.W, 0.0)
		assert.GreaterOrEqual(t, r.H, 0.0)
		assert.GreaterOrEqual(t, r.X, bounds.X-1e-9)
		assert.GreaterOrEqual(t, r.Y, bounds.Y-1e-9)
		assert.LessOrEqual(t, r.X+r.W, bounds.X+bounds.W+1e-9)
		assert.LessOrEqual(t, r.Y+r.H, bounds.Y+bounds.H+1e-9)
		for j := i + 1; j < len(rects); j++ {
			assert.False(t, overlaps(r, rects[j]), "rects %d and %d overlap", i, j)
		}
	}
	assert.InDelta(t, bounds.Area(), area, 1e-6)

	// the first item gets exactly its share
	assert.InDelta(t, bounds.Area()*weights[0]/total, rects[0].Area(), 1e-6)
}

func TestSliceDiceZeroWeights(t *testing.T) {
	bounds := Rect{W: 40, H: 20}
	rects := SliceDice([]float64{0, 0, 0}, bounds, true)
	require.Len(t, rects, 3)

	var area float64
	for _, r := range rects {
		for _, v := range []float64{r.X, r.Y, r.W, r.H} {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
		}
		area += r.Area()
	}
	assert.Equal(t, bounds, rects[2])
	assert.InDelta(t, bounds.Area(), area, 1e-9)
}

func TestSliceDiceIsDeterministic(t *testing.T) {
	weights := []float64{5, 3, 2}
	bounds := Rect{W: 9, H: 7}
	first := SliceDice(weights, bounds, true)
	assert.Equal(t, first, SliceDice(weights, bounds, true))
	assert.Equal(t, []float64{5, 3, 2}, weights)
}
