package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnap(t *testing.T) {
	tests := []struct {
		in, want Point
	}{
		{Point{0, 0}, Point{0, 0}},
		{Point{3, 4}, Point{0, 8}},
		{Point{12, 13}, Point{16, 16}},
		{Point{-3, -5}, Point{0, -8}},
		{Point{-4, 20}, Point{0, 24}},
		{Point{161.9, 7.99}, Point{160, 8}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Snap(tt.in), "Snap(%v)", tt.in)
	}
}

func TestSnapIsIdempotent(t *testing.T) {
	p := Snap(Point{X: 123.4, Y: -77.7})
	assert.Equal(t, p, Snap(p))
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(0))
	assert.True(t, InRange(-MaxCoordinate))
	assert.True(t, InRange(MaxCoordinate))
	assert.False(t, InRange(MaxCoordinate+1))
	assert.False(t, InRange(math.Inf(-1)))
	assert.False(t, InRange(math.NaN()))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, Point{X: MaxCoordinate, Y: -MaxCoordinate}, Clamp(Point{X: 1e300, Y: math.Inf(-1)}))
	assert.Equal(t, Point{X: 0, Y: 16}, Clamp(Point{X: math.NaN(), Y: 16}))
}

func TestFootprint(t *testing.T) {
	w, h := Footprint(Item{}, false)
	assert.Equal(t, float64(DefaultNodeWidth), w)
	assert.Equal(t, float64(DefaultNodeHeight), h)

	_, h = Footprint(Item{}, true)
	assert.Equal(t, float64(DefaultNodeHeight+DetailsHeight), h)

	w, h = Footprint(Item{Width: 100, Height: 50}, true)
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 50.0, h)
}

func TestResolveOverlapsNoCollision(t *testing.T) {
	items := []Item{
		{ID: "a", Pos: Point{0, 0}},
		{ID: "b", Pos: Point{0, 400}},
	}
	out, changed := ResolveOverlaps(items, false)
	assert.False(t, changed)
	assert.Equal(t, items, out)
}

func TestResolveOverlapsShiftsRight(t *testing.T) {
	items := []Item{
		{ID: "a", Pos: Point{0, 0}},
		{ID: "b", Pos: Point{0, 160}},
	}
	out, changed := ResolveOverlaps(items, true)
	require.True(t, changed)
	assert.Equal(t, Point{0, 0}, out[0].Pos)
	assert.Equal(t, Point{264, 160}, out[1].Pos)
}

func TestResolveOverlapsKeepsInputOrder(t *testing.T) {
	items := []Item{
		{ID: "low", Pos: Point{0, 160}},
		{ID: "high", Pos: Point{0, 0}},
	}
	out, changed := ResolveOverlaps(items, true)
	require.True(t, changed)
	assert.Equal(t, "low", out[0].ID)
	assert.Equal(t, "high", out[1].ID)
	// "high" is placed first because it sorts first by y.
	assert.Equal(t, Point{0, 0}, out[1].Pos)
	assert.Equal(t, Point{264, 160}, out[0].Pos)
}

func TestResolveOverlapsSamePosition(t *testing.T) {
	items := []Item{
		{ID: "a", Pos: Point{0, 0}},
		{ID: "b", Pos: Point{0, 0}},
		{ID: "c", Pos: Point{0, 0}},
	}
	out, changed := ResolveOverlaps(items, false)
	require.True(t, changed)

	for i := range out {
		for j := range out {
			if i == j {
				continue
			}
			assert.False(t, overlaps(out[i], out[j], false), "%s overlaps %s", out[i].ID, out[j].ID)
		}
	}
}

func TestResolveOverlapsIdempotent(t *testing.T) {
	items := []Item{
		{ID: "a", Pos: Point{0, 0}},
		{ID: "b", Pos: Point{8, 16}},
		{ID: "c", Pos: Point{16, 160}},
		{ID: "d", Pos: Point{240, 32}},
	}
	once, _ := ResolveOverlaps(items, true)
	twice, changed := ResolveOverlaps(once, true)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestResolveOverlapsDeterministic(t *testing.T) {
	items := []Item{
		{ID: "a", Pos: Point{0, 0}},
		{ID: "b", Pos: Point{0, 0}},
		{ID: "c", Pos: Point{8, 8}},
	}
	first, _ := ResolveOverlaps(items, false)
	second, _ := ResolveOverlaps(items, false)
	assert.Equal(t, first, second)
}

func TestResolveOverlapsEmpty(t *testing.T) {
	out, changed := ResolveOverlaps(nil, false)
	assert.Empty(t, out)
	assert.False(t, changed)
}
