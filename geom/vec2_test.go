package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec2Arithmetic(t *testing.T) {
	a, b := V(3, 4), V(1, -2)
	assert.Equal(t, V(4, 2), a.Add(b))
	assert.Equal(t, V(2, 6), a.Sub(b))
	assert.Equal(t, V(6, 8), a.Scale(2))
	assert.Equal(t, V(6, -4), a.ScaleXY(2, -1))
	assert.Equal(t, 5.0, a.Magnitude())
	assert.Equal(t, 5.0, a.Distance(Zero))
	assert.Equal(t, V(3, 4), V(-3, -4).Abs())
	// 原值不可变
	assert.Equal(t, V(3, 4), a)
}

func TestVec2Unit(t *testing.T) {
	u := V(0, -25).Unit()
	assert.Equal(t, V(0, -1), u)
	assert.InDelta(t, 1.0, V(3, 4).Unit().Magnitude(), 1e-12)
	assert.True(t, math.IsNaN(Zero.Unit().X))
}

func TestGridSnap(t *testing.T) {
	assert.Equal(t, V(10, 30), V(13, 25).Grid(10))
	assert.Equal(t, V(25, -25), V(12.5, -12.5).Grid(25))
	assert.Equal(t, V(0, 0), V(-12.4, 12.4).Grid(25))
	assert.Equal(t, V(20, 30), V(22, 28).GridXY(10, 15))
}

func TestGridIdempotent(t *testing.T) {
	for _, v := range []Vec2{V(13, 25), V(-37.5, 62.49), V(0.1, -0.1), V(1e6+3, -7)} {
		for _, n := range []float64{1, 10, 25} {
			g := v.Grid(n)
			assert.Equal(t, g, g.Grid(n), "v=%v n=%v", v, n)
		}
	}
}

func TestDirectionInvertible(t *testing.T) {
	p := V(50, -25)
	for _, d := range Directions {
		step := p.Add(d.Unit().Scale(25))
		assert.Equal(t, p, step.Add(d.Opposite().Unit().Scale(25)), d.String())
		assert.Equal(t, d, d.Opposite().Opposite())
	}
}

func TestDirectionHeading(t *testing.T) {
	assert.Equal(t, 90.0, North.Heading())
	assert.Equal(t, 270.0, South.Heading())
	assert.Equal(t, 0.0, East.Heading())
	assert.Equal(t, 180.0, West.Heading())
}

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{"up": North, "Down": South, "left": West, " right ": East, "a": West, "d": East}
	for in, want := range cases {
		got, ok := ParseDirection(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"jump", "n", "e", ""} {
		_, ok := ParseDirection(in)
		assert.False(t, ok, in)
	}
	// 单字母是 WASD
	for in, want := range map[string]Direction{"w": North, "a": West, "s": South, "d": East} {
		got, ok := ParseDirection(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}
