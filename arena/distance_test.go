package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathmania/geom"
)

// 构造一个 3x3 的环形走廊，中间缺一格：
//
//	(-25,25)-(0,25)-(25,25)
//	   |               |
//	(-25,0)   (0,0)  (25,0)
//	   |        |      |
//	(-25,-25)-(0,-25)-(25,-25)
func ringArena(t *testing.T) *Arena {
	a := newTestArena(t)
	addChain(t, a,
		geom.V(-25, 25), geom.V(0, 25), geom.V(25, 25), geom.V(25, 0),
		geom.V(25, -25), geom.V(0, -25), geom.V(-25, -25), geom.V(-25, 0), geom.V(-25, 25))
	addChain(t, a, geom.V(0, 0), geom.V(0, -25))
	return a
}

func TestChartDistancesBFS(t *testing.T) {
	a := ringArena(t)
	target := geom.V(0, 25)
	a.ChartDistances(target, false)

	dm, ok := a.Distances(target, false)
	require.True(t, ok)
	assert.Equal(t, 0, dm[target])
	assert.Equal(t, 1, dm[geom.V(25, 25)])
	assert.Equal(t, 3, dm[geom.V(25, -25)])
	assert.Equal(t, 4, dm[geom.V(0, -25)])
	assert.Equal(t, 5, dm[geom.V(0, 0)], "centre only reachable through the bottom")

	// BFS 最优性：每个非目标点都有一个距离恰好少 1 的邻居
	for c, d := range dm {
		if c == target {
			continue
		}
		found := false
		for _, dir := range geom.Directions {
			if nd, ok := dm[a.Destination(c, dir)]; ok && nd == d-1 && a.PathExistsBetween(c, a.Destination(c, dir)) {
				found = true
			}
		}
		assert.True(t, found, "coordinate %v has no predecessor", c)
	}
}

func TestChartDistancesIgnorePaths(t *testing.T) {
	a := ringArena(t)
	target := geom.V(0, 25)
	d, err := a.ChartedDistance(geom.V(0, 0), target, true)
	require.NoError(t, err)
	assert.Equal(t, 1, d, "adjacent coordinates are connected when ignoring paths")

	d, err = a.ChartedDistance(geom.V(0, 0), target, false)
	require.NoError(t, err)
	assert.Equal(t, 5, d)
}

func TestChartedDistanceUnreachable(t *testing.T) {
	a := ringArena(t)
	a.AddCoord(geom.V(100, 100))
	_, err := a.ChartedDistance(geom.V(100, 100), geom.V(0, 25), false)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestChartedDistanceSnapsGoal(t *testing.T) {
	a := ringArena(t)
	d, err := a.ChartedDistance(geom.V(25, 25), geom.V(3, 24), false)
	require.NoError(t, err)
	assert.Equal(t, 1, d)
}

func TestChartOverwritesStaleEntries(t *testing.T) {
	a := newTestArena(t)
	addChain(t, a, geom.Zero, geom.V(25, 0))
	a.ChartDistances(geom.Zero, false)

	addChain(t, a, geom.V(25, 0), geom.V(50, 0))
	dm, _ := a.Distances(geom.Zero, false)
	_, ok := dm[geom.V(50, 0)]
	assert.False(t, ok, "caches are not updated when paths change")

	a.ChartDistances(geom.Zero, false)
	dm, _ = a.Distances(geom.Zero, false)
	assert.Equal(t, 2, dm[geom.V(50, 0)])
}

func TestClearDistances(t *testing.T) {
	a := ringArena(t)
	a.ChartAllDistances()
	_, ok := a.Distances(geom.Zero, true)
	require.True(t, ok)

	a.ClearDistances()
	_, ok = a.Distances(geom.Zero, true)
	assert.False(t, ok)
	_, ok = a.Distances(geom.Zero, false)
	assert.False(t, ok)
}

func TestChartAllDistances(t *testing.T) {
	a := ringArena(t)
	before := a.Charts()
	a.ChartAllDistances()
	n := len(a.Coords())
	assert.Equal(t, before+int64(2*n), a.Charts())
	for _, c := range a.Coords() {
		_, ok := a.Distances(c, false)
		assert.True(t, ok)
		_, ok = a.Distances(c, true)
		assert.True(t, ok)
	}
}

func TestMovementOptionsSingleEdge(t *testing.T) {
	a := newTestArena(t)
	addChain(t, a, geom.V(0, 0), geom.V(25, 0))
	opts := a.MovementOptions(geom.Zero, geom.V(25, 0), false)
	assert.Equal(t, []Option{{Direction: geom.East, Distance: 0}}, opts)
}

func TestMovementOptionsSortedAndUnique(t *testing.T) {
	a := ringArena(t)
	opts := a.MovementOptions(geom.V(25, 0), geom.V(0, -25), false)
	require.Len(t, opts, 2)
	assert.Equal(t, Option{Direction: geom.South, Distance: 1}, opts[0])
	assert.Equal(t, Option{Direction: geom.North, Distance: 3}, opts[1])

	seen := map[geom.Direction]bool{}
	for i, o := range opts {
		assert.False(t, seen[o.Direction])
		seen[o.Direction] = true
		if i > 0 {
			assert.LessOrEqual(t, opts[i-1].Distance, o.Distance)
		}
	}
}

func TestMovementOptionsTieBreak(t *testing.T) {
	a := ringArena(t)
	// (0,-25) 到 (0,25)：左右两侧都是 3 步，E 在 W 之前
	opts := a.MovementOptions(geom.V(0, -25), geom.V(0, 25), false)
	require.Len(t, opts, 3)
	assert.Equal(t, geom.East, opts[0].Direction)
	assert.Equal(t, geom.West, opts[1].Direction)
	assert.Equal(t, 3, opts[0].Distance)
	assert.Equal(t, 3, opts[1].Distance)
	assert.Equal(t, geom.North, opts[2].Direction)
}

func TestMovementOptionsIgnorePaths(t *testing.T) {
	a := ringArena(t)
	opts := a.MovementOptions(geom.V(0, 0), geom.V(0, 25), true)
	require.NotEmpty(t, opts)
	assert.Equal(t, Option{Direction: geom.North, Distance: 0}, opts[0])
	assert.Len(t, opts, 4)

	opts = a.MovementOptions(geom.V(0, 0), geom.V(0, 25), false)
	require.Len(t, opts, 1)
	assert.Equal(t, geom.South, opts[0].Direction)
}

func TestMovementOptionsEmpty(t *testing.T) {
	a := newTestArena(t)
	assert.Empty(t, a.MovementOptions(geom.Zero, geom.V(100, 0), false))
}

func TestMovementOptionsSkipsUnreachableNeighbour(t *testing.T) {
	a := newTestArena(t)
	addChain(t, a, geom.Zero, geom.V(25, 0))
	a.AddCoord(geom.V(200, 200))
	assert.Empty(t, a.MovementOptions(geom.Zero, geom.V(200, 200), false))
}
