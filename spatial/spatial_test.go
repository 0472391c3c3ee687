package spatial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridroute/gridgraph"
	"github.com/katalvlaran/gridroute/spatial"
)

func fixture() *gridgraph.TraversabilityMap {
	return gridgraph.FromRows(0, 0,
		"..#..",
		".###.",
		"..#. ",
	)
}

func TestNewIndex(t *testing.T) {
	ix := spatial.NewIndex(fixture())
	assert.Equal(t, 9, ix.Len())
	assert.Equal(t, 0, spatial.NewIndex(nil).Len())
	assert.Nil(t, spatial.NewIndex(nil).NearestOpen(gridgraph.C(0, 0), 3))
}

func TestNearestOpen_TieBreak(t *testing.T) {
	ix := spatial.NewIndex(fixture())

	// (2,1) is blocked; its four open cells at distance √2 tie and come in (x, y) order.
	got := ix.NearestOpen(gridgraph.C(2, 1), 4)
	assert.Equal(t, []gridgraph.Coordinate{{X: 1, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 0}, {X: 3, Y: 2}}, got)

	got = ix.NearestOpen(gridgraph.C(2, 1), 1)
	assert.Equal(t, []gridgraph.Coordinate{{X: 1, Y: 0}}, got)
}

func TestNearestOpen_SelfFirst(t *testing.T) {
	ix := spatial.NewIndex(fixture())
	got := ix.NearestOpen(gridgraph.C(0, 0), 3)
	assert.Equal(t, []gridgraph.Coordinate{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}}, got)
}

func TestNearestOpen_OutsideSurvey(t *testing.T) {
	ix := spatial.NewIndex(fixture())
	got := ix.NearestOpen(gridgraph.C(10, 0), 2)
	assert.Equal(t, []gridgraph.Coordinate{{X: 4, Y: 0}, {X: 4, Y: 1}}, got)

	assert.Nil(t, ix.NearestOpen(gridgraph.C(0, 0), 0))
	assert.Len(t, ix.NearestOpen(gridgraph.C(0, 0), 100), 9)
}

func TestInBox(t *testing.T) {
	ix := spatial.NewIndex(fixture())
	got := ix.InBox(gridgraph.C(0, 0), gridgraph.C(1, 2))
	assert.Equal(t, []gridgraph.Coordinate{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 0}, {X: 1, Y: 2}}, got)

	assert.Empty(t, ix.InBox(gridgraph.C(2, 0), gridgraph.C(2, 2)))
	assert.Nil(t, ix.InBox(gridgraph.C(3, 3), gridgraph.C(0, 0)))
}

// TestNearestOpen_MatchesScan compares with a brute-force scan on a larger map.
func TestNearestOpen_MatchesScan(t *testing.T) {
	states := make(map[gridgraph.Coordinate]gridgraph.CellState)
	for x := 0; x < 30; x++ {
		for y := 0; y < 30; y++ {
			s := gridgraph.Open
			if (x*7+y*13)%5 == 0 {
				s = gridgraph.Blocked
			}
			states[gridgraph.C(x, y)] = s
		}
	}
	m := gridgraph.FromStates(states)
	ix := spatial.NewIndex(m)
	require.Equal(t, m.OpenCount(), ix.Len())

	for _, q := range []gridgraph.Coordinate{{X: 0, Y: 0}, {X: 15, Y: 15}, {X: 29, Y: 3}, {X: -5, Y: 40}} {
		got := ix.NearestOpen(q, 6)
		require.Len(t, got, 6)
		worst := 0
		for _, c := range got {
			require.True(t, m.IsOpen(c))
			d := (c.X-q.X)*(c.X-q.X) + (c.Y-q.Y)*(c.Y-q.Y)
			require.GreaterOrEqual(t, d, worst, "results not ordered by distance for %s", q)
			worst = d
		}
		closer := 0
		for _, c := range m.Coordinates() {
			if !m.IsOpen(c) {
				continue
			}
			if (c.X-q.X)*(c.X-q.X)+(c.Y-q.Y)*(c.Y-q.Y) < worst {
				closer++
			}
		}
		assert.Less(t, closer, 6, "a closer open cell was skipped for %s", q)
	}
}
