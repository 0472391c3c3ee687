package gridgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// TestClearance_Wall: a single blocked cell separates a 1×3 strip.
func TestClearance_Wall(t *testing.T) {
	m := gridgraph.FromRows(1, 1, ".#.")
	path, cost, err := m.Clearance(gridgraph.C(1, 1), gridgraph.C(3, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, cost)
	assert.Equal(t, []gridgraph.Coordinate{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}}, path)
}

// TestClearance_PrefersOpenDetour: a longer open route costs nothing.
func TestClearance_PrefersOpenDetour(t *testing.T) {
	m := gridgraph.FromRows(0, 0,
		".#.",
		"...",
	)
	path, cost, err := m.Clearance(gridgraph.C(0, 0), gridgraph.C(2, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, cost)
	assert.Len(t, path, 5)
	for _, c := range path {
		assert.Equal(t, gridgraph.Open, m.State(c))
	}
}

// TestClearance_DoubleWall counts every blocked cell crossed.
func TestClearance_DoubleWall(t *testing.T) {
	m := gridgraph.FromRows(0, 0,
		".##.",
		"####",
	)
	_, cost, err := m.Clearance(gridgraph.C(0, 0), gridgraph.C(3, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, cost)
}

// TestClearance_Errors covers unsurveyed endpoints and absent gaps.
func TestClearance_Errors(t *testing.T) {
	m := gridgraph.FromRows(0, 0, ". .")
	_, _, err := m.Clearance(gridgraph.C(0, 0), gridgraph.C(9, 9))
	require.ErrorIs(t, err, gridgraph.ErrNotSurveyed)
	_, _, err = m.Clearance(gridgraph.C(9, 9), gridgraph.C(0, 0))
	require.ErrorIs(t, err, gridgraph.ErrNotSurveyed)
	_, _, err = m.Clearance(gridgraph.C(0, 0), gridgraph.C(2, 0))
	require.ErrorIs(t, err, gridgraph.ErrNoPath)
}

// TestClearance_SameCell counts a blocked source.
func TestClearance_SameCell(t *testing.T) {
	m := gridgraph.FromRows(0, 0, "#")
	path, cost, err := m.Clearance(gridgraph.C(0, 0), gridgraph.C(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []gridgraph.Coordinate{{X: 0, Y: 0}}, path)
	assert.Equal(t, 1, cost)
}
