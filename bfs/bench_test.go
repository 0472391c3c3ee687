package bfs_test

import (
	"testing"

	"github.com/katalvlaran/gridroute/bfs"
	"github.com/katalvlaran/gridroute/gridgraph"
)

// BenchmarkShortestPath_Open measures corner-to-corner search on an open M×M field.
func BenchmarkShortestPath_Open(b *testing.B) {
	const M = 200
	m := randomMap(M, M, 0, 1)
	start, goal := gridgraph.C(0, 0), gridgraph.C(M-1, M-1)

	b.ReportAllocs()
	b.SetBytes(int64(M * M))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bfs.ShortestPath(m, start, goal)
	}
}

// BenchmarkShortestPath_Obstacles measures search on a map with 25% blocked cells.
func BenchmarkShortestPath_Obstacles(b *testing.B) {
	const M = 200
	m := randomMap(M, M, 0.25, 42)
	states := map[gridgraph.Coordinate]gridgraph.CellState{}
	for _, c := range m.Coordinates() {
		states[c] = m.State(c)
	}
	states[gridgraph.C(0, 0)] = gridgraph.Open
	states[gridgraph.C(M-1, M-1)] = gridgraph.Open
	m = gridgraph.FromStates(states)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bfs.ShortestPath(m, gridgraph.C(0, 0), gridgraph.C(M-1, M-1))
	}
}

// BenchmarkTraverse_HookOverhead compares Traverse with and without an OnVisit hook.
func BenchmarkTraverse_HookOverhead(b *testing.B) {
	m := randomMap(100, 100, 0.1, 5)
	start := m.Coordinates()[0]
	if !m.IsOpen(start) {
		b.Skip("start blocked")
	}

	b.Run("NoHook", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = bfs.Traverse(m, start)
		}
	})
	b.Run("VisitHook", func(b *testing.B) {
		count := 0
		hook := func(gridgraph.Coordinate, int) error { count++; return nil }
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = bfs.Traverse(m, start, bfs.WithOnVisit(hook))
		}
	})
}
