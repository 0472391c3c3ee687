// Package spatial indexes the open cells of a TraversabilityMap in an R-tree
// and answers nearest-cell and window queries. The planner uses it to suggest
// usable endpoints when a requested one is blocked or outside the survey.
package spatial

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// cellHalf is the half-edge of the square each cell occupies in the tree.
const cellHalf = 0.5

// cellEntry wraps a coordinate for R-tree storage.
type cellEntry struct {
	coord gridgraph.Coordinate
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *cellEntry) Bounds() rtreego.Rect { return e.rect }

// Index is an immutable R-tree over open cells. Safe for concurrent queries.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex bulk-loads every open cell of m. A nil map yields an empty index.
func NewIndex(m *gridgraph.TraversabilityMap) *Index {
	var objs []rtreego.Spatial
	if m != nil {
		for _, c := range m.Coordinates() {
			if !m.IsOpen(c) {
				continue
			}
			objs = append(objs, &cellEntry{coord: c, rect: toPoint(c).ToRect(cellHalf)})
		}
	}
	return &Index{tree: rtreego.NewTree(2, 25, 50, objs...), size: len(objs)}
}

// Len is the number of indexed open cells.
func (ix *Index) Len() int { return ix.size }

func toPoint(c gridgraph.Coordinate) rtreego.Point {
	return rtreego.Point{float64(c.X), float64(c.Y)}
}

func dist2(a, b gridgraph.Coordinate) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// NearestOpen returns up to k open cells ordered by Euclidean distance from c,
// ties broken by (x, y). c itself comes first when it is open.
func (ix *Index) NearestOpen(c gridgraph.Coordinate, k int) []gridgraph.Coordinate {
	if k <= 0 || ix.size == 0 {
		return nil
	}
	k = min(k, ix.size)

	// The tree's k-th neighbor bounds the search radius; a window of that
	// radius then collects every tie so the order is deterministic.
	near := ix.tree.NearestNeighbors(k, toPoint(c))
	r2 := 0
	for _, s := range near {
		if s == nil {
			continue
		}
		r2 = max(r2, dist2(c, s.(*cellEntry).coord))
	}
	r := int(math.Ceil(math.Sqrt(float64(r2))))
	cands := ix.InBox(gridgraph.C(c.X-r, c.Y-r), gridgraph.C(c.X+r, c.Y+r))

	sort.SliceStable(cands, func(i, j int) bool {
		di, dj := dist2(c, cands[i]), dist2(c, cands[j])
		if di != dj {
			return di < dj
		}
		return cands[i].Less(cands[j])
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands
}

// InBox returns the open cells with lo.X ≤ x ≤ hi.X and lo.Y ≤ y ≤ hi.Y,
// in (x, y) order.
func (ix *Index) InBox(lo, hi gridgraph.Coordinate) []gridgraph.Coordinate {
	if ix.size == 0 || hi.X < lo.X || hi.Y < lo.Y {
		return nil
	}
	// Shrink by a hair so neighbors touching the window edge do not intersect.
	const eps = 1e-6
	box, err := rtreego.NewRect(
		rtreego.Point{float64(lo.X) - cellHalf + eps, float64(lo.Y) - cellHalf + eps},
		[]float64{float64(hi.X-lo.X+1) - 2*eps, float64(hi.Y-lo.Y+1) - 2*eps},
	)
	if err != nil {
		return nil
	}
	hits := ix.tree.SearchIntersect(box)
	out := make([]gridgraph.Coordinate, 0, len(hits))
	for _, s := range hits {
		out = append(out, s.(*cellEntry).coord)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
