package gridgraph

import (
	"container/list"
	"fmt"
)

// Clearance finds a route from src to dst that crosses the fewest Blocked cells.
// It answers "how many construction sites or buildings stand between the two
// points" once a regular search has reported them unreachable.
// Returns the route (src and dst included) and the number of Blocked cells on it.
//
// Behavior:
//  1. Both endpoints must be surveyed (ErrNotSurveyed otherwise).
//  2. 0–1 BFS from src:
//     • Moving into an Open cell    → cost 0
//     • Moving into a Blocked cell  → cost 1
//     • Absent cells are never entered.
//  3. Stop when dst is dequeued; reconstruct via predecessors.
//
// A Blocked src counts toward the cost. ErrNoPath means no surveyed route exists.
//
// Complexity: O(V) time and memory for V surveyed cells.
func (m *TraversabilityMap) Clearance(src, dst Coordinate) (path []Coordinate, cost int, err error) {
	if !m.Contains(src) {
		return nil, 0, fmt.Errorf("%w: source %s", ErrNotSurveyed, src)
	}
	if !m.Contains(dst) {
		return nil, 0, fmt.Errorf("%w: destination %s", ErrNotSurveyed, dst)
	}

	stepCost := func(c Coordinate) int {
		if m.cells[c] == Blocked {
			return 1
		}
		return 0
	}

	dist := make(map[Coordinate]int, len(m.cells))
	prev := make(map[Coordinate]Coordinate, len(m.cells))
	done := make(map[Coordinate]bool, len(m.cells))

	// 0–1 BFS: deque processes cost0 at front, cost1 at back
	dq := list.New()
	dist[src] = stepCost(src)
	dq.PushFront(src)

	order := DefaultNeighborOrder()
	found := false

	for dq.Len() > 0 {
		e := dq.Front()
		dq.Remove(e)
		u := e.Value.(Coordinate)
		if done[u] {
			continue
		}
		done[u] = true
		if u == dst {
			found = true
			break
		}
		for _, d := range order {
			v := u.Add(d)
			if !m.Contains(v) {
				continue
			}
			step := stepCost(v)
			nd := dist[u] + step
			if old, ok := dist[v]; ok && old <= nd {
				continue
			}
			dist[v] = nd
			prev[v] = u
			if step == 0 {
				dq.PushFront(v)
			} else {
				dq.PushBack(v)
			}
		}
	}

	if !found {
		return nil, 0, ErrNoPath
	}
	// Reconstruct path
	for at := dst; ; at = prev[at] {
		path = append(path, at)
		if at == src {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[dst], nil
}
