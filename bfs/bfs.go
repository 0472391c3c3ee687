// Package bfs provides breadth-first search over a gridgraph.TraversabilityMap,
// returning fewest-step paths, distances, parent links, and visit order.
//
// BFS explores open cells in increasing step count from a start cell,
// with optional hooks, a fixed neighbor order, and resource guards.
package bfs

import (
	"fmt"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// queueItem pairs a cell with its BFS depth.
type queueItem struct {
	at    gridgraph.Coordinate
	depth int
}

// walker encapsulates mutable BFS state. It lives for one call only.
type walker struct {
	m        *gridgraph.TraversabilityMap
	opts     Options
	queue    []queueItem
	visited  map[gridgraph.Coordinate]bool
	expanded int
	res      *Result

	goal    gridgraph.Coordinate
	hasGoal bool
	found   bool
}

// ShortestPath returns a fewest-step path from start to goal over Open cells.
//
// Outcomes:
//   - start == goal (and open): Path{start}.
//   - goal reachable: the first path found under the neighbor order; its
//     Steps() equals the BFS distance.
//   - goal unreachable: an empty Path and a nil error.
//
// Errors: ErrMapNil; ErrStartNotSurveyed, ErrGoalNotSurveyed, ErrStartBlocked,
// ErrGoalBlocked (all wrap ErrInvalidEndpoint); ErrOptionViolation;
// ErrResourceExhausted; context errors; wrapped OnVisit errors.
func ShortestPath(m *gridgraph.TraversabilityMap, start, goal gridgraph.Coordinate, opts ...Option) (Path, error) {
	if m == nil {
		return nil, ErrMapNil
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := checkEndpoint(m, start, ErrStartNotSurveyed, ErrStartBlocked); err != nil {
		return nil, err
	}
	if err := checkEndpoint(m, goal, ErrGoalNotSurveyed, ErrGoalBlocked); err != nil {
		return nil, err
	}
	if start == goal {
		return Path{start}, nil
	}

	w := newWalker(m, o, start)
	w.goal, w.hasGoal = goal, true
	if err := w.loop(); err != nil {
		return nil, err
	}
	if !w.found {
		return Path{}, nil
	}
	return w.res.walkBack(goal), nil
}

// Traverse runs a full breadth-first traversal from start and returns
// visit order, depths and parent links for every reachable open cell.
// Returns ErrMapNil, ErrStartNotSurveyed or ErrStartBlocked for invalid input,
// ErrOptionViolation for bad options, ErrResourceExhausted when a guard trips,
// or any user-supplied hook error.
func Traverse(m *gridgraph.TraversabilityMap, start gridgraph.Coordinate, opts ...Option) (*Result, error) {
	if m == nil {
		return nil, ErrMapNil
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := checkEndpoint(m, start, ErrStartNotSurveyed, ErrStartBlocked); err != nil {
		return nil, err
	}
	w := newWalker(m, o, start)
	return w.res, w.loop()
}

// Distance returns the step count between start and goal, or -1 when unreachable.
func Distance(m *gridgraph.TraversabilityMap, start, goal gridgraph.Coordinate, opts ...Option) (int, error) {
	p, err := ShortestPath(m, start, goal, opts...)
	if err != nil {
		return 0, err
	}
	if p.Empty() {
		return -1, nil
	}
	return p.Steps(), nil
}

func buildOptions(opts []Option) (Options, error) {
	// Build options and catch any invalid ones immediately
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o, o.err
}

func checkEndpoint(m *gridgraph.TraversabilityMap, c gridgraph.Coordinate, absent, blocked error) error {
	switch m.State(c) {
	case gridgraph.Absent:
		return fmt.Errorf("%w: %s", absent, c)
	case gridgraph.Blocked:
		return fmt.Errorf("%w: %s", blocked, c)
	}
	return nil
}

func newWalker(m *gridgraph.TraversabilityMap, o Options, start gridgraph.Coordinate) *walker {
	n := m.OpenCount()
	w := &walker{
		m:       m,
		opts:    o,
		queue:   make([]queueItem, 0, min(n, 1024)),
		visited: make(map[gridgraph.Coordinate]bool, n),
		res: &Result{
			Start:  start,
			Order:  make([]gridgraph.Coordinate, 0, n),
			Depth:  make(map[gridgraph.Coordinate]int, n),
			Parent: make(map[gridgraph.Coordinate]gridgraph.Coordinate, n),
		},
	}
	// Seed queue with start cell (no parent)
	w.visited[start] = true
	w.res.Depth[start] = 0
	w.opts.OnEnqueue(start, 0)
	w.queue = append(w.queue, queueItem{at: start})
	return w
}

// loop processes the queue until empty, goal found, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		// cancellation check (once per loop)
		select {
		case <-w.opts.Ctx.Done():
			return w.opts.Ctx.Err()
		default:
		}

		item := w.dequeue()
		w.expanded++
		if w.opts.MaxExpansions > 0 && w.expanded > w.opts.MaxExpansions {
			return fmt.Errorf("%w: more than %d expansions", ErrResourceExhausted, w.opts.MaxExpansions)
		}
		if err := w.visit(item); err != nil {
			return err
		}
		if w.hasGoal && item.at == w.goal {
			w.found = true
			return nil
		}
		if err := w.enqueueNeighbors(item); err != nil {
			return err
		}
	}
	return nil
}

// dequeue pops the first item, invokes OnDequeue, and returns it.
func (w *walker) dequeue() queueItem {
	item := w.queue[0]
	w.queue = w.queue[1:]
	w.opts.OnDequeue(item.at, item.depth)
	return item
}

// visit records the cell in Order and calls OnVisit.
func (w *walker) visit(item queueItem) error {
	w.res.Order = append(w.res.Order, item.at)
	if err := w.opts.OnVisit(item.at, item.depth); err != nil {
		return fmt.Errorf("bfs: OnVisit error at %s: %w", item.at, err)
	}
	return nil
}

// enqueueNeighbors walks the four neighbors in the configured order and
// enqueues each unseen open one. Absent and Blocked cells are skipped alike.
func (w *walker) enqueueNeighbors(item queueItem) error {
	for _, d := range w.opts.Order {
		nbr := item.at.Add(d)
		if w.visited[nbr] || !w.m.IsOpen(nbr) {
			continue
		}
		if w.opts.MaxFrontier > 0 && len(w.queue) >= w.opts.MaxFrontier {
			return fmt.Errorf("%w: frontier above %d cells", ErrResourceExhausted, w.opts.MaxFrontier)
		}
		w.enqueue(nbr, item.depth+1, item.at)
	}
	return nil
}

// enqueue marks c visited at depth d, records its parent, calls OnEnqueue,
// and adds it to the queue.
func (w *walker) enqueue(c gridgraph.Coordinate, d int, parent gridgraph.Coordinate) {
	w.visited[c] = true
	w.res.Depth[c] = d
	w.res.Parent[c] = parent
	w.opts.OnEnqueue(c, d)
	w.queue = append(w.queue, queueItem{at: c, depth: d})
}
