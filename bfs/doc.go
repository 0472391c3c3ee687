// Package bfs provides breadth-first search over a gridgraph.TraversabilityMap,
// returning fewest-step routes, distances, parent links, and visit order.
//
// What
//
//   - ShortestPath: a minimum-step path between two open cells, or an empty Path.
//   - Traverse: a full traversal from one cell, returning a Result containing:
//   - Order: visit sequence
//   - Depth: map from cell → distance (steps) from start
//   - Parent: map from cell → its predecessor in the BFS tree
//   - Supports functional hooks at three stages:
//   - OnEnqueue (when a cell is enqueued)
//   - OnDequeue (immediately before visiting)
//   - OnVisit   (when visiting; may abort with an error)
//   - Guards against runaway input with MaxFrontier and MaxExpansions.
//
// Why
//
//   - Every step costs the same, so a FIFO frontier visits cells in
//     non-decreasing distance and the first time the goal is dequeued its
//     path is minimal. No priority queue is needed.
//
// Determinism
//
//	Neighbors are expanded in a fixed order, Down (0,+1), Up (0,-1),
//	Left (-1,0), Right (+1,0) by default. The order picks which of several
//	equal-length paths is returned; it is a policy, not a correctness
//	requirement, and can be replaced with WithNeighborOrder. Identical inputs
//	always produce identical paths.
//
// Obstacles
//
//	Blocked cells and coordinates absent from the map are never entered.
//	An invalid start or goal (absent or blocked) is an error wrapping
//	ErrInvalidEndpoint; a valid but disconnected goal is not an error and
//	yields an empty Path.
//
// Complexity (V = open cells)
//
//   - Time:   O(V)   (each cell enqueued and expanded at most once, 4 neighbors each)
//   - Memory: O(V)   (queue, visited set, Depth and Parent maps)
//
// Usage
//
//		path, err := bfs.ShortestPath(m, start, goal)
//		switch {
//		case errors.Is(err, bfs.ErrInvalidEndpoint):
//		    // usage mistake: endpoint outside the survey or on an obstacle
//		case err != nil:
//		    // ErrResourceExhausted, cancellation, hook errors
//		case path.Empty():
//		    // start and goal are in different open regions
//		}
//
//		// With functional options:
//		path, err := bfs.ShortestPath(
//		    m, start, goal,
//		    bfs.WithContext(ctx),
//		    bfs.WithMaxFrontier(4096),
//		    bfs.WithNeighborOrder(gridgraph.Right, gridgraph.Down, gridgraph.Left, gridgraph.Up),
//		    bfs.WithOnVisit(func(c gridgraph.Coordinate, depth int) error { /* ... */ return nil }),
//		)
//
// Options
//
//   - DefaultOptions(): background Context, no-op hooks, default order, MaxFrontier=DefaultMaxFrontier.
//   - WithContext(ctx):            set a custom context for cancellation.
//   - WithNeighborOrder(dirs...):  a permutation of Up, Down, Left, Right.
//   - WithMaxFrontier(n):          fail once the queue would exceed n cells (0 = no limit).
//   - WithMaxExpansions(n):        fail once more than n cells are dequeued (0 = no limit).
//   - WithOnEnqueue(fn):           hook when a cell is enqueued.
//   - WithOnDequeue(fn):           hook immediately before visiting a cell.
//   - WithOnVisit(fn):             hook during visit; returning error aborts BFS.
//
// Errors
//
//   - ErrMapNil               if the map pointer is nil.
//   - ErrStartNotSurveyed     if the start is absent from the map.
//   - ErrGoalNotSurveyed      if the goal is absent from the map.
//   - ErrStartBlocked         if the start is a blocked cell.
//   - ErrGoalBlocked          if the goal is a blocked cell.
//   - ErrResourceExhausted    if MaxFrontier or MaxExpansions is exceeded.
//   - ErrOptionViolation      if invalid Option (e.g. negative limit, bad order).
//   - Wrapped user-supplied hook errors from OnVisit.
//
// A map may be shared by any number of concurrent searches; each call owns
// its own queue and visited set.
package bfs
