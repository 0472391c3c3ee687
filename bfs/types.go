// Package bfs provides tunable options and error definitions
// for breadth‐first search over a gridgraph.TraversabilityMap.
package bfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// Sentinel errors for BFS execution.
var (
	// ErrMapNil is returned if a nil map pointer is passed.
	ErrMapNil = errors.New("bfs: map is nil")

	// ErrInvalidEndpoint is the parent of every start/goal validation error.
	// It is distinct from an unreachable goal, which is not an error.
	ErrInvalidEndpoint = errors.New("bfs: invalid endpoint")

	// ErrStartNotSurveyed is returned when the start coordinate is absent from the map.
	ErrStartNotSurveyed = fmt.Errorf("%w: start was never surveyed", ErrInvalidEndpoint)

	// ErrGoalNotSurveyed is returned when the goal coordinate is absent from the map.
	ErrGoalNotSurveyed = fmt.Errorf("%w: goal was never surveyed", ErrInvalidEndpoint)

	// ErrStartBlocked is returned when the start coordinate is a blocked cell.
	ErrStartBlocked = fmt.Errorf("%w: start is blocked", ErrInvalidEndpoint)

	// ErrGoalBlocked is returned when the goal coordinate is a blocked cell.
	ErrGoalBlocked = fmt.Errorf("%w: goal is blocked", ErrInvalidEndpoint)

	// ErrResourceExhausted is returned when the frontier or expansion guard trips.
	ErrResourceExhausted = errors.New("bfs: search limits exceeded")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("bfs: invalid option supplied")

	// ErrNoPath is returned by Result.PathTo for a coordinate the traversal never reached.
	ErrNoPath = errors.New("bfs: no path")

	// ErrInvalidPath is returned by Path.Validate.
	ErrInvalidPath = errors.New("bfs: invalid path")
)

// DefaultMaxFrontier caps the queue length unless WithMaxFrontier overrides it.
const DefaultMaxFrontier = 1 << 20

// Option configures BFS behavior via functional arguments.
// If an Option is invalid (e.g. negative limit), it will be recorded
// internally and surfaced as ErrOptionViolation when the search is invoked.
type Option func(*Options)

// Options holds parameters and callbacks to customize BFS execution.
type Options struct {
	// Ctx allows cancellation and deadlines.
	Ctx context.Context

	// OnEnqueue is called when a cell is enqueued, before visiting.
	// Receives the cell and its depth from the start.
	OnEnqueue func(c gridgraph.Coordinate, depth int)

	// OnDequeue is called immediately before visiting a cell.
	OnDequeue func(c gridgraph.Coordinate, depth int)

	// OnVisit is called when visiting a cell. If it returns an error,
	// BFS aborts and propagates that error.
	OnVisit func(c gridgraph.Coordinate, depth int) error

	// Order is the neighbor expansion order; a permutation of the four directions.
	Order []gridgraph.Direction

	// MaxFrontier, if > 0, fails the search with ErrResourceExhausted
	// once the queue would grow beyond it.
	MaxFrontier int

	// MaxExpansions, if > 0, fails the search with ErrResourceExhausted
	// once more than this many cells have been dequeued. 0 disables the limit.
	MaxExpansions int

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns Options with sane defaults:
//   - Context.Background()
//   - DefaultNeighborOrder (Down, Up, Left, Right)
//   - MaxFrontier = DefaultMaxFrontier, no expansion limit
//   - no-op hooks (OnEnqueue, OnDequeue, OnVisit)
func DefaultOptions() Options {
	return Options{
		Ctx:         context.Background(),
		OnEnqueue:   func(gridgraph.Coordinate, int) {},
		OnDequeue:   func(gridgraph.Coordinate, int) {},
		OnVisit:     func(gridgraph.Coordinate, int) error { return nil },
		Order:       gridgraph.DefaultNeighborOrder(),
		MaxFrontier: DefaultMaxFrontier,
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithOnEnqueue registers a callback to run on enqueue.
func WithOnEnqueue(fn func(c gridgraph.Coordinate, depth int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnEnqueue = fn
		}
	}
}

// WithOnDequeue registers a callback to run on dequeue.
func WithOnDequeue(fn func(c gridgraph.Coordinate, depth int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnDequeue = fn
		}
	}
}

// WithOnVisit registers a callback to run on visit; returning an error
// from this callback stops the BFS.
func WithOnVisit(fn func(c gridgraph.Coordinate, depth int) error) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnVisit = fn
		}
	}
}

// WithNeighborOrder replaces the expansion order. dirs must name each of
// Up, Down, Left and Right exactly once.
func WithNeighborOrder(dirs ...gridgraph.Direction) Option {
	return func(o *Options) {
		if len(dirs) != 4 {
			o.err = fmt.Errorf("%w: neighbor order needs 4 directions, got %d", ErrOptionViolation, len(dirs))
			return
		}
		var seen [4]bool
		for _, d := range dirs {
			if !d.Valid() || seen[d] {
				o.err = fmt.Errorf("%w: neighbor order %v is not a permutation", ErrOptionViolation, dirs)
				return
			}
			seen[d] = true
		}
		o.Order = append([]gridgraph.Direction(nil), dirs...)
	}
}

// WithMaxFrontier bounds the queue length.
//
//	n > 0: limit to n queued cells
//	n == 0: explicit no limit
//	n < 0: invalid option → ErrOptionViolation
func WithMaxFrontier(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxFrontier cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxFrontier = n
	}
}

// WithMaxExpansions bounds the number of dequeued cells; 0 means no limit.
func WithMaxExpansions(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: MaxExpansions cannot be negative (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxExpansions = n
	}
}

// Result holds the outcome of a full traversal:
//   - Start: the traversal root.
//   - Order: cells visited, in visit sequence.
//   - Depth: map from cell to its distance (in steps) from the start.
//   - Parent: map from cell to its predecessor in the BFS tree.
type Result struct {
	Start  gridgraph.Coordinate
	Order  []gridgraph.Coordinate
	Depth  map[gridgraph.Coordinate]int
	Parent map[gridgraph.Coordinate]gridgraph.Coordinate
}

// PathTo reconstructs the path from the start cell to dest.
// Returns ErrNoPath if dest was not reached.
func (r *Result) PathTo(dest gridgraph.Coordinate) (Path, error) {
	if _, ok := r.Depth[dest]; !ok {
		return Path{}, fmt.Errorf("%w to %s", ErrNoPath, dest)
	}
	return r.walkBack(dest), nil
}

func (r *Result) walkBack(dest gridgraph.Coordinate) Path {
	// build reversed path
	path := make(Path, 0, r.Depth[dest]+1)
	for cur := dest; ; {
		path = append(path, cur)
		if cur == r.Start {
			break
		}
		cur = r.Parent[cur]
	}
	// reverse to get start → dest
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Path is an ordered start..goal sequence of 4-adjacent open cells.
// An empty Path means no route exists.
type Path []gridgraph.Coordinate

// Empty reports whether p holds no coordinates.
func (p Path) Empty() bool { return len(p) == 0 }

// Steps returns the edge count of p (0 for empty and single-cell paths).
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Validate checks that consecutive cells are 4-adjacent and every cell is Open in m.
// An empty path is valid.
func (p Path) Validate(m *gridgraph.TraversabilityMap) error {
	for i, c := range p {
		if !m.IsOpen(c) {
			return fmt.Errorf("%w: %s at index %d is %s", ErrInvalidPath, c, i, m.State(c))
		}
		if i > 0 && !p[i-1].Adjacent(c) {
			return fmt.Errorf("%w: %s → %s is not a unit step", ErrInvalidPath, p[i-1], c)
		}
	}
	return nil
}
