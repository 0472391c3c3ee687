package gridgraph

import (
	"fmt"
	"sort"
)

// TraversabilityMap is a sparse, immutable Coordinate → CellState mapping.
// Coordinates never surveyed are Absent. All methods are safe for concurrent use
// because nothing mutates the map after Build returns.
type TraversabilityMap struct {
	cells   map[Coordinate]CellState
	coords  []Coordinate // sorted by X, then Y
	open    int
	blocked int
	min     Coordinate
	max     Coordinate
}

// Build classifies every record and returns the resulting map.
//
// Behavior:
//  1. Apply options; an invalid option yields ErrOptionViolation.
//  2. Reject any record without a coordinate (ErrMissingCoordinate, with its index).
//  3. Classify each record with the policy: Blocked or Open.
//  4. Resolve duplicates per DuplicatePolicy (default: last record wins).
//
// Without duplicates the result does not depend on record order.
// Complexity: O(N log N) time for N records (sorting the coordinate index), O(N) memory.
func Build(records []AttributeRecord, opts ...BuildOption) (*TraversabilityMap, error) {
	o := DefaultBuildOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	cells := make(map[Coordinate]CellState, len(records))
	for i, r := range records {
		if r.Coord == nil {
			return nil, fmt.Errorf("%w: record %d", ErrMissingCoordinate, i)
		}
		c := *r.Coord
		if _, seen := cells[c]; seen {
			switch o.Duplicates {
			case DuplicateKeepFirst:
				continue
			case DuplicateReject:
				return nil, fmt.Errorf("%w: %s at record %d", ErrDuplicateCoordinate, c, i)
			}
		}
		state := Open
		if o.Policy(r) {
			state = Blocked
		}
		cells[c] = state
	}

	return newMap(cells), nil
}

// FromStates builds a map directly from already-classified cells.
// Absent entries are dropped. The input is copied.
func FromStates(states map[Coordinate]CellState) *TraversabilityMap {
	cells := make(map[Coordinate]CellState, len(states))
	for c, s := range states {
		if s == Open || s == Blocked {
			cells[c] = s
		}
	}
	return newMap(cells)
}

// FromRows builds a map from a row-major picture where '#' is Blocked,
// ' ' is Absent and any other byte is Open. Row i has Y = originY+i and
// column j has X = originX+j. It is mostly useful for tests and fixtures.
func FromRows(originX, originY int, rows ...string) *TraversabilityMap {
	cells := make(map[Coordinate]CellState)
	for i, row := range rows {
		for j := 0; j < len(row); j++ {
			c := Coordinate{X: originX + j, Y: originY + i}
			switch row[j] {
			case ' ':
			case '#':
				cells[c] = Blocked
			default:
				cells[c] = Open
			}
		}
	}
	return newMap(cells)
}

func newMap(cells map[Coordinate]CellState) *TraversabilityMap {
	m := &TraversabilityMap{
		cells:  cells,
		coords: make([]Coordinate, 0, len(cells)),
	}
	first := true
	for c, s := range cells {
		m.coords = append(m.coords, c)
		if s == Blocked {
			m.blocked++
		} else {
			m.open++
		}
		if first {
			m.min, m.max = c, c
			first = false
			continue
		}
		m.min.X = min(m.min.X, c.X)
		m.min.Y = min(m.min.Y, c.Y)
		m.max.X = max(m.max.X, c.X)
		m.max.Y = max(m.max.Y, c.Y)
	}
	sort.Slice(m.coords, func(i, j int) bool { return m.coords[i].Less(m.coords[j]) })
	return m
}

// State returns the classification of c; Absent when c was never surveyed.
// Complexity: O(1).
func (m *TraversabilityMap) State(c Coordinate) CellState {
	return m.cells[c]
}

// Contains reports whether c was surveyed.
func (m *TraversabilityMap) Contains(c Coordinate) bool {
	_, ok := m.cells[c]
	return ok
}

// IsOpen reports whether the search may enter c.
func (m *TraversabilityMap) IsOpen(c Coordinate) bool {
	return m.cells[c] == Open
}

// Len returns the number of surveyed coordinates.
func (m *TraversabilityMap) Len() int { return len(m.cells) }

// OpenCount returns the number of Open cells.
func (m *TraversabilityMap) OpenCount() int { return m.open }

// BlockedCount returns the number of Blocked cells.
func (m *TraversabilityMap) BlockedCount() int { return m.blocked }

// Coordinates returns every surveyed coordinate sorted by X, then Y.
// The returned slice is a copy.
func (m *TraversabilityMap) Coordinates() []Coordinate {
	out := make([]Coordinate, len(m.coords))
	copy(out, m.coords)
	return out
}

// Bounds returns the inclusive bounding box of the surveyed coordinates.
// ok is false for an empty map.
func (m *TraversabilityMap) Bounds() (lo, hi Coordinate, ok bool) {
	if len(m.cells) == 0 {
		return Coordinate{}, Coordinate{}, false
	}
	return m.min, m.max, true
}

// OpenNeighbors appends to dst the Open neighbors of c in the given order
// and returns the extended slice.
func (m *TraversabilityMap) OpenNeighbors(dst []Coordinate, c Coordinate, order []Direction) []Coordinate {
	for _, d := range order {
		n := c.Add(d)
		if m.cells[n] == Open {
			dst = append(dst, n)
		}
	}
	return dst
}
