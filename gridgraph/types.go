// Package gridgraph defines core types, options, and sentinel errors
// for the gridgraph subpackage of github.com/katalvlaran/gridroute.
package gridgraph

import (
	"fmt"
)

// Coordinate identifies one grid cell. It is comparable and used as the map key.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// C is shorthand for Coordinate{X: x, Y: y}.
func C(x, y int) Coordinate { return Coordinate{X: x, Y: y} }

// String renders the coordinate as "(x,y)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns the neighbor of c one unit step in direction d.
func (c Coordinate) Add(d Direction) Coordinate {
	off := d.Offset()
	return Coordinate{X: c.X + off[0], Y: c.Y + off[1]}
}

// Less orders coordinates by X, then Y.
func (c Coordinate) Less(o Coordinate) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// Adjacent reports whether c and o differ by exactly one unit on exactly one axis.
func (c Coordinate) Adjacent(o Coordinate) bool {
	dx, dy := c.X-o.X, c.Y-o.Y
	return (dx == 0 && (dy == 1 || dy == -1)) || (dy == 0 && (dx == 1 || dx == -1))
}

// Direction is one of the four axis-aligned unit steps.
// Y grows downward, matching the rendered map, so Up is (0,-1).
type Direction int

const (
	// Up is the step (0,-1).
	Up Direction = iota
	// Down is the step (0,+1).
	Down
	// Left is the step (-1,0).
	Left
	// Right is the step (+1,0).
	Right
)

var directionOffsets = [4][2]int{
	Up:    {0, -1},
	Down:  {0, 1},
	Left:  {-1, 0},
	Right: {1, 0},
}

var directionNames = [4]string{"up", "down", "left", "right"}

// Offset returns the (dx, dy) step of d.
func (d Direction) Offset() [2]int {
	if !d.Valid() {
		return [2]int{}
	}
	return directionOffsets[d]
}

// Valid reports whether d is one of Up, Down, Left, Right.
func (d Direction) Valid() bool { return d >= Up && d <= Right }

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection maps "up", "down", "left" or "right" to a Direction.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if s == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown direction %q", ErrOptionViolation, s)
}

// DefaultNeighborOrder returns the canonical expansion order: Down (0,+1),
// Up (0,-1), Left (-1,0), Right (+1,0). The order decides which of several
// equal-length paths a search returns.
func DefaultNeighborOrder() []Direction {
	return []Direction{Down, Up, Left, Right}
}

// Category is a structure-category code from the survey.
type Category int

// Known structure categories. CategoryEmpty marks a cell with no structure.
const (
	CategoryEmpty           Category = 0
	CategoryApartment       Category = 1
	CategoryBuilding        Category = 2
	CategoryMyHome          Category = 3
	CategoryBandalgomCoffee Category = 4
)

// DefaultBlockedCategories returns the impassable structure set {Apartment, Building}.
func DefaultBlockedCategories() []Category {
	return []Category{CategoryApartment, CategoryBuilding}
}

// CellState is the traversability of one coordinate.
type CellState uint8

const (
	// Absent marks a coordinate that was never surveyed. It is impassable.
	Absent CellState = iota
	// Open marks a cell the search may enter.
	Open
	// Blocked marks a cell occupied by construction or an impassable structure.
	Blocked
)

var stateNames = [...]string{"absent", "open", "blocked"}

func (s CellState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("CellState(%d)", int(s))
}

// MarshalText encodes the state as "absent", "open" or "blocked".
func (s CellState) MarshalText() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("gridgraph: unknown cell state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText decodes the text produced by MarshalText.
func (s *CellState) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if string(b) == name {
			*s = CellState(i)
			return nil
		}
	}
	return fmt.Errorf("gridgraph: unknown cell state %q", string(b))
}

// AttributeRecord is one merged survey row.
// Coord is nil when the source row carried no coordinate; Build rejects such records.
// A blank or NaN category must arrive as CategoryEmpty.
type AttributeRecord struct {
	Coord            *Coordinate
	ConstructionSite bool
	Category         Category
}

// Record builds a well-formed AttributeRecord.
func Record(x, y int, constructionSite bool, category Category) AttributeRecord {
	c := Coordinate{X: x, Y: y}
	return AttributeRecord{Coord: &c, ConstructionSite: constructionSite, Category: category}
}

// BlockPolicy classifies a record as blocked (true) or open (false).
type BlockPolicy func(AttributeRecord) bool

// CategoryPolicy returns the standard rule: blocked when the construction flag is set
// or the category is one of cats.
func CategoryPolicy(cats ...Category) BlockPolicy {
	set := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return func(r AttributeRecord) bool {
		if r.ConstructionSite {
			return true
		}
		_, hit := set[r.Category]
		return hit
	}
}

// DuplicatePolicy decides what Build does with two records for one coordinate.
type DuplicatePolicy int

const (
	// DuplicateKeepLast lets the later record overwrite the earlier one.
	DuplicateKeepLast DuplicatePolicy = iota
	// DuplicateKeepFirst ignores every record after the first for a coordinate.
	DuplicateKeepFirst
	// DuplicateReject fails Build with ErrDuplicateCoordinate.
	DuplicateReject
)

// BuildOption configures Build via functional arguments.
type BuildOption func(*BuildOptions)

// BuildOptions holds the classification policy and duplicate handling for Build.
type BuildOptions struct {
	// Policy classifies each record. Defaults to CategoryPolicy(DefaultBlockedCategories()...).
	Policy BlockPolicy
	// Duplicates selects duplicate-record handling. Default DuplicateKeepLast.
	Duplicates DuplicatePolicy

	err error
}

// DefaultBuildOptions returns the classification rule {construction} ∪ {1, 2}
// with last-record-wins duplicate handling.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Policy:     CategoryPolicy(DefaultBlockedCategories()...),
		Duplicates: DuplicateKeepLast,
	}
}

// WithBlockedCategories replaces the impassable category set.
// The construction flag still blocks regardless of the set.
func WithBlockedCategories(cats ...Category) BuildOption {
	return func(o *BuildOptions) {
		o.Policy = CategoryPolicy(cats...)
	}
}

// WithBlockPolicy installs a custom classification predicate.
func WithBlockPolicy(p BlockPolicy) BuildOption {
	return func(o *BuildOptions) {
		if p == nil {
			o.err = fmt.Errorf("%w: nil BlockPolicy", ErrOptionViolation)
			return
		}
		o.Policy = p
	}
}

// WithDuplicatePolicy selects duplicate-record handling.
func WithDuplicatePolicy(p DuplicatePolicy) BuildOption {
	return func(o *BuildOptions) {
		switch p {
		case DuplicateKeepLast, DuplicateKeepFirst, DuplicateReject:
			o.Duplicates = p
		default:
			o.err = fmt.Errorf("%w: unknown DuplicatePolicy %d", ErrOptionViolation, int(p))
		}
	}
}
