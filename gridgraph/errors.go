package gridgraph

import "errors"

var (
	// ErrMissingCoordinate indicates an input record without a coordinate.
	ErrMissingCoordinate = errors.New("gridgraph: record has no coordinate")
	// ErrDuplicateCoordinate indicates two records for the same coordinate under DuplicateReject.
	ErrDuplicateCoordinate = errors.New("gridgraph: duplicate record for coordinate")
	// ErrOptionViolation indicates an invalid BuildOption.
	ErrOptionViolation = errors.New("gridgraph: invalid option supplied")
	// ErrNotSurveyed indicates a query coordinate that is absent from the map.
	ErrNotSurveyed = errors.New("gridgraph: coordinate was never surveyed")
	// ErrNoPath indicates no clearance path exists between two coordinates.
	ErrNoPath = errors.New("gridgraph: no path between specified coordinates")
)
