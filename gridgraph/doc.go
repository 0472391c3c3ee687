// Package gridgraph turns merged survey records into a sparse traversability
// map and answers structural questions about it.
//
// What:
//
//   - Build classifies each AttributeRecord as Open or Blocked and keys it by Coordinate.
//   - Coordinates never surveyed are Absent: impassable, but distinguishable for diagnostics.
//   - ConnectedComponents groups Open cells into 4-connected regions.
//   - Clearance counts the fewest Blocked cells separating two surveyed points.
//
// Classification:
//
//	A record is Blocked when its construction-site flag is set, or when its
//	structure category is in the impassable set (default {1 Apartment, 2 Building}).
//	Everything else is Open, including empty cells (category 0) and destinations.
//	The set is injectable via WithBlockedCategories, or replaced entirely by a
//	predicate via WithBlockPolicy.
//
// Duplicates:
//
//	Upstream promises one record per coordinate. When that promise is broken,
//	the last record wins (DuplicateKeepLast). DuplicateKeepFirst and
//	DuplicateReject are available through WithDuplicatePolicy.
//
// Adjacency:
//
//	Four directions only. DefaultNeighborOrder is Down (0,+1), Up (0,-1),
//	Left (-1,0), Right (+1,0); Y grows downward as the map is drawn.
//
// Complexity:
//
//   - Build:               O(N log N) time, O(N) memory for N records.
//   - ConnectedComponents: O(V) time and memory.
//   - Clearance:           O(V) time and memory.
//
// Errors:
//
//   - ErrMissingCoordinate:   a record without a coordinate.
//   - ErrDuplicateCoordinate: a repeated coordinate under DuplicateReject.
//   - ErrOptionViolation:     an invalid BuildOption.
//   - ErrNotSurveyed:         a Clearance endpoint outside the map.
//   - ErrNoPath:              no surveyed route between Clearance endpoints.
//
// The map is immutable after Build and may be shared by concurrent readers.
package gridgraph
