// Package gridroute plans a walking route across a surveyed city grid, from
// home to the nearest Bandalgom Coffee, avoiding apartments, buildings and
// construction sites.
//
// What is gridroute?
//
//	A small stack built around two pure packages:
//		• gridgraph: survey records → TraversabilityMap (open / blocked / absent)
//		• bfs:       fewest-step 4-neighbor routes over that map
//
//	and the supporting pieces that make it a tool:
//		• survey:    CSV loader joining area_map, area_struct and area_category
//		• config:    YAML file + .env overrides, validated against a JSON Schema
//		• planner:   endpoint resolution, search, diagnostics, run history
//		• render:    ASCII and PNG maps with the route drawn in
//		• export:    path / summary CSV and GeoJSON
//		• spatial:   R-tree over open cells for nearest-open suggestions
//		• store:     SQLite run history
//		• tracelog:  zstd-compressed JSONL search traces
//		• server:    HTTP API with a websocket search stream
//
// Quick start
//
//	go run ./cmd/gridroute -data data -area 1 -out out
//	go run ./cmd/gridroute -config gridroute.example.yaml -serve
//
// Library use
//
//	m, err := gridgraph.Build(records)
//	path, err := bfs.ShortestPath(m, home, cafe)
//
// gridgraph and bfs never log and hold no global state; a built map is
// read-only and may be searched concurrently.
package gridroute
