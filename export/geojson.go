package export

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// Feature kinds, stored in the "kind" property.
const (
	KindRoute   = "route"
	KindBlocked = "blocked"
	KindStart   = "start"
	KindGoal    = "goal"
)

func point(c gridgraph.Coordinate) orb.Point {
	return orb.Point{float64(c.X), float64(c.Y)}
}

// GeoJSON builds a collection in grid units (x east, y down): one LineString
// for the route with its step count, start and goal Points, and one Point per
// blocked cell in (x, y) order. A route of fewer than two cells contributes
// only its endpoint Points.
func GeoJSON(m *gridgraph.TraversabilityMap, path []gridgraph.Coordinate) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(path) > 1 {
		ls := make(orb.LineString, len(path))
		for i, c := range path {
			ls[i] = point(c)
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = KindRoute
		f.Properties["steps"] = len(path) - 1
		fc.Append(f)
	}
	if len(path) > 0 {
		s := geojson.NewFeature(point(path[0]))
		s.Properties["kind"] = KindStart
		fc.Append(s)
		g := geojson.NewFeature(point(path[len(path)-1]))
		g.Properties["kind"] = KindGoal
		fc.Append(g)
	}
	if m != nil {
		for _, c := range m.Coordinates() {
			if m.State(c) != gridgraph.Blocked {
				continue
			}
			f := geojson.NewFeature(point(c))
			f.Properties["kind"] = KindBlocked
			f.Properties["state"] = gridgraph.Blocked.String()
			fc.Append(f)
		}
	}
	return fc
}

// WriteGeoJSON encodes fc to w.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	return json.NewEncoder(w).Encode(fc)
}

// RouteFromGeoJSON extracts the route LineString, or nil when absent.
func RouteFromGeoJSON(data []byte) ([]gridgraph.Coordinate, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	for _, f := range fc.Features {
		ls, ok := f.Geometry.(orb.LineString)
		if !ok || f.Properties.MustString("kind", "") != KindRoute {
			continue
		}
		out := make([]gridgraph.Coordinate, len(ls))
		for i, p := range ls {
			out[i] = gridgraph.C(int(p.X()), int(p.Y()))
		}
		return out, nil
	}
	return nil, nil
}
