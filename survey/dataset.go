package survey

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// StructureSummary is the per-structure count report.
type StructureSummary struct {
	Name      string
	Category  gridgraph.Category
	Count     int
	Locations []gridgraph.Coordinate
}

// FilterArea returns the rows whose area equals area. Rows without a
// coordinate have no area and are always kept, so gridgraph.Build still
// rejects them. Category names are shared.
func (ds *Dataset) FilterArea(area int) *Dataset {
	out := &Dataset{names: ds.names}
	for _, r := range ds.Rows {
		if r.Coord == nil || r.Area == area {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Records converts the rows into builder input, in row order.
func (ds *Dataset) Records() []gridgraph.AttributeRecord {
	out := make([]gridgraph.AttributeRecord, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		out = append(out, gridgraph.AttributeRecord{
			Coord:            r.Coord,
			ConstructionSite: r.ConstructionSite,
			Category:         r.Category,
		})
	}
	return out
}

// Locate returns the first coordinate, in (x, y) order, holding category cat.
// Construction sites are not skipped; a blocked endpoint is reported by the search.
func (ds *Dataset) Locate(cat gridgraph.Category) (gridgraph.Coordinate, error) {
	for _, r := range ds.Rows {
		if r.Coord != nil && r.Category == cat {
			return *r.Coord, nil
		}
	}
	return gridgraph.Coordinate{}, fmt.Errorf("%w: %d (%s)", ErrCategoryNotFound, int(cat), ds.Name(cat))
}

// Name returns the structure name for cat, or "" when the category table has none.
func (ds *Dataset) Name(cat gridgraph.Category) string {
	return ds.names[cat]
}

// Names returns a copy of the category → name table.
func (ds *Dataset) Names() map[gridgraph.Category]string {
	out := make(map[gridgraph.Category]string, len(ds.names))
	for k, v := range ds.names {
		out[k] = v
	}
	return out
}

// Structures maps every coordinate holding a structure (category ≠ 0) to its category.
func (ds *Dataset) Structures() map[gridgraph.Coordinate]gridgraph.Category {
	out := make(map[gridgraph.Coordinate]gridgraph.Category)
	for _, r := range ds.Rows {
		if r.Coord != nil && r.Category != gridgraph.CategoryEmpty {
			out[*r.Coord] = r.Category
		}
	}
	return out
}

// ConstructionSites lists the coordinates flagged as construction, in (x, y) order.
func (ds *Dataset) ConstructionSites() []gridgraph.Coordinate {
	var out []gridgraph.Coordinate
	for _, r := range ds.Rows {
		if r.Coord != nil && r.ConstructionSite {
			out = append(out, *r.Coord)
		}
	}
	return out
}

// Summary counts structures by name. Rows with category 0 or without a name
// are left out. Entries are ordered by category code.
func (ds *Dataset) Summary() []StructureSummary {
	byCat := make(map[gridgraph.Category]*StructureSummary)
	for _, r := range ds.Rows {
		if r.Coord == nil || r.Category == gridgraph.CategoryEmpty || r.Struct == "" {
			continue
		}
		s, ok := byCat[r.Category]
		if !ok {
			s = &StructureSummary{Name: r.Struct, Category: r.Category}
			byCat[r.Category] = s
		}
		s.Count++
		s.Locations = append(s.Locations, *r.Coord)
	}
	out := make([]StructureSummary, 0, len(byCat))
	for _, s := range byCat {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
