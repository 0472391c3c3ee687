// Package survey loads the three survey tables and joins them into one
// record per coordinate, ready for gridgraph.Build.
//
// Tables (headers are matched after trimming surrounding spaces):
//
//	area_map.csv       x, y, ConstructionSite
//	area_struct.csv    x, y, category (or struct_id), area
//	area_category.csv  category (or struct_id), struct (or struct_name)
//
// The join is map ⟵ struct ⟵ category, all left joins: a map row with no
// struct row has category 0 and no area; an unknown category has no name.
package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/gridroute/gridgraph"
)

// File names inside a survey directory.
const (
	MapFile      = "area_map.csv"
	StructFile   = "area_struct.csv"
	CategoryFile = "area_category.csv"
)

// NoArea marks a row whose coordinate has no struct-table entry.
const NoArea = -1

var (
	// ErrMissingColumn indicates a table without a required header.
	ErrMissingColumn = errors.New("survey: missing column")
	// ErrBadValue indicates a cell that cannot be parsed.
	ErrBadValue = errors.New("survey: bad value")
	// ErrCategoryNotFound indicates Locate found no cell with the category.
	ErrCategoryNotFound = errors.New("survey: category not found")
)

// Row is one joined survey row. Coord is nil when area_map carried a blank
// coordinate; such rows are kept so that gridgraph.Build rejects them.
type Row struct {
	Coord            *gridgraph.Coordinate
	Area             int
	Category         gridgraph.Category
	Struct           string
	ConstructionSite bool
}

// Dataset is the joined, (x, y)-sorted survey.
type Dataset struct {
	Rows  []Row
	names map[gridgraph.Category]string
}

// Load reads the three tables from dir.
func Load(dir string) (*Dataset, error) {
	open := func(name string) (*os.File, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("survey: %w", err)
		}
		return f, nil
	}
	mf, err := open(MapFile)
	if err != nil {
		return nil, err
	}
	defer mf.Close()
	sf, err := open(StructFile)
	if err != nil {
		return nil, err
	}
	defer sf.Close()
	cf, err := open(CategoryFile)
	if err != nil {
		return nil, err
	}
	defer cf.Close()
	return Read(mf, sf, cf)
}

// Read parses and joins the three tables.
func Read(mapR, structR, categoryR io.Reader) (*Dataset, error) {
	names, err := readCategories(categoryR)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CategoryFile, err)
	}
	structs, err := readStructs(structR)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StructFile, err)
	}

	t, err := readTable(mapR, []string{"x", "y", "ConstructionSite"})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MapFile, err)
	}
	ds := &Dataset{names: names}
	for i, rec := range t.rows {
		line := i + 2
		row := Row{Area: NoArea}
		coord, err := parseCoord(t.get(rec, "x"), t.get(rec, "y"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", MapFile, line, err)
		}
		row.Coord = coord
		if row.ConstructionSite, err = parseFlag(t.get(rec, "ConstructionSite")); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", MapFile, line, err)
		}
		if coord != nil {
			if s, ok := structs[*coord]; ok {
				row.Area = s.area
				row.Category = s.category
			}
		}
		row.Struct = names[row.Category]
		ds.Rows = append(ds.Rows, row)
	}
	ds.sort()
	return ds, nil
}

type structRow struct {
	category gridgraph.Category
	area     int
}

func readStructs(r io.Reader) (map[gridgraph.Coordinate]structRow, error) {
	t, err := readTable(r, []string{"x", "y", "category|struct_id", "area"})
	if err != nil {
		return nil, err
	}
	out := make(map[gridgraph.Coordinate]structRow, len(t.rows))
	for i, rec := range t.rows {
		line := i + 2
		coord, err := parseCoord(t.get(rec, "x"), t.get(rec, "y"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if coord == nil {
			continue
		}
		cat, err := parseCategory(t.get(rec, "category|struct_id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		area, err := parseInt(t.get(rec, "area"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if area == nil {
			a := NoArea
			area = &a
		}
		out[*coord] = structRow{category: cat, area: *area}
	}
	return out, nil
}

func readCategories(r io.Reader) (map[gridgraph.Category]string, error) {
	t, err := readTable(r, []string{"category|struct_id", "struct|struct_name"})
	if err != nil {
		return nil, err
	}
	out := make(map[gridgraph.Category]string, len(t.rows))
	for i, rec := range t.rows {
		cat, err := parseCategory(t.get(rec, "category|struct_id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		out[cat] = t.get(rec, "struct|struct_name")
	}
	return out, nil
}

// table is a parsed CSV with a header index. Required columns may list
// aliases separated by '|'; the first alias present wins.
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrMissingColumn)
	}
	header := make(map[string]int, len(all[0]))
	for i, h := range all[0] {
		header[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	t := &table{index: make(map[string]int, len(required)), rows: all[1:]}
	for _, req := range required {
		found := false
		for _, alias := range strings.Split(req, "|") {
			if i, ok := header[alias]; ok {
				t.index[req] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}
	return t, nil
}

func (t *table) get(rec []string, col string) string {
	i := t.index[col]
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func isBlank(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

// parseInt accepts integers and integral floats ("3.0") within int range;
// blank and NaN give nil.
func parseInt(s string) (*int, error) {
	if isBlank(s) {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrBadValue, s)
	}
	n := int(f)
	return &n, nil
}

func parseCoord(xs, ys string) (*gridgraph.Coordinate, error) {
	x, err := parseInt(xs)
	if err != nil {
		return nil, err
	}
	y, err := parseInt(ys)
	if err != nil {
		return nil, err
	}
	if x == nil || y == nil {
		return nil, nil
	}
	c := gridgraph.C(*x, *y)
	return &c, nil
}

// parseCategory maps blank and NaN to CategoryEmpty.
func parseCategory(s string) (gridgraph.Category, error) {
	n, err := parseInt(s)
	if err != nil || n == nil {
		return gridgraph.CategoryEmpty, err
	}
	return gridgraph.Category(*n), nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "nan", "0", "0.0", "false", "no":
		return false, nil
	case "1", "1.0", "true", "yes":
		return true, nil
	}
	return false, fmt.Errorf("%w: %q is not a flag", ErrBadValue, s)
}

func (ds *Dataset) sort() {
	sort.SliceStable(ds.Rows, func(i, j int) bool {
		a, b := ds.Rows[i].Coord, ds.Rows[j].Coord
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Less(*b)
	})
}
