// Package export writes routes and survey reports to flat files: CSV for the
// path and the structure summary, GeoJSON for GIS tooling.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/gridroute/gridgraph"
	"github.com/katalvlaran/gridroute/survey"
)

// ErrBadCSV indicates a path CSV that ReadPathCSV cannot parse.
var ErrBadCSV = errors.New("export: malformed path csv")

// WritePathCSV writes an "x,y" header and one row per path cell, start first.
// An empty path writes the header only.
func WritePathCSV(w io.Writer, path []gridgraph.Coordinate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, c := range path {
		if err := cw.Write([]string{strconv.Itoa(c.X), strconv.Itoa(c.Y)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPathCSV parses the output of WritePathCSV.
func ReadPathCSV(r io.Reader) ([]gridgraph.Coordinate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCSV, err)
	}
	if len(rows) == 0 || rows[0][0] != "x" || rows[0][1] != "y" {
		return nil, fmt.Errorf("%w: missing x,y header", ErrBadCSV)
	}
	out := make([]gridgraph.Coordinate, 0, len(rows)-1)
	for i, row := range rows[1:] {
		x, errX := strconv.Atoi(row[0])
		y, errY := strconv.Atoi(row[1])
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: line %d", ErrBadCSV, i+2)
		}
		out = append(out, gridgraph.C(x, y))
	}
	return out, nil
}

// WriteSummaryCSV writes the structure report: category, name, count and the
// space-separated locations.
func WriteSummaryCSV(w io.Writer, rows []survey.StructureSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"category", "struct", "count", "locations"}); err != nil {
		return err
	}
	for _, s := range rows {
		locs := make([]string, len(s.Locations))
		for i, c := range s.Locations {
			locs[i] = c.String()
		}
		rec := []string{strconv.Itoa(int(s.Category)), s.Name, strconv.Itoa(s.Count), strings.Join(locs, " ")}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
