package planner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/katalvlaran/gridroute/export"
	"github.com/katalvlaran/gridroute/render"
)

// Artifacts lists the files WriteArtifacts produced. Empty entries were disabled.
type Artifacts struct {
	PathCSV string `json:"path_csv,omitempty"`
	MapPNG  string `json:"map_png,omitempty"`
	GeoJSON string `json:"geojson,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// WriteArtifacts writes the route CSV, map PNG, GeoJSON and structure summary
// into the configured output directory. A route that was not found writes the
// CSV header only and a map without a route.
func (p *Planner) WriteArtifacts(o *Outcome) (Artifacts, error) {
	var a Artifacts
	out := p.cfg.Output
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return a, fmt.Errorf("planner: %w", err)
	}
	path := o.Path

	if out.PathCSV != "" {
		a.PathCSV = filepath.Join(out.Dir, out.PathCSV)
		if err := writeFile(a.PathCSV, func(w io.Writer) error { return export.WritePathCSV(w, path) }); err != nil {
			return a, err
		}
	}
	if out.MapPNG != "" {
		a.MapPNG = filepath.Join(out.Dir, out.MapPNG)
		if err := render.PNG(a.MapPNG, p.m, path, p.RenderOptions()...); err != nil {
			return a, err
		}
	}
	if out.GeoJSON != "" {
		a.GeoJSON = filepath.Join(out.Dir, out.GeoJSON)
		fc := export.GeoJSON(p.m, path)
		if err := writeFile(a.GeoJSON, func(w io.Writer) error { return export.WriteGeoJSON(w, fc) }); err != nil {
			return a, err
		}
	}
	if out.Summary != "" {
		a.Summary = filepath.Join(out.Dir, out.Summary)
		rows := p.ds.Summary()
		if err := writeFile(a.Summary, func(w io.Writer) error { return export.WriteSummaryCSV(w, rows) }); err != nil {
			return a, err
		}
	}
	p.log.Printf("artifacts: %+v", a)
	return a, nil
}

func writeFile(name string, fn func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("planner: %s: %w", filepath.Base(name), err)
	}
	return f.Close()
}
