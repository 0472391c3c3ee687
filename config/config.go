// Package config loads gridroute settings from YAML, applies environment
// overrides, and validates the result against an embedded JSON Schema.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/gridroute/bfs"
	"github.com/katalvlaran/gridroute/gridgraph"
)

// Environment variables that override file settings.
const (
	EnvDataDir = "GRIDROUTE_DATA_DIR"
	EnvAddr    = "GRIDROUTE_ADDR"
	EnvDB      = "GRIDROUTE_DB"
	EnvOutDir  = "GRIDROUTE_OUT_DIR"
)

// AllAreas disables the area filter.
const AllAreas = 0

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("gridroute.schema.json", schemaJSON)

// Config is the complete gridroute configuration.
type Config struct {
	DataDir string `yaml:"data_dir" json:"data_dir"`
	Area    int    `yaml:"area" json:"area"`

	Route  Route  `yaml:"route" json:"route"`
	Grid   Grid   `yaml:"grid" json:"grid"`
	Search Search `yaml:"search" json:"search"`
	Output Output `yaml:"output" json:"output"`
	Store  Store  `yaml:"store" json:"store"`
	Trace  Trace  `yaml:"trace" json:"trace"`
	Server Server `yaml:"server" json:"server"`
}

// Route picks the endpoints. An explicit coordinate wins over its category lookup.
type Route struct {
	Start         *gridgraph.Coordinate `yaml:"start" json:"start"`
	Goal          *gridgraph.Coordinate `yaml:"goal" json:"goal"`
	StartCategory int                   `yaml:"start_category" json:"start_category"`
	GoalCategory  int                   `yaml:"goal_category" json:"goal_category"`
}

// Grid selects the classification policy for gridgraph.Build.
type Grid struct {
	BlockedCategories []int  `yaml:"blocked_categories" json:"blocked_categories"`
	Duplicates        string `yaml:"duplicates" json:"duplicates"`
}

// Search holds the bfs neighbor order and search limits.
type Search struct {
	NeighborOrder []string `yaml:"neighbor_order" json:"neighbor_order"`
	MaxFrontier   int      `yaml:"max_frontier" json:"max_frontier"`
	MaxExpansions int      `yaml:"max_expansions" json:"max_expansions"`
	TimeoutMs     int      `yaml:"timeout_ms" json:"timeout_ms"`
}

// Output names the artifact files written under Dir. An empty name skips that file.
type Output struct {
	Dir     string `yaml:"dir" json:"dir"`
	PathCSV string `yaml:"path_csv" json:"path_csv"`
	MapPNG  string `yaml:"map_png" json:"map_png"`
	GeoJSON string `yaml:"geojson" json:"geojson"`
	Summary string `yaml:"summary" json:"summary"`
	CellPx  int    `yaml:"cell_px" json:"cell_px"`
}

// Store points at the run-history database. An empty path disables it.
type Store struct {
	Path string `yaml:"path" json:"path"`
}

// Trace points at the search-trace directory. An empty dir disables it.
type Trace struct {
	Dir string `yaml:"dir" json:"dir"`
}

// Server is the HTTP listen address.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the settings for the Bandalgom coffee route on area 1.
func Default() Config {
	return Config{
		DataDir: "data",
		Area:    1,
		Route: Route{
			StartCategory: int(gridgraph.CategoryMyHome),
			GoalCategory:  int(gridgraph.CategoryBandalgomCoffee),
		},
		Grid: Grid{
			BlockedCategories: []int{int(gridgraph.CategoryApartment), int(gridgraph.CategoryBuilding)},
			Duplicates:        "last",
		},
		Search: Search{
			NeighborOrder: []string{"down", "up", "left", "right"},
			MaxFrontier:   bfs.DefaultMaxFrontier,
		},
		Output: Output{
			Dir:     "out",
			PathCSV: "home_to_cafe.csv",
			MapPNG:  "map_final.png",
			GeoJSON: "home_to_cafe.geojson",
			Summary: "structure_summary.csv",
			CellPx:  60,
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads path over Default, applies .env and environment overrides, and
// validates. An empty path skips the file.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&c, ".env"); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// ApplyEnv loads the given dotenv files, skipping missing ones, then copies
// GRIDROUTE_* variables into c. Variables already set in the process win over
// the files.
func ApplyEnv(c *Config, files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: %s: %w", f, err)
		}
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv(EnvDB); ok {
		c.Store.Path = v
	}
	if v, ok := os.LookupEnv(EnvOutDir); ok && v != "" {
		c.Output.Dir = v
	}
	return nil
}

// Validate checks c against the embedded schema, then decodes the enumerated
// fields.
func (c Config) Validate() error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.duplicatePolicy(); err != nil {
		return err
	}
	if _, err := c.neighborOrder(); err != nil {
		return err
	}
	return nil
}

// BuildOptions translates the grid section for gridgraph.Build.
func (c Config) BuildOptions() ([]gridgraph.BuildOption, error) {
	dup, err := c.duplicatePolicy()
	if err != nil {
		return nil, err
	}
	cats := make([]gridgraph.Category, len(c.Grid.BlockedCategories))
	for i, v := range c.Grid.BlockedCategories {
		cats[i] = gridgraph.Category(v)
	}
	return []gridgraph.BuildOption{
		gridgraph.WithBlockedCategories(cats...),
		gridgraph.WithDuplicatePolicy(dup),
	}, nil
}

// SearchOptions translates the search section for bfs. The timeout is not
// included; callers derive a context from Timeout.
func (c Config) SearchOptions() ([]bfs.Option, error) {
	order, err := c.neighborOrder()
	if err != nil {
		return nil, err
	}
	return []bfs.Option{
		bfs.WithNeighborOrder(order...),
		bfs.WithMaxFrontier(c.Search.MaxFrontier),
		bfs.WithMaxExpansions(c.Search.MaxExpansions),
	}, nil
}

// Timeout is the per-search deadline, zero meaning none.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Search.TimeoutMs) * time.Millisecond
}

func (c Config) duplicatePolicy() (gridgraph.DuplicatePolicy, error) {
	switch c.Grid.Duplicates {
	case "", "last":
		return gridgraph.DuplicateKeepLast, nil
	case "first":
		return gridgraph.DuplicateKeepFirst, nil
	case "reject":
		return gridgraph.DuplicateReject, nil
	}
	return 0, fmt.Errorf("%w: grid.duplicates %q", ErrInvalid, c.Grid.Duplicates)
}

func (c Config) neighborOrder() ([]gridgraph.Direction, error) {
	if len(c.Search.NeighborOrder) == 0 {
		return gridgraph.DefaultNeighborOrder(), nil
	}
	out := make([]gridgraph.Direction, 0, len(c.Search.NeighborOrder))
	for _, s := range c.Search.NeighborOrder {
		d, err := gridgraph.ParseDirection(s)
		if err != nil {
			return nil, fmt.Errorf("%w: search.neighbor_order: %v", ErrInvalid, err)
		}
		out = append(out, d)
	}
	return out, nil
}
