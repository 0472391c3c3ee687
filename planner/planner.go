// Package planner wires the survey, grid, search and output packages into the
// home-to-café route workflow: load, build, search, diagnose, record, export.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/gridroute/bfs"
	"github.com/katalvlaran/gridroute/config"
	"github.com/katalvlaran/gridroute/gridgraph"
	"github.com/katalvlaran/gridroute/render"
	"github.com/katalvlaran/gridroute/spatial"
	"github.com/katalvlaran/gridroute/store"
	"github.com/katalvlaran/gridroute/survey"
	"github.com/katalvlaran/gridroute/tracelog"
)

// SuggestionCount is how many open cells are offered for an invalid endpoint.
const SuggestionCount = 3

// TracePrefix names the trace files under config Trace.Dir.
const TracePrefix = "search"

// Suggestions lists open cells near each invalid endpoint.
type Suggestions struct {
	Start []gridgraph.Coordinate `json:"start,omitempty"`
	Goal  []gridgraph.Coordinate `json:"goal,omitempty"`
}

// Clearance describes the cheapest way to connect an unreachable goal:
// the fewest blocked cells a route would have to cross.
type Clearance struct {
	Blocked int                    `json:"blocked"`
	Path    []gridgraph.Coordinate `json:"path"`
}

// Outcome is the result of one Plan call.
type Outcome struct {
	RunID       int64                `json:"run_id,omitempty"`
	TraceID     string               `json:"trace_id"`
	Start       gridgraph.Coordinate `json:"start"`
	Goal        gridgraph.Coordinate `json:"goal"`
	Found       bool                 `json:"found"`
	Steps       int                  `json:"steps"`
	Visited     int                  `json:"visited"`
	Path        bfs.Path             `json:"path"`
	Elapsed     time.Duration        `json:"elapsed_ns"`
	Suggestions *Suggestions         `json:"suggestions,omitempty"`
	Clearance   *Clearance           `json:"clearance,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Planner holds an immutable map and its indexes. Plan is safe for concurrent use.
type Planner struct {
	cfg   config.Config
	log   *log.Logger
	ds    *survey.Dataset
	m     *gridgraph.TraversabilityMap
	idx   *spatial.Index
	store *store.Store
	trace *tracelog.Writer

	searchOpts []bfs.Option
}

// New loads the survey from cfg.DataDir and builds a Planner.
func New(cfg config.Config, logger *log.Logger) (*Planner, error) {
	ds, err := survey.Load(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return NewFromDataset(cfg, ds, logger)
}

// NewFromDataset builds a Planner over an already loaded survey. The dataset is
// filtered to cfg.Area unless it is config.AllAreas.
func NewFromDataset(cfg config.Config, ds *survey.Dataset, logger *log.Logger) (*Planner, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	bo, err := cfg.BuildOptions()
	if err != nil {
		return nil, err
	}
	so, err := cfg.SearchOptions()
	if err != nil {
		return nil, err
	}
	if cfg.Area != config.AllAreas {
		ds = ds.FilterArea(cfg.Area)
	}
	m, err := gridgraph.Build(ds.Records(), bo...)
	if err != nil {
		return nil, err
	}
	p := &Planner{
		cfg:        cfg,
		log:        logger,
		ds:         ds,
		m:          m,
		idx:        spatial.NewIndex(m),
		searchOpts: so,
	}
	if cfg.Store.Path != "" {
		if p.store, err = store.Open(cfg.Store.Path); err != nil {
			return nil, err
		}
	}
	if cfg.Trace.Dir != "" {
		p.trace = tracelog.NewWriter(cfg.Trace.Dir, TracePrefix)
	}
	p.log.Printf("map: area=%d cells=%d open=%d blocked=%d regions=%d",
		cfg.Area, m.Len(), m.OpenCount(), m.BlockedCount(), len(m.ConnectedComponents()))
	return p, nil
}

// Close releases the run store and trace writer.
func (p *Planner) Close() error {
	var errs []error
	if p.trace != nil {
		errs = append(errs, p.trace.Close())
	}
	if p.store != nil {
		errs = append(errs, p.store.Close())
	}
	return errors.Join(errs...)
}

// Config returns the settings the Planner was built with.
func (p *Planner) Config() config.Config { return p.cfg }

// Map returns the traversability map. It must not be modified.
func (p *Planner) Map() *gridgraph.TraversabilityMap { return p.m }

// Dataset returns the area-filtered survey.
func (p *Planner) Dataset() *survey.Dataset { return p.ds }

// Index returns the open-cell R-tree.
func (p *Planner) Index() *spatial.Index { return p.idx }

// Store returns the run store, or nil when history is disabled.
func (p *Planner) Store() *store.Store { return p.store }

// Endpoints resolves the configured start and goal. Explicit coordinates win;
// otherwise the first cell of the configured category is used.
func (p *Planner) Endpoints() (start, goal gridgraph.Coordinate, err error) {
	resolve := func(c *gridgraph.Coordinate, cat int) (gridgraph.Coordinate, error) {
		if c != nil {
			return *c, nil
		}
		return p.ds.Locate(gridgraph.Category(cat))
	}
	if start, err = resolve(p.cfg.Route.Start, p.cfg.Route.StartCategory); err != nil {
		return start, goal, fmt.Errorf("planner: start: %w", err)
	}
	if goal, err = resolve(p.cfg.Route.Goal, p.cfg.Route.GoalCategory); err != nil {
		return start, goal, fmt.Errorf("planner: goal: %w", err)
	}
	return start, goal, nil
}

// PlanDefault plans between the configured endpoints.
func (p *Planner) PlanDefault(ctx context.Context) (*Outcome, error) {
	start, goal, err := p.Endpoints()
	if err != nil {
		return nil, err
	}
	return p.Plan(ctx, start, goal)
}

// Plan searches for the shortest route from start to goal.
//
// An unreachable goal is not an error: the Outcome has Found=false and, when
// the endpoints are surveyed, a Clearance. An invalid endpoint returns an
// error wrapping bfs.ErrInvalidEndpoint together with an Outcome carrying
// Suggestions. Every call is recorded when a store is configured.
func (p *Planner) Plan(ctx context.Context, start, goal gridgraph.Coordinate) (*Outcome, error) {
	return p.PlanWatch(ctx, start, goal, nil)
}

// PlanWatch is Plan with watch called for every enqueue and visit event, in
// search order, on the calling goroutine. A non-nil error from watch aborts
// the search.
func (p *Planner) PlanWatch(ctx context.Context, start, goal gridgraph.Coordinate, watch func(tracelog.Event) error) (*Outcome, error) {
	if timeout := p.cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	o := &Outcome{TraceID: uuid.NewString(), Start: start, Goal: goal, Steps: -1, Path: bfs.Path{}}
	rec := p.trace.Recorder(o.TraceID)

	var watchErr error
	opts := append([]bfs.Option{}, p.searchOpts...)
	opts = append(opts,
		bfs.WithContext(ctx),
		bfs.WithOnEnqueue(func(c gridgraph.Coordinate, depth int) {
			ev := rec.Enqueue(c, depth)
			if watch != nil && watchErr == nil {
				watchErr = watch(ev)
			}
		}),
		bfs.WithOnVisit(func(c gridgraph.Coordinate, depth int) error {
			o.Visited++
			ev := rec.Visit(c, depth)
			if watch != nil {
				if watchErr == nil {
					watchErr = watch(ev)
				}
				return watchErr
			}
			return nil
		}),
	)

	began := time.Now()
	path, err := bfs.ShortestPath(p.m, start, goal, opts...)
	o.Elapsed = time.Since(began)

	switch {
	case errors.Is(err, bfs.ErrInvalidEndpoint):
		o.Suggestions = p.suggest(start, goal)
		p.log.Printf("plan %s: %v; nearest open start=%v goal=%v", o.TraceID, err, o.Suggestions.Start, o.Suggestions.Goal)
	case err != nil:
		p.log.Printf("plan %s: %s -> %s aborted after %d visits: %v", o.TraceID, start, goal, o.Visited, err)
	case path.Empty():
		if cpath, cost, cerr := p.m.Clearance(start, goal); cerr == nil {
			o.Clearance = &Clearance{Blocked: cost, Path: cpath}
		}
		p.log.Printf("plan %s: %s -> %s unreachable after %d visits", o.TraceID, start, goal, o.Visited)
	default:
		o.Found = true
		o.Path = path
		o.Steps = path.Steps()
		p.log.Printf("plan %s: %s -> %s in %d steps, %d visits, %s", o.TraceID, start, goal, o.Steps, o.Visited, o.Elapsed)
	}
	if err != nil {
		o.Error = err.Error()
	}

	if ferr := rec.Flush(); ferr != nil {
		p.log.Printf("plan %s: trace: %v", o.TraceID, ferr)
	}
	p.record(ctx, o)
	return o, err
}

func (p *Planner) suggest(start, goal gridgraph.Coordinate) *Suggestions {
	s := &Suggestions{}
	if !p.m.IsOpen(start) {
		s.Start = p.idx.NearestOpen(start, SuggestionCount)
	}
	if !p.m.IsOpen(goal) {
		s.Goal = p.idx.NearestOpen(goal, SuggestionCount)
	}
	return s
}

func (p *Planner) record(ctx context.Context, o *Outcome) {
	if p.store == nil {
		return
	}
	// A cancelled search is still recorded.
	id, err := p.store.RecordRun(context.WithoutCancel(ctx), store.Run{
		Start:   o.Start,
		Goal:    o.Goal,
		Found:   o.Found,
		Steps:   o.Steps,
		Visited: o.Visited,
		Path:    o.Path,
		Error:   o.Error,
	})
	if err != nil {
		p.log.Printf("plan %s: store: %v", o.TraceID, err)
		return
	}
	o.RunID = id
}

// RenderOptions returns the raster options for this map: configured cell size,
// structure markers and construction sites.
func (p *Planner) RenderOptions() []render.Option {
	return []render.Option{
		render.WithCellPx(p.cfg.Output.CellPx),
		render.WithStructures(p.ds.Structures()),
		render.WithConstruction(p.ds.ConstructionSites()),
	}
}
