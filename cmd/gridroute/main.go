// Command gridroute finds the shortest walk from home to Bandalgom coffee on
// the surveyed grid, writes the route artifacts, and optionally serves the
// planner over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/katalvlaran/gridroute/bfs"
	"github.com/katalvlaran/gridroute/config"
	"github.com/katalvlaran/gridroute/planner"
	"github.com/katalvlaran/gridroute/render"
	"github.com/katalvlaran/gridroute/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("gridroute", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to gridroute.yaml (optional)")
		dataDir    = fs.String("data", "", "survey directory (overrides config)")
		area       = fs.Int("area", 1, "survey area to route in, 0 for all (overrides config)")
		outDir     = fs.String("out", "", "artifact directory (overrides config)")
		serve      = fs.Bool("serve", false, "serve the planner over HTTP after planning")
		addr       = fs.String("addr", "", "http listen address (overrides config)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := log.New(os.Stderr, "[gridroute] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("config: %v", err)
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataDir = *dataDir
		case "area":
			cfg.Area = *area
		case "out":
			cfg.Output.Dir = *outDir
		case "addr":
			cfg.Server.Addr = *addr
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Printf("config: %v", err)
		return 2
	}

	p, err := planner.New(cfg, logger)
	if err != nil {
		logger.Printf("load: %v", err)
		return 1
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := report(ctx, p, stdout, logger)
	if !*serve {
		return code
	}
	if err := server.New(p, logger).ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.Printf("serve: %v", err)
		return 1
	}
	return 0
}

// report plans the configured route, prints it, and writes the artifacts.
func report(ctx context.Context, p *planner.Planner, stdout io.Writer, logger *log.Logger) int {
	ds := p.Dataset()
	fmt.Fprintln(stdout, "structures:")
	for _, s := range ds.Summary() {
		fmt.Fprintf(stdout, "  %-16s %2d  %v\n", s.Name, s.Count, s.Locations)
	}

	o, err := p.PlanDefault(ctx)
	if err != nil {
		if o != nil && o.Suggestions != nil {
			logger.Printf("nearest open cells: start=%v goal=%v", o.Suggestions.Start, o.Suggestions.Goal)
		}
		logger.Printf("plan: %v", err)
		if errors.Is(err, bfs.ErrInvalidEndpoint) {
			return 2
		}
		return 1
	}

	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, render.ASCII(p.Map(), o.Path, nil))
	fmt.Fprintln(stdout)
	if o.Found {
		fmt.Fprintf(stdout, "route %s -> %s: %d steps %v\n", o.Start, o.Goal, o.Steps, o.Path)
	} else {
		fmt.Fprintf(stdout, "route %s -> %s: unreachable\n", o.Start, o.Goal)
		if o.Clearance != nil {
			fmt.Fprintf(stdout, "  clearing %d blocked cell(s) would connect them: %v\n", o.Clearance.Blocked, o.Clearance.Path)
		}
	}

	a, err := p.WriteArtifacts(o)
	if err != nil {
		logger.Printf("artifacts: %v", err)
		return 1
	}
	for _, f := range []string{a.PathCSV, a.MapPNG, a.GeoJSON, a.Summary} {
		if f != "" {
			fmt.Fprintf(stdout, "wrote %s\n", f)
		}
	}
	if !o.Found {
		return 1
	}
	return 0
}
