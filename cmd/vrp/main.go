// Command vrp solves routing problems from the command line.
//
//	vrp solve PROBLEM FORMAT [flags]
//	vrp version
//
// Formats: pragmatic (JSON), solomon (VRPTW text), lilim (PDPTW text).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"vrpsolve/internal/buildinfo"
	"vrpsolve/internal/config"
	"vrpsolve/internal/format/lilim"
	"vrpsolve/internal/format/pragmatic"
	"vrpsolve/internal/format/solomon"
	"vrpsolve/internal/geo"
	"vrpsolve/internal/model"
	"vrpsolve/internal/solver"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "solve":
		if err := runSolve(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "vrp:", err)
			os.Exit(1)
		}
	case "version":
		info := buildinfo.Info()
		fmt.Printf("vrp %s", info["version"])
		if info["commit"] != "" {
			fmt.Printf(" (%s)", info["commit"])
		}
		fmt.Println()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  vrp solve PROBLEM FORMAT [flags]
  vrp version

formats: pragmatic, solomon, lilim

flags:
  -o, --out-result PATH   write the solution to PATH (default stdout)
  -g, --geo-json PATH     also write the solution as GeoJSON to PATH
      --max-time SEC      search time budget in seconds
      --max-generations N generation cap
      --seed N            random seed
  -c, --config PATH       YAML solver config`)
}

type solveOpts struct {
	out     string
	geoJSON string
	maxTime int
	maxGens int
	seed    int64
	cfgPath string
}

func runSolve(args []string) error {
	if len(args) < 2 {
		usage()
		return fmt.Errorf("solve needs PROBLEM and FORMAT arguments")
	}
	path, formatName := args[0], args[1]

	var opts solveOpts
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	fs.StringVar(&opts.out, "out-result", "", "solution output path")
	fs.StringVar(&opts.out, "o", "", "solution output path")
	fs.StringVar(&opts.geoJSON, "geo-json", "", "GeoJSON output path")
	fs.StringVar(&opts.geoJSON, "g", "", "GeoJSON output path")
	fs.IntVar(&opts.maxTime, "max-time", 0, "time budget in seconds")
	fs.IntVar(&opts.maxGens, "max-generations", 0, "generation cap")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed")
	fs.StringVar(&opts.cfgPath, "config", "", "YAML solver config path")
	fs.StringVar(&opts.cfgPath, "c", "", "YAML solver config path")
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	mp, planar, err := readProblem(f, formatName)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if opts.geoJSON != "" && planar {
		return fmt.Errorf("--geo-json: format %q has planar coordinates, not geographic ones", formatName)
	}

	b, err := solver.FromModel(mp)
	if err != nil {
		return err
	}
	cfg := solver.Config{
		TimeBudget:     time.Duration(opts.maxTime) * time.Second,
		MaxGenerations: opts.maxGens,
		Seed:           opts.seed,
	}
	if planar {
		b.Problem.Planar = true
		b.Problem.SpeedKmh = 3.6 // 1 unit per second, the convention for these benchmarks
	}
	if opts.cfgPath != "" {
		fileCfg, err := config.Load(opts.cfgPath)
		if err != nil {
			return err
		}
		if cfg.TimeBudget == 0 {
			cfg.TimeBudget = fileCfg.TimeBudget()
		}
		if cfg.MaxGenerations == 0 {
			cfg.MaxGenerations = fileCfg.MaxGenerations
		}
		if cfg.Seed == 0 {
			cfg.Seed = fileCfg.Seed
		}
		cfg.InitTemp = fileCfg.InitTemp
		cfg.Cooling = fileCfg.Cooling
		cfg.InsertionWeights = fileCfg.InsertionWeights
		if fileCfg.SpeedKmh > 0 {
			b.Problem.SpeedKmh = fileCfg.SpeedKmh
		}
	}

	sol, m := solver.Solve(context.Background(), b.Problem, cfg)
	ms, err := b.ToModel(sol, m)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if opts.out != "" {
		of, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer func() { _ = of.Close() }()
		out = of
	}
	if formatName == "solomon" {
		if err := writeSolomonText(out, ms); err != nil {
			return err
		}
	} else if err := pragmatic.WriteSolution(out, ms); err != nil {
		return err
	}

	if opts.geoJSON != "" {
		gf, err := os.Create(opts.geoJSON)
		if err != nil {
			return err
		}
		defer func() { _ = gf.Close() }()
		if err := geo.Write(gf, ms); err != nil {
			return fmt.Errorf("write geojson: %w", err)
		}
	}
	return nil
}

func readProblem(r io.Reader, formatName string) (*model.Problem, bool, error) {
	switch formatName {
	case "pragmatic":
		mp, err := pragmatic.ReadProblem(r)
		if err != nil {
			return nil, false, err
		}
		if err := pragmatic.ValidateProblem(mp); err != nil {
			return nil, false, err
		}
		return mp, false, nil
	case "solomon":
		p, err := solomon.Parse(r)
		if err != nil {
			return nil, false, err
		}
		return p.ToModel(), true, nil
	case "lilim":
		p, err := lilim.Parse(r)
		if err != nil {
			return nil, false, err
		}
		return p.ToModel(), true, nil
	default:
		return nil, false, fmt.Errorf("unknown format %q (want pragmatic, solomon, or lilim)", formatName)
	}
}

// writeSolomonText emits the conventional Route/Cost text form. Job IDs in
// a Solomon-derived solution are customer numbers.
func writeSolomonText(w io.Writer, s *model.Solution) error {
	var routes []solomon.Route
	for _, t := range s.Tours {
		var r solomon.Route
		for _, stop := range t.Stops {
			for _, a := range stop.Activities {
				if a.Type != "delivery" && a.Type != "pickup" {
					continue
				}
				n, err := strconv.Atoi(a.JobID)
				if err != nil {
					return fmt.Errorf("job %q is not a customer number", a.JobID)
				}
				r.Customers = append(r.Customers, n)
			}
		}
		if len(r.Customers) > 0 {
			routes = append(routes, r)
		}
	}
	return solomon.WriteSolution(w, routes, s.Statistic.Cost)
}
