// Command procgen runs a generation recipe: it builds meshes and noise
// fields and writes them as OBJ, STL, PNG, SVG and CSV files.
//
// Usage:
//
//	procgen [-recipe recipe.yaml] [-out dir] [-seed n] [-v]
//
// Without -recipe the embedded default recipe is run.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/soypat/procgen/config"
	"github.com/soypat/procgen/internal/pipeline"
)

func main() {
	recipePath := flag.String("recipe", "", "Path to recipe YAML (empty = embedded defaults)")
	outDir := flag.String("out", "", "Output directory (empty = recipe out_dir)")
	seed := flag.Int64("seed", 0, "Base seed for all jobs (0 = recipe seed)")
	verbose := flag.Bool("v", false, "Log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	recipe, err := config.Load(*recipePath)
	if err != nil {
		slog.Error("failed to load recipe", "path", *recipePath, "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		recipe.OutDir = *outDir
	}
	if *seed != 0 {
		recipe.Seed = *seed
	}
	if err := recipe.Validate(); err != nil {
		slog.Error("invalid recipe", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	slog.Info("running recipe", "jobs", len(recipe.Jobs), "seed", recipe.Seed, "path", recipe.OutDir)
	if err := pipeline.NewRunner(recipe, logger).Run(ctx); err != nil {
		slog.Error("recipe failed", "error", err)
		stop()
		os.Exit(1)
	}
	slog.Info("recipe done", "path", recipe.OutDir)
}
