// Command conflate matches one GeoJSON feature set against another and
// writes the merged/new results back out as GeoJSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hotosm/conflate/conflate"
	"github.com/hotosm/conflate/geoio"
	"github.com/hotosm/conflate/runconfig"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configFile = flag.String("config", "config.yaml", "Path to run configuration file")
	primary    = flag.String("primary", "", "Path to the primary (external) GeoJSON dataset, overrides config")
	secondary  = flag.String("secondary", "", "Path to the secondary (existing) GeoJSON dataset, overrides config")
	updatedOut = flag.String("updated-out", "", "Output path for Updated features, overrides config")
	newOut     = flag.String("new-out", "", "Output path for New features, overrides config")
	workers    = flag.Int("workers", 0, "Number of worker goroutines, overrides config when nonzero (a config value of 0 means runtime.NumCPU())")
	dryRun     = flag.Bool("dry-run", false, "Run the match and report counts without writing output files")
)

func main() {
	flag.Parse()
	fmt.Printf("conflate version: %s\n", Version)

	cfg, err := runconfig.LoadRunConfig(*configFile)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if *primary != "" {
		cfg.Primary = *primary
	}
	if *secondary != "" {
		cfg.Secondary = *secondary
	}
	if *updatedOut != "" {
		cfg.Output.Updated = *updatedOut
	}
	if *newOut != "" {
		cfg.Output.New = *newOut
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}

	if err := run(cfg); err != nil {
		log.Fatalf("conflate: %v", err)
	}
}

func run(cfg *runconfig.RunConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	primaryFeatures, err := geoio.ReadFeatures(cfg.Primary)
	if err != nil {
		return fmt.Errorf("reading primary dataset: %w", err)
	}
	secondaryFeatures, err := geoio.ReadFeatures(cfg.Secondary)
	if err != nil {
		return fmt.Errorf("reading secondary dataset: %w", err)
	}
	fmt.Printf("loaded %d primary and %d secondary features\n", len(primaryFeatures), len(secondaryFeatures))

	result, err := conflate.Conflate(ctx, primaryFeatures, secondaryFeatures, cfg.ToConflateConfig(), conflate.DefaultLogger())
	if err != nil {
		return fmt.Errorf("running conflation: %w", err)
	}

	fmt.Printf("matched: %d updated, %d new, %d warnings\n", len(result.Updated), len(result.New), len(result.Warnings))
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warn[%s]: %s\n", w.Stage, w.Message)
	}

	if *dryRun {
		return nil
	}

	if err := geoio.WriteFeatures(cfg.Output.Updated, result.Updated); err != nil {
		return fmt.Errorf("writing updated output: %w", err)
	}
	if err := geoio.WriteFeatures(cfg.Output.New, result.New); err != nil {
		return fmt.Errorf("writing new output: %w", err)
	}

	return nil
}
