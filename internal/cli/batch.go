package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dkrasnov/lexstore/internal/logger"
	"github.com/dkrasnov/lexstore/internal/pipeline"
	"github.com/dkrasnov/lexstore/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchFormat  string
	withSchemas  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Build stores for multiple extraction files in parallel",
	Long: `Batch reads input paths from a manifest file (one per line, # comments
allowed) and builds every store concurrently. Each input produces
<name>.store.json in the output directory; identical inputs share cached
builds within the run.

Example:
  lexstore batch inputs.txt
  lexstore batch inputs.txt --concurrency 8 --output-dir ./stores
  lexstore batch inputs.txt --with-schemas --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./lexstore-out", "output directory for stores")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "output format (json, yaml)")
	batchCmd.Flags().BoolVar(&withSchemas, "with-schemas", false, "write an inferred schema next to each store")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the store cache")
	batchCmd.Flags().BoolVar(&validateStore, "validate", false, "validate each store against its inferred schema")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Format = batchFormat
	if noCache {
		cfg.Cache.Enabled = false
	}
	if validateStore {
		cfg.Output.Validate = true
	}

	runID := uuid.NewString()
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty).With().Str("run_id", runID).Logger()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p := pipeline.New(cfg, log)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	results, err := processor.ProcessManifest(ctx, args[0])
	if err != nil {
		return fmt.Errorf("process manifest: %w", err)
	}

	var succeeded, failed int
	for _, result := range results {
		if result.Error != nil {
			failed++
			log.Error().Str("path", result.Path).Err(result.Error).Msg("build failed")
			continue
		}

		stem := storeStem(result.Path)
		outPath := filepath.Join(outputDir, stem+".store."+extFor(cfg.Output.Format))
		schemaPath := ""
		if withSchemas {
			schemaPath = filepath.Join(outputDir, stem+".schema.json")
		}
		if err := p.WriteOutputs(result.Run, outPath, schemaPath); err != nil {
			failed++
			log.Error().Str("path", result.Path).Err(err).Msg("write failed")
			continue
		}
		succeeded++
	}

	log.Info().
		Int("total", len(results)).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Str("output_dir", outputDir).
		Msg("batch complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d builds failed", failed, len(results))
	}
	return nil
}

// storeStem derives an output file stem from an input path.
func storeStem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "store"
	}
	return base
}

func extFor(format string) string {
	if format == "yaml" {
		return "yaml"
	}
	return "json"
}
