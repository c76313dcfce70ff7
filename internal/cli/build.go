package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrasnov/lexstore/internal/logger"
	"github.com/dkrasnov/lexstore/internal/pipeline"
)

var (
	outPath       string
	schemaPath    string
	outFormat     string
	extractedWith string
	schemaVersion string
	indexText     bool
	snippetChars  int
	validateStore bool
	buildTimeout  time.Duration
	noCache       bool
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Build a normalized store from one extraction file",
	Long: `Build loads a JSON extraction file, normalizes its elements into the
document store, and writes the result.

Example:
  lexstore build deal.json
  lexstore build deal.json --out store.json --schema store.schema.json
  lexstore build deal.json --format yaml --validate
  lexstore build deal.json --extracted-with unstructured-0.15 --index-text`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&outPath, "out", "-", "output path for the store ('-' for stdout)")
	buildCmd.Flags().StringVar(&schemaPath, "schema", "", "also write the inferred JSON Schema to this path")
	buildCmd.Flags().StringVar(&outFormat, "format", "json", "output format (json, yaml)")
	buildCmd.Flags().StringVar(&extractedWith, "extracted-with", "", "extraction tool identifier recorded in the document header")
	buildCmd.Flags().StringVar(&schemaVersion, "schema-version", "", "store schema version recorded in the output")
	buildCmd.Flags().BoolVar(&indexText, "index-text", false, "carry full section text in the topology index instead of snippets")
	buildCmd.Flags().IntVar(&snippetChars, "snippet-chars", 0, "snippet length in the topology index (0 keeps the configured default)")
	buildCmd.Flags().BoolVar(&validateStore, "validate", false, "validate the store against its inferred schema")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 2*time.Minute, "overall build timeout")
	buildCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the store cache")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if extractedWith != "" {
		cfg.Build.ExtractedWith = extractedWith
	}
	if schemaVersion != "" {
		cfg.Build.SchemaVersion = schemaVersion
	}
	if indexText {
		cfg.Build.IncludeTextInIndex = true
	}
	if snippetChars > 0 {
		cfg.Build.SnippetChars = snippetChars
	}
	if validateStore {
		cfg.Output.Validate = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.Format = outFormat

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	p := pipeline.New(cfg, log)

	res, err := p.RunFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if err := p.WriteOutputs(res, outPath, schemaPath); err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}
	return nil
}
