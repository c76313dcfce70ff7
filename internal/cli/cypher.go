package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrasnov/lexstore/internal/graph"
	"github.com/dkrasnov/lexstore/internal/logger"
	"github.com/dkrasnov/lexstore/internal/pipeline"
)

var cypherOut string

var cypherCmd = &cobra.Command{
	Use:   "cypher <file>",
	Short: "Render a Neo4j import script for one extraction file",
	Long: `Cypher builds the store for an extraction file and renders it as a
Cypher import script: uniqueness constraints, a full-text section index,
and MERGE statements for documents, sections, definitions and resolved
cross-references. Pipe it into cypher-shell to load the graph.

Example:
  lexstore cypher deal.json | cypher-shell -u neo4j -p secret
  lexstore cypher deal.json --out deal.cypher`,
	Args: cobra.ExactArgs(1),
	RunE: runCypher,
}

func init() {
	rootCmd.AddCommand(cypherCmd)

	cypherCmd.Flags().StringVar(&cypherOut, "out", "-", "output path for the script ('-' for stdout)")
	cypherCmd.Flags().DurationVar(&buildTimeout, "timeout", 2*time.Minute, "overall build timeout")
}

func runCypher(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	p := pipeline.New(cfg, log)

	res, err := p.RunFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	script := graph.Script(res.Store)
	if cypherOut == "" || cypherOut == "-" {
		if _, err := os.Stdout.WriteString(script); err != nil {
			return fmt.Errorf("write script: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(cypherOut, []byte(script), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	log.Info().Str("path", cypherOut).Msg("wrote import script")
	return nil
}
