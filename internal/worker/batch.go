package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dkrasnov/lexstore/internal/pipeline"
)

// Runner builds one input file end to end.
type Runner interface {
	RunFile(ctx context.Context, path string) (*pipeline.RunResult, error)
}

// BuildJob builds one input file.
type BuildJob struct {
	Path   string
	Runner Runner
}

// Execute runs the build and wraps its outcome.
func (j *BuildJob) Execute(ctx context.Context) Result {
	res, err := j.Runner.RunFile(ctx, j.Path)
	return &BuildResult{Path: j.Path, Run: res, Error: err}
}

// BuildResult is the outcome of one file build. Run is nil on error.
type BuildResult struct {
	Path  string
	Run   *pipeline.RunResult
	Error error
}

// GetError returns the build error, if any.
func (r *BuildResult) GetError() error {
	return r.Error
}

// BatchProcessor builds many input files concurrently on a shared runner.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given parallelism.
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{runner: runner, concurrency: concurrency}
}

// ProcessPaths builds every path and returns one result per path. Result
// order follows completion, not submission.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*BuildResult {
	if len(paths) == 0 {
		return []*BuildResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, path := range paths {
		pool.Submit(&BuildJob{Path: path, Runner: b.runner})
	}
	results := pool.Wait()

	buildResults := make([]*BuildResult, len(results))
	for i, result := range results {
		buildResults[i] = result.(*BuildResult)
	}
	return buildResults
}

// ProcessManifest builds every path listed in a manifest file.
func (b *BatchProcessor) ProcessManifest(ctx context.Context, manifestPath string) ([]*BuildResult, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads input paths from a manifest, one per line. Blank
// lines and # comments are skipped; duplicates are dropped.
func ReadPathsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
