package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/dkrasnov/lexstore/internal/pipeline"
)

// stubRunner records which paths it was asked to build.
type stubRunner struct {
	mu    sync.Mutex
	seen  []string
	fails map[string]bool
}

func (r *stubRunner) RunFile(ctx context.Context, path string) (*pipeline.RunResult, error) {
	r.mu.Lock()
	r.seen = append(r.seen, path)
	r.mu.Unlock()
	if r.fails[path] {
		return nil, errors.New("broken input")
	}
	return &pipeline.RunResult{Path: path}, nil
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	runner := &stubRunner{}
	b := NewBatchProcessor(runner, 3)

	paths := []string{"a.json", "b.json", "c.json", "d.json"}
	results := b.ProcessPaths(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}

	var got []string
	for _, r := range results {
		if r.Error != nil {
			t.Errorf("unexpected error for %s: %v", r.Path, r.Error)
		}
		if r.Run == nil || r.Run.Path != r.Path {
			t.Errorf("result for %s must carry its run", r.Path)
		}
		got = append(got, r.Path)
	}
	sort.Strings(got)
	if strings.Join(got, ",") != "a.json,b.json,c.json,d.json" {
		t.Errorf("unexpected result paths: %v", got)
	}
}

func TestBatchProcessor_FailuresDoNotStopBatch(t *testing.T) {
	runner := &stubRunner{fails: map[string]bool{"bad.json": true}}
	b := NewBatchProcessor(runner, 2)

	results := b.ProcessPaths(context.Background(), []string{"ok.json", "bad.json"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	var failed, ok int
	for _, r := range results {
		if r.GetError() != nil {
			failed++
			if r.Run != nil {
				t.Error("failed result must not carry a run")
			}
		} else {
			ok++
		}
	}
	if failed != 1 || ok != 1 {
		t.Errorf("expected 1 failure and 1 success, got %d/%d", failed, ok)
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	b := NewBatchProcessor(&stubRunner{}, 2)
	if results := b.ProcessPaths(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "inputs.txt")
	content := "a.json\n\n# comment\nb.json\na.json\n  c.json  \n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.json", "b.json", "c.json"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], paths[i])
		}
	}
}

func TestReadPathsFromFile_Missing(t *testing.T) {
	if _, err := ReadPathsFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestBatchProcessor_ProcessManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "inputs.txt")
	if err := os.WriteFile(manifest, []byte("x.json\ny.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &stubRunner{}
	b := NewBatchProcessor(runner, 2)
	results, err := b.ProcessManifest(context.Background(), manifest)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
