// Package pipeline orchestrates one document build: load elements from the
// input file, check the content-hash cache, run the store builder, infer
// the output schema, and render the result.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dkrasnov/lexstore/internal/builder"
	"github.com/dkrasnov/lexstore/internal/cache"
	"github.com/dkrasnov/lexstore/internal/loader"
	"github.com/dkrasnov/lexstore/internal/loader/adapters"
	"github.com/dkrasnov/lexstore/internal/model"
	"github.com/dkrasnov/lexstore/internal/schema"
)

// Pipeline turns raw extraction files into normalized stores. A single
// Pipeline is safe for concurrent RunFile calls; batch runs share one
// instance so cached stores are reused across workers.
type Pipeline struct {
	loader *loader.Loader
	cache  cache.Cache
	cfg    *model.Config
	log    zerolog.Logger
}

// New creates a pipeline from the resolved configuration.
func New(cfg *model.Config, log zerolog.Logger) *Pipeline {
	p := &Pipeline{
		loader: loader.New(adapters.NewRegistry()),
		cfg:    cfg,
		log:    log,
	}
	if cfg.Cache.Enabled {
		p.cache = cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}
	return p
}

// RunResult is the complete outcome of building one document.
type RunResult struct {
	Path      string
	Store     *model.Store
	StoreJSON []byte         // indented canonical rendering
	Schema    map[string]any // inferred draft-07 schema
	FromCache bool
}

// RunFile loads one input file and builds its store.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elements, err := p.loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p.Run(ctx, elements, filepath.Base(path), path)
}

// Run builds a store from an already loaded element list. The filename is
// recorded in the document header; path only labels logs and results.
func (p *Pipeline) Run(ctx context.Context, elements []map[string]any, filename, path string) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docHash := builder.DocHash(elements)
	if p.cache != nil {
		if raw, ok := p.cache.Get(cache.Key(docHash)); ok {
			var store model.Store
			if err := json.Unmarshal(raw, &store); err == nil {
				p.log.Debug().Str("path", path).Str("hash", docHash).Msg("store cache hit")
				return p.finish(&RunResult{Path: path, Store: &store, StoreJSON: raw, FromCache: true})
			}
			// Corrupt entry: drop it and rebuild.
			_ = p.cache.Delete(cache.Key(docHash))
		}
	}

	store := builder.New(elements, filename, p.cfg.Build).Build()
	raw, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize store: %w", err)
	}
	if p.cache != nil {
		_ = p.cache.Set(cache.Key(docHash), raw, p.cfg.Cache.TTL)
	}
	return p.finish(&RunResult{Path: path, Store: store, StoreJSON: raw})
}

// finish infers the schema from the serialized store and, when configured,
// validates the store against it.
func (p *Pipeline) finish(res *RunResult) (*RunResult, error) {
	var generic map[string]any
	if err := json.Unmarshal(res.StoreJSON, &generic); err != nil {
		return nil, fmt.Errorf("reparse store: %w", err)
	}
	res.Schema = schema.Infer(generic)
	if p.cfg.Output.Validate {
		if err := schema.Validate(res.Schema, generic); err != nil {
			return nil, err
		}
	}

	p.log.Info().
		Str("doc_id", res.Store.Document.DocID).
		Int("sections", len(res.Store.Sections)).
		Int("definitions", len(res.Store.Definitions)).
		Int("cross_references", len(res.Store.CrossReferences)).
		Bool("cached", res.FromCache).
		Msg("store built")
	return res, nil
}
