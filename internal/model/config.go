package model

import (
	"runtime"
	"time"
)

// Config holds the complete build configuration. It is assembled once from
// defaults, config file, environment, and flags, and passed into the
// pipeline as an immutable value; there is no ambient global state.
type Config struct {
	Build       BuildConfig       `mapstructure:"build" yaml:"build"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// BuildConfig controls store construction.
type BuildConfig struct {
	SchemaVersion string `mapstructure:"schema_version" yaml:"schema_version"`
	ExtractedWith string `mapstructure:"extracted_with" yaml:"extracted_with"`

	// IncludeTextInIndex puts full text into topology.section_index entries.
	// Otherwise entries carry text_snippet + text_len + text_hash.
	IncludeTextInIndex bool `mapstructure:"include_text_in_index" yaml:"include_text_in_index"`

	// SnippetChars bounds text_snippet length (in runes).
	SnippetChars int `mapstructure:"snippet_chars" yaml:"snippet_chars"`
}

// OutputConfig controls rendering of the built store.
type OutputConfig struct {
	Format   string `mapstructure:"format" yaml:"format"` // json or yaml
	Validate bool   `mapstructure:"validate" yaml:"validate"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
}

// CacheConfig controls the in-memory store cache used by batch runs.
// Caching by content hash is sound because identical input bytes always
// produce an identical store (IDs are content-addressed).
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ConcurrencyConfig bounds batch parallelism. A single document is always
// built by one synchronous call; parallelism exists only across documents.
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// DefaultConfig returns the built-in defaults, the lowest layer of the
// configuration hierarchy.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			SchemaVersion: "1.0.0",
			ExtractedWith: "unknown",
			SnippetChars:  280,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}
