// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/poiesic/kbsearch/core"
	"github.com/poiesic/kbsearch/search"
)

// Environment variables overriding file settings.
const (
	EnvCorpus    = "KBSEARCH_CORPUS"
	EnvHistoryDB = "KBSEARCH_HISTORY_DB"
	EnvLogLevel  = "KBSEARCH_LOG_LEVEL"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the settings of a kbsearch process.
type Config struct {
	Corpus  CorpusConfig  `toml:"corpus"`
	Search  SearchConfig  `toml:"search"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
}

// CorpusConfig selects the knowledge base.
type CorpusConfig struct {
	// Path is a YAML bundle or a directory of markdown notes.
	// Empty selects the corpus compiled into the binary.
	Path string `toml:"path"`
}

// SearchConfig holds the default search options.
// MaxResults and Threshold are passed through unchecked; out-of-range
// values simply yield fewer results.
type SearchConfig struct {
	MaxResults        int     `toml:"max_results"`
	Threshold         float64 `toml:"threshold"`
	SemanticExpansion bool    `toml:"semantic_expansion"`
	SynonymClosure    string  `toml:"synonym_closure" validate:"oneof=first union"`
	HistoryCapacity   int     `toml:"history_capacity" validate:"min=0"`
}

// HistoryConfig controls persistent query history.
type HistoryConfig struct {
	// DBPath is the BadgerDB directory. Empty disables persistence unless
	// InMemory is set.
	DBPath   string `toml:"db_path"`
	InMemory bool   `toml:"in_memory"`
	PoolSize int    `toml:"pool_size" validate:"min=0"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithCorpusPath sets the corpus file or directory.
func WithCorpusPath(path string) Option {
	return func(c *Config) {
		c.Corpus.Path = path
	}
}

// WithMaxResults sets the default number of search results.
func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.Search.MaxResults = n
	}
}

// WithThreshold sets the default minimum score.
func WithThreshold(threshold float64) Option {
	return func(c *Config) {
		c.Search.Threshold = threshold
	}
}

// WithSemanticExpansion toggles synonym expansion of queries.
func WithSemanticExpansion(enabled bool) Option {
	return func(c *Config) {
		c.Search.SemanticExpansion = enabled
	}
}

// WithSynonymClosure sets the synonym closure mode, "first" or "union".
func WithSynonymClosure(mode string) Option {
	return func(c *Config) {
		c.Search.SynonymClosure = mode
	}
}

// WithHistoryCapacity sets the size of the in-memory query history.
func WithHistoryCapacity(n int) Option {
	return func(c *Config) {
		c.Search.HistoryCapacity = n
	}
}

// WithHistoryDB enables persistent history in dir.
func WithHistoryDB(dir string) Option {
	return func(c *Config) {
		c.History.DBPath = dir
	}
}

// WithInMemoryHistory keeps the persistent history in memory.
func WithInMemoryHistory(enabled bool) Option {
	return func(c *Config) {
		c.History.InMemory = enabled
	}
}

// WithPoolSize sets the number of history writers.
func WithPoolSize(n int) Option {
	return func(c *Config) {
		c.History.PoolSize = n
	}
}

// WithLogLevel sets the log level name.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.Log.Level = level
	}
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			MaxResults:        core.DefaultMaxResults,
			Threshold:         core.DefaultThreshold,
			SemanticExpansion: true,
			SynonymClosure:    search.ClosureFirstWins.String(),
			HistoryCapacity:   search.DefaultHistoryCapacity,
		},
		History: HistoryConfig{
			PoolSize: 1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithCorpusPath("/srv/kb/corpus.yaml"),
//	    WithHistoryDB("/var/lib/kbsearch"),
//	)
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults. Unknown keys are logged and ignored.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		slog.Warn("unknown configuration key ignored", "key", key.String(), "file", filepath.Base(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from the KBSEARCH_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvCorpus); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv(EnvHistoryDB); v != "" {
		c.History.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Normalize puts enumerated settings in canonical form.
func (c *Config) Normalize() {
	c.Search.SynonymClosure = strings.ToLower(strings.TrimSpace(c.Search.SynonymClosure))
	if c.Search.SynonymClosure == "" {
		c.Search.SynonymClosure = search.ClosureFirstWins.String()
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate normalizes the configuration and checks it.
func (c *Config) Validate() error {
	c.Normalize()

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s must satisfy %s=%s, got %v",
			ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
}

// SearchOptions returns the default search options described by c.
func (c *Config) SearchOptions() *core.SearchOptions {
	opts := core.DefaultSearchOptions()
	opts.MaxResults = c.Search.MaxResults
	opts.Threshold = c.Search.Threshold
	opts.SemanticExpansion = c.Search.SemanticExpansion
	return opts
}

// ClosureMode returns the configured synonym closure mode.
func (c *Config) ClosureMode() search.ClosureMode {
	return search.ParseClosureMode(c.Search.SynonymClosure)
}

// HistoryEnabled reports whether searches are persisted.
func (c *Config) HistoryEnabled() bool {
	return c.History.DBPath != "" || c.History.InMemory
}

// LogLevel returns the slog level named by Log.Level.
// Unknown names select slog.LevelInfo.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
