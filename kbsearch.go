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

package kbsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/kbsearch/config"
	"github.com/poiesic/kbsearch/core"
	"github.com/poiesic/kbsearch/corpus"
	"github.com/poiesic/kbsearch/recorder"
	"github.com/poiesic/kbsearch/search"
	"github.com/poiesic/kbsearch/storage"
	"github.com/poiesic/kbsearch/storage/badger"
)

// ErrHistoryDisabled is returned by history queries when persistent
// history is not configured.
var ErrHistoryDisabled = errors.New("persistent history is disabled")

// Library is a knowledge base opened for searching: the corpus, the search
// engine and, when configured, the persistent query history.
type Library struct {
	cfg      *config.Config
	bundle   *corpus.Bundle
	engine   *search.Engine
	history  storage.HistoryRepository
	recorder *recorder.Recorder
	session  string
	logger   *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	logger *slog.Logger
	bundle *corpus.Bundle
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) LibraryOption {
	return func(o *libraryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBundle searches bundle instead of loading the configured corpus.
func WithBundle(bundle *corpus.Bundle) LibraryOption {
	return func(o *libraryOptions) {
		o.bundle = bundle
	}
}

// Open loads the knowledge base described by cfg. A nil cfg selects
// config.DefaultConfig.
func Open(cfg *config.Config, opts ...LibraryOption) (*Library, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply options
	options := &libraryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	bundle := options.bundle
	if bundle == nil {
		var err error
		if bundle, err = loadBundle(cfg.Corpus.Path); err != nil {
			return nil, err
		}
	}

	store, err := search.NewStore(bundle.Entries)
	if err != nil {
		return nil, err
	}

	lib := &Library{
		cfg:     cfg,
		bundle:  bundle,
		session: uuid.NewString(),
		logger:  logger,
	}

	engineOpts := []search.Option{
		search.WithLogger(logger),
		search.WithSynonymClosure(cfg.ClosureMode()),
		search.WithHistoryCapacity(cfg.Search.HistoryCapacity),
		search.WithPopularSearches(bundle.Popular),
		search.WithSession(lib.session),
	}

	if cfg.HistoryEnabled() {
		if err := lib.openHistory(); err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, search.WithHistorySink(lib.recorder))
	}

	lib.engine, err = search.NewEngine(store, bundle.Synonyms, engineOpts...)
	if err != nil {
		lib.Close()
		return nil, err
	}

	logger.Debug("knowledge base opened",
		"entries", store.Len(),
		"synonyms", len(bundle.Synonyms),
		"history", cfg.HistoryEnabled(),
		"session", lib.session)
	return lib, nil
}

func loadBundle(path string) (*corpus.Bundle, error) {
	if path == "" {
		return corpus.Default()
	}
	return corpus.LoadFile(path)
}

func (l *Library) openHistory() error {
	var (
		repo storage.HistoryRepository
		err  error
	)
	if l.cfg.History.InMemory {
		repo, err = badger.NewMemoryHistoryRepository()
	} else {
		repo, err = badger.OpenHistoryRepository(l.cfg.History.DBPath, l.logger)
	}
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}

	rec, err := recorder.NewRecorder(repo,
		recorder.WithPoolSize(l.cfg.History.PoolSize),
		recorder.WithLogger(l.logger))
	if err != nil {
		repo.Close()
		return err
	}

	l.history = repo
	l.recorder = rec
	return nil
}

// Close flushes pending history records and releases every resource.
// Calling Close more than once is a no-op.
func (l *Library) Close() error {
	var errs []error
	if l.recorder != nil {
		if err := l.recorder.Close(); err != nil {
			l.logger.Error("error closing history recorder", "err", err)
			errs = append(errs, err)
		}
		l.recorder = nil
	}
	if l.history != nil {
		if err := l.history.Close(); err != nil {
			l.logger.Error("error closing history repository", "err", err)
			errs = append(errs, err)
		}
		l.history = nil
	}
	return errors.Join(errs...)
}

// Engine returns the search engine.
func (l *Library) Engine() *search.Engine {
	return l.engine
}

// Config returns the configuration the library was opened with.
func (l *Library) Config() *config.Config {
	return l.cfg
}

// Bundle returns the loaded corpus.
func (l *Library) Bundle() *corpus.Bundle {
	return l.bundle
}

// Session returns the id stamped on the history records of this library.
func (l *Library) Session() string {
	return l.session
}

// SearchOptions returns the configured default search options.
func (l *Library) SearchOptions() *core.SearchOptions {
	return l.cfg.SearchOptions()
}

// Search runs query with the configured default options.
func (l *Library) Search(query string) []*core.SearchResult {
	return l.engine.Search(query, l.SearchOptions())
}

// Flush waits until every search so far has been persisted. It returns
// immediately when persistent history is disabled.
func (l *Library) Flush() {
	if l.recorder != nil {
		l.recorder.Flush()
	}
}

// HistoryRepository returns the persistent history, or nil when disabled.
func (l *Library) HistoryRepository() storage.HistoryRepository {
	return l.history
}

// RecentQueries returns up to limit persisted searches, most recent first.
func (l *Library) RecentQueries(ctx context.Context, limit int) ([]*core.QueryRecord, error) {
	if l.history == nil {
		return nil, ErrHistoryDisabled
	}
	l.Flush()
	return l.history.RecentQueries(ctx, limit)
}

// TopQueries returns up to limit persisted searches by frequency.
func (l *Library) TopQueries(ctx context.Context, limit int) ([]storage.QueryCount, error) {
	if l.history == nil {
		return nil, ErrHistoryDisabled
	}
	l.Flush()
	return l.history.TopQueries(ctx, limit)
}
