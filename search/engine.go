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

package search

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/kbsearch/core"
)

// Options used by MultiModalSearch for its text filter.
const (
	multiModalTextResults   = 50
	multiModalTextThreshold = 0.3
)

// Limits applied by the suggestion operations.
const (
	maxSuggestions        = 8
	maxContextualTitles   = 3
	maxContextualFromText = 3
)

// Engine searches a fixed corpus of knowledge entries.
//
// The corpus, the synonym table and the popular search list are fixed at
// construction. The only mutable state is the query history, so an Engine
// can be shared freely between goroutines.
type Engine struct {
	store           *Store
	expander        *Expander
	scorer          *scorer
	history         *History
	sink            HistorySink
	popular         []string
	closure         ClosureMode
	historyCapacity int
	session         string
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithSynonymClosure selects how overlapping synonym groups are resolved.
// Default is ClosureFirstWins.
func WithSynonymClosure(mode ClosureMode) Option {
	return func(e *Engine) error {
		e.closure = mode
		return nil
	}
}

// WithHistoryCapacity sets how many recent queries the in-memory history keeps.
// Default is DefaultHistoryCapacity.
func WithHistoryCapacity(capacity int) Option {
	return func(e *Engine) error {
		e.historyCapacity = capacity
		return nil
	}
}

// WithHistorySink forwards a record of every search to sink.
func WithHistorySink(sink HistorySink) Option {
	return func(e *Engine) error {
		if sink == nil {
			return ErrHistorySinkRequired
		}
		e.sink = sink
		return nil
	}
}

// WithPopularSearches sets the curated list returned by PopularSearches.
func WithPopularSearches(queries []string) Option {
	return func(e *Engine) error {
		e.popular = slices.Clone(queries)
		return nil
	}
}

// WithSession tags history records produced by this engine.
func WithSession(session string) Option {
	return func(e *Engine) error {
		e.session = session
		return nil
	}
}

// NewEngine creates an engine over store using the given synonym groups.
func NewEngine(store *Store, synonyms []core.SynonymGroup, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if err := core.ValidateSynonymGroups(synonyms); err != nil {
		return nil, err
	}

	e := &Engine{
		store:           store,
		closure:         ClosureFirstWins,
		historyCapacity: DefaultHistoryCapacity,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	// Build derived state after options so it sees the final configuration
	e.expander = NewExpander(synonyms, e.closure)
	e.scorer = &scorer{matcher: NewMatcher(e.expander)}
	e.history = NewHistory(e.historyCapacity)

	return e, nil
}

// Store returns the corpus searched by the engine.
func (e *Engine) Store() *Store {
	return e.store
}

// Expander returns the synonym expander used for semantic expansion.
func (e *Engine) Expander() *Expander {
	return e.expander
}

// Similarity exposes the fuzzy matcher used by the scorer.
func (e *Engine) Similarity(a, b string) float64 {
	return e.scorer.matcher.Similarity(a, b)
}

// Search ranks the corpus against query.
// A nil opts selects core.DefaultSearchOptions.
func (e *Engine) Search(query string, opts *core.SearchOptions) []*core.SearchResult {
	return e.SearchWithMonitor(query, opts, nil)
}

// SearchWithMonitor ranks the corpus against query, reporting each stage
// to monitor.
//
// Every entry is scored independently. Results scoring at least
// opts.Threshold are sorted by descending score, ties keeping corpus
// order, and truncated to opts.MaxResults. The query is pushed onto the
// history whatever the outcome.
func (e *Engine) SearchWithMonitor(query string, opts *core.SearchOptions, monitor SearchMonitor) []*core.SearchResult {
	if opts == nil {
		opts = core.DefaultSearchOptions()
	}
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	tokens := uniqueTokens(Tokenize(query))
	monitor.AfterTokenize(tokens)

	words := tokens
	if opts.SemanticExpansion {
		words = e.expand(tokens)
	}
	monitor.AfterExpansion(words)

	results := []*core.SearchResult{}
	if len(words) > 0 {
		for _, ie := range e.store.entries {
			result := e.scorer.score(ie, words)
			monitor.EntryScored(result)
			if result.Score >= opts.Threshold {
				results = append(results, result)
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.MaxResults {
		results = results[:max(opts.MaxResults, 0)]
	}

	e.logger.Debug("search completed", "query", query, "words", len(words), "results", len(results))
	e.record(query, len(results))
	monitor.Finish(results)

	return results
}

// expand replaces every token with its synonym expansion, without repeats.
func (e *Engine) expand(tokens []string) []string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		words = append(words, e.expander.Expand(t)...)
	}
	return uniqueTokens(words)
}

// record pushes query onto the history and forwards it to the sink.
func (e *Engine) record(query string, results int) {
	e.history.Push(query)
	if e.sink == nil {
		return
	}
	e.sink.Record(core.QueryRecord{
		Query:       query,
		Fingerprint: core.FingerprintQuery(query),
		Results:     results,
		Session:     e.session,
		Timestamp:   time.Now().UTC(),
	})
}

// SearchSimple returns the entries of a default search capped at maxResults.
func (e *Engine) SearchSimple(query string, maxResults int) []*core.KnowledgeEntry {
	opts := core.DefaultSearchOptions()
	opts.MaxResults = maxResults
	return entriesOf(e.Search(query, opts))
}

func entriesOf(results []*core.SearchResult) []*core.KnowledgeEntry {
	entries := make([]*core.KnowledgeEntry, len(results))
	for i, r := range results {
		entries[i] = r.Entry
	}
	return entries
}

// MultiModalSearch filters the corpus by text relevance, category and
// keywords, in that order. Empty criteria are skipped; a text query made
// only of blanks or stop-words is not empty and matches nothing.
//
// The text filter keeps entries found by a loose search (up to 50 results
// scoring at least 0.3); surviving entries stay in corpus order.
func (e *Engine) MultiModalSearch(q core.MultiModalQuery) []*core.KnowledgeEntry {
	candidates := e.store.Entries()

	if q.TextQuery != "" {
		opts := core.DefaultSearchOptions()
		opts.MaxResults = multiModalTextResults
		opts.Threshold = multiModalTextThreshold
		hits := make(map[string]struct{})
		for _, r := range e.Search(q.TextQuery, opts) {
			hits[r.Entry.ID] = struct{}{}
		}
		candidates = slices.DeleteFunc(candidates, func(entry *core.KnowledgeEntry) bool {
			_, ok := hits[entry.ID]
			return !ok
		})
	}

	if q.Category != "" {
		candidates = slices.DeleteFunc(candidates, func(entry *core.KnowledgeEntry) bool {
			return !strings.EqualFold(entry.Category, q.Category)
		})
	}

	if len(q.Keywords) > 0 {
		candidates = slices.DeleteFunc(candidates, func(entry *core.KnowledgeEntry) bool {
			return !matchesAnyKeyword(entry, q.Keywords)
		})
	}

	limit := q.MaxResults
	if limit == 0 {
		limit = core.DefaultMultiModalResults
	}
	if len(candidates) > limit {
		candidates = candidates[:max(limit, 0)]
	}
	return candidates
}

// SearchByCategory returns the entries whose category equals category,
// ignoring case. A non-empty subcategory must match as well.
func (e *Engine) SearchByCategory(category, subcategory string) []*core.KnowledgeEntry {
	var out []*core.KnowledgeEntry
	for _, ie := range e.store.entries {
		if !strings.EqualFold(ie.entry.Category, category) {
			continue
		}
		if subcategory != "" && !strings.EqualFold(ie.entry.Subcategory, subcategory) {
			continue
		}
		out = append(out, ie.entry)
	}
	return out
}

// SearchByKeywords returns the entries having at least one keyword that
// contains one of keywords, ignoring case.
func (e *Engine) SearchByKeywords(keywords []string) []*core.KnowledgeEntry {
	var out []*core.KnowledgeEntry
	for _, ie := range e.store.entries {
		if matchesAnyKeyword(ie.entry, keywords) {
			out = append(out, ie.entry)
		}
	}
	return out
}

func matchesAnyKeyword(entry *core.KnowledgeEntry, keywords []string) bool {
	for _, want := range keywords {
		want = strings.ToLower(want)
		for _, k := range entry.Keywords {
			if strings.Contains(strings.ToLower(k), want) {
				return true
			}
		}
	}
	return false
}

// Entry returns the entry with the given id.
func (e *Engine) Entry(id string) (*core.KnowledgeEntry, bool) {
	return e.store.Get(id)
}

// Stats returns corpus totals.
func (e *Engine) Stats() core.SearchStats {
	return e.store.Stats()
}

// History returns the recent queries, oldest first.
func (e *Engine) History() []string {
	return e.history.Queries()
}
