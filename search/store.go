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
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/kbsearch/core"
)

// indexedEntry holds the lower-cased views of an entry the scorer reads
// for every query. They are computed once when the Store is built.
type indexedEntry struct {
	entry       *core.KnowledgeEntry
	titleTokens []string
	keywords    []string
	description string
	content     string
	category    string
}

// Store is the read-only corpus searched by an Engine.
type Store struct {
	entries []*indexedEntry
	byID    map[string]*indexedEntry
	terms   map[string][]string // index-time word -> entry ids
	stats   core.SearchStats
}

// NewStore validates entries and builds the corpus.
// The entries are copied; later changes to the argument do not affect the Store.
func NewStore(entries []core.KnowledgeEntry) (*Store, error) {
	if err := core.ValidateCorpus(entries); err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}

	s := &Store{
		entries: make([]*indexedEntry, 0, len(entries)),
		byID:    make(map[string]*indexedEntry, len(entries)),
		terms:   make(map[string][]string),
	}
	for i := range entries {
		ie := indexEntry(cloneEntry(entries[i]))
		s.entries = append(s.entries, ie)
		s.byID[ie.entry.ID] = ie
		s.indexTerms(ie)
	}
	s.stats = s.computeStats()
	return s, nil
}

func cloneEntry(e core.KnowledgeEntry) *core.KnowledgeEntry {
	e.Keywords = slices.Clone(e.Keywords)
	e.Examples = slices.Clone(e.Examples)
	e.RelatedTopics = slices.Clone(e.RelatedTopics)
	e.Permissions = slices.Clone(e.Permissions)
	return &e
}

func indexEntry(e *core.KnowledgeEntry) *indexedEntry {
	keywords := make([]string, 0, len(e.Keywords))
	for _, k := range e.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &indexedEntry{
		entry:       e,
		titleTokens: Tokenize(e.Title),
		keywords:    keywords,
		description: strings.ToLower(e.Description),
		content:     strings.ToLower(e.Content),
		category:    strings.ToLower(e.Category),
	}
}

// indexTerms registers the words of the title, keywords and related
// topics of ie in the term index.
func (s *Store) indexTerms(ie *indexedEntry) {
	words := slices.Clone(ie.titleTokens)
	for _, k := range ie.keywords {
		words = append(words, Tokenize(k)...)
	}
	for _, topic := range ie.entry.RelatedTopics {
		words = append(words, Tokenize(topic)...)
	}
	for _, w := range uniqueTokens(words) {
		s.terms[w] = append(s.terms[w], ie.entry.ID)
	}
}

func (s *Store) computeStats() core.SearchStats {
	stats := core.SearchStats{
		TotalEntries: len(s.entries),
		IndexedTerms: len(s.terms),
	}
	categories := make(map[string]struct{})
	subcategories := make(map[string]struct{})
	for _, ie := range s.entries {
		if _, ok := categories[ie.entry.Category]; !ok {
			categories[ie.entry.Category] = struct{}{}
			stats.Categories = append(stats.Categories, ie.entry.Category)
		}
		if ie.entry.HasSubcategory() {
			if _, ok := subcategories[ie.entry.Subcategory]; !ok {
				subcategories[ie.entry.Subcategory] = struct{}{}
				stats.Subcategories = append(stats.Subcategories, ie.entry.Subcategory)
			}
		}
		stats.TotalKeywords += len(ie.entry.Keywords)
	}
	return stats
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns the entries in corpus order.
// The entries are shared with the Store and must not be modified.
func (s *Store) Entries() []*core.KnowledgeEntry {
	out := make([]*core.KnowledgeEntry, len(s.entries))
	for i, ie := range s.entries {
		out[i] = ie.entry
	}
	return out
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (*core.KnowledgeEntry, bool) {
	ie, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return ie.entry, true
}

// EntriesWithTerm returns the entries whose title, keywords or related
// topics contain the word term, in corpus order.
func (s *Store) EntriesWithTerm(term string) []*core.KnowledgeEntry {
	ids := s.terms[strings.ToLower(term)]
	out := make([]*core.KnowledgeEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id].entry)
	}
	return out
}

// Stats returns corpus totals. Categories and subcategories are listed in
// first-seen order.
func (s *Store) Stats() core.SearchStats {
	stats := s.stats
	stats.Categories = slices.Clone(s.stats.Categories)
	stats.Subcategories = slices.Clone(s.stats.Subcategories)
	return stats
}
