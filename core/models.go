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

package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a deterministic identifier derived from content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FingerprintQuery returns the ID shared by queries that differ only in
// case or spacing.
func FingerprintQuery(query string) ID {
	return IDFromContent(strings.Join(strings.Fields(strings.ToLower(query)), " "))
}

// KnowledgeEntry is a single help/documentation record of the corpus.
// Entries are immutable once the corpus is built.
//
// Optional fields use their zero value to mean "absent": an empty
// Subcategory or a nil RelatedTopics contributes nothing to matching.
type KnowledgeEntry struct {
	ID             string   `yaml:"id" validate:"required"`
	Category       string   `yaml:"category" validate:"required"`
	Subcategory    string   `yaml:"subcategory,omitempty"`
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description,omitempty"`
	Content        string   `yaml:"content,omitempty"`
	Keywords       []string `yaml:"keywords,omitempty"`
	Examples       []string `yaml:"examples,omitempty"`
	RelatedTopics  []string `yaml:"related_topics,omitempty"`
	NavigationPath string   `yaml:"navigation_path,omitempty"`
	Permissions    []string `yaml:"permissions,omitempty"`
}

// HasSubcategory reports whether the optional subcategory is set.
func (e *KnowledgeEntry) HasSubcategory() bool {
	return e.Subcategory != ""
}

// SynonymGroup associates a canonical term with related terms.
// Groups are ordered: when a term belongs to several groups the
// registration order decides which neighbors it keeps.
type SynonymGroup struct {
	Term     string   `yaml:"term"`
	Synonyms []string `yaml:"synonyms"`
}

// SearchOptions tunes a single search call.
// Values are taken as given; out-of-range values simply yield fewer results.
type SearchOptions struct {
	MaxResults int
	Threshold  float64

	// IncludePartialMatches and ContextBoost are accepted for callers that
	// already send them. Scoring does not read either flag.
	IncludePartialMatches bool
	ContextBoost          bool

	// SemanticExpansion expands query tokens through the synonym table
	// before scoring.
	SemanticExpansion bool
}

// Default search option values.
const (
	DefaultMaxResults = 5
	DefaultThreshold  = 0.5
)

// DefaultSearchOptions returns the options used when a caller passes none.
func DefaultSearchOptions() *SearchOptions {
	return &SearchOptions{
		MaxResults:            DefaultMaxResults,
		Threshold:             DefaultThreshold,
		IncludePartialMatches: true,
		ContextBoost:          true,
		SemanticExpansion:     true,
	}
}

// SearchResult is a scored entry returned by a search.
type SearchResult struct {
	Entry        *KnowledgeEntry
	Score        float64
	MatchReasons []string // de-duplicated, in the order the matches were found
}

// MultiModalQuery combines free text with structured filters.
// Empty fields are ignored.
type MultiModalQuery struct {
	TextQuery  string
	Category   string
	Keywords   []string
	MaxResults int // 0 selects DefaultMultiModalResults
}

// DefaultMultiModalResults caps multi-modal searches that do not set MaxResults.
const DefaultMultiModalResults = 10

// SearchStats summarizes the corpus.
type SearchStats struct {
	TotalEntries  int
	Categories    []string
	Subcategories []string
	TotalKeywords int
	IndexedTerms  int
}

// QueryRecord is one entry of the persisted query history.
type QueryRecord struct {
	Seq         uint64    // Assigned by the history repository
	Query       string    // Raw query as typed by the caller
	Fingerprint ID        // IDFromContent of the normalized query
	Results     int       // Number of results returned
	Session     string    // Identifier of the process that issued the query
	Timestamp   time.Time // When the search ran
}
