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
	"slices"
	"strings"
)

// suggestionSet keeps distinct strings in insertion order.
type suggestionSet struct {
	seen map[string]struct{}
	list []string
}

func (s *suggestionSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.list = append(s.list, v)
}

// Suggestions proposes completions for a partially typed query: corpus
// keywords extending one of its tokens, then the synonym expansion of
// every token. At most 8 distinct suggestions are returned.
func (e *Engine) Suggestions(partialQuery string) []string {
	tokens := Tokenize(partialQuery)
	var set suggestionSet

	for _, ie := range e.store.entries {
		for _, k := range ie.keywords {
			for _, w := range tokens {
				if len(k) > len(w) && strings.HasPrefix(k, w) {
					set.add(k)
				}
			}
		}
	}
	for _, w := range tokens {
		for _, term := range e.expander.Expand(w) {
			set.add(term)
		}
	}

	if len(set.list) > maxSuggestions {
		return set.list[:maxSuggestions]
	}
	return set.list
}

// PopularSearches returns the curated list of example queries.
func (e *Engine) PopularSearches() []string {
	return slices.Clone(e.popular)
}

// ContextualSuggestions proposes up to three entry titles whose navigation
// section appears in currentPath, followed by up to three suggestions for
// userQuery when it is not blank.
func (e *Engine) ContextualSuggestions(currentPath, userQuery string) []string {
	path := strings.ToLower(currentPath)
	var out []string

	for _, ie := range e.store.entries {
		if len(out) == maxContextualTitles {
			break
		}
		section := topSegment(ie.entry.NavigationPath)
		if section != "" && strings.Contains(path, section) {
			out = append(out, ie.entry.Title)
		}
	}

	if strings.TrimSpace(userQuery) != "" {
		suggestions := e.Suggestions(userQuery)
		out = append(out, suggestions[:min(len(suggestions), maxContextualFromText)]...)
	}
	return out
}

// topSegment returns the first non-empty segment of a slash separated
// navigation path, lower-cased.
func topSegment(navigationPath string) string {
	for _, seg := range strings.Split(navigationPath, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			return strings.ToLower(seg)
		}
	}
	return ""
}
