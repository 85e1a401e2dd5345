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
	"strings"

	"github.com/poiesic/kbsearch/core"
)

// Field weights. Only some of them are reachable from the scoring rules
// below; the semantic and related-topic weights are kept so callers that
// inspect them keep compiling.
const (
	WeightExactTitle          = 10.0
	WeightExactKeyword        = 8.0
	WeightPartialTitle        = 6.0
	WeightExactDescription    = 5.0
	WeightSemanticKeyword     = 4.5
	WeightPartialKeyword      = 4.0
	WeightSemanticTitle       = 3.5
	WeightContentExact        = 3.0
	WeightSemanticDescription = 2.5
	WeightContentPartial      = 2.0
	WeightCategoryMatch       = 1.5
	WeightRelatedTopic        = 1.0
)

// Similarity cutoffs applied per field.
const (
	strongMatchCutoff   = 0.8
	partialMatchCutoff  = 0.6
	categoryMatchCutoff = 0.7
)

// scorer turns query words and an entry into a SearchResult.
type scorer struct {
	matcher *Matcher
}

// reasons collects match reasons without duplicates, keeping insertion order.
type reasons struct {
	seen map[string]struct{}
	list []string
}

func (r *reasons) add(format string, args ...any) {
	reason := fmt.Sprintf(format, args...)
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, ok := r.seen[reason]; ok {
		return
	}
	r.seen[reason] = struct{}{}
	r.list = append(r.list, reason)
}

// score sums the contribution of every query word against every field of
// ie. Contributions are additive and unbounded.
func (s *scorer) score(ie *indexedEntry, words []string) *core.SearchResult {
	var total float64
	var why reasons

	for _, w := range words {
		for _, t := range ie.titleTokens {
			sim := s.matcher.Similarity(w, t)
			switch {
			case sim > strongMatchCutoff:
				total += WeightExactTitle * sim
				why.add("title match: %s", t)
			case sim > partialMatchCutoff:
				total += WeightPartialTitle * sim
				why.add("partial title match: %s ~ %s", w, t)
			}
		}

		for _, k := range ie.keywords {
			sim := s.matcher.Similarity(w, k)
			switch {
			case sim > strongMatchCutoff:
				total += WeightExactKeyword * sim
				why.add("keyword match: %s", k)
			case sim > partialMatchCutoff:
				total += WeightPartialKeyword * sim
				why.add("partial keyword match: %s ~ %s", w, k)
			}
		}

		if strings.Contains(ie.description, w) {
			total += WeightExactDescription
			why.add("description contains: %s", w)
		}

		if strings.Contains(ie.content, w) {
			total += WeightContentExact
			why.add("content contains: %s", w)
		}

		if sim := s.matcher.Similarity(w, ie.category); sim > categoryMatchCutoff {
			total += WeightCategoryMatch * sim
			why.add("category match: %s", ie.entry.Category)
		}
	}

	return &core.SearchResult{
		Entry:        ie.entry,
		Score:        total,
		MatchReasons: why.list,
	}
}
