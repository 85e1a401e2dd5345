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

	"github.com/poiesic/kbsearch/core"
)

// ClosureMode selects how a term belonging to several synonym groups is
// resolved.
type ClosureMode int

const (
	// ClosureFirstWins registers every canonical term with its own group and
	// every synonym with the first group that lists it. Later groups never
	// extend a synonym that is already registered.
	ClosureFirstWins ClosureMode = iota

	// ClosureUnion gives every term the union of all groups it belongs to.
	ClosureUnion
)

// String returns the configuration name of the mode.
func (m ClosureMode) String() string {
	switch m {
	case ClosureUnion:
		return "union"
	default:
		return "first"
	}
}

// ParseClosureMode maps a configuration name to a ClosureMode.
// Unknown names select ClosureFirstWins.
func ParseClosureMode(name string) ClosureMode {
	if strings.EqualFold(name, "union") {
		return ClosureUnion
	}
	return ClosureFirstWins
}

// Expander resolves a term to its synonym equivalence class.
// The table is computed once by NewExpander and never modified, so an
// Expander can be shared across goroutines.
type Expander struct {
	terms map[string][]string
	sets  map[string]map[string]struct{}
}

// NewExpander precomputes the expansion table for groups.
// Terms are stored lower-cased.
func NewExpander(groups []core.SynonymGroup, mode ClosureMode) *Expander {
	var terms map[string][]string
	if mode == ClosureUnion {
		terms = unionClosure(groups)
	} else {
		terms = firstWinsClosure(groups)
	}

	sets := make(map[string]map[string]struct{}, len(terms))
	for term, members := range terms {
		set := make(map[string]struct{}, len(members))
		for _, m := range members {
			set[m] = struct{}{}
		}
		sets[term] = set
	}
	return &Expander{terms: terms, sets: sets}
}

func groupMembers(g core.SynonymGroup) []string {
	members := make([]string, 0, len(g.Synonyms)+1)
	members = append(members, strings.ToLower(strings.TrimSpace(g.Term)))
	for _, s := range g.Synonyms {
		members = append(members, strings.ToLower(strings.TrimSpace(s)))
	}
	members = slices.DeleteFunc(members, func(s string) bool { return s == "" })
	return uniqueTokens(members)
}

func firstWinsClosure(groups []core.SynonymGroup) map[string][]string {
	terms := make(map[string][]string)
	for _, g := range groups {
		members := groupMembers(g)
		if len(members) == 0 {
			continue
		}
		terms[members[0]] = members
		for _, syn := range members[1:] {
			if _, ok := terms[syn]; !ok {
				terms[syn] = members
			}
		}
	}
	return terms
}

func unionClosure(groups []core.SynonymGroup) map[string][]string {
	terms := make(map[string][]string)
	for _, g := range groups {
		members := groupMembers(g)
		for _, m := range members {
			terms[m] = uniqueTokens(append(terms[m], members...))
		}
	}
	return terms
}

// Expand returns term together with every term registered as related to
// it. Unknown terms expand to themselves. The returned slice is owned by
// the caller.
func (e *Expander) Expand(term string) []string {
	if members, ok := e.terms[strings.ToLower(term)]; ok {
		return slices.Clone(members)
	}
	return []string{term}
}

// Known reports whether term has a registered expansion.
func (e *Expander) Known(term string) bool {
	_, ok := e.terms[strings.ToLower(term)]
	return ok
}

// Overlaps reports whether the expansions of a and b share at least one term.
func (e *Expander) Overlaps(a, b string) bool {
	setA, okA := e.sets[strings.ToLower(a)]
	setB, okB := e.sets[strings.ToLower(b)]
	switch {
	case okA && okB:
		if len(setB) < len(setA) {
			setA, setB = setB, setA
		}
		for m := range setA {
			if _, ok := setB[m]; ok {
				return true
			}
		}
		return false
	case okA:
		_, ok := setA[b]
		return ok
	case okB:
		_, ok := setB[a]
		return ok
	default:
		return a == b
	}
}

// Len returns the number of terms with a registered expansion.
func (e *Expander) Len() int {
	return len(e.terms)
}
