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

import "strings"

// Similarity levels returned by the matcher.
const (
	exactSimilarity       = 1.0
	synonymSimilarity     = 0.8
	containmentSimilarity = 0.7

	// minEditSimilarity is the cutoff below which an edit-distance
	// similarity is reported as 0.
	minEditSimilarity = 0.6
)

// Matcher scores how close two tokens are.
type Matcher struct {
	expander *Expander
}

// NewMatcher creates a matcher that treats synonyms known to expander as
// close. A nil expander disables the synonym step.
func NewMatcher(expander *Expander) *Matcher {
	return &Matcher{expander: expander}
}

// Similarity returns a score in [0, 1]:
//   - 1.0 when a and b are equal
//   - 0.8 when their synonym expansions intersect
//   - otherwise the EditSimilarity of a and b
func (m *Matcher) Similarity(a, b string) float64 {
	if a == b {
		return exactSimilarity
	}
	if m.expander != nil && m.expander.Overlaps(a, b) {
		return synonymSimilarity
	}
	return EditSimilarity(a, b)
}

// EditSimilarity returns 0.7 when one string contains the other, or
// 1 - d/max(len) for Levenshtein distance d when that exceeds 0.6, and 0
// otherwise. Lengths are counted in runes. An empty string never matches
// a non-empty one.
func EditSimilarity(a, b string) float64 {
	if a == b {
		return exactSimilarity
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentSimilarity
	}

	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	sim := 1 - float64(levenshtein(ra, rb))/float64(longest)
	if sim > minEditSimilarity {
		return sim
	}
	return 0
}

// Levenshtein returns the edit distance between a and b, counting
// insertions, deletions and substitutions of runes as 1 each.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	// matrix[j][i] is the distance between b[:j] and a[:i]
	matrix := make([][]int, len(b)+1)
	for j := range matrix {
		matrix[j] = make([]int, len(a)+1)
		matrix[j][0] = j
	}
	for i := range matrix[0] {
		matrix[0][i] = i
	}

	for j := 1; j <= len(b); j++ {
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[j][i] = min(
				matrix[j][i-1]+1,      // insertion
				matrix[j-1][i]+1,      // deletion
				matrix[j-1][i-1]+cost, // substitution
			)
		}
	}
	return matrix[len(b)][len(a)]
}
