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
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTokenLength is the shortest token kept by Tokenize, in runes.
const minTokenLength = 3

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s]`)

// Stop words are short grammatical words carrying no search meaning.
// Entries of two letters or less are listed for completeness; Tokenize
// drops them by length anyway.
var stopWords = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {}, "de": {},
	"du": {}, "au": {}, "aux": {}, "et": {}, "ou": {}, "en": {}, "à": {},
	"pour": {}, "par": {}, "sur": {}, "sous": {}, "dans": {}, "avec": {},
	"sans": {}, "est": {}, "sont": {}, "que": {}, "qui": {}, "quoi": {},
	"comment": {}, "quel": {}, "quelle": {}, "quels": {}, "quelles": {},
	"cette": {}, "ces": {}, "cet": {}, "mon": {}, "mes": {}, "ton": {},
	"tes": {}, "son": {}, "ses": {}, "nos": {}, "vos": {}, "leur": {},
	"leurs": {}, "pas": {}, "plus": {}, "mais": {}, "donc": {}, "car": {},
	"elle": {}, "elles": {}, "ils": {}, "nous": {}, "vous": {}, "moi": {},
	"the": {}, "and": {}, "for": {}, "how": {}, "with": {},
}

// Tokenize lower-cases text, replaces every character that is not a
// letter, digit or whitespace with a space, and returns the remaining
// words longer than two runes that are not stop words.
func Tokenize(text string) []string {
	lower := cases.Lower(language.French).String(text)
	fields := strings.Fields(nonWordRe.ReplaceAllString(lower, " "))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenLength {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopWord reports whether word is filtered by Tokenize as a stop word.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// uniqueTokens returns tokens without repeats, keeping first occurrence order.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
