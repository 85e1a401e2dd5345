package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Reflexive(t *testing.T) {
	m := NewMatcher(NewExpander(testSynonyms(), ClosureFirstWins))
	for _, s := range []string{"budget", "écriture", "x", "", "rapprochement"} {
		assert.Equal(t, 1.0, m.Similarity(s, s), s)
	}
}

func TestMatcher_Similarity(t *testing.T) {
	m := NewMatcher(NewExpander(testSynonyms(), ClosureFirstWins))

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "synonym of canonical", a: "budget", b: "prévision", want: 0.8},
		{name: "two synonyms", a: "prévision", b: "enveloppe", want: 0.8},
		{name: "containment", a: "budget", b: "budgett", want: 0.7},
		{name: "prefix containment", a: "rapproch", b: "rapprochement", want: 0.7},
		{name: "unrelated", a: "budget", b: "xyzxyz", want: 0},
		{name: "one edit", a: "facture", b: "factura", want: 1 - 1.0/7},
		{name: "accent edit", a: "creer", b: "créer", want: 0.8},
		{name: "below cutoff", a: "budget", b: "bilan", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Similarity(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, m.Similarity(tt.b, tt.a), 1e-9)
		})
	}
}

func TestMatcher_NilExpander(t *testing.T) {
	m := NewMatcher(nil)
	assert.Equal(t, 0.0, m.Similarity("budget", "prévision"))
	assert.Equal(t, 1.0, m.Similarity("budget", "budget"))
}

func TestEditSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, EditSimilarity("", "budget"))
	assert.Equal(t, 0.0, EditSimilarity("budget", ""))
	assert.Equal(t, 1.0, EditSimilarity("", ""))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"créer", "creer", 1},
		{"budget", "budget", 0},
		{"flaw", "lawn", 2},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}
