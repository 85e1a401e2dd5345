package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer() *scorer {
	return &scorer{matcher: NewMatcher(NewExpander(testSynonyms(), ClosureFirstWins))}
}

func indexedByID(t *testing.T, store *Store, id string) *indexedEntry {
	t.Helper()
	ie, ok := store.byID[id]
	require.True(t, ok, id)
	return ie
}

func TestScorer_AllFields(t *testing.T) {
	s := newTestScorer()
	ie := indexedByID(t, newTestStore(t), "budget-create")

	result := s.score(ie, []string{"budget"})

	want := WeightExactTitle + WeightExactKeyword + WeightExactDescription + WeightContentExact
	assert.InDelta(t, want, result.Score, 1e-9)
	assert.Equal(t, []string{
		"title match: budget",
		"keyword match: budget",
		"description contains: budget",
		"content contains: budget",
	}, result.MatchReasons)
	assert.Same(t, ie.entry, result.Entry)
}

func TestScorer_PartialMatches(t *testing.T) {
	s := newTestScorer()
	ie := indexedByID(t, newTestStore(t), "budget-create")

	// "enveloppe" is a synonym of "budget", which scores 0.8 and so only
	// reaches the partial tier.
	result := s.score(ie, []string{"enveloppe"})

	want := WeightPartialTitle*0.8 + WeightPartialKeyword*0.8
	assert.InDelta(t, want, result.Score, 1e-9)
	assert.Equal(t, []string{
		"partial title match: enveloppe ~ budget",
		"partial keyword match: enveloppe ~ budget",
	}, result.MatchReasons)
}

func TestScorer_CategoryMatch(t *testing.T) {
	s := newTestScorer()
	ie := indexedByID(t, newTestStore(t), "bank-reconcile")

	result := s.score(ie, []string{"finance"})
	assert.Contains(t, result.MatchReasons, "category match: Finance")
	assert.GreaterOrEqual(t, result.Score, WeightCategoryMatch)
}

func TestScorer_NoMatch(t *testing.T) {
	s := newTestScorer()
	ie := indexedByID(t, newTestStore(t), "supplier-add")

	result := s.score(ie, []string{"xyzxyz"})
	assert.Zero(t, result.Score)
	assert.Empty(t, result.MatchReasons)
}

func TestScorer_ReasonsDeduplicated(t *testing.T) {
	s := newTestScorer()
	ie := indexedByID(t, newTestStore(t), "budget-create")

	// A repeated word contributes twice but is explained once.
	once := s.score(ie, []string{"budget"})
	twice := s.score(ie, []string{"budget", "budget"})
	assert.InDelta(t, 2*once.Score, twice.Score, 1e-9)
	assert.Equal(t, once.MatchReasons, twice.MatchReasons)
}
