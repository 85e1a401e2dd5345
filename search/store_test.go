package search

import (
	"testing"

	"github.com/poiesic/kbsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("valid corpus", func(t *testing.T) {
		store := newTestStore(t)
		assert.Equal(t, len(testEntries()), store.Len())
		assert.Equal(t, "budget-create", store.Entries()[0].ID)
	})

	t.Run("empty corpus", func(t *testing.T) {
		store, err := NewStore(nil)
		require.NoError(t, err)
		assert.Zero(t, store.Len())
		assert.Empty(t, store.Entries())
		assert.Zero(t, store.Stats().TotalEntries)
	})

	t.Run("duplicate id", func(t *testing.T) {
		entries := testEntries()
		entries[2].ID = entries[0].ID
		_, err := NewStore(entries)
		require.ErrorIs(t, err, core.ErrDuplicateID)
	})

	t.Run("missing category", func(t *testing.T) {
		entries := testEntries()
		entries[1].Category = ""
		_, err := NewStore(entries)
		require.ErrorIs(t, err, core.ErrInvalidEntry)
		require.ErrorIs(t, err, core.ErrEmptyCategory)
	})

	t.Run("missing title is allowed", func(t *testing.T) {
		entries := testEntries()
		entries[1].Title = ""
		store, err := NewStore(entries)
		require.NoError(t, err)
		assert.Equal(t, len(entries), store.Len())
	})
}

func TestStore_CopiesInput(t *testing.T) {
	entries := testEntries()
	store, err := NewStore(entries)
	require.NoError(t, err)

	entries[0].Title = "changed"
	entries[0].Keywords[0] = "changed"

	got, ok := store.Get("budget-create")
	require.True(t, ok)
	assert.Equal(t, "Créer un budget", got.Title)
	assert.Equal(t, "budget", got.Keywords[0])
}

func TestStore_Get(t *testing.T) {
	store := newTestStore(t)

	entry, ok := store.Get("bank-reconcile")
	require.True(t, ok)
	assert.Equal(t, "Rapprochement bancaire", entry.Title)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestStore_EntriesWithTerm(t *testing.T) {
	store := newTestStore(t)

	t.Run("title and keyword", func(t *testing.T) {
		assert.Equal(t, []string{"budget-create"}, entryIDs(store.EntriesWithTerm("budget")))
	})

	t.Run("related topic", func(t *testing.T) {
		assert.Equal(t, []string{"user-perms"}, entryIDs(store.EntriesWithTerm("roles")))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, []string{"invoice-issue"}, entryIDs(store.EntriesWithTerm("FACTURE")))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Empty(t, store.EntriesWithTerm("inconnu"))
	})
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)
	stats := store.Stats()

	assert.Equal(t, 7, stats.TotalEntries)
	assert.Equal(t, []string{"Finance", "Ventes", "Achats", "Administration", "finance", "Comptabilité"}, stats.Categories)
	assert.Equal(t, []string{"Budget", "Factures", "Fournisseurs", "Trésorerie", "Rapports", "Finance"}, stats.Subcategories)
	assert.Equal(t, 18, stats.TotalKeywords)
	assert.Positive(t, stats.IndexedTerms)

	// Callers get their own slices.
	stats.Categories[0] = "changed"
	assert.Equal(t, "Finance", store.Stats().Categories[0])
}
