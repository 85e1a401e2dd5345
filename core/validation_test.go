package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *KnowledgeEntry
		wantErr error
	}{
		{
			name:  "valid entry",
			entry: &KnowledgeEntry{ID: "budget-create", Category: "Finance", Title: "Créer un budget"},
		},
		{
			name: "valid entry with optional fields",
			entry: &KnowledgeEntry{
				ID:            "invoice",
				Category:      "Ventes",
				Subcategory:   "Factures",
				Title:         "Émettre une facture",
				Keywords:      []string{"facture"},
				RelatedTopics: []string{"avoir"},
			},
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "empty id",
			entry:   &KnowledgeEntry{Category: "Finance", Title: "Budget"},
			wantErr: ErrEmptyID,
		},
		{
			name:    "empty category",
			entry:   &KnowledgeEntry{ID: "x", Title: "Budget"},
			wantErr: ErrEmptyCategory,
		},
		{
			name:  "empty title is allowed",
			entry: &KnowledgeEntry{ID: "x", Category: "Finance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestValidateCorpus(t *testing.T) {
	t.Run("unique ids", func(t *testing.T) {
		err := ValidateCorpus([]KnowledgeEntry{
			{ID: "a", Category: "Finance", Title: "A"},
			{ID: "b", Category: "Finance", Title: "B"},
		})
		assert.NoError(t, err)
	})

	t.Run("empty corpus is valid", func(t *testing.T) {
		assert.NoError(t, ValidateCorpus(nil))
	})

	t.Run("duplicate ids", func(t *testing.T) {
		err := ValidateCorpus([]KnowledgeEntry{
			{ID: "a", Category: "Finance", Title: "A"},
			{ID: "a", Category: "Ventes", Title: "B"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.Contains(t, err.Error(), `"a"`)
	})

	t.Run("invalid entry is reported with its position", func(t *testing.T) {
		err := ValidateCorpus([]KnowledgeEntry{
			{ID: "a", Category: "Finance", Title: "A"},
			{ID: "b", Title: "B"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyCategory)
		assert.Contains(t, err.Error(), "entry 1")
	})
}

func TestValidateSynonymGroups(t *testing.T) {
	assert.NoError(t, ValidateSynonymGroups([]SynonymGroup{{Term: "budget", Synonyms: []string{"prévision"}}}))

	err := ValidateSynonymGroups([]SynonymGroup{{Term: "  ", Synonyms: []string{"x"}}})
	assert.ErrorIs(t, err, ErrInvalidSynonymGroup)

	err = ValidateSynonymGroups([]SynonymGroup{
		{Term: "budget", Synonyms: []string{"prévision"}},
		{Term: "Budget", Synonyms: []string{"enveloppe"}},
	})
	assert.ErrorIs(t, err, ErrInvalidSynonymGroup)
}
