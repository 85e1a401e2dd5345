package search

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/kbsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := NewEngine(nil, testSynonyms())
		require.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		engine, err := NewEngine(newTestStore(t), nil, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, engine.logger)
	})

	t.Run("nil sink", func(t *testing.T) {
		_, err := NewEngine(newTestStore(t), nil, WithHistorySink(nil))
		require.ErrorIs(t, err, ErrHistorySinkRequired)
	})

	t.Run("invalid synonyms", func(t *testing.T) {
		_, err := NewEngine(newTestStore(t), []core.SynonymGroup{{Term: " "}})
		require.ErrorIs(t, err, core.ErrInvalidSynonymGroup)
	})

	t.Run("options", func(t *testing.T) {
		engine := newTestEngine(t,
			WithLogger(slog.Default()),
			WithHistoryCapacity(4),
			WithSynonymClosure(ClosureUnion),
			WithPopularSearches([]string{"créer un budget"}),
			WithSession("s1"),
		)
		assert.Equal(t, 4, engine.history.Capacity())
		assert.Equal(t, ClosureUnion, engine.closure)
		assert.Equal(t, []string{"créer un budget"}, engine.PopularSearches())
		assert.Equal(t, "s1", engine.session)
	})
}

func TestSearch_TitleAndKeyword(t *testing.T) {
	engine := newTestEngine(t)

	results := engine.Search("creer budget", core.DefaultSearchOptions())
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "budget-create", top.Entry.ID)
	assert.GreaterOrEqual(t, top.Score, core.DefaultThreshold)

	var title, keyword bool
	for _, r := range top.MatchReasons {
		title = title || strings.Contains(r, "title match")
		keyword = keyword || strings.HasPrefix(r, "keyword match")
	}
	assert.True(t, title, "reasons: %v", top.MatchReasons)
	assert.True(t, keyword, "reasons: %v", top.MatchReasons)
}

func TestSearch_StopWordsOnly(t *testing.T) {
	engine := newTestEngine(t)

	assert.Empty(t, engine.Search("le la de", nil))

	opts := core.DefaultSearchOptions()
	opts.Threshold = 0
	assert.Empty(t, engine.Search("le la de", opts))
	assert.Empty(t, engine.Search("", opts))

	// The query is still recorded.
	assert.Equal(t, []string{"le la de", "le la de", ""}, engine.History())
}

func TestSearch_Deterministic(t *testing.T) {
	engine := newTestEngine(t)

	for _, q := range []string{"creer budget", "facture client", "rapprochement banque", "xyz"} {
		first := engine.Search(q, nil)
		second := engine.Search(q, nil)
		assert.Equal(t, first, second, q)
	}
}

func TestSearch_ThresholdMonotonic(t *testing.T) {
	engine := newTestEngine(t)
	query := "facture client budget écriture"

	previous := -1
	for _, threshold := range []float64{0, 0.5, 1, 3, 5, 10, 20, 50} {
		opts := core.DefaultSearchOptions()
		opts.MaxResults = 100
		opts.Threshold = threshold
		n := len(engine.Search(query, opts))
		if previous >= 0 {
			assert.LessOrEqual(t, n, previous, "threshold %v", threshold)
		}
		previous = n
	}
}

func TestSearch_MaxResults(t *testing.T) {
	engine := newTestEngine(t)
	query := "facture client budget écriture"

	all := engine.Search(query, &core.SearchOptions{MaxResults: 100, Threshold: core.DefaultThreshold, SemanticExpansion: true})
	require.Greater(t, len(all), 2)

	for m := 0; m <= len(all)+2; m++ {
		opts := &core.SearchOptions{MaxResults: m, Threshold: core.DefaultThreshold, SemanticExpansion: true}
		got := engine.Search(query, opts)
		assert.Len(t, got, min(m, len(all)))
		assert.Equal(t, all[:len(got)], got)
	}

	negative := &core.SearchOptions{MaxResults: -1, Threshold: core.DefaultThreshold, SemanticExpansion: true}
	assert.Empty(t, engine.Search(query, negative))
}

func TestSearch_SortedByScore(t *testing.T) {
	engine := newTestEngine(t)

	opts := core.DefaultSearchOptions()
	opts.MaxResults = 100
	opts.Threshold = 0
	results := engine.Search("facture fournisseur budget banque", opts)
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearch_TiesKeepCorpusOrder(t *testing.T) {
	twin := func(id string) core.KnowledgeEntry {
		return core.KnowledgeEntry{ID: id, Category: "Finance", Title: "Clôture annuelle", Keywords: []string{"clôture"}}
	}

	for _, order := range [][]string{{"dup-1", "dup-2", "dup-3"}, {"dup-3", "dup-1", "dup-2"}} {
		entries := make([]core.KnowledgeEntry, 0, len(order))
		for _, id := range order {
			entries = append(entries, twin(id))
		}
		store, err := NewStore(entries)
		require.NoError(t, err)
		engine, err := NewEngine(store, nil)
		require.NoError(t, err)

		assert.Equal(t, order, resultIDs(engine.Search("clôture", nil)))
	}
}

func TestSearch_SemanticExpansion(t *testing.T) {
	engine := newTestEngine(t)

	with := core.DefaultSearchOptions()
	without := core.DefaultSearchOptions()
	without.SemanticExpansion = false

	expanded := engine.Search("enveloppe", with)
	plain := engine.Search("enveloppe", without)
	require.NotEmpty(t, expanded)
	require.NotEmpty(t, plain)
	assert.Equal(t, "budget-create", expanded[0].Entry.ID)
	assert.Equal(t, "budget-create", plain[0].Entry.ID)
	assert.Greater(t, expanded[0].Score, plain[0].Score)
}

func TestSearch_NoOpOptions(t *testing.T) {
	engine := newTestEngine(t)

	opts := core.DefaultSearchOptions()
	flipped := core.DefaultSearchOptions()
	flipped.IncludePartialMatches = false
	flipped.ContextBoost = false

	assert.Equal(t, engine.Search("facture client", opts), engine.Search("facture client", flipped))
}

func TestSearchWithMonitor(t *testing.T) {
	engine := newTestEngine(t)
	monitor := &recordingMonitor{}

	results := engine.SearchWithMonitor("Créer un budget budget", nil, monitor)

	assert.Equal(t, []string{"Créer un budget budget"}, monitor.started)
	assert.Equal(t, []string{"créer", "budget"}, monitor.tokens)
	assert.Equal(t, []string{"créer", "ajouter", "nouveau", "budget", "prévision", "enveloppe"}, monitor.words)
	assert.Equal(t, engine.Store().Len(), monitor.scored)
	assert.Equal(t, results, monitor.finished)
}

func TestSearch_HistorySink(t *testing.T) {
	sink := &recordingSink{}
	engine := newTestEngine(t, WithHistorySink(sink), WithSession("session-1"))

	results := engine.Search("Facture  client", nil)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "Facture  client", records[0].Query)
	assert.Equal(t, core.FingerprintQuery("facture client"), records[0].Fingerprint)
	assert.Equal(t, len(results), records[0].Results)
	assert.Equal(t, "session-1", records[0].Session)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestSearch_HistoryKeepsLastQueries(t *testing.T) {
	engine := newTestEngine(t)

	var want []string
	for i := 0; i < 25; i++ {
		q := fmt.Sprintf("requête %d", i)
		engine.Search(q, nil)
		if i >= 5 {
			want = append(want, q)
		}
	}
	assert.Equal(t, want, engine.History())
}

func TestSearchSimple(t *testing.T) {
	engine := newTestEngine(t)

	entries := engine.SearchSimple("facture client", 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "invoice-issue", entries[0].ID)
	assert.Empty(t, engine.SearchSimple("facture client", 0))
}

func TestMultiModalSearch(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("no criteria", func(t *testing.T) {
		got := engine.MultiModalSearch(core.MultiModalQuery{})
		assert.Equal(t, entryIDs(engine.Store().Entries()), entryIDs(got))
	})

	t.Run("limit", func(t *testing.T) {
		got := engine.MultiModalSearch(core.MultiModalQuery{MaxResults: 2})
		assert.Equal(t, []string{"budget-create", "invoice-issue"}, entryIDs(got))
	})

	t.Run("text", func(t *testing.T) {
		got := engine.MultiModalSearch(core.MultiModalQuery{TextQuery: "facture"})
		assert.Contains(t, entryIDs(got), "invoice-issue")
	})

	t.Run("text and category", func(t *testing.T) {
		got := engine.MultiModalSearch(core.MultiModalQuery{TextQuery: "facture", Category: "ventes"})
		assert.Equal(t, []string{"invoice-issue"}, entryIDs(got))
	})

	t.Run("category", func(t *testing.T) {
		got := engine.MultiModalSearch(core.MultiModalQuery{Category: "FINANCE"})
		assert.Equal(t, []string{"budget-create", "bank-reconcile", "finance-report"}, entryIDs(got))
	})

	t.Run("keywords", func(t *testing.T) {
		got := engine.MultiModalSearch(core.MultiModalQuery{Keywords: []string{"fourn"}})
		assert.Equal(t, []string{"supplier-add"}, entryIDs(got))
	})

	t.Run("blank or stop-word text matches nothing", func(t *testing.T) {
		assert.Empty(t, engine.MultiModalSearch(core.MultiModalQuery{TextQuery: "   "}))
		assert.Empty(t, engine.MultiModalSearch(core.MultiModalQuery{TextQuery: "le la de", Category: "Finance"}))
	})

	t.Run("nothing matches", func(t *testing.T) {
		got := engine.MultiModalSearch(core.MultiModalQuery{Category: "Finance", Keywords: []string{"facture"}})
		assert.Empty(t, got)
	})
}

func TestSearchByCategory(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("case insensitive category", func(t *testing.T) {
		got := engine.SearchByCategory("Finance", "")
		// ledger-entry only has Finance as subcategory.
		assert.Equal(t, []string{"budget-create", "bank-reconcile", "finance-report"}, entryIDs(got))
	})

	t.Run("with subcategory", func(t *testing.T) {
		got := engine.SearchByCategory("finance", "trésorerie")
		assert.Equal(t, []string{"bank-reconcile"}, entryIDs(got))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Empty(t, engine.SearchByCategory("Stocks", ""))
	})
}

func TestSearchByKeywords(t *testing.T) {
	engine := newTestEngine(t)

	assert.Equal(t, []string{"bank-reconcile"}, entryIDs(engine.SearchByKeywords([]string{"rapproch"})))
	assert.Equal(t, []string{"bank-reconcile"}, entryIDs(engine.SearchByKeywords([]string{"BANQUE"})))
	assert.Equal(t, []string{"invoice-issue", "supplier-add"}, entryIDs(engine.SearchByKeywords([]string{"achat", "client"})))
	assert.Empty(t, engine.SearchByKeywords([]string{"xyz"}))
	assert.Empty(t, engine.SearchByKeywords(nil))
}

func TestEngine_Entry(t *testing.T) {
	engine := newTestEngine(t)

	entry, ok := engine.Entry("user-perms")
	require.True(t, ok)
	assert.Equal(t, "Administration", entry.Category)
	assert.False(t, entry.HasSubcategory())

	_, ok = engine.Entry("missing")
	assert.False(t, ok)
}

func TestEngine_Stats(t *testing.T) {
	engine := newTestEngine(t)
	assert.Equal(t, engine.Store().Stats(), engine.Stats())
}

func TestEngine_ConcurrentSearch(t *testing.T) {
	engine := newTestEngine(t, WithHistorySink(&recordingSink{}))
	want := engine.Search("facture client", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, engine.Search("facture client", nil))
			_ = engine.History()
		}()
	}
	wg.Wait()

	assert.Equal(t, DefaultHistoryCapacity, len(engine.History()))
}
