package search

import (
	"sync"
	"testing"

	"github.com/poiesic/kbsearch/core"
	"github.com/stretchr/testify/require"
)

func testEntries() []core.KnowledgeEntry {
	return []core.KnowledgeEntry{
		{
			ID:             "budget-create",
			Category:       "Finance",
			Subcategory:    "Budget",
			Title:          "Créer un budget",
			Description:    "Définir un budget prévisionnel pour un exercice",
			Content:        "Ouvrez le module budget et saisissez les montants prévus par compte.",
			Keywords:       []string{"budget", "prévisionnel"},
			NavigationPath: "/finance/budgets/new",
			Permissions:    []string{"finance.budget.write"},
		},
		{
			ID:             "invoice-issue",
			Category:       "Ventes",
			Subcategory:    "Factures",
			Title:          "Émettre une facture client",
			Description:    "Créer et envoyer une facture à un client",
			Content:        "Depuis la fiche client, choisissez Nouvelle facture puis validez.",
			Keywords:       []string{"facture", "client", "vente"},
			NavigationPath: "/ventes/factures",
		},
		{
			ID:             "supplier-add",
			Category:       "Achats",
			Subcategory:    "Fournisseurs",
			Title:          "Ajouter un fournisseur",
			Description:    "Enregistrer les coordonnées d'un fournisseur",
			Content:        "Renseignez la raison sociale et les conditions de paiement.",
			Keywords:       []string{"fournisseur", "achat"},
			NavigationPath: "/achats/fournisseurs",
		},
		{
			ID:             "bank-reconcile",
			Category:       "Finance",
			Subcategory:    "Trésorerie",
			Title:          "Rapprochement bancaire",
			Description:    "Pointer les opérations du relevé avec la comptabilité",
			Content:        "Importez le relevé puis associez chaque ligne à une écriture.",
			Keywords:       []string{"banque", "rapprochement", "relevé"},
			NavigationPath: "/finance/tresorerie",
		},
		{
			ID:             "user-perms",
			Category:       "Administration",
			Title:          "Gérer les droits des utilisateurs",
			Description:    "Attribuer des rôles et des permissions",
			Content:        "Chaque utilisateur reçoit un ou plusieurs rôles.",
			Keywords:       []string{"utilisateur", "permission", "droit"},
			RelatedTopics:  []string{"roles", "sécurité"},
			NavigationPath: "/admin/users",
		},
		{
			ID:             "finance-report",
			Category:       "finance",
			Subcategory:    "Rapports",
			Title:          "Consulter le bilan",
			Description:    "Afficher le bilan de l'exercice",
			Content:        "Le bilan présente l'actif et le passif.",
			Keywords:       []string{"bilan", "rapport"},
			NavigationPath: "/finance/rapports",
		},
		{
			ID:          "ledger-entry",
			Category:    "Comptabilité",
			Subcategory: "Finance",
			Title:       "Saisir une écriture comptable",
			Description: "Passer une écriture dans un journal",
			Content:     "Choisissez le journal, la date et les comptes au débit et au crédit.",
			Keywords:    []string{"écriture", "journal", "comptabilité"},
		},
	}
}

func testSynonyms() []core.SynonymGroup {
	return []core.SynonymGroup{
		{Term: "budget", Synonyms: []string{"prévision", "enveloppe"}},
		{Term: "facture", Synonyms: []string{"facturation", "invoice"}},
		{Term: "fournisseur", Synonyms: []string{"vendeur", "prestataire"}},
		{Term: "créer", Synonyms: []string{"ajouter", "nouveau"}},
		{Term: "banque", Synonyms: []string{"bancaire", "compte"}},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testEntries())
	require.NoError(t, err)
	return store
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(newTestStore(t), testSynonyms(), opts...)
	require.NoError(t, err)
	return engine
}

func resultIDs(results []*core.SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Entry.ID
	}
	return ids
}

func entryIDs(entries []*core.KnowledgeEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// recordingSink collects history records.
type recordingSink struct {
	mu      sync.Mutex
	records []core.QueryRecord
}

func (s *recordingSink) Record(record core.QueryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

func (s *recordingSink) Records() []core.QueryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.QueryRecord(nil), s.records...)
}

// recordingMonitor captures every hook invocation.
type recordingMonitor struct {
	started  []string
	tokens   []string
	words    []string
	scored   int
	finished []*core.SearchResult
}

var _ SearchMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(query string)                  { m.started = append(m.started, query) }
func (m *recordingMonitor) AfterTokenize(tokens []string)       { m.tokens = tokens }
func (m *recordingMonitor) AfterExpansion(words []string)       { m.words = words }
func (m *recordingMonitor) EntryScored(_ *core.SearchResult)    { m.scored++ }
func (m *recordingMonitor) Finish(results []*core.SearchResult) { m.finished = results }
