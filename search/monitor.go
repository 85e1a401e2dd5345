package search

import (
	"github.com/poiesic/kbsearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// Hooks run synchronously on the searching goroutine and cannot change the ranking.
type SearchMonitor interface {
	Start(query string)
	AfterTokenize(tokens []string)
	AfterExpansion(words []string)
	EntryScored(result *core.SearchResult)
	Finish(results []*core.SearchResult)
}

// HistorySink receives a record of every search after it completes.
// Record must not block; slow work belongs on another goroutine.
type HistorySink interface {
	Record(record core.QueryRecord)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) AfterTokenize(_ []string)         {}
func (n *noopMonitor) AfterExpansion(_ []string)        {}
func (n *noopMonitor) EntryScored(_ *core.SearchResult) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)    {}
