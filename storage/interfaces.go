package storage

import (
	"context"
	"time"

	"github.com/poiesic/kbsearch/core"
)

// HistoryRepository stores the searches run against the knowledge base.
// Implementations must be thread-safe and support concurrent access.
type HistoryRepository interface {
	// AddQueryRecords appends one or more records to the history.
	// Every record gets a new sequence number. A zero Timestamp is set to
	// the current time and a zero Fingerprint is computed from Query.
	// Returns the records with generated fields populated.
	AddQueryRecords(ctx context.Context, records ...*core.QueryRecord) ([]*core.QueryRecord, error)

	// GetQueryRecord retrieves a single record by sequence number.
	// Returns ErrNotFound if the record doesn't exist.
	GetQueryRecord(ctx context.Context, seq uint64) (*core.QueryRecord, error)

	// RecentQueries retrieves up to limit records, most recent first.
	// Returns ErrInvalidQuery for a negative limit.
	RecentQueries(ctx context.Context, limit int) ([]*core.QueryRecord, error)

	// CountQuery returns how many times query was searched. Queries are
	// compared by fingerprint, so case and spacing are ignored.
	CountQuery(ctx context.Context, query string) (int, error)

	// TopQueries returns up to limit distinct queries ordered by how often
	// they were searched, most frequent first. Ties are broken by recency.
	TopQueries(ctx context.Context, limit int) ([]QueryCount, error)

	// Clear removes every record from the history.
	Clear(ctx context.Context) error

	// Close releases the resources held by the repository.
	Close() error
}

// QueryCount is a distinct query with its number of occurrences.
type QueryCount struct {
	// Query is the text of the most recent occurrence.
	Query       string
	Fingerprint core.ID
	Count       int
	LastSeen    time.Time
}
