package badger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/kbsearch/core"
	"github.com/poiesic/kbsearch/storage"
)

// clearBatchSize is the number of keys deleted per transaction by Clear.
const clearBatchSize = 1000

// HistoryRepository implements storage.HistoryRepository using BadgerDB.
//
// Records are keyed by a monotonic sequence number. A second index keyed
// by query fingerprint then sequence number backs the frequency queries.
type HistoryRepository struct {
	backend     *Backend
	seq         *badger.Sequence
	ownsBackend bool
	closed      atomic.Bool
}

var _ storage.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a HistoryRepository on an open backend.
// Closing the repository leaves the backend open.
func NewHistoryRepository(backend *Backend) (*HistoryRepository, error) {
	seq, err := backend.GetSequence(queryRecordSeq)
	if err != nil {
		return nil, err
	}

	return &HistoryRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// OpenHistoryRepository opens the history database stored in dir.
// Closing the repository closes the database.
func OpenHistoryRepository(dir string, logger *slog.Logger) (storage.HistoryRepository, error) {
	return openOwned(dir, false, logger)
}

func openOwned(dir string, inMemory bool, logger *slog.Logger) (*HistoryRepository, error) {
	backend, err := OpenBackend(dir, inMemory, logger)
	if err != nil {
		return nil, err
	}

	repo, err := NewHistoryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsBackend = true
	return repo, nil
}

// Close releases the sequence, and the database when the repository opened it.
func (r *HistoryRepository) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := r.seq.Release()
	if r.ownsBackend {
		err = errors.Join(err, r.backend.Close())
	}
	return err
}

func (r *HistoryRepository) checkOpen(ctx context.Context) error {
	if r.closed.Load() || r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return ctx.Err()
}

// nextSeq returns the next sequence number, skipping 0.
func (r *HistoryRepository) nextSeq() (uint64, error) {
	seq, err := r.seq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if seq == 0 {
		return r.seq.Next()
	}
	return seq, nil
}

// AddQueryRecords appends records to the history.
func (r *HistoryRepository) AddQueryRecords(ctx context.Context, records ...*core.QueryRecord) ([]*core.QueryRecord, error) {
	if err := r.checkOpen(ctx); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			seq, err := r.nextSeq()
			if err != nil {
				return err
			}
			record.Seq = seq
			if record.Timestamp.IsZero() {
				record.Timestamp = time.Now().UTC()
			}
			if record.Fingerprint == 0 {
				record.Fingerprint = core.FingerprintQuery(record.Query)
			}

			// Store primary record
			if err := tx.Set(makeQueryRecordKey(seq), storage.MarshalQueryRecord(record)); err != nil {
				return err
			}

			// Update fingerprint index
			if err := tx.Set(makeQueryFingerprintKey(record.Fingerprint, seq), storage.MarshalSeq(seq)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetQueryRecord retrieves a single record by sequence number.
func (r *HistoryRepository) GetQueryRecord(ctx context.Context, seq uint64) (*core.QueryRecord, error) {
	if err := r.checkOpen(ctx); err != nil {
		return nil, err
	}

	var result *core.QueryRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readQueryRecord(tx, seq)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// RecentQueries retrieves up to limit records, most recent first.
func (r *HistoryRepository) RecentQueries(ctx context.Context, limit int) ([]*core.QueryRecord, error) {
	if limit < 0 {
		return nil, storage.ErrInvalidQuery
	}
	if err := r.checkOpen(ctx); err != nil {
		return nil, err
	}

	var results []*core.QueryRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent records first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = queryRecordKeyPrefix()

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key with this prefix
		start := append(queryRecordKeyPrefix(), 0xFF)
		for iter.Seek(start); iter.Valid() && len(results) < limit; iter.Next() {
			var record *core.QueryRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalQueryRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)

	return results, err
}

// CountQuery returns how many times query was searched.
func (r *HistoryRepository) CountQuery(ctx context.Context, query string) (int, error) {
	if err := r.checkOpen(ctx); err != nil {
		return 0, err
	}

	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialQueryFingerprintKey(core.FingerprintQuery(query))

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}

// TopQueries returns the most frequent queries.
func (r *HistoryRepository) TopQueries(ctx context.Context, limit int) ([]storage.QueryCount, error) {
	if limit < 0 {
		return nil, storage.ErrInvalidQuery
	}
	if err := r.checkOpen(ctx); err != nil {
		return nil, err
	}

	type tally struct {
		fingerprint core.ID
		count       int
		lastSeq     uint64
	}

	var results []storage.QueryCount
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = queryFingerprintKeyPrefix()

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Keys are ordered by fingerprint then sequence, so occurrences of
		// one query are contiguous and the last one is the most recent.
		var tallies []*tally
		for iter.Rewind(); iter.Valid(); iter.Next() {
			fingerprint, seq, ok := splitQueryFingerprintKey(iter.Item().Key())
			if !ok {
				continue
			}
			if n := len(tallies); n > 0 && tallies[n-1].fingerprint == fingerprint {
				tallies[n-1].count++
				tallies[n-1].lastSeq = seq
				continue
			}
			tallies = append(tallies, &tally{fingerprint: fingerprint, count: 1, lastSeq: seq})
		}

		slices.SortFunc(tallies, func(a, b *tally) int {
			if a.count != b.count {
				return b.count - a.count
			}
			if a.lastSeq > b.lastSeq {
				return -1
			}
			if a.lastSeq < b.lastSeq {
				return 1
			}
			return 0
		})
		if len(tallies) > limit {
			tallies = tallies[:limit]
		}

		for _, t := range tallies {
			record, err := r.readQueryRecord(tx, t.lastSeq)
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			results = append(results, storage.QueryCount{
				Query:       record.Query,
				Fingerprint: t.fingerprint,
				Count:       t.count,
				LastSeen:    record.Timestamp,
			})
		}
		return nil
	}, false)

	return results, err
}

// Clear removes every record and index entry.
func (r *HistoryRepository) Clear(ctx context.Context) error {
	if err := r.checkOpen(ctx); err != nil {
		return err
	}

	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range [][]byte{queryRecordKeyPrefix(), queryFingerprintKeyPrefix()} {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = prefix

			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	// Badger bounds the size of a single transaction
	for batch := range slices.Chunk(keys, clearBatchSize) {
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range batch {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// readQueryRecord returns the record stored under seq, or nil when absent.
func (r *HistoryRepository) readQueryRecord(tx *badger.Txn, seq uint64) (*core.QueryRecord, error) {
	item, err := tx.Get(makeQueryRecordKey(seq))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.QueryRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalQueryRecord(val)
		return unmarshalErr
	})
	return record, err
}
