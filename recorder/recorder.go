package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/kbsearch/core"
	"github.com/poiesic/kbsearch/search"
	"github.com/poiesic/kbsearch/storage"
)

const (
	defaultPoolSize     = 1
	defaultQueueSize    = 1024
	defaultWriteTimeout = 5 * time.Second
	defaultMaxAttempts  = 3
	defaultRetryDelay   = 20 * time.Millisecond
)

// Recorder writes query records to a history repository asynchronously.
//
// Submitted records go to a bounded queue drained by a fixed set of
// workers running on an ants pool. Submitting never waits for a write:
// when the queue is full the record is rejected with ErrQueueFull.
type Recorder struct {
	repository storage.HistoryRepository
	pool       *ants.Pool
	poolSize   int
	queueSize  int
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
	logger     *slog.Logger

	mu      sync.RWMutex // held for reading while enqueueing
	closed  bool
	queue   chan core.QueryRecord
	workers sync.WaitGroup

	pendingMu sync.Mutex
	idle      *sync.Cond
	pending   int // records queued or being written
}

var _ search.HistorySink = (*Recorder)(nil)

// Option configures a Recorder.
type Option func(*Recorder) error

// WithPoolSize sets the number of concurrent writers.
// Default is 1, which stores records in the order they were submitted.
func WithPoolSize(size int) Option {
	return func(r *Recorder) error {
		r.poolSize = max(size, 1)
		return nil
	}
}

// WithQueueSize sets how many records may wait for a writer before new
// ones are dropped. Default is 1024.
func WithQueueSize(size int) Option {
	return func(r *Recorder) error {
		if size > 0 {
			r.queueSize = size
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithWriteTimeout bounds the time spent writing a single record.
// Default is 5 seconds.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(r *Recorder) error {
		if timeout > 0 {
			r.timeout = timeout
		}
		return nil
	}
}

// WithRetry sets how many times a failed write is attempted and the delay
// before the first retry. Default is 3 attempts starting at 20ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(r *Recorder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.attempts = maxAttempts
		r.retryDelay = max(baseDelay, 0)
		return nil
	}
}

// NewRecorder creates a recorder writing to repository and starts its
// writers.
func NewRecorder(repository storage.HistoryRepository, opts ...Option) (*Recorder, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	r := &Recorder{
		repository: repository,
		poolSize:   defaultPoolSize,
		queueSize:  defaultQueueSize,
		timeout:    defaultWriteTimeout,
		attempts:   defaultMaxAttempts,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default(),
	}
	r.idle = sync.NewCond(&r.pendingMu)

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(r.poolSize)
	if err != nil {
		return nil, err
	}
	r.pool = pool
	r.queue = make(chan core.QueryRecord, r.queueSize)

	for range r.poolSize {
		r.workers.Add(1)
		if err := pool.Submit(r.drain); err != nil {
			r.workers.Done()
			close(r.queue)
			r.workers.Wait()
			pool.Release()
			return nil, err
		}
	}

	return r, nil
}

// Record queues record for writing. It implements search.HistorySink and
// never waits for a write. Records that cannot be queued are dropped.
func (r *Recorder) Record(record core.QueryRecord) {
	if err := r.Submit(record); err != nil {
		r.logger.Warn("dropping query record", "query", record.Query, "err", err)
	}
}

// Submit queues record for writing and reports whether it was accepted.
// It returns ErrRecorderClosed after Close and ErrQueueFull when every
// queue slot is taken.
func (r *Recorder) Submit(record core.QueryRecord) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrRecorderClosed
	}

	r.addPending(1)
	select {
	case r.queue <- record:
		return nil
	default:
		r.addPending(-1)
		return ErrQueueFull
	}
}

// drain writes queued records until the queue is closed.
func (r *Recorder) drain() {
	defer r.workers.Done()
	for record := range r.queue {
		r.write(&record)
		r.addPending(-1)
	}
}

func (r *Recorder) addPending(delta int) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	r.pending += delta
	if r.pending == 0 {
		r.idle.Broadcast()
	}
}

func (r *Recorder) write(record *core.QueryRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	err := retryWithBackoff(ctx, r.logger, func() error {
		_, err := r.repository.AddQueryRecords(ctx, record)
		return err
	}, r.attempts, r.retryDelay)
	if err != nil {
		r.logger.Error("error writing query record", "query", record.Query, "err", err)
		return
	}
	r.logger.Debug("query recorded", "seq", record.Seq, "query", record.Query)
}

// Flush blocks until the queue is empty and no write is in progress.
// Submissions proceed while a flush waits.
func (r *Recorder) Flush() {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	for r.pending > 0 {
		r.idle.Wait()
	}
}

// Close writes the queued records, stops the writers and releases the
// pool. The repository is not closed. Calling Close more than once is a
// no-op.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.workers.Wait()
	r.pool.Release()
	return nil
}
