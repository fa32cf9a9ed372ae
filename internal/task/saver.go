// Package task runs the background persistence queue. The in-memory
// deck store stays authoritative during a session; this package mirrors
// its snapshots into a KV backend without ever blocking or failing the
// caller.
package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ba1414/studydeck/internal/store"
)

// SaverConfig holds configuration for the background saver.
type SaverConfig struct {
	// WorkerCount determines how many concurrent workers drain the queue.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory write queue.
	QueueSize int

	// MaxAttempts is how many times a failed write is tried before it
	// is dropped. Dropped writes are logged; a later snapshot of the
	// same key supersedes them anyway.
	MaxAttempts int

	// RetryDelay is the pause between attempts for the same write.
	RetryDelay time.Duration
}

// DefaultSaverConfig returns a SaverConfig with reasonable defaults.
func DefaultSaverConfig() SaverConfig {
	return SaverConfig{
		WorkerCount: 2,
		QueueSize:   256,
		MaxAttempts: 3,
		RetryDelay:  250 * time.Millisecond,
	}
}

// writeOp is one queued mirror operation.
type writeOp struct {
	scope  string
	key    string
	value  []byte // nil means delete
	delete bool
}

// Saver drains a bounded queue of KV writes on background workers.
// Enqueue methods never block and never return errors: if the queue is
// full the write is dropped and logged, accepting the data-loss window
// the persistence contract allows.
type Saver struct {
	kv         store.KV
	ops        chan writeOp
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     SaverConfig
	logger     *slog.Logger
}

// Compile-time check: Saver is the store's persistence path.
var _ store.Persister = (*Saver)(nil)

// NewSaver creates a new Saver writing through the given KV backend.
func NewSaver(kv store.KV, config SaverConfig, logger *slog.Logger) *Saver {
	if kv == nil {
		panic("kv cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Saver{
		kv:         kv,
		ops:        make(chan writeOp, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With(slog.String("component", "saver")),
	}
}

// Start launches the worker goroutines.
func (s *Saver) Start() {
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop closes the queue, waits for queued writes to drain, and then
// shuts the workers down. Pending writes are flushed, not discarded, so
// a clean shutdown loses nothing. Producers must be stopped before
// calling Stop; enqueueing after Stop panics.
func (s *Saver) Stop() {
	close(s.ops)
	s.wg.Wait()
	s.cancelFunc()
}

// EnqueueSave implements store.Persister.
func (s *Saver) EnqueueSave(scope, key string, value []byte) {
	s.enqueue(writeOp{scope: scope, key: key, value: value})
}

// EnqueueDelete implements store.Persister.
func (s *Saver) EnqueueDelete(scope, key string) {
	s.enqueue(writeOp{scope: scope, key: key, delete: true})
}

func (s *Saver) enqueue(op writeOp) {
	select {
	case s.ops <- op:
	default:
		// Queue is full. The in-memory state stays authoritative and a
		// later snapshot of the same key will carry the lost data.
		s.logger.Warn("save queue full, dropping write",
			slog.String("scope", op.scope),
			slog.String("key", op.key))
	}
}

// worker drains the queue until it is closed.
func (s *Saver) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("starting saver worker", slog.Int("worker_id", id))

	for op := range s.ops {
		s.process(op, id)
	}

	s.logger.Debug("saver worker stopped", slog.Int("worker_id", id))
}

// process applies a single write with bounded retries. Failures are
// logged and swallowed; persistence is best-effort by contract.
func (s *Saver) process(op writeOp, workerID int) {
	log := s.logger.With(
		slog.String("scope", op.scope),
		slog.String("key", op.key),
		slog.Int("worker_id", workerID),
	)

	var err error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		if op.delete {
			err = s.kv.Delete(s.ctx, op.scope, op.key)
		} else {
			err = s.kv.Save(s.ctx, op.scope, op.key, op.value)
		}
		if err == nil {
			return
		}

		log.Warn("kv write failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt < s.config.MaxAttempts {
			select {
			case <-time.After(s.config.RetryDelay):
			case <-s.ctx.Done():
				return
			}
		}
	}

	log.Error("dropping write after repeated failures",
		slog.Int("attempts", s.config.MaxAttempts),
		slog.String("error", err.Error()))
}
