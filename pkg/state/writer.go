package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/kvstore"
	"github.com/ekaya-inc/intelhub/pkg/logging"
)

// DefaultWriteTimeout bounds a single write-through call to the store.
const DefaultWriteTimeout = 10 * time.Second

// writer persists collection snapshots on a single goroutine.
// Pending writes are coalesced per key; only the newest snapshot of a key is written.
type writer struct {
	kv      kvstore.Store
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]any

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	done     chan struct{}

	stopOnce sync.Once
}

func newWriter(kv kvstore.Store, logger *zap.Logger, timeout time.Duration) *writer {
	w := &writer{
		kv:       kv,
		logger:   logger,
		timeout:  timeout,
		pending:  make(map[string]any),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// schedule queues value for key, replacing any snapshot not yet written.
// value must not be mutated after scheduling.
func (w *writer) schedule(key string, value any) {
	w.mu.Lock()
	w.pending[key] = value
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// flush blocks until every write scheduled before the call has been attempted.
func (w *writer) flush() {
	ack := make(chan struct{})
	select {
	case w.flushReq <- ack:
		<-ack
	case <-w.done:
	}
}

// close drains pending writes and stops the goroutine.
func (w *writer) close() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushReq:
			w.drain()
			close(ack)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]any)
	w.mu.Unlock()

	for _, key := range kvstore.AllKeys {
		value, ok := batch[key]
		if !ok {
			continue
		}
		w.write(key, value)
	}
}

func (w *writer) write(key string, value any) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := kvstore.Write(ctx, w.kv, key, value); err != nil {
		w.logger.Warn("Write-through failed",
			zap.String("key", key),
			zap.String("error", logging.SanitizeError(err)))
		return
	}
	w.logger.Debug("Persisted collection", zap.String("key", key))
}
