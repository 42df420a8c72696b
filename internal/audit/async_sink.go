package audit

import (
	"context"
	"errors"
	"sync"

	"github.com/Freeeeeet/membership_core/internal/model"
	"go.uber.org/zap"
)

const defaultBacklog = 64

var (
	ErrQueueFull  = errors.New("audit queue is full")
	ErrSinkClosed = errors.New("audit sink is closed")
)

type pendingEntry struct {
	ctx   context.Context
	entry model.AuditEntry
}

// AsyncSink moves slow delivery (Telegram) off the request path. Entries go
// through a bounded queue to a single worker; when the queue is full the
// entry is dropped and Record reports ErrQueueFull.
type AsyncSink struct {
	inner  Sink
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan pendingEntry
	done   chan struct{}
}

// NewAsyncSink starts the worker. backlog <= 0 uses the default size.
func NewAsyncSink(inner Sink, backlog int, logger *zap.Logger) *AsyncSink {
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	s := &AsyncSink{
		inner:  inner,
		logger: logger.Named("audit_async"),
		queue:  make(chan pendingEntry, backlog),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) Record(ctx context.Context, e model.AuditEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}

	// Запрос завершится раньше доставки, отвязываемся от его отмены
	select {
	case s.queue <- pendingEntry{ctx: context.WithoutCancel(ctx), entry: e}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting entries and waits until the queue is drained or ctx
// expires.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for p := range s.queue {
		if err := s.inner.Record(p.ctx, p.entry); err != nil {
			s.logger.Error("Failed to deliver audit entry",
				zap.String("audit_id", p.entry.ID.String()),
				zap.String("action", string(p.entry.Action)),
				zap.Int64("account_id", p.entry.AccountID),
				zap.Error(err),
			)
		}
	}
}
