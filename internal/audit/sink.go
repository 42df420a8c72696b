// Package audit records account changes. Sinks are injected so the lifecycle
// code never writes to process output directly.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink accepts audit entries.
type Sink interface {
	Record(ctx context.Context, entry model.AuditEntry) error
}

// NewEntry fills id and timestamp.
func NewEntry(action model.AuditAction, actorID, accountID int64, oldValue, newValue, reason string) model.AuditEntry {
	return model.AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		ActorID:   actorID,
		AccountID: accountID,
		OldValue:  oldValue,
		NewValue:  newValue,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

type multiSink []Sink

// Multi fans an entry out to every sink and joins their errors.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Record(ctx context.Context, entry model.AuditEntry) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder writes entries best-effort: a failing sink is logged and never
// surfaces to the caller.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
}

func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	return &Recorder{sink: sink, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, entry model.AuditEntry) {
	if r == nil || r.sink == nil {
		return
	}
	if err := r.sink.Record(ctx, entry); err != nil {
		r.logger.Error("Failed to record audit entry",
			zap.String("audit_id", entry.ID.String()),
			zap.String("action", string(entry.Action)),
			zap.Int64("account_id", entry.AccountID),
			zap.Error(err),
		)
	}
}
