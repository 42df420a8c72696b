package audit

import (
	"context"

	"github.com/Freeeeeet/membership_core/internal/model"
	"go.uber.org/zap"
)

// LogSink writes entries as structured log lines.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) Record(_ context.Context, e model.AuditEntry) error {
	s.logger.Info("Account changed",
		zap.String("audit_id", e.ID.String()),
		zap.String("action", string(e.Action)),
		zap.Int64("actor_id", e.ActorID),
		zap.Int64("account_id", e.AccountID),
		zap.String("old", e.OldValue),
		zap.String("new", e.NewValue),
		zap.String("reason", e.Reason),
		zap.Time("at", e.CreatedAt),
	)
	return nil
}
