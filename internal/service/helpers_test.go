package service

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/membership_core/internal/audit"
	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/model"
)

// captureSink keeps every audit entry in memory.
type captureSink struct {
	entries []model.AuditEntry
}

func (c *captureSink) Record(_ context.Context, e model.AuditEntry) error {
	c.entries = append(c.entries, e)
	return nil
}

func newTestRecorder(t *testing.T) (*audit.Recorder, *captureSink) {
	sink := &captureSink{}
	return audit.NewRecorder(sink, zaptest.NewLogger(t)), sink
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewNop()
}
