package service

import (
	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"go.uber.org/zap"
)

// denied logs and counts a refusal and returns it as a forbidden error.
func denied(logger *zap.Logger, m *metrics.Metrics, d *policy.Denial, fields ...zap.Field) error {
	m.ObserveDenial(string(d.Code))
	logger.Warn("Authority check denied",
		append(fields, zap.String("code", string(d.Code)), zap.String("reason", d.Reason))...,
	)
	return d.Err()
}
