package audit

import (
	"context"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/storage"
)

// StoreSink persists entries to the audit_log table.
type StoreSink struct {
	repo storage.AuditRepository
}

func NewStoreSink(repo storage.AuditRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Record(ctx context.Context, e model.AuditEntry) error {
	return s.repo.Insert(ctx, &e)
}
