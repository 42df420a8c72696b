package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/repository/base"
)

type AuditRepository struct {
	*base.Repository
}

func NewAuditRepository(db base.DBTX) *AuditRepository {
	return &AuditRepository{Repository: base.NewRepository(db)}
}

// Insert пишет строку журнала аудита
func (r *AuditRepository) Insert(ctx context.Context, e *model.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, action, actor_id, account_id, old_value, new_value, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.ExecAffected(ctx, query, e.ID, e.Action, e.ActorID, e.AccountID, e.OldValue, e.NewValue, e.Reason, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
