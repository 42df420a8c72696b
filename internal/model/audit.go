package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionStatusChanged AuditAction = "status_changed"
	AuditActionRoleChanged   AuditAction = "role_changed"
	AuditActionPromoted      AuditAction = "promoted"
	AuditActionOnboarded     AuditAction = "onboarded"
)

// AuditEntry records who changed what on an account.
type AuditEntry struct {
	ID        uuid.UUID   `json:"id"`
	Action    AuditAction `json:"action"`
	ActorID   int64       `json:"actor_id"`
	AccountID int64       `json:"account_id"`
	OldValue  string      `json:"old_value"`
	NewValue  string      `json:"new_value"`
	Reason    string      `json:"reason"`
	CreatedAt time.Time   `json:"created_at"`
}
