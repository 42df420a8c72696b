package model

import "time"

type AccountStatus string

// Persisted values, keep stable.
const (
	AccountStatusIncomplete AccountStatus = "incomplete" // Onboarding not finished
	AccountStatusPending    AccountStatus = "pending"    // Membership application awaiting review
	AccountStatusGuest      AccountStatus = "guest"      // Provisional participant, waiting for promotion
	AccountStatusActive     AccountStatus = "active"
	AccountStatusSuspended  AccountStatus = "suspended"
	AccountStatusBanned     AccountStatus = "banned"
	AccountStatusRejected   AccountStatus = "rejected" // Soft deleted
)

var AllAccountStatuses = []AccountStatus{
	AccountStatusIncomplete,
	AccountStatusPending,
	AccountStatusGuest,
	AccountStatusActive,
	AccountStatusSuspended,
	AccountStatusBanned,
	AccountStatusRejected,
}

// ParseAccountStatus reports whether s is a known persisted status.
func ParseAccountStatus(s string) (AccountStatus, bool) {
	for _, st := range AllAccountStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type Account struct {
	ID         int64         `json:"id"`
	ExternalID string        `json:"-"`      // Identity provider subject, immutable
	Handle     *string       `json:"handle"` // nil until onboarding completes
	Status     AccountStatus `json:"account_status"`
	Role       Role          `json:"role"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	DeletedAt  *time.Time    `json:"-"`
}

// IsDeleted checks the soft-delete marker
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// IsGuest checks if the account is a provisional participant
func (a *Account) IsGuest() bool {
	return a.Status == AccountStatusGuest
}

// CanParticipate checks if the account may enroll in programs and submit work
func (a *Account) CanParticipate() bool {
	return a.Status == AccountStatusActive || a.Status == AccountStatusGuest
}

// HandleOrEmpty returns the handle or "" before onboarding.
func (a *Account) HandleOrEmpty() string {
	if a.Handle == nil {
		return ""
	}
	return *a.Handle
}
