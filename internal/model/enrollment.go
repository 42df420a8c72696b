package model

import "time"

type Program struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type EnrollmentStatus string

// Persisted values, keep stable.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// ProgramEnrollment links an account to a program. At most one non-deleted
// enrollment exists per (account, program).
type ProgramEnrollment struct {
	ID             int64            `json:"id"`
	AccountID      int64            `json:"account_id"`
	ProgramID      int64            `json:"program_id"`
	Status         EnrollmentStatus `json:"status"`
	EnrolledAt     time.Time        `json:"enrolled_at"`
	CompletedAt    *time.Time       `json:"completed_at"`
	PromotedAt     *time.Time       `json:"promoted_at"` // Set exactly once by promotion
	PromotedBy     *int64           `json:"promoted_by"`
	PromotionNotes string           `json:"promotion_notes"`
	DeletedAt      *time.Time       `json:"-"`
}

// BelongsTo checks the enrollment owner
func (e *ProgramEnrollment) BelongsTo(accountID int64) bool {
	return e.AccountID == accountID
}

// IsPromoted checks if a promotion was already recorded on this enrollment
func (e *ProgramEnrollment) IsPromoted() bool {
	return e.PromotedAt != nil
}
