package model

import "time"

type Activity struct {
	ID        int64     `json:"id"`
	ProgramID *int64    `json:"program_id"` // тег каталога, nil для общих активностей; в eligibility не участвует
	Title     string    `json:"title"`
	Reward    int64     `json:"reward"` // в минимальных единицах
	CreatedAt time.Time `json:"created_at"`
}

type SubmissionStatus string

// Persisted values, keep stable.
const (
	SubmissionStatusPending     SubmissionStatus = "pending"
	SubmissionStatusUnderReview SubmissionStatus = "under_review"
	SubmissionStatusApproved    SubmissionStatus = "approved"
	SubmissionStatusRejected    SubmissionStatus = "rejected"
)

type ActivitySubmission struct {
	ID           int64            `json:"id"`
	AccountID    int64            `json:"account_id"`
	ActivityID   int64            `json:"activity_id"`
	Content      string           `json:"content"`
	Status       SubmissionStatus `json:"status"`
	ReviewedBy   *int64           `json:"reviewed_by"`
	ReviewedAt   *time.Time       `json:"reviewed_at"`
	QualityScore *float64         `json:"quality_score"` // 0-100, set once reviewed
	RewardAmount int64            `json:"reward_amount"`
	CreatedAt    time.Time        `json:"created_at"`
}

// IsReviewed checks if the one-shot review already happened
func (s *ActivitySubmission) IsReviewed() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}
