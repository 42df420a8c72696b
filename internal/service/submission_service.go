package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"go.uber.org/zap"
)

const maxSubmissionContent = 10000

// ReviewInput is a moderator decision on a submission.
type ReviewInput struct {
	Approve      bool
	QualityScore *float64
}

type SubmissionService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewSubmissionService(store storage.Store, m *metrics.Metrics, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Submit создаёт работу участника по активности в статусе pending
func (s *SubmissionService) Submit(ctx context.Context, account *model.Account, activityID int64, content string) (*model.ActivitySubmission, error) {
	if !account.CanParticipate() {
		return nil, apperr.Forbidden(apperr.CodeAccountInactive, "account status %s cannot submit work", account.Status)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation(apperr.CodeValidationFailed, "submission content is required")
	}
	if len(content) > maxSubmissionContent {
		return nil, apperr.Validation(apperr.CodeValidationFailed, "submission content exceeds %d bytes", maxSubmissionContent)
	}

	activity, err := s.store.Catalog().GetActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if activity == nil {
		return nil, apperr.NotFound("activity %d not found", activityID)
	}

	submission := &model.ActivitySubmission{
		AccountID:  account.ID,
		ActivityID: activity.ID,
		Content:    content,
		Status:     model.SubmissionStatusPending,
	}
	if err := s.store.Submissions().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	s.logger.Info("Submission created",
		zap.Int64("account_id", account.ID),
		zap.Int64("activity_id", activityID),
		zap.Int64("submission_id", submission.ID),
	)

	return submission, nil
}

// ListOwn возвращает работы вызывающего
func (s *SubmissionService) ListOwn(ctx context.Context, account *model.Account) ([]*model.ActivitySubmission, error) {
	submissions, err := s.store.Submissions().ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// StartReview moves a pending submission to under_review.
func (s *SubmissionService) StartReview(ctx context.Context, actor *model.Account, submissionID int64) (*model.ActivitySubmission, error) {
	if d := policy.RequireRole(actor, model.RoleModerator); d != nil {
		return nil, denied(s.logger, s.metrics, d, zap.Int64("actor_id", actor.ID), zap.Int64("submission_id", submissionID))
	}

	var updated *model.ActivitySubmission
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		submission, err := s.loadForReview(ctx, tx, actor, submissionID)
		if err != nil {
			return err
		}
		if submission.Status != model.SubmissionStatusPending {
			return apperr.Conflict(apperr.CodeInvalidTransition, "submission is %s, expected pending", submission.Status)
		}

		submission.Status = model.SubmissionStatusUnderReview
		if err := tx.Submissions().UpdateReview(ctx, submission); err != nil {
			return fmt.Errorf("update submission: %w", err)
		}
		updated = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submission review started",
		zap.Int64("actor_id", actor.ID),
		zap.Int64("submission_id", submissionID),
	)

	return updated, nil
}

// Review approves or rejects a submission once. Approval records the quality
// score and the activity reward.
func (s *SubmissionService) Review(ctx context.Context, actor *model.Account, submissionID int64, in ReviewInput) (*model.ActivitySubmission, error) {
	if d := policy.RequireRole(actor, model.RoleModerator); d != nil {
		return nil, denied(s.logger, s.metrics, d, zap.Int64("actor_id", actor.ID), zap.Int64("submission_id", submissionID))
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}

	var updated *model.ActivitySubmission
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		submission, err := s.loadForReview(ctx, tx, actor, submissionID)
		if err != nil {
			return err
		}
		if submission.IsReviewed() {
			return apperr.Conflict(apperr.CodeAlreadyReviewed, "submission %d was already %s", submissionID, submission.Status)
		}

		now := time.Now().UTC()
		reviewer := actor.ID
		submission.ReviewedBy = &reviewer
		submission.ReviewedAt = &now
		submission.QualityScore = in.QualityScore

		if in.Approve {
			activity, err := tx.Catalog().GetActivity(ctx, submission.ActivityID)
			if err != nil {
				return fmt.Errorf("get activity: %w", err)
			}
			if activity != nil {
				submission.RewardAmount = activity.Reward
			}
			submission.Status = model.SubmissionStatusApproved
		} else {
			submission.Status = model.SubmissionStatusRejected
		}

		if err := tx.Submissions().UpdateReview(ctx, submission); err != nil {
			return fmt.Errorf("update submission: %w", err)
		}
		updated = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submission reviewed",
		zap.Int64("actor_id", actor.ID),
		zap.Int64("submission_id", submissionID),
		zap.String("status", string(updated.Status)),
	)

	return updated, nil
}

func (s *SubmissionService) loadForReview(ctx context.Context, tx storage.Store, actor *model.Account, submissionID int64) (*model.ActivitySubmission, error) {
	submission, err := tx.Submissions().GetByIDForUpdate(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if submission == nil {
		return nil, apperr.NotFound("submission %d not found", submissionID)
	}
	if submission.AccountID == actor.ID {
		d := &policy.Denial{Code: apperr.CodeSelfModification, Reason: "you cannot review your own submission"}
		return nil, denied(s.logger, s.metrics, d, zap.Int64("actor_id", actor.ID), zap.Int64("submission_id", submissionID))
	}
	return submission, nil
}

func validateReview(in ReviewInput) error {
	if in.QualityScore == nil {
		if in.Approve {
			return apperr.Validation(apperr.CodeInvalidQualityScore, "a quality score is required to approve")
		}
		return nil
	}
	if score := *in.QualityScore; score < 0 || score > 100 {
		return apperr.Validation(apperr.CodeInvalidQualityScore, "quality score %.1f is outside 0-100", score)
	}
	return nil
}
