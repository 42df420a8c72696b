package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"go.uber.org/zap"
)

// EligibilityService reads participation aggregates and evaluates them
// against the promotion thresholds. Nothing is cached or stored.
type EligibilityService struct {
	store      storage.Store
	thresholds policy.Thresholds
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewEligibilityService(store storage.Store, thresholds policy.Thresholds, m *metrics.Metrics, logger *zap.Logger) *EligibilityService {
	return &EligibilityService{
		store:      store,
		thresholds: thresholds,
		metrics:    m,
		logger:     logger,
	}
}

// Check вычисляет пригодность аккаунта к повышению по конкретной записи на программу.
// Доступно модераторам и админам.
func (s *EligibilityService) Check(ctx context.Context, actor *model.Account, accountID, enrollmentID int64) (*policy.Eligibility, error) {
	if d := policy.RequireRole(actor, model.RoleModerator); d != nil {
		return nil, denied(s.logger, s.metrics, d,
			zap.Int64("actor_id", actor.ID),
			zap.Int64("account_id", accountID),
		)
	}

	enrollment, err := s.store.Enrollments().GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if enrollment == nil || !enrollment.BelongsTo(accountID) {
		return nil, apperr.NotFound("enrollment %d not found for account %d", enrollmentID, accountID)
	}

	result, err := s.evaluate(ctx, s.store, enrollment)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Eligibility evaluated",
		zap.Int64("account_id", accountID),
		zap.Int64("enrollment_id", enrollmentID),
		zap.Bool("eligible", result.IsEligible),
	)

	return result, nil
}

// evaluate reads through store so promotion can run it inside its transaction.
func (s *EligibilityService) evaluate(ctx context.Context, store storage.Store, enrollment *model.ProgramEnrollment) (*policy.Eligibility, error) {
	attended, err := store.Attendance().CountPresentInProgram(ctx, enrollment.AccountID, enrollment.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	approved, meanScore, err := store.Submissions().ApprovedStats(ctx, enrollment.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get submission stats: %w", err)
	}

	result := s.thresholds.Evaluate(policy.ActivityStats{
		AttendanceCount: attended,
		SubmissionCount: approved,
		QualityScore:    meanScore,
	})
	return &result, nil
}
