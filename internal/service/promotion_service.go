package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/audit"
	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"go.uber.org/zap"
)

// PromotionResult is returned by a committed promotion. Warning is set when
// the guest did not meet every threshold.
type PromotionResult struct {
	Account     *model.Account           `json:"account"`
	Enrollment  *model.ProgramEnrollment `json:"enrollment"`
	Eligibility *policy.Eligibility      `json:"eligibility"`
	Warning     string                   `json:"warning,omitempty"`
}

// PromotionService moves guests to active and stamps the enrollment.
type PromotionService struct {
	store              storage.Store
	eligibility        *EligibilityService
	recorder           *audit.Recorder
	metrics            *metrics.Metrics
	logger             *zap.Logger
	requireEligibility bool
}

func NewPromotionService(
	store storage.Store,
	eligibility *EligibilityService,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	logger *zap.Logger,
	requireEligibility bool,
) *PromotionService {
	return &PromotionService{
		store:              store,
		eligibility:        eligibility,
		recorder:           recorder,
		metrics:            m,
		logger:             logger,
		requireEligibility: requireEligibility,
	}
}

// Promote повышает гостя до active. Статус аккаунта и отметка о повышении
// в записи на программу фиксируются одной транзакцией.
func (s *PromotionService) Promote(ctx context.Context, actor *model.Account, accountID, enrollmentID int64, notes string) (*PromotionResult, error) {
	notes = strings.TrimSpace(notes)
	logFields := []zap.Field{
		zap.Int64("actor_id", actor.ID),
		zap.Int64("account_id", accountID),
		zap.Int64("enrollment_id", enrollmentID),
	}

	if d := policy.CheckActor(actor, accountID, policy.Promotion()); d != nil {
		return nil, denied(s.logger, s.metrics, d, logFields...)
	}

	var result *PromotionResult
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		account, err := tx.Accounts().GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if account == nil {
			return apperr.NotFound("account %d not found", accountID)
		}
		if d := policy.CheckTarget(account); d != nil {
			return denied(s.logger, s.metrics, d, logFields...)
		}
		if !account.IsGuest() {
			return apperr.Conflict(apperr.CodeInvalidStatusForPromotion, "only guests can be promoted, account is %s", account.Status)
		}

		enrollment, err := tx.Enrollments().GetByIDForUpdate(ctx, enrollmentID)
		if err != nil {
			return fmt.Errorf("get enrollment: %w", err)
		}
		if enrollment == nil || !enrollment.BelongsTo(accountID) {
			return apperr.NotFound("enrollment %d not found for account %d", enrollmentID, accountID)
		}
		if enrollment.IsPromoted() {
			return apperr.Conflict(apperr.CodeAlreadyPromoted, "enrollment %d already recorded a promotion", enrollmentID)
		}

		eligibility, err := s.eligibility.evaluate(ctx, tx, enrollment)
		if err != nil {
			return err
		}

		var warning string
		if !eligibility.IsEligible {
			if s.requireEligibility {
				return apperr.Conflict(apperr.CodeNotEligible, "guest does not meet promotion thresholds: %s", strings.Join(eligibility.Reasons, "; "))
			}
			warning = "promoted without meeting all thresholds: " + strings.Join(eligibility.Reasons, "; ")
			s.logger.Warn("Promoting ineligible guest", append(logFields, zap.Strings("reasons", eligibility.Reasons))...)
		}

		if err := policy.CheckTransition(account.Status, model.AccountStatusActive, true); err != nil {
			return err
		}

		if err := tx.Accounts().UpdateStatus(ctx, account.ID, model.AccountStatusActive, nil); err != nil {
			return fmt.Errorf("update account status: %w", err)
		}

		now := time.Now().UTC()
		if err := tx.Enrollments().MarkPromoted(ctx, enrollment.ID, now, actor.ID, notes); err != nil {
			return fmt.Errorf("mark enrollment promoted: %w", err)
		}

		promotedBy := actor.ID
		account.Status = model.AccountStatusActive
		enrollment.PromotedAt = &now
		enrollment.PromotedBy = &promotedBy
		enrollment.PromotionNotes = notes

		result = &PromotionResult{
			Account:     account,
			Enrollment:  enrollment,
			Eligibility: eligibility,
			Warning:     warning,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObservePromotion(result.Eligibility.IsEligible)
	s.metrics.ObserveTransition(string(model.AccountStatusGuest), string(model.AccountStatusActive))
	s.logger.Info("Guest promoted", append(logFields, zap.Bool("eligible", result.Eligibility.IsEligible))...)
	s.recorder.Record(ctx, audit.NewEntry(model.AuditActionPromoted, actor.ID, accountID,
		string(model.AccountStatusGuest), string(model.AccountStatusActive), notes))

	return result, nil
}
