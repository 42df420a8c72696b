package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
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

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// AccountService applies status and role changes. Every write goes through
// the policy checks and happens under a row lock on the target account.
type AccountService struct {
	store    storage.Store
	recorder *audit.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewAccountService(store storage.Store, recorder *audit.Recorder, m *metrics.Metrics, logger *zap.Logger) *AccountService {
	return &AccountService{
		store:    store,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
	}
}

// ReasonRequired reports whether moving into status needs a written reason.
func (s *AccountService) ReasonRequired(to model.AccountStatus) bool {
	return policy.ReasonRequired(to)
}

// Transition moves the target account to a new status on behalf of actor.
// On any error the stored status is unchanged.
func (s *AccountService) Transition(ctx context.Context, actor *model.Account, targetID int64, to model.AccountStatus, reason string) (*model.Account, error) {
	reason = strings.TrimSpace(reason)
	logFields := []zap.Field{
		zap.Int64("actor_id", actor.ID),
		zap.Int64("account_id", targetID),
		zap.String("to", string(to)),
	}

	if d := policy.CheckActor(actor, targetID, policy.StatusChange(to)); d != nil {
		return nil, denied(s.logger, s.metrics, d, logFields...)
	}
	if policy.ReasonRequired(to) && reason == "" {
		return nil, apperr.Validation(apperr.CodeReasonRequired, "a reason is required to set status %s", to)
	}

	var (
		from    model.AccountStatus
		updated *model.Account
	)
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		target, err := tx.Accounts().GetByIDForUpdate(ctx, targetID)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if target == nil {
			return apperr.NotFound("account %d not found", targetID)
		}

		if d := policy.CheckTarget(target); d != nil {
			return denied(s.logger, s.metrics, d, logFields...)
		}
		if err := policy.CheckTransition(target.Status, to, false); err != nil {
			return err
		}

		// Отклонение = мягкое удаление
		var deletedAt *time.Time
		if to == model.AccountStatusRejected {
			now := time.Now().UTC()
			deletedAt = &now
		}

		if err := tx.Accounts().UpdateStatus(ctx, target.ID, to, deletedAt); err != nil {
			return fmt.Errorf("update account status: %w", err)
		}

		from = target.Status
		target.Status = to
		target.DeletedAt = deletedAt
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(from), string(to))
	s.logger.Info("Account status changed",
		append(logFields, zap.String("from", string(from)), zap.String("reason", reason))...,
	)
	s.recorder.Record(ctx, audit.NewEntry(model.AuditActionStatusChanged, actor.ID, targetID, string(from), string(to), reason))

	return updated, nil
}

// ChangeRole sets the role of the target account on behalf of actor.
func (s *AccountService) ChangeRole(ctx context.Context, actor *model.Account, targetID int64, role model.Role) (*model.Account, error) {
	logFields := []zap.Field{
		zap.Int64("actor_id", actor.ID),
		zap.Int64("account_id", targetID),
		zap.String("role", string(role)),
	}

	if _, ok := model.ParseRole(string(role)); !ok {
		return nil, apperr.Validation(apperr.CodeValidationFailed, "unknown role %q", role)
	}
	if d := policy.CheckActor(actor, targetID, policy.RoleChange(role)); d != nil {
		return nil, denied(s.logger, s.metrics, d, logFields...)
	}

	var (
		from    model.Role
		updated *model.Account
	)
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		target, err := tx.Accounts().GetByIDForUpdate(ctx, targetID)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if target == nil {
			return apperr.NotFound("account %d not found", targetID)
		}

		if d := policy.CheckTarget(target); d != nil {
			return denied(s.logger, s.metrics, d, logFields...)
		}
		if target.Role == role {
			return apperr.Conflict(apperr.CodeAlreadyInRole, "account already has role %s", role)
		}

		if err := tx.Accounts().UpdateRole(ctx, target.ID, role); err != nil {
			return fmt.Errorf("update account role: %w", err)
		}

		from = target.Role
		target.Role = role
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account role changed", append(logFields, zap.String("from", string(from)))...)
	s.recorder.Record(ctx, audit.NewEntry(model.AuditActionRoleChanged, actor.ID, targetID, string(from), string(role), ""))

	return updated, nil
}

// OnboardingInput is what the owner submits to leave the incomplete status.
type OnboardingInput struct {
	Handle      string
	DisplayName string
	AsGuest     bool
}

// CompleteOnboarding claims a handle, creates the profile and moves the
// owner's account to pending, or to guest on the guest track.
func (s *AccountService) CompleteOnboarding(ctx context.Context, owner *model.Account, in OnboardingInput) (*model.Account, error) {
	handle := strings.ToLower(strings.TrimSpace(in.Handle))
	if !handlePattern.MatchString(handle) {
		return nil, apperr.Validation(apperr.CodeValidationFailed, "handle must be 3-30 characters of a-z, 0-9 or _")
	}

	to := model.AccountStatusPending
	if in.AsGuest {
		to = model.AccountStatusGuest
	}

	var (
		from    model.AccountStatus
		updated *model.Account
	)
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		account, err := tx.Accounts().GetByIDForUpdate(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if account == nil {
			return apperr.NotFound("account %d not found", owner.ID)
		}
		if err := policy.CheckOnboarding(account.Status, to); err != nil {
			return err
		}

		err = tx.Accounts().SetHandle(ctx, account.ID, handle)
		if errors.Is(err, storage.ErrDuplicate) {
			return apperr.Conflict(apperr.CodeHandleTaken, "handle %q is taken", handle)
		}
		if err != nil {
			return fmt.Errorf("set handle: %w", err)
		}

		if err := tx.Accounts().UpdateStatus(ctx, account.ID, to, nil); err != nil {
			return fmt.Errorf("update account status: %w", err)
		}

		profile := &model.Profile{
			AccountID:   account.ID,
			DisplayName: strings.TrimSpace(in.DisplayName),
			Visibility:  model.ProfileVisibilityPublic,
		}
		if err := tx.Profiles().Create(ctx, profile); err != nil && !errors.Is(err, storage.ErrDuplicate) {
			return fmt.Errorf("create profile: %w", err)
		}

		from = account.Status
		account.Handle = &handle
		account.Status = to
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(from), string(to))
	s.logger.Info("Onboarding completed",
		zap.Int64("account_id", owner.ID),
		zap.String("handle", handle),
		zap.String("status", string(to)),
	)
	s.recorder.Record(ctx, audit.NewEntry(model.AuditActionOnboarded, owner.ID, owner.ID, string(from), string(to), ""))

	return updated, nil
}
