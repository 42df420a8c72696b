package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"go.uber.org/zap"
)

// AttendanceMark is one row of a bulk attendance request.
type AttendanceMark struct {
	AccountID int64
	Status    model.AttendanceStatus
}

type AttendanceService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAttendanceService(store storage.Store, m *metrics.Metrics, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// MarkSession отмечает посещаемость занятия пачкой. Либо записываются все
// отметки, либо ни одной.
func (s *AttendanceService) MarkSession(ctx context.Context, actor *model.Account, sessionID int64, marks []AttendanceMark) ([]*model.AttendanceRecord, error) {
	if d := policy.RequireRole(actor, model.RoleAdmin); d != nil {
		return nil, denied(s.logger, s.metrics, d, zap.Int64("actor_id", actor.ID), zap.Int64("session_id", sessionID))
	}
	if err := validateMarks(marks); err != nil {
		return nil, err
	}

	var records []*model.AttendanceRecord
	err := s.store.WithinTx(ctx, func(tx storage.Store) error {
		session, err := tx.Catalog().GetSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if session == nil {
			return apperr.NotFound("session %d not found", sessionID)
		}

		now := time.Now().UTC()
		records = make([]*model.AttendanceRecord, 0, len(marks))
		for _, m := range marks {
			account, err := tx.Accounts().GetByID(ctx, m.AccountID)
			if err != nil {
				return fmt.Errorf("get account: %w", err)
			}
			if account == nil {
				return apperr.NotFound("account %d not found", m.AccountID)
			}

			record := &model.AttendanceRecord{
				AccountID: m.AccountID,
				SessionID: session.ID,
				Status:    m.Status,
				MarkedBy:  actor.ID,
				MarkedAt:  now,
			}
			if err := tx.Attendance().Upsert(ctx, record); err != nil {
				return fmt.Errorf("upsert attendance for account %d: %w", m.AccountID, err)
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session attendance marked",
		zap.Int64("actor_id", actor.ID),
		zap.Int64("session_id", sessionID),
		zap.Int("marks", len(records)),
	)

	return records, nil
}

func validateMarks(marks []AttendanceMark) error {
	if len(marks) == 0 {
		return apperr.Validation(apperr.CodeValidationFailed, "at least one attendance mark is required")
	}

	seen := make(map[int64]struct{}, len(marks))
	for _, m := range marks {
		if _, ok := model.ParseAttendanceStatus(string(m.Status)); !ok {
			return apperr.Validation(apperr.CodeValidationFailed, "unknown attendance status %q for account %d", m.Status, m.AccountID)
		}
		if _, dup := seen[m.AccountID]; dup {
			return apperr.Validation(apperr.CodeValidationFailed, "account %d is marked twice", m.AccountID)
		}
		seen[m.AccountID] = struct{}{}
	}
	return nil
}
