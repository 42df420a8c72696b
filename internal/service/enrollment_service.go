package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"go.uber.org/zap"
)

type EnrollmentService struct {
	store  storage.Store
	logger *zap.Logger
}

func NewEnrollmentService(store storage.Store, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		store:  store,
		logger: logger,
	}
}

// Enroll записывает участника на программу
func (s *EnrollmentService) Enroll(ctx context.Context, account *model.Account, programID int64) (*model.ProgramEnrollment, error) {
	if !account.CanParticipate() {
		return nil, apperr.Forbidden(apperr.CodeAccountInactive, "account status %s cannot enroll", account.Status)
	}

	program, err := s.store.Catalog().GetProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	if program == nil {
		return nil, apperr.NotFound("program %d not found", programID)
	}

	existing, err := s.store.Enrollments().GetActive(ctx, account.ID, program.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing enrollment: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(apperr.CodeDuplicateEnrollment, "already enrolled in program %d", programID)
	}

	enrollment := &model.ProgramEnrollment{
		AccountID: account.ID,
		ProgramID: program.ID,
		Status:    model.EnrollmentStatusEnrolled,
	}
	err = s.store.Enrollments().Create(ctx, enrollment)
	if errors.Is(err, storage.ErrDuplicate) {
		// Гонка двух одновременных записей
		return nil, apperr.Conflict(apperr.CodeDuplicateEnrollment, "already enrolled in program %d", programID)
	}
	if err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	s.logger.Info("Account enrolled",
		zap.Int64("account_id", account.ID),
		zap.Int64("program_id", programID),
		zap.Int64("enrollment_id", enrollment.ID),
	)

	return enrollment, nil
}
