package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/repository/base"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"github.com/jackc/pgx/v5"
)

type EnrollmentRepository struct {
	*base.Repository
}

func NewEnrollmentRepository(db base.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{Repository: base.NewRepository(db)}
}

const enrollmentColumns = `id, account_id, program_id, status, enrolled_at, completed_at,
	promoted_at, promoted_by, promotion_notes, deleted_at`

func scanEnrollment(row pgx.Row) (*model.ProgramEnrollment, error) {
	var e model.ProgramEnrollment
	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.ProgramID,
		&e.Status,
		&e.EnrolledAt,
		&e.CompletedAt,
		&e.PromotedAt,
		&e.PromotedBy,
		&e.PromotionNotes,
		&e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) getOne(ctx context.Context, query string, args ...any) (*model.ProgramEnrollment, error) {
	e, err := scanEnrollment(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return e, nil
}

// GetByID получает запись о зачислении
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*model.ProgramEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM program_enrollments WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate получает запись и блокирует её до конца транзакции
func (r *EnrollmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.ProgramEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM program_enrollments WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// GetActive получает действующее зачисление аккаунта в программу
func (r *EnrollmentRepository) GetActive(ctx context.Context, accountID, programID int64) (*model.ProgramEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM program_enrollments
		WHERE account_id = $1 AND program_id = $2 AND deleted_at IS NULL`
	return r.getOne(ctx, query, accountID, programID)
}

// Create зачисляет аккаунт в программу
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.ProgramEnrollment) error {
	query := `
		INSERT INTO program_enrollments (account_id, program_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, enrolled_at
	`

	err := r.QueryRow(ctx, query, e.AccountID, e.ProgramID, e.Status).Scan(&e.ID, &e.EnrolledAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

// MarkPromoted фиксирует повышение. promoted_at ставится только один раз.
func (r *EnrollmentRepository) MarkPromoted(ctx context.Context, id int64, promotedAt time.Time, promotedBy int64, notes string) error {
	query := `
		UPDATE program_enrollments
		SET promoted_at = $1, promoted_by = $2, promotion_notes = $3
		WHERE id = $4 AND promoted_at IS NULL AND deleted_at IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, promotedAt, promotedBy, notes, id)
	if err != nil {
		return fmt.Errorf("mark enrollment promoted: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// CountCompleted считает завершённые программы аккаунта
func (r *EnrollmentRepository) CountCompleted(ctx context.Context, accountID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM program_enrollments
		WHERE account_id = $1 AND status = $2 AND deleted_at IS NULL
	`

	var count int
	if err := r.QueryRow(ctx, query, accountID, model.EnrollmentStatusCompleted).Scan(&count); err != nil {
		return 0, fmt.Errorf("count completed enrollments: %w", err)
	}
	return count, nil
}
