package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/repository/base"
)

type AttendanceRepository struct {
	*base.Repository
}

func NewAttendanceRepository(db base.DBTX) *AttendanceRepository {
	return &AttendanceRepository{Repository: base.NewRepository(db)}
}

// Upsert отмечает посещение; повторная отметка перезаписывает предыдущую
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *model.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (account_id, session_id, status, marked_by, marked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, session_id)
		DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = EXCLUDED.marked_at
		RETURNING id
	`

	err := r.QueryRow(ctx, query, rec.AccountID, rec.SessionID, rec.Status, rec.MarkedBy, rec.MarkedAt).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}

	return nil
}

// CountPresentInProgram считает посещённые занятия программы
func (r *AttendanceRepository) CountPresentInProgram(ctx context.Context, accountID, programID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM attendance_records ar
		JOIN sessions s ON s.id = ar.session_id
		WHERE ar.account_id = $1 AND s.program_id = $2 AND ar.status = $3
	`

	var count int
	if err := r.QueryRow(ctx, query, accountID, programID, model.AttendanceStatusPresent).Scan(&count); err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}
