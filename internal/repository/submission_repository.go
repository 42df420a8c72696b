package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/repository/base"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"github.com/jackc/pgx/v5"
)

type SubmissionRepository struct {
	*base.Repository
}

func NewSubmissionRepository(db base.DBTX) *SubmissionRepository {
	return &SubmissionRepository{Repository: base.NewRepository(db)}
}

const submissionColumns = `id, account_id, activity_id, content, status, reviewed_by, reviewed_at,
	quality_score, reward_amount, created_at`

func scanSubmission(row pgx.Row) (*model.ActivitySubmission, error) {
	var s model.ActivitySubmission
	err := row.Scan(
		&s.ID,
		&s.AccountID,
		&s.ActivityID,
		&s.Content,
		&s.Status,
		&s.ReviewedBy,
		&s.ReviewedAt,
		&s.QualityScore,
		&s.RewardAmount,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create создаёт работу в статусе pending
func (r *SubmissionRepository) Create(ctx context.Context, s *model.ActivitySubmission) error {
	query := `
		INSERT INTO activity_submissions (account_id, activity_id, content, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, s.AccountID, s.ActivityID, s.Content, s.Status).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) getOne(ctx context.Context, query string, id int64) (*model.ActivitySubmission, error) {
	s, err := scanSubmission(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return s, nil
}

// GetByID получает работу по ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*model.ActivitySubmission, error) {
	return r.getOne(ctx, `SELECT `+submissionColumns+` FROM activity_submissions WHERE id = $1`, id)
}

// GetByIDForUpdate получает работу с блокировкой строки
func (r *SubmissionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.ActivitySubmission, error) {
	return r.getOne(ctx, `SELECT `+submissionColumns+` FROM activity_submissions WHERE id = $1 FOR UPDATE`, id)
}

// UpdateReview сохраняет результат проверки
func (r *SubmissionRepository) UpdateReview(ctx context.Context, s *model.ActivitySubmission) error {
	query := `
		UPDATE activity_submissions
		SET status = $1, reviewed_by = $2, reviewed_at = $3, quality_score = $4, reward_amount = $5
		WHERE id = $6
	`

	affected, err := r.ExecAffected(ctx, query, s.Status, s.ReviewedBy, s.ReviewedAt, s.QualityScore, s.RewardAmount, s.ID)
	if err != nil {
		return fmt.Errorf("update submission review: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListByAccount получает работы аккаунта, новые первыми
func (r *SubmissionRepository) ListByAccount(ctx context.Context, accountID int64) ([]*model.ActivitySubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM activity_submissions WHERE account_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	submissions := []*model.ActivitySubmission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return submissions, nil
}

// ApprovedStats считает одобренные работы и средний балл качества
func (r *SubmissionRepository) ApprovedStats(ctx context.Context, accountID int64) (int, float64, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(quality_score), 0)
		FROM activity_submissions
		WHERE account_id = $1 AND status = $2
	`

	var (
		count int
		mean  float64
	)
	if err := r.QueryRow(ctx, query, accountID, model.SubmissionStatusApproved).Scan(&count, &mean); err != nil {
		return 0, 0, fmt.Errorf("approved submission stats: %w", err)
	}
	return count, mean, nil
}
