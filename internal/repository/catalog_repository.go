package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/repository/base"
)

// CatalogRepository читает программы, занятия и задания
type CatalogRepository struct {
	*base.Repository
}

func NewCatalogRepository(db base.DBTX) *CatalogRepository {
	return &CatalogRepository{Repository: base.NewRepository(db)}
}

// GetProgram получает программу по ID
func (r *CatalogRepository) GetProgram(ctx context.Context, id int64) (*model.Program, error) {
	query := `SELECT id, slug, title, created_at FROM programs WHERE id = $1`

	var p model.Program
	err := r.QueryRow(ctx, query, id).Scan(&p.ID, &p.Slug, &p.Title, &p.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get program: %w", err)
	}
	return &p, nil
}

// GetSession получает занятие по ID
func (r *CatalogRepository) GetSession(ctx context.Context, id int64) (*model.Session, error) {
	query := `SELECT id, program_id, title, starts_at FROM sessions WHERE id = $1`

	var s model.Session
	err := r.QueryRow(ctx, query, id).Scan(&s.ID, &s.ProgramID, &s.Title, &s.StartsAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// GetActivity получает задание по ID
func (r *CatalogRepository) GetActivity(ctx context.Context, id int64) (*model.Activity, error) {
	query := `SELECT id, program_id, title, reward, created_at FROM activities WHERE id = $1`

	var a model.Activity
	err := r.QueryRow(ctx, query, id).Scan(&a.ID, &a.ProgramID, &a.Title, &a.Reward, &a.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &a, nil
}
