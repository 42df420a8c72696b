package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/repository/base"
	"github.com/Freeeeeet/membership_core/internal/storage"
)

type ProfileRepository struct {
	*base.Repository
}

func NewProfileRepository(db base.DBTX) *ProfileRepository {
	return &ProfileRepository{Repository: base.NewRepository(db)}
}

// GetByAccountID получает профиль владельца
func (r *ProfileRepository) GetByAccountID(ctx context.Context, accountID int64) (*model.Profile, error) {
	query := `
		SELECT id, account_id, display_name, avatar_url, bio, city, country, timezone,
		       learning_tracks, availability, github_handle, twitter_handle, linkedin_handle,
		       profile_visibility, created_at, updated_at
		FROM profiles
		WHERE account_id = $1
	`

	var p model.Profile
	err := r.QueryRow(ctx, query, accountID).Scan(
		&p.ID,
		&p.AccountID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.Bio,
		&p.City,
		&p.Country,
		&p.Timezone,
		&p.LearningTracks,
		&p.Availability,
		&p.GithubHandle,
		&p.TwitterHandle,
		&p.LinkedinHandle,
		&p.Visibility,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &p, nil
}

// Create создаёт профиль
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (account_id, display_name, learning_tracks, profile_visibility)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	if p.LearningTracks == nil {
		p.LearningTracks = []string{}
	}

	err := r.QueryRow(ctx, query, p.AccountID, p.DisplayName, p.LearningTracks, p.Visibility).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

// Update обновляет редактируемые поля профиля. account_id не меняется.
func (r *ProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, avatar_url = $2, bio = $3, city = $4, country = $5, timezone = $6,
		    learning_tracks = $7, availability = $8, github_handle = $9, twitter_handle = $10,
		    linkedin_handle = $11, profile_visibility = $12, updated_at = NOW()
		WHERE account_id = $13
		RETURNING updated_at
	`

	if p.LearningTracks == nil {
		p.LearningTracks = []string{}
	}

	err := r.QueryRow(
		ctx, query,
		p.DisplayName,
		p.AvatarURL,
		p.Bio,
		p.City,
		p.Country,
		p.Timezone,
		p.LearningTracks,
		p.Availability,
		p.GithubHandle,
		p.TwitterHandle,
		p.LinkedinHandle,
		p.Visibility,
		p.AccountID,
	).Scan(&p.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}
