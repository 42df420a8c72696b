package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/storage"
)

// ProfilePatch holds the fields an owner may edit. Nil means unchanged.
type ProfilePatch struct {
	DisplayName    *string  `validate:"omitempty,max=100"`
	AvatarURL      *string  `validate:"omitempty,http_url,max=500"`
	Bio            *string  `validate:"omitempty,max=2000"`
	City           *string  `validate:"omitempty,max=100"`
	Country        *string  `validate:"omitempty,max=100"`
	Timezone       *string  `validate:"omitempty,max=64"`
	LearningTracks []string `validate:"omitempty,max=20,dive,max=50"`
	Availability   *string  `validate:"omitempty,max=200"`
	GithubHandle   *string  `validate:"omitempty,max=100"`
	TwitterHandle  *string  `validate:"omitempty,max=100"`
	LinkedinHandle *string  `validate:"omitempty,max=100"`
	Visibility     *model.ProfileVisibility
}

type ProfileService struct {
	store    storage.Store
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProfileService(store storage.Store, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		validate: validate,
		logger:   logger,
	}
}

// View возвращает профиль по хэндлу, отфильтрованный для зрителя.
// viewer == nil для анонимного запроса.
func (s *ProfileService) View(ctx context.Context, viewer *model.Account, handle string) (policy.ProfileView, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))

	owner, err := s.store.Accounts().GetByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("get account by handle: %w", err)
	}
	if owner == nil {
		return nil, apperr.NotFound("profile %q not found", handle)
	}

	return s.view(ctx, viewer, owner)
}

// ViewOwn returns the caller's own profile with every field visible.
func (s *ProfileService) ViewOwn(ctx context.Context, owner *model.Account) (policy.ProfileView, error) {
	return s.view(ctx, owner, owner)
}

func (s *ProfileService) view(ctx context.Context, viewer, owner *model.Account) (policy.ProfileView, error) {
	profile, err := s.store.Profiles().GetByAccountID(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("profile for account %d not found", owner.ID)
	}

	completed, err := s.store.Enrollments().CountCompleted(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("count completed programs: %w", err)
	}

	return policy.FilterProfile(policy.ProfileSubject{
		Profile:           profile,
		Owner:             owner,
		CompletedPrograms: completed,
	}, viewer), nil
}

// Update применяет патч к профилю владельца
func (s *ProfileService) Update(ctx context.Context, owner *model.Account, patch ProfilePatch) (*model.Profile, error) {
	if err := s.validatePatch(patch); err != nil {
		return nil, err
	}

	profile, err := s.store.Profiles().GetByAccountID(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("profile for account %d not found", owner.ID)
	}

	applyPatch(profile, patch)

	if err := s.store.Profiles().Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.Int64("account_id", owner.ID))

	return profile, nil
}

func (s *ProfileService) validatePatch(p ProfilePatch) error {
	if p.Visibility != nil {
		if _, ok := model.ParseProfileVisibility(string(*p.Visibility)); !ok {
			return apperr.Validation(apperr.CodeValidationFailed, "unknown profile visibility %q", *p.Visibility)
		}
	}

	if err := s.validate.Struct(p); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return apperr.Validation(apperr.CodeValidationFailed, "field %s failed %s check", ve[0].Field(), ve[0].Tag())
		}
		return fmt.Errorf("validate profile patch: %w", err)
	}
	return nil
}

func applyPatch(profile *model.Profile, p ProfilePatch) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	set(&profile.DisplayName, p.DisplayName)
	set(&profile.AvatarURL, p.AvatarURL)
	set(&profile.Bio, p.Bio)
	set(&profile.City, p.City)
	set(&profile.Country, p.Country)
	set(&profile.Timezone, p.Timezone)
	set(&profile.Availability, p.Availability)
	set(&profile.GithubHandle, p.GithubHandle)
	set(&profile.TwitterHandle, p.TwitterHandle)
	set(&profile.LinkedinHandle, p.LinkedinHandle)

	if p.LearningTracks != nil {
		profile.LearningTracks = p.LearningTracks
	}
	if p.Visibility != nil {
		profile.Visibility = *p.Visibility
	}
}
