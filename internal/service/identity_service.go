package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/identity"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"go.uber.org/zap"
)

// IdentityService maps a verified caller identity to a stored account.
type IdentityService struct {
	store    storage.Store
	verifier identity.Verifier
	logger   *zap.Logger
}

func NewIdentityService(store storage.Store, verifier identity.Verifier, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

// verify surfaces every verifier failure as unauthorized.
func (s *IdentityService) verify(ctx context.Context, token string) (string, error) {
	externalID, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthorized {
			return "", err
		}
		return "", apperr.Unauthorized("token verification failed").Wrap(err)
	}
	return externalID, nil
}

// Resolve возвращает аккаунт вызывающего. Неизвестный или удалённый
// аккаунт отдаётся как unauthorized.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*model.Account, error) {
	externalID, err := s.verify(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := s.store.Accounts().GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get account by external id: %w", err)
	}
	if account == nil {
		return nil, apperr.Unauthorized("no account for this identity")
	}

	return account, nil
}

// Register регистрирует аккаунт для новой личности или возвращает существующий
func (s *IdentityService) Register(ctx context.Context, token string) (*model.Account, bool, error) {
	externalID, err := s.verify(ctx, token)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.Accounts().GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, fmt.Errorf("check existing account: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	account := &model.Account{
		ExternalID: externalID,
		Status:     model.AccountStatusIncomplete,
		Role:       model.RoleMember,
	}

	err = s.store.Accounts().Create(ctx, account)
	if errors.Is(err, storage.ErrDuplicate) {
		// Параллельная регистрация или отклонённый (soft-deleted) аккаунт
		return nil, false, apperr.Unauthorized("identity cannot be registered")
	}
	if err != nil {
		return nil, false, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("New account registered",
		zap.Int64("account_id", account.ID),
	)

	return account, true, nil
}
