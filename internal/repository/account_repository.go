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

type AccountRepository struct {
	*base.Repository
}

func NewAccountRepository(db base.DBTX) *AccountRepository {
	return &AccountRepository{Repository: base.NewRepository(db)}
}

const accountColumns = `id, external_id, handle, account_status, role, created_at, updated_at, deleted_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.ExternalID,
		&a.Handle,
		&a.Status,
		&a.Role,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) getOne(ctx context.Context, what, query string, arg any) (*model.Account, error) {
	account, err := scanAccount(r.QueryRow(ctx, query, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Аккаунт не найден
		}
		return nil, fmt.Errorf("get account by %s: %w", what, err)
	}
	return account, nil
}

// GetByID получает аккаунт по ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, "id", query, id)
}

// GetByIDForUpdate получает аккаунт и блокирует строку до конца транзакции
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.getOne(ctx, "id for update", query, id)
}

// GetByExternalID получает аккаунт по идентификатору провайдера
func (r *AccountRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE external_id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, "external id", query, externalID)
}

// GetByHandle получает аккаунт по уникальному хэндлу
func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE handle = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, "handle", query, handle)
}

// Create создаёт новый аккаунт
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (external_id, handle, account_status, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		account.ExternalID,
		account.Handle,
		account.Status,
		account.Role,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// UpdateStatus меняет статус; deletedAt ставится при отклонении
func (r *AccountRepository) UpdateStatus(ctx context.Context, id int64, status model.AccountStatus, deletedAt *time.Time) error {
	query := `
		UPDATE accounts
		SET account_status = $1, deleted_at = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, status, deletedAt, id)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// UpdateRole меняет роль
func (r *AccountRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	query := `
		UPDATE accounts
		SET role = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, role, id)
	if err != nil {
		return fmt.Errorf("update account role: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// SetHandle закрепляет хэндл за аккаунтом
func (r *AccountRepository) SetHandle(ctx context.Context, id int64, handle string) error {
	query := `
		UPDATE accounts
		SET handle = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, handle, id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("set account handle: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}
