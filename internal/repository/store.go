package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/repository/base"
	"github.com/Freeeeeet/membership_core/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL implementation of storage.Store.
type Store struct {
	db          base.DBTX
	accounts    *AccountRepository
	profiles    *ProfileRepository
	catalog     *CatalogRepository
	enrollments *EnrollmentRepository
	attendance  *AttendanceRepository
	submissions *SubmissionRepository
	audit       *AuditRepository
}

// NewStore создаёт хранилище поверх пула соединений
func NewStore(pool *pgxpool.Pool) *Store {
	return newStore(pool)
}

func newStore(db base.DBTX) *Store {
	return &Store{
		db:          db,
		accounts:    NewAccountRepository(db),
		profiles:    NewProfileRepository(db),
		catalog:     NewCatalogRepository(db),
		enrollments: NewEnrollmentRepository(db),
		attendance:  NewAttendanceRepository(db),
		submissions: NewSubmissionRepository(db),
		audit:       NewAuditRepository(db),
	}
}

func (s *Store) Accounts() storage.AccountRepository       { return s.accounts }
func (s *Store) Profiles() storage.ProfileRepository       { return s.profiles }
func (s *Store) Catalog() storage.CatalogRepository        { return s.catalog }
func (s *Store) Enrollments() storage.EnrollmentRepository { return s.enrollments }
func (s *Store) Attendance() storage.AttendanceRepository  { return s.attendance }
func (s *Store) Submissions() storage.SubmissionRepository { return s.submissions }
func (s *Store) Audit() storage.AuditRepository            { return s.audit }

// WithinTx выполняет fn в транзакции. Вложенный вызов открывает savepoint.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
