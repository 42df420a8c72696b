package storage

import (
	"context"
	"time"

	"github.com/Freeeeeet/membership_core/internal/model"
)

// AccountRepository reads and writes accounts. Every lookup skips soft-deleted
// rows.
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Account, error)
	GetByHandle(ctx context.Context, handle string) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	UpdateStatus(ctx context.Context, id int64, status model.AccountStatus, deletedAt *time.Time) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	// SetHandle returns ErrDuplicate when the handle is taken.
	SetHandle(ctx context.Context, id int64, handle string) error
}

type ProfileRepository interface {
	GetByAccountID(ctx context.Context, accountID int64) (*model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) error
	Update(ctx context.Context, profile *model.Profile) error
}

// CatalogRepository exposes programs, sessions and activities, which are
// managed outside this service.
type CatalogRepository interface {
	GetProgram(ctx context.Context, id int64) (*model.Program, error)
	GetSession(ctx context.Context, id int64) (*model.Session, error)
	GetActivity(ctx context.Context, id int64) (*model.Activity, error)
}

type EnrollmentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.ProgramEnrollment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.ProgramEnrollment, error)
	GetActive(ctx context.Context, accountID, programID int64) (*model.ProgramEnrollment, error)
	// Create returns ErrDuplicate when a live enrollment already exists.
	Create(ctx context.Context, enrollment *model.ProgramEnrollment) error
	MarkPromoted(ctx context.Context, id int64, promotedAt time.Time, promotedBy int64, notes string) error
	CountCompleted(ctx context.Context, accountID int64) (int, error)
}

type AttendanceRepository interface {
	// Upsert writes the record keyed by (account, session), overwriting status,
	// marker and time of any earlier mark.
	Upsert(ctx context.Context, record *model.AttendanceRecord) error
	CountPresentInProgram(ctx context.Context, accountID, programID int64) (int, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.ActivitySubmission) error
	GetByID(ctx context.Context, id int64) (*model.ActivitySubmission, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.ActivitySubmission, error)
	UpdateReview(ctx context.Context, submission *model.ActivitySubmission) error
	ListByAccount(ctx context.Context, accountID int64) ([]*model.ActivitySubmission, error)
	// ApprovedStats returns the approved count and mean quality score (0 when none).
	ApprovedStats(ctx context.Context, accountID int64) (count int, meanScore float64, err error)
}

type AuditRepository interface {
	Insert(ctx context.Context, entry *model.AuditEntry) error
}

// Store groups the repositories and runs all-or-nothing units of work.
type Store interface {
	Accounts() AccountRepository
	Profiles() ProfileRepository
	Catalog() CatalogRepository
	Enrollments() EnrollmentRepository
	Attendance() AttendanceRepository
	Submissions() SubmissionRepository
	Audit() AuditRepository

	// WithinTx runs fn against a transactional Store. fn's error rolls back
	// every write made through tx.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
