// Package memstore is an in-memory storage.Store. It mirrors the Postgres
// repositories closely enough for service and handler tests and is not safe
// for concurrent use.
package memstore

import (
	"context"
	"errors"
	"maps"
	"sort"
	"time"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/storage"
)

// ErrInjected is returned by writes armed with FailMarkPromoted or
// FailUpsertOnCall.
var ErrInjected = errors.New("injected failure")

type attendanceKey struct {
	accountID int64
	sessionID int64
}

// memState is the in-memory database behind Store.
type memState struct {
	nextID      int64
	accounts    map[int64]model.Account
	profiles    map[int64]model.Profile // by account id
	programs    map[int64]model.Program
	sessions    map[int64]model.Session
	activities  map[int64]model.Activity
	enrollments map[int64]model.ProgramEnrollment
	attendance  map[attendanceKey]model.AttendanceRecord
	submissions map[int64]model.ActivitySubmission
	audit       []model.AuditEntry
}

func newMemState() *memState {
	return &memState{
		accounts:    map[int64]model.Account{},
		profiles:    map[int64]model.Profile{},
		programs:    map[int64]model.Program{},
		sessions:    map[int64]model.Session{},
		activities:  map[int64]model.Activity{},
		enrollments: map[int64]model.ProgramEnrollment{},
		attendance:  map[attendanceKey]model.AttendanceRecord{},
		submissions: map[int64]model.ActivitySubmission{},
	}
}

func (s *memState) clone() *memState {
	return &memState{
		nextID:      s.nextID,
		accounts:    maps.Clone(s.accounts),
		profiles:    maps.Clone(s.profiles),
		programs:    maps.Clone(s.programs),
		sessions:    maps.Clone(s.sessions),
		activities:  maps.Clone(s.activities),
		enrollments: maps.Clone(s.enrollments),
		attendance:  maps.Clone(s.attendance),
		submissions: maps.Clone(s.submissions),
		audit:       append([]model.AuditEntry(nil), s.audit...),
	}
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// failures injects write errors.
type failures struct {
	markPromoted bool
	upsertOnCall int // 1-based, 0 disables
	upsertCalls  int
}

// Store implements storage.Store. WithinTx works on a copy of the state and
// swaps it in only when fn succeeds.
type Store struct {
	st   *memState
	fail *failures
}

func New() *Store {
	return &Store{st: newMemState(), fail: &failures{}}
}

func (s *Store) Accounts() storage.AccountRepository       { return memAccounts{s.st} }
func (s *Store) Profiles() storage.ProfileRepository       { return memProfiles{s.st} }
func (s *Store) Catalog() storage.CatalogRepository        { return memCatalog{s.st} }
func (s *Store) Enrollments() storage.EnrollmentRepository { return memEnrollments{s.st, s.fail} }
func (s *Store) Attendance() storage.AttendanceRepository  { return memAttendance{s.st, s.fail} }
func (s *Store) Submissions() storage.SubmissionRepository { return memSubmissions{s.st} }
func (s *Store) Audit() storage.AuditRepository            { return memAudit{s.st} }

func (s *Store) WithinTx(_ context.Context, fn func(tx storage.Store) error) error {
	work := s.st.clone()
	if err := fn(&Store{st: work, fail: s.fail}); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

type memAccounts struct{ st *memState }

func (r memAccounts) GetByID(_ context.Context, id int64) (*model.Account, error) {
	a, ok := r.st.accounts[id]
	if !ok || a.IsDeleted() {
		return nil, nil
	}
	return &a, nil
}

func (r memAccounts) GetByIDForUpdate(ctx context.Context, id int64) (*model.Account, error) {
	return r.GetByID(ctx, id)
}

func (r memAccounts) GetByExternalID(_ context.Context, externalID string) (*model.Account, error) {
	for _, a := range r.st.accounts {
		if a.ExternalID == externalID && !a.IsDeleted() {
			return &a, nil
		}
	}
	return nil, nil
}

func (r memAccounts) GetByHandle(_ context.Context, handle string) (*model.Account, error) {
	for _, a := range r.st.accounts {
		if a.Handle != nil && *a.Handle == handle && !a.IsDeleted() {
			return &a, nil
		}
	}
	return nil, nil
}

func (r memAccounts) Create(_ context.Context, account *model.Account) error {
	for _, a := range r.st.accounts {
		if a.ExternalID == account.ExternalID {
			return storage.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	account.ID = r.st.id()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.st.accounts[account.ID] = *account
	return nil
}

func (r memAccounts) UpdateStatus(_ context.Context, id int64, status model.AccountStatus, deletedAt *time.Time) error {
	a, ok := r.st.accounts[id]
	if !ok || a.IsDeleted() {
		return storage.ErrNotFound
	}
	a.Status = status
	a.DeletedAt = deletedAt
	r.st.accounts[id] = a
	return nil
}

func (r memAccounts) UpdateRole(_ context.Context, id int64, role model.Role) error {
	a, ok := r.st.accounts[id]
	if !ok || a.IsDeleted() {
		return storage.ErrNotFound
	}
	a.Role = role
	r.st.accounts[id] = a
	return nil
}

func (r memAccounts) SetHandle(_ context.Context, id int64, handle string) error {
	for otherID, a := range r.st.accounts {
		if otherID != id && a.Handle != nil && *a.Handle == handle {
			return storage.ErrDuplicate
		}
	}
	a, ok := r.st.accounts[id]
	if !ok || a.IsDeleted() {
		return storage.ErrNotFound
	}
	h := handle
	a.Handle = &h
	r.st.accounts[id] = a
	return nil
}

type memProfiles struct{ st *memState }

func (r memProfiles) GetByAccountID(_ context.Context, accountID int64) (*model.Profile, error) {
	p, ok := r.st.profiles[accountID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProfiles) Create(_ context.Context, profile *model.Profile) error {
	if _, ok := r.st.profiles[profile.AccountID]; ok {
		return storage.ErrDuplicate
	}
	profile.ID = r.st.id()
	r.st.profiles[profile.AccountID] = *profile
	return nil
}

func (r memProfiles) Update(_ context.Context, profile *model.Profile) error {
	if _, ok := r.st.profiles[profile.AccountID]; !ok {
		return storage.ErrNotFound
	}
	r.st.profiles[profile.AccountID] = *profile
	return nil
}

type memCatalog struct{ st *memState }

func (r memCatalog) GetProgram(_ context.Context, id int64) (*model.Program, error) {
	p, ok := r.st.programs[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memCatalog) GetSession(_ context.Context, id int64) (*model.Session, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memCatalog) GetActivity(_ context.Context, id int64) (*model.Activity, error) {
	a, ok := r.st.activities[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

type memEnrollments struct {
	st   *memState
	fail *failures
}

func (r memEnrollments) GetByID(_ context.Context, id int64) (*model.ProgramEnrollment, error) {
	e, ok := r.st.enrollments[id]
	if !ok || e.DeletedAt != nil {
		return nil, nil
	}
	return &e, nil
}

func (r memEnrollments) GetByIDForUpdate(ctx context.Context, id int64) (*model.ProgramEnrollment, error) {
	return r.GetByID(ctx, id)
}

func (r memEnrollments) GetActive(_ context.Context, accountID, programID int64) (*model.ProgramEnrollment, error) {
	for _, e := range r.st.enrollments {
		if e.AccountID == accountID && e.ProgramID == programID && e.DeletedAt == nil {
			return &e, nil
		}
	}
	return nil, nil
}

func (r memEnrollments) Create(ctx context.Context, enrollment *model.ProgramEnrollment) error {
	if existing, _ := r.GetActive(ctx, enrollment.AccountID, enrollment.ProgramID); existing != nil {
		return storage.ErrDuplicate
	}
	enrollment.ID = r.st.id()
	enrollment.EnrolledAt = time.Now().UTC()
	r.st.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r memEnrollments) MarkPromoted(_ context.Context, id int64, promotedAt time.Time, promotedBy int64, notes string) error {
	if r.fail.markPromoted {
		return ErrInjected
	}
	e, ok := r.st.enrollments[id]
	if !ok || e.DeletedAt != nil {
		return storage.ErrNotFound
	}
	e.PromotedAt = &promotedAt
	e.PromotedBy = &promotedBy
	e.PromotionNotes = notes
	r.st.enrollments[id] = e
	return nil
}

func (r memEnrollments) CountCompleted(_ context.Context, accountID int64) (int, error) {
	n := 0
	for _, e := range r.st.enrollments {
		if e.AccountID == accountID && e.Status == model.EnrollmentStatusCompleted && e.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

type memAttendance struct {
	st   *memState
	fail *failures
}

func (r memAttendance) Upsert(_ context.Context, record *model.AttendanceRecord) error {
	r.fail.upsertCalls++
	if r.fail.upsertOnCall != 0 && r.fail.upsertCalls == r.fail.upsertOnCall {
		return ErrInjected
	}
	key := attendanceKey{record.AccountID, record.SessionID}
	if existing, ok := r.st.attendance[key]; ok {
		record.ID = existing.ID
	} else {
		record.ID = r.st.id()
	}
	r.st.attendance[key] = *record
	return nil
}

func (r memAttendance) CountPresentInProgram(_ context.Context, accountID, programID int64) (int, error) {
	n := 0
	for key, rec := range r.st.attendance {
		if key.accountID != accountID || rec.Status != model.AttendanceStatusPresent {
			continue
		}
		if s, ok := r.st.sessions[key.sessionID]; ok && s.ProgramID == programID {
			n++
		}
	}
	return n, nil
}

type memSubmissions struct{ st *memState }

func (r memSubmissions) Create(_ context.Context, submission *model.ActivitySubmission) error {
	submission.ID = r.st.id()
	submission.CreatedAt = time.Now().UTC()
	r.st.submissions[submission.ID] = *submission
	return nil
}

func (r memSubmissions) GetByID(_ context.Context, id int64) (*model.ActivitySubmission, error) {
	s, ok := r.st.submissions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSubmissions) GetByIDForUpdate(ctx context.Context, id int64) (*model.ActivitySubmission, error) {
	return r.GetByID(ctx, id)
}

func (r memSubmissions) UpdateReview(_ context.Context, submission *model.ActivitySubmission) error {
	if _, ok := r.st.submissions[submission.ID]; !ok {
		return storage.ErrNotFound
	}
	r.st.submissions[submission.ID] = *submission
	return nil
}

func (r memSubmissions) ListByAccount(_ context.Context, accountID int64) ([]*model.ActivitySubmission, error) {
	var out []*model.ActivitySubmission
	for _, s := range r.st.submissions {
		if s.AccountID == accountID {
			s := s
			out = append(out, &s)
		}
	}
	// created_at DESC, id DESC
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ApprovedStats follows COUNT(*) and AVG(quality_score): unscored rows are
// counted but left out of the mean.
func (r memSubmissions) ApprovedStats(_ context.Context, accountID int64) (int, float64, error) {
	var (
		count  int
		scores []float64
	)
	for _, s := range r.st.submissions {
		if s.AccountID != accountID || s.Status != model.SubmissionStatusApproved {
			continue
		}
		count++
		if s.QualityScore != nil {
			scores = append(scores, *s.QualityScore)
		}
	}
	return count, policy.MeanScore(scores), nil
}

type memAudit struct{ st *memState }

func (r memAudit) Insert(_ context.Context, entry *model.AuditEntry) error {
	r.st.audit = append(r.st.audit, *entry)
	return nil
}
