package memstore

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/storage"
)

var _ storage.Store = (*Store)(nil)

var seedTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// AddAccount stores an account with external id "ext-<id>".
func (s *Store) AddAccount(status model.AccountStatus, role model.Role) *model.Account {
	id := s.st.id()
	a := model.Account{
		ID:         id,
		ExternalID: fmt.Sprintf("ext-%d", id),
		Status:     status,
		Role:       role,
		CreatedAt:  seedTime,
		UpdatedAt:  seedTime,
	}
	if status == model.AccountStatusRejected {
		deleted := seedTime
		a.DeletedAt = &deleted
	}
	s.st.accounts[a.ID] = a
	return &a
}

// PutAccount overwrites a stored account as is.
func (s *Store) PutAccount(a model.Account) {
	s.st.accounts[a.ID] = a
}

// Account returns the stored row, soft-deleted ones included.
func (s *Store) Account(id int64) model.Account {
	return s.st.accounts[id]
}

// PutProfile stores a profile, assigning an id when it has none.
func (s *Store) PutProfile(p model.Profile) {
	if p.ID == 0 {
		p.ID = s.st.id()
	}
	s.st.profiles[p.AccountID] = p
}

func (s *Store) Profile(accountID int64) (model.Profile, bool) {
	p, ok := s.st.profiles[accountID]
	return p, ok
}

func (s *Store) AddProgram(slug string) *model.Program {
	p := model.Program{ID: s.st.id(), Slug: slug, Title: slug, CreatedAt: seedTime}
	s.st.programs[p.ID] = p
	return &p
}

func (s *Store) AddSession(programID int64) *model.Session {
	sess := model.Session{ID: s.st.id(), ProgramID: programID, Title: "session", StartsAt: seedTime}
	s.st.sessions[sess.ID] = sess
	return &sess
}

func (s *Store) AddActivity(reward int64) *model.Activity {
	a := model.Activity{ID: s.st.id(), Title: "activity", Reward: reward, CreatedAt: seedTime}
	s.st.activities[a.ID] = a
	return &a
}

func (s *Store) AddEnrollment(accountID, programID int64) *model.ProgramEnrollment {
	e := model.ProgramEnrollment{
		ID:         s.st.id(),
		AccountID:  accountID,
		ProgramID:  programID,
		Status:     model.EnrollmentStatusEnrolled,
		EnrolledAt: seedTime,
	}
	s.st.enrollments[e.ID] = e
	return &e
}

func (s *Store) Enrollment(id int64) model.ProgramEnrollment {
	return s.st.enrollments[id]
}

func (s *Store) EnrollmentCount() int {
	return len(s.st.enrollments)
}

// AddParticipation records attended sessions of the program and approved
// submissions with the given quality scores.
func (s *Store) AddParticipation(accountID, programID int64, attended int, scores ...float64) {
	for i := 0; i < attended; i++ {
		sess := s.AddSession(programID)
		s.st.attendance[attendanceKey{accountID, sess.ID}] = model.AttendanceRecord{
			ID:        s.st.id(),
			AccountID: accountID,
			SessionID: sess.ID,
			Status:    model.AttendanceStatusPresent,
			MarkedAt:  seedTime,
		}
	}
	for _, score := range scores {
		id := s.st.id()
		s.st.submissions[id] = model.ActivitySubmission{
			ID:           id,
			AccountID:    accountID,
			Status:       model.SubmissionStatusApproved,
			QualityScore: &score,
			CreatedAt:    seedTime,
		}
	}
}

func (s *Store) AttendanceRecordOf(accountID, sessionID int64) (model.AttendanceRecord, bool) {
	r, ok := s.st.attendance[attendanceKey{accountID, sessionID}]
	return r, ok
}

func (s *Store) AttendanceCount() int {
	return len(s.st.attendance)
}

func (s *Store) Submission(id int64) model.ActivitySubmission {
	return s.st.submissions[id]
}

// AuditEntries returns what went through AuditRepository.Insert.
func (s *Store) AuditEntries() []model.AuditEntry {
	return append([]model.AuditEntry(nil), s.st.audit...)
}

// FailMarkPromoted makes every MarkPromoted call return ErrInjected.
func (s *Store) FailMarkPromoted() {
	s.fail.markPromoted = true
}

// FailUpsertOnCall makes the n-th attendance upsert (1-based) return ErrInjected.
func (s *Store) FailUpsertOnCall(n int) {
	s.fail.upsertOnCall = n
	s.fail.upsertCalls = 0
}
