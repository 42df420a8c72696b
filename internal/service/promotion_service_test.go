package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/storage/memstore"
	"github.com/Freeeeeet/membership_core/internal/policy"
)

type promotionFixture struct {
	store      *memstore.Store
	svc        *PromotionService
	sink       *captureSink
	admin      *model.Account
	guest      *model.Account
	program    *model.Program
	enrollment *model.ProgramEnrollment
}

func newPromotionFixture(t *testing.T, requireEligibility bool) *promotionFixture {
	store := memstore.New()
	logger := zaptest.NewLogger(t)
	recorder, sink := newTestRecorder(t)
	eligibility := NewEligibilityService(store, policy.DefaultThresholds, newTestMetrics(), logger)

	f := &promotionFixture{
		store: store,
		svc:   NewPromotionService(store, eligibility, recorder, newTestMetrics(), logger, requireEligibility),
		sink:  sink,
		admin: store.AddAccount(model.AccountStatusActive, model.RoleAdmin),
		guest: store.AddAccount(model.AccountStatusGuest, model.RoleMember),
	}
	f.program = store.AddProgram("go-101")
	f.enrollment = store.AddEnrollment(f.guest.ID, f.program.ID)
	return f
}

func (f *promotionFixture) makeEligible() {
	f.store.AddParticipation(f.guest.ID, f.program.ID, 5, 70, 75, 80)
}

func TestPromoteEligibleGuest(t *testing.T) {
	f := newPromotionFixture(t, false)
	f.makeEligible()

	result, err := f.svc.Promote(context.Background(), f.admin, f.guest.ID, f.enrollment.ID, " strong cohort ")
	require.NoError(t, err)

	assert.Equal(t, model.AccountStatusActive, result.Account.Status)
	assert.True(t, result.Eligibility.IsEligible)
	assert.Empty(t, result.Warning)

	assert.Equal(t, model.AccountStatusActive, f.store.Account(f.guest.ID).Status)
	stored := f.store.Enrollment(f.enrollment.ID)
	require.NotNil(t, stored.PromotedAt)
	require.NotNil(t, stored.PromotedBy)
	assert.Equal(t, f.admin.ID, *stored.PromotedBy)
	assert.Equal(t, "strong cohort", stored.PromotionNotes)

	require.Len(t, f.sink.entries, 1)
	assert.Equal(t, model.AuditActionPromoted, f.sink.entries[0].Action)
}

func TestPromoteIneligibleGuestIsAdvisoryByDefault(t *testing.T) {
	f := newPromotionFixture(t, false)
	f.store.AddParticipation(f.guest.ID, f.program.ID, 4, 80, 80, 80)

	result, err := f.svc.Promote(context.Background(), f.admin, f.guest.ID, f.enrollment.ID, "")
	require.NoError(t, err)

	assert.False(t, result.Eligibility.IsEligible)
	assert.Equal(t, []string{"need 1 more attended sessions"}, result.Eligibility.Reasons)
	assert.Contains(t, result.Warning, "need 1 more attended sessions")
	assert.Equal(t, model.AccountStatusActive, f.store.Account(f.guest.ID).Status)
}

func TestPromoteIneligibleGuestWhenEnforced(t *testing.T) {
	f := newPromotionFixture(t, true)

	_, err := f.svc.Promote(context.Background(), f.admin, f.guest.ID, f.enrollment.ID, "")

	assert.Equal(t, apperr.CodeNotEligible, apperr.CodeOf(err))
	assert.Equal(t, model.AccountStatusGuest, f.store.Account(f.guest.ID).Status)
	assert.Nil(t, f.store.Enrollment(f.enrollment.ID).PromotedAt)
	assert.Empty(t, f.sink.entries)
}

func TestPromoteActiveAccountIsConflict(t *testing.T) {
	f := newPromotionFixture(t, false)
	active := f.store.AddAccount(model.AccountStatusActive, model.RoleMember)
	enrollment := f.store.AddEnrollment(active.ID, f.program.ID)

	_, err := f.svc.Promote(context.Background(), f.admin, active.ID, enrollment.ID, "")

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeInvalidStatusForPromotion, apperr.CodeOf(err))
	assert.Nil(t, f.store.Enrollment(enrollment.ID).PromotedAt)
}

func TestPromoteIsAtomic(t *testing.T) {
	f := newPromotionFixture(t, false)
	f.makeEligible()
	f.store.FailMarkPromoted()

	_, err := f.svc.Promote(context.Background(), f.admin, f.guest.ID, f.enrollment.ID, "")

	require.ErrorIs(t, err, memstore.ErrInjected)
	assert.Equal(t, model.AccountStatusGuest, f.store.Account(f.guest.ID).Status, "status write must roll back")
	assert.Empty(t, f.sink.entries)
}

func TestPromoteRules(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *promotionFixture) (actor *model.Account, accountID, enrollmentID int64)
		wantKind apperr.Kind
		wantCode apperr.Code
	}{
		{
			name: "self promotion",
			setup: func(f *promotionFixture) (*model.Account, int64, int64) {
				return f.guest, f.guest.ID, f.enrollment.ID
			},
			wantKind: apperr.KindForbidden,
			wantCode: apperr.CodeSelfModification,
		},
		{
			name: "member actor",
			setup: func(f *promotionFixture) (*model.Account, int64, int64) {
				member := f.store.AddAccount(model.AccountStatusActive, model.RoleMember)
				return member, f.guest.ID, f.enrollment.ID
			},
			wantKind: apperr.KindForbidden,
			wantCode: apperr.CodeInsufficientRole,
		},
		{
			name: "enrollment of another account",
			setup: func(f *promotionFixture) (*model.Account, int64, int64) {
				other := f.store.AddAccount(model.AccountStatusGuest, model.RoleMember)
				enrollment := f.store.AddEnrollment(other.ID, f.program.ID)
				return f.admin, f.guest.ID, enrollment.ID
			},
			wantKind: apperr.KindNotFound,
			wantCode: apperr.CodeNotFound,
		},
		{
			name: "missing enrollment",
			setup: func(f *promotionFixture) (*model.Account, int64, int64) {
				return f.admin, f.guest.ID, 999
			},
			wantKind: apperr.KindNotFound,
			wantCode: apperr.CodeNotFound,
		},
		{
			name: "missing account",
			setup: func(f *promotionFixture) (*model.Account, int64, int64) {
				return f.admin, 999, f.enrollment.ID
			},
			wantKind: apperr.KindNotFound,
			wantCode: apperr.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPromotionFixture(t, false)
			f.makeEligible()
			actor, accountID, enrollmentID := tt.setup(f)

			_, err := f.svc.Promote(context.Background(), actor, accountID, enrollmentID, "")

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
			assert.Equal(t, model.AccountStatusGuest, f.store.Account(f.guest.ID).Status)
		})
	}
}

func TestPromoteTwiceOnSameEnrollment(t *testing.T) {
	f := newPromotionFixture(t, false)
	f.makeEligible()

	_, err := f.svc.Promote(context.Background(), f.admin, f.guest.ID, f.enrollment.ID, "")
	require.NoError(t, err)

	// вернуть в guest напрямую, чтобы проверить одноразовость отметки
	a := f.store.Account(f.guest.ID)
	a.Status = model.AccountStatusGuest
	f.store.PutAccount(a)

	_, err = f.svc.Promote(context.Background(), f.admin, f.guest.ID, f.enrollment.ID, "")
	assert.Equal(t, apperr.CodeAlreadyPromoted, apperr.CodeOf(err))
}

func TestModeratorCanPromote(t *testing.T) {
	f := newPromotionFixture(t, false)
	f.makeEligible()
	moderator := f.store.AddAccount(model.AccountStatusActive, model.RoleModerator)

	_, err := f.svc.Promote(context.Background(), moderator, f.guest.ID, f.enrollment.ID, "")
	require.NoError(t, err)
}
