package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/storage/memstore"
)

func newAccountService(t *testing.T, store *memstore.Store) (*AccountService, *captureSink) {
	recorder, sink := newTestRecorder(t)
	return NewAccountService(store, recorder, newTestMetrics(), zaptest.NewLogger(t)), sink
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name      string
		actorRole model.Role
		from      model.AccountStatus
		to        model.AccountStatus
		reason    string
		wantKind  apperr.Kind
		wantCode  apperr.Code
	}{
		{"approve application", model.RoleModerator, model.AccountStatusPending, model.AccountStatusActive, "", 0, ""},
		{"reject application", model.RoleAdmin, model.AccountStatusPending, model.AccountStatusRejected, "", 0, ""},
		{"suspend with reason", model.RoleModerator, model.AccountStatusActive, model.AccountStatusSuspended, "spam", 0, ""},
		{"reinstate", model.RoleModerator, model.AccountStatusSuspended, model.AccountStatusActive, "", 0, ""},
		{"ban by admin", model.RoleAdmin, model.AccountStatusActive, model.AccountStatusBanned, "abuse", 0, ""},
		{"suspend without reason", model.RoleModerator, model.AccountStatusActive, model.AccountStatusSuspended, "  ", apperr.KindValidation, apperr.CodeReasonRequired},
		{"ban by moderator", model.RoleModerator, model.AccountStatusActive, model.AccountStatusBanned, "abuse", apperr.KindForbidden, apperr.CodeBanRequiresAdmin},
		{"member actor", model.RoleMember, model.AccountStatusPending, model.AccountStatusActive, "", apperr.KindForbidden, apperr.CodeInsufficientRole},
		{"not a successor", model.RoleAdmin, model.AccountStatusBanned, model.AccountStatusActive, "", apperr.KindValidation, apperr.CodeInvalidTransition},
		{"guest needs promotion", model.RoleAdmin, model.AccountStatusGuest, model.AccountStatusActive, "", apperr.KindValidation, apperr.CodeInvalidTransition},
		{"same status", model.RoleAdmin, model.AccountStatusActive, model.AccountStatusActive, "", apperr.KindConflict, apperr.CodeAlreadyInStatus},
		{"unknown status", model.RoleAdmin, model.AccountStatusActive, model.AccountStatus("frozen"), "", apperr.KindValidation, apperr.CodeInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			svc, sink := newAccountService(t, store)
			actor := store.AddAccount(model.AccountStatusActive, tt.actorRole)
			target := store.AddAccount(tt.from, model.RoleMember)

			updated, err := svc.Transition(context.Background(), actor, target.ID, tt.to, tt.reason)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
				assert.Equal(t, tt.from, store.Account(target.ID).Status, "status must not change on error")
				assert.Empty(t, sink.entries)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			assert.Equal(t, tt.to, store.Account(target.ID).Status)
			require.Len(t, sink.entries, 1)
			assert.Equal(t, model.AuditActionStatusChanged, sink.entries[0].Action)
			assert.Equal(t, string(tt.from), sink.entries[0].OldValue)
			assert.Equal(t, string(tt.to), sink.entries[0].NewValue)
		})
	}
}

func TestTransitionSelfModification(t *testing.T) {
	store := memstore.New()
	svc, _ := newAccountService(t, store)
	admin := store.AddAccount(model.AccountStatusActive, model.RoleAdmin)

	for _, to := range model.AllAccountStatuses {
		_, err := svc.Transition(context.Background(), admin, admin.ID, to, "reason")
		require.Error(t, err)
		assert.Equal(t, apperr.CodeSelfModification, apperr.CodeOf(err))
	}
	assert.Equal(t, model.AccountStatusActive, store.Account(admin.ID).Status)
}

func TestTransitionAdminTargetImmutable(t *testing.T) {
	store := memstore.New()
	svc, _ := newAccountService(t, store)
	actor := store.AddAccount(model.AccountStatusActive, model.RoleAdmin)
	target := store.AddAccount(model.AccountStatusActive, model.RoleAdmin)

	_, err := svc.Transition(context.Background(), actor, target.ID, model.AccountStatusSuspended, "reason")

	assert.True(t, errors.Is(err, apperr.Forbidden(apperr.CodeAdminImmutable, "")))
	assert.Equal(t, model.AccountStatusActive, store.Account(target.ID).Status)
}

func TestTransitionRejectSoftDeletes(t *testing.T) {
	store := memstore.New()
	svc, _ := newAccountService(t, store)
	actor := store.AddAccount(model.AccountStatusActive, model.RoleModerator)
	target := store.AddAccount(model.AccountStatusPending, model.RoleMember)

	_, err := svc.Transition(context.Background(), actor, target.ID, model.AccountStatusRejected, "")
	require.NoError(t, err)

	assert.NotNil(t, store.Account(target.ID).DeletedAt)

	_, err = svc.Transition(context.Background(), actor, target.ID, model.AccountStatusActive, "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTransitionUnknownTarget(t *testing.T) {
	store := memstore.New()
	svc, _ := newAccountService(t, store)
	actor := store.AddAccount(model.AccountStatusActive, model.RoleAdmin)

	_, err := svc.Transition(context.Background(), actor, 999, model.AccountStatusActive, "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTransitionDeniedCallerLearnsNothingAboutTarget(t *testing.T) {
	store := memstore.New()
	svc, _ := newAccountService(t, store)
	member := store.AddAccount(model.AccountStatusActive, model.RoleMember)
	existing := store.AddAccount(model.AccountStatusPending, model.RoleMember)

	_, errExisting := svc.Transition(context.Background(), member, existing.ID, model.AccountStatusActive, "")
	_, errMissing := svc.Transition(context.Background(), member, 999, model.AccountStatusActive, "")

	assert.Equal(t, apperr.CodeOf(errExisting), apperr.CodeOf(errMissing))
	assert.Equal(t, errExisting.Error(), errMissing.Error())
}

func TestChangeRole(t *testing.T) {
	tests := []struct {
		name       string
		actorRole  model.Role
		targetRole model.Role
		newRole    model.Role
		wantCode   apperr.Code
	}{
		{"admin grants moderator", model.RoleAdmin, model.RoleMember, model.RoleModerator, ""},
		{"admin grants admin", model.RoleAdmin, model.RoleModerator, model.RoleAdmin, ""},
		{"moderator grants moderator", model.RoleModerator, model.RoleMember, model.RoleModerator, ""},
		{"moderator demotes moderator", model.RoleModerator, model.RoleModerator, model.RoleMember, ""},
		{"moderator escalates moderator to admin", model.RoleModerator, model.RoleModerator, model.RoleAdmin, apperr.CodeEscalationDenied},
		{"member grants anything", model.RoleMember, model.RoleMember, model.RoleModerator, apperr.CodeInsufficientRole},
		{"admin demotes admin", model.RoleAdmin, model.RoleAdmin, model.RoleMember, apperr.CodeAdminImmutable},
		{"unchanged role", model.RoleAdmin, model.RoleMember, model.RoleMember, apperr.CodeAlreadyInRole},
		{"unknown role", model.RoleAdmin, model.RoleMember, model.Role("owner"), apperr.CodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			svc, sink := newAccountService(t, store)
			actor := store.AddAccount(model.AccountStatusActive, tt.actorRole)
			target := store.AddAccount(model.AccountStatusActive, tt.targetRole)

			_, err := svc.ChangeRole(context.Background(), actor, target.ID, tt.newRole)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
				assert.Equal(t, tt.targetRole, store.Account(target.ID).Role, "no write on denial")
				assert.Empty(t, sink.entries)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.newRole, store.Account(target.ID).Role)
			require.Len(t, sink.entries, 1)
			assert.Equal(t, model.AuditActionRoleChanged, sink.entries[0].Action)
		})
	}
}

func TestCompleteOnboarding(t *testing.T) {
	t.Run("membership application", func(t *testing.T) {
		store := memstore.New()
		svc, sink := newAccountService(t, store)
		owner := store.AddAccount(model.AccountStatusIncomplete, model.RoleMember)

		updated, err := svc.CompleteOnboarding(context.Background(), owner, OnboardingInput{Handle: " Ada_L ", DisplayName: "Ada"})
		require.NoError(t, err)

		assert.Equal(t, model.AccountStatusPending, updated.Status)
		stored := store.Account(owner.ID)
		assert.Equal(t, "ada_l", stored.HandleOrEmpty())
		profile, ok := store.Profile(owner.ID)
		require.True(t, ok)
		assert.Equal(t, "Ada", profile.DisplayName)
		assert.Equal(t, model.ProfileVisibilityPublic, profile.Visibility)
		require.Len(t, sink.entries, 1)
		assert.Equal(t, model.AuditActionOnboarded, sink.entries[0].Action)
	})

	t.Run("guest track", func(t *testing.T) {
		store := memstore.New()
		svc, _ := newAccountService(t, store)
		owner := store.AddAccount(model.AccountStatusIncomplete, model.RoleMember)

		updated, err := svc.CompleteOnboarding(context.Background(), owner, OnboardingInput{Handle: "guest_one", AsGuest: true})
		require.NoError(t, err)
		assert.Equal(t, model.AccountStatusGuest, updated.Status)
	})

	t.Run("handle taken", func(t *testing.T) {
		store := memstore.New()
		svc, _ := newAccountService(t, store)
		first := store.AddAccount(model.AccountStatusIncomplete, model.RoleMember)
		second := store.AddAccount(model.AccountStatusIncomplete, model.RoleMember)

		_, err := svc.CompleteOnboarding(context.Background(), first, OnboardingInput{Handle: "taken"})
		require.NoError(t, err)

		_, err = svc.CompleteOnboarding(context.Background(), second, OnboardingInput{Handle: "taken"})
		assert.Equal(t, apperr.CodeHandleTaken, apperr.CodeOf(err))
		assert.Equal(t, model.AccountStatusIncomplete, store.Account(second.ID).Status)
		assert.Nil(t, store.Account(second.ID).Handle)
	})

	t.Run("already onboarded", func(t *testing.T) {
		store := memstore.New()
		svc, _ := newAccountService(t, store)
		owner := store.AddAccount(model.AccountStatusActive, model.RoleMember)

		_, err := svc.CompleteOnboarding(context.Background(), owner, OnboardingInput{Handle: "late"})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("invalid handle", func(t *testing.T) {
		store := memstore.New()
		svc, _ := newAccountService(t, store)
		owner := store.AddAccount(model.AccountStatusIncomplete, model.RoleMember)

		_, err := svc.CompleteOnboarding(context.Background(), owner, OnboardingInput{Handle: "no spaces!"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestInactiveStaffCannotChangeAccounts(t *testing.T) {
	store := memstore.New()
	svc, sink := newAccountService(t, store)
	bannedModerator := store.AddAccount(model.AccountStatusBanned, model.RoleModerator)
	suspendedAdmin := store.AddAccount(model.AccountStatusSuspended, model.RoleAdmin)
	member := store.AddAccount(model.AccountStatusActive, model.RoleMember)

	_, err := svc.Transition(context.Background(), bannedModerator, member.ID, model.AccountStatusSuspended, "spam")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeAccountInactive, apperr.CodeOf(err))

	_, err = svc.ChangeRole(context.Background(), suspendedAdmin, member.ID, model.RoleModerator)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAccountInactive, apperr.CodeOf(err))

	stored := store.Account(member.ID)
	assert.Equal(t, model.AccountStatusActive, stored.Status)
	assert.Equal(t, model.RoleMember, stored.Role)
	assert.Empty(t, sink.entries)
}
