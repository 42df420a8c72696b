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
)

func TestMarkSession(t *testing.T) {
	store := memstore.New()
	svc := NewAttendanceService(store, newTestMetrics(), zaptest.NewLogger(t))
	admin := store.AddAccount(model.AccountStatusActive, model.RoleAdmin)
	alice := store.AddAccount(model.AccountStatusGuest, model.RoleMember)
	bob := store.AddAccount(model.AccountStatusActive, model.RoleMember)
	program := store.AddProgram("go-101")
	session := store.AddSession(program.ID)

	records, err := svc.MarkSession(context.Background(), admin, session.ID, []AttendanceMark{
		{AccountID: alice.ID, Status: model.AttendanceStatusPresent},
		{AccountID: bob.ID, Status: model.AttendanceStatusAbsent},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, admin.ID, records[0].MarkedBy)

	// повторная отметка перезаписывает запись
	_, err = svc.MarkSession(context.Background(), admin, session.ID, []AttendanceMark{
		{AccountID: bob.ID, Status: model.AttendanceStatusExcused},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.AttendanceCount())
	record, ok := store.AttendanceRecordOf(bob.ID, session.ID)
	require.True(t, ok)
	assert.Equal(t, model.AttendanceStatusExcused, record.Status)
}

func TestMarkSessionIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name     string
		marks    func(alice, bob *model.Account) []AttendanceMark
		failOn   int
		wantKind apperr.Kind
	}{
		{
			name: "unknown account in batch",
			marks: func(alice, _ *model.Account) []AttendanceMark {
				return []AttendanceMark{
					{AccountID: alice.ID, Status: model.AttendanceStatusPresent},
					{AccountID: 999, Status: model.AttendanceStatusPresent},
				}
			},
			wantKind: apperr.KindNotFound,
		},
		{
			name: "unknown status in batch",
			marks: func(alice, bob *model.Account) []AttendanceMark {
				return []AttendanceMark{
					{AccountID: alice.ID, Status: model.AttendanceStatusPresent},
					{AccountID: bob.ID, Status: model.AttendanceStatus("late")},
				}
			},
			wantKind: apperr.KindValidation,
		},
		{
			name: "account marked twice",
			marks: func(alice, _ *model.Account) []AttendanceMark {
				return []AttendanceMark{
					{AccountID: alice.ID, Status: model.AttendanceStatusPresent},
					{AccountID: alice.ID, Status: model.AttendanceStatusAbsent},
				}
			},
			wantKind: apperr.KindValidation,
		},
		{
			name: "store fails on second write",
			marks: func(alice, bob *model.Account) []AttendanceMark {
				return []AttendanceMark{
					{AccountID: alice.ID, Status: model.AttendanceStatusPresent},
					{AccountID: bob.ID, Status: model.AttendanceStatusPresent},
				}
			},
			failOn:   2,
			wantKind: apperr.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			svc := NewAttendanceService(store, newTestMetrics(), zaptest.NewLogger(t))
			admin := store.AddAccount(model.AccountStatusActive, model.RoleAdmin)
			alice := store.AddAccount(model.AccountStatusActive, model.RoleMember)
			bob := store.AddAccount(model.AccountStatusActive, model.RoleMember)
			session := store.AddSession(store.AddProgram("go-101").ID)
			store.FailUpsertOnCall(tt.failOn)

			_, err := svc.MarkSession(context.Background(), admin, session.ID, tt.marks(alice, bob))

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Zero(t, store.AttendanceCount())
		})
	}
}

func TestMarkSessionRequiresAdmin(t *testing.T) {
	store := memstore.New()
	svc := NewAttendanceService(store, newTestMetrics(), zaptest.NewLogger(t))
	moderator := store.AddAccount(model.AccountStatusActive, model.RoleModerator)
	member := store.AddAccount(model.AccountStatusActive, model.RoleMember)
	session := store.AddSession(store.AddProgram("go-101").ID)

	_, err := svc.MarkSession(context.Background(), moderator, session.ID, []AttendanceMark{
		{AccountID: member.ID, Status: model.AttendanceStatusPresent},
	})
	assert.Equal(t, apperr.CodeInsufficientRole, apperr.CodeOf(err))
}

func TestMarkSessionUnknownSession(t *testing.T) {
	store := memstore.New()
	svc := NewAttendanceService(store, newTestMetrics(), zaptest.NewLogger(t))
	admin := store.AddAccount(model.AccountStatusActive, model.RoleAdmin)
	member := store.AddAccount(model.AccountStatusActive, model.RoleMember)

	_, err := svc.MarkSession(context.Background(), admin, 999, []AttendanceMark{
		{AccountID: member.ID, Status: model.AttendanceStatusPresent},
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
