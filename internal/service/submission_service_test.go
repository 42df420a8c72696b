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

func score(v float64) *float64 { return &v }

func TestSubmissionReviewFlow(t *testing.T) {
	store := memstore.New()
	svc := NewSubmissionService(store, newTestMetrics(), zaptest.NewLogger(t))
	guest := store.AddAccount(model.AccountStatusGuest, model.RoleMember)
	moderator := store.AddAccount(model.AccountStatusActive, model.RoleModerator)
	activity := store.AddActivity(500)
	ctx := context.Background()

	submission, err := svc.Submit(ctx, guest, activity.ID, "  my solution  ")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusPending, submission.Status)
	assert.Equal(t, "my solution", submission.Content)

	started, err := svc.StartReview(ctx, moderator, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusUnderReview, started.Status)

	reviewed, err := svc.Review(ctx, moderator, submission.ID, ReviewInput{Approve: true, QualityScore: score(82.5)})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusApproved, reviewed.Status)
	assert.Equal(t, int64(500), reviewed.RewardAmount)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, moderator.ID, *reviewed.ReviewedBy)

	_, err = svc.Review(ctx, moderator, submission.ID, ReviewInput{Approve: false})
	assert.Equal(t, apperr.CodeAlreadyReviewed, apperr.CodeOf(err))

	own, err := svc.ListOwn(ctx, guest)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, model.SubmissionStatusApproved, own[0].Status)
}

func TestReviewRules(t *testing.T) {
	tests := []struct {
		name      string
		actorRole model.Role
		selfOwned bool
		in        ReviewInput
		wantCode  apperr.Code
	}{
		{"approve without score", model.RoleModerator, false, ReviewInput{Approve: true}, apperr.CodeInvalidQualityScore},
		{"score above range", model.RoleModerator, false, ReviewInput{Approve: true, QualityScore: score(101)}, apperr.CodeInvalidQualityScore},
		{"negative score", model.RoleAdmin, false, ReviewInput{QualityScore: score(-1)}, apperr.CodeInvalidQualityScore},
		{"member reviewer", model.RoleMember, false, ReviewInput{Approve: true, QualityScore: score(90)}, apperr.CodeInsufficientRole},
		{"own submission", model.RoleModerator, true, ReviewInput{Approve: true, QualityScore: score(90)}, apperr.CodeSelfModification},
		{"reject without score", model.RoleModerator, false, ReviewInput{Approve: false}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			svc := NewSubmissionService(store, newTestMetrics(), zaptest.NewLogger(t))
			actor := store.AddAccount(model.AccountStatusActive, tt.actorRole)
			author := store.AddAccount(model.AccountStatusActive, model.RoleMember)
			if tt.selfOwned {
				author = actor
			}
			activity := store.AddActivity(100)

			submission, err := svc.Submit(context.Background(), author, activity.ID, "work")
			require.NoError(t, err)

			_, err = svc.Review(context.Background(), actor, submission.ID, tt.in)

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, model.SubmissionStatusRejected, store.Submission(submission.ID).Status)
				assert.Zero(t, store.Submission(submission.ID).RewardAmount)
				return
			}
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
			assert.Equal(t, model.SubmissionStatusPending, store.Submission(submission.ID).Status)
		})
	}
}

func TestStartReviewOnlyFromPending(t *testing.T) {
	store := memstore.New()
	svc := NewSubmissionService(store, newTestMetrics(), zaptest.NewLogger(t))
	moderator := store.AddAccount(model.AccountStatusActive, model.RoleModerator)
	author := store.AddAccount(model.AccountStatusActive, model.RoleMember)
	activity := store.AddActivity(0)
	ctx := context.Background()

	submission, err := svc.Submit(ctx, author, activity.ID, "work")
	require.NoError(t, err)
	_, err = svc.StartReview(ctx, moderator, submission.ID)
	require.NoError(t, err)

	_, err = svc.StartReview(ctx, moderator, submission.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.StartReview(ctx, moderator, 999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSubmitRules(t *testing.T) {
	store := memstore.New()
	svc := NewSubmissionService(store, newTestMetrics(), zaptest.NewLogger(t))
	pending := store.AddAccount(model.AccountStatusPending, model.RoleMember)
	active := store.AddAccount(model.AccountStatusActive, model.RoleMember)
	activity := store.AddActivity(0)
	ctx := context.Background()

	_, err := svc.Submit(ctx, pending, activity.ID, "work")
	assert.Equal(t, apperr.CodeAccountInactive, apperr.CodeOf(err))

	_, err = svc.Submit(ctx, active, activity.ID, "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Submit(ctx, active, 999, "work")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
