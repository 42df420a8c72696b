package policy

import (
	"strings"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
)

type transitionRule struct {
	promotionOnly bool
}

// successors is the administrative transition table. rejected and banned are
// terminal. guest and incomplete are entered through onboarding, see
// CheckOnboarding.
var successors = map[model.AccountStatus]map[model.AccountStatus]transitionRule{
	model.AccountStatusIncomplete: {
		model.AccountStatusPending: {},
	},
	model.AccountStatusPending: {
		model.AccountStatusActive:   {},
		model.AccountStatusRejected: {},
	},
	model.AccountStatusGuest: {
		model.AccountStatusActive: {promotionOnly: true},
	},
	model.AccountStatusActive: {
		model.AccountStatusSuspended: {},
		model.AccountStatusBanned:    {},
	},
	model.AccountStatusSuspended: {
		model.AccountStatusActive: {},
	},
}

// IsSuccessor reports whether to is a declared successor of from,
// promotion-only edges included.
func IsSuccessor(from, to model.AccountStatus) bool {
	_, ok := successors[from][to]
	return ok
}

// Successors lists the declared successors of a status in stable order.
func Successors(from model.AccountStatus) []model.AccountStatus {
	var out []model.AccountStatus
	for _, st := range model.AllAccountStatuses {
		if IsSuccessor(from, st) {
			out = append(out, st)
		}
	}
	return out
}

func describeStatuses(statuses []model.AccountStatus) string {
	if len(statuses) == 0 {
		return "none"
	}
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// CheckTransition validates moving an account from one status to another.
// Staying in the same status is a conflict, not an illegal edge.
func CheckTransition(from, to model.AccountStatus, viaPromotion bool) error {
	if _, ok := model.ParseAccountStatus(string(to)); !ok {
		return apperr.Validation(apperr.CodeInvalidTransition, "unknown account status %q", to)
	}
	if from == to {
		return apperr.Conflict(apperr.CodeAlreadyInStatus, "account is already %s", to)
	}

	rule, ok := successors[from][to]
	if !ok {
		return apperr.Validation(apperr.CodeInvalidTransition, "cannot move account from %s to %s (allowed: %s)", from, to, describeStatuses(Successors(from)))
	}
	if rule.promotionOnly && !viaPromotion {
		return apperr.Validation(apperr.CodeInvalidTransition, "%s accounts become %s only through promotion", from, to)
	}
	return nil
}

// ReasonRequired reports whether moving into status needs a written reason.
func ReasonRequired(to model.AccountStatus) bool {
	return to == model.AccountStatusSuspended || to == model.AccountStatusBanned
}

// CheckOnboarding validates the owner-driven exit from incomplete.
func CheckOnboarding(from, to model.AccountStatus) error {
	if from != model.AccountStatusIncomplete {
		return apperr.Conflict(apperr.CodeAlreadyInStatus, "onboarding already completed")
	}
	if to != model.AccountStatusPending && to != model.AccountStatusGuest {
		return apperr.Validation(apperr.CodeInvalidTransition, "onboarding ends in pending or guest, not %s", to)
	}
	return nil
}
