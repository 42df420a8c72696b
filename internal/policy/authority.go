package policy

import (
	"fmt"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
)

type MutationKind int

const (
	MutationStatus MutationKind = iota
	MutationRole
	MutationPromotion
)

// Mutation describes an administrative change requested against an account.
type Mutation struct {
	Kind      MutationKind
	NewStatus model.AccountStatus // MutationStatus
	NewRole   model.Role          // MutationRole
}

func StatusChange(to model.AccountStatus) Mutation {
	return Mutation{Kind: MutationStatus, NewStatus: to}
}

func RoleChange(to model.Role) Mutation {
	return Mutation{Kind: MutationRole, NewRole: to}
}

func Promotion() Mutation {
	return Mutation{Kind: MutationPromotion, NewStatus: model.AccountStatusActive}
}

// Denial is a typed refusal. A nil *Denial means allowed.
type Denial struct {
	Code   apperr.Code
	Reason string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Reason)
}

// Err converts the denial into the forbidden error returned to callers.
func (d *Denial) Err() error {
	if d == nil {
		return nil
	}
	return apperr.Forbidden(d.Code, "%s", d.Reason)
}

// CheckActor runs every rule that depends only on the acting account and the
// target id. Services call it before loading the target so that a caller
// without authority learns nothing about whether the target exists.
func CheckActor(actor *model.Account, targetID int64, m Mutation) *Denial {
	if actor.ID == targetID {
		return &Denial{Code: apperr.CodeSelfModification, Reason: "you cannot change your own role or status"}
	}
	if d := checkStanding(actor); d != nil {
		return d
	}
	if !actor.Role.AtLeast(model.RoleModerator) {
		return &Denial{Code: apperr.CodeInsufficientRole, Reason: "only moderators and admins can change accounts"}
	}

	switch m.Kind {
	case MutationRole:
		if !actor.Role.AtLeast(m.NewRole) {
			return &Denial{Code: apperr.CodeEscalationDenied, Reason: fmt.Sprintf("%s cannot grant the %s role", actor.Role, m.NewRole)}
		}
	case MutationStatus:
		if m.NewStatus == model.AccountStatusBanned && !actor.Role.AtLeast(model.RoleAdmin) {
			return &Denial{Code: apperr.CodeBanRequiresAdmin, Reason: "only admins can ban accounts"}
		}
	}
	return nil
}

// CheckTarget runs the rules that need the stored target account.
func CheckTarget(target *model.Account) *Denial {
	if target.Role == model.RoleAdmin {
		return &Denial{Code: apperr.CodeAdminImmutable, Reason: "admin accounts cannot be modified"}
	}
	return nil
}

// RequireRole denies actors below the given role or not in good standing.
func RequireRole(actor *model.Account, role model.Role) *Denial {
	if d := checkStanding(actor); d != nil {
		return d
	}
	if !actor.Role.AtLeast(role) {
		return &Denial{Code: apperr.CodeInsufficientRole, Reason: fmt.Sprintf("requires the %s role", role)}
	}
	return nil
}

// checkStanding: suspended or banned staff keep their role but lose authority.
func checkStanding(actor *model.Account) *Denial {
	if actor.Status != model.AccountStatusActive {
		return &Denial{Code: apperr.CodeAccountInactive, Reason: fmt.Sprintf("account status %s has no administrative authority", actor.Status)}
	}
	return nil
}
