// Package apperr defines the typed errors returned by every membership
// component. The HTTP boundary maps Kind to a status and Code to the
// machine-readable error code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Code is a stable machine-readable sub-code.
type Code string

const (
	CodeValidationFailed    Code = "VALIDATION_FAILED"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeReasonRequired      Code = "REASON_REQUIRED"
	CodeInvalidQualityScore Code = "INVALID_QUALITY_SCORE"

	CodeUnauthorized Code = "UNAUTHORIZED"

	CodeSelfModification      Code = "SELF_MODIFICATION"
	CodeEscalationDenied      Code = "ESCALATION_DENIED"
	CodeBanRequiresAdmin      Code = "BAN_REQUIRES_ADMIN"
	CodeAdminImmutable        Code = "ADMIN_IMMUTABLE"
	CodeInsufficientRole      Code = "INSUFFICIENT_ROLE"
	CodeGuestAccessRestricted Code = "GUEST_ACCESS_RESTRICTED"
	CodeAccountInactive       Code = "ACCOUNT_INACTIVE"

	CodeAlreadyInStatus           Code = "ALREADY_IN_STATUS"
	CodeAlreadyInRole             Code = "ALREADY_IN_ROLE"
	CodeInvalidStatusForPromotion Code = "INVALID_STATUS_FOR_PROMOTION"
	CodeAlreadyPromoted           Code = "ALREADY_PROMOTED"
	CodeNotEligible               Code = "NOT_ELIGIBLE"
	CodeDuplicateEnrollment       Code = "DUPLICATE_ENROLLMENT"
	CodeAlreadyReviewed           Code = "ALREADY_REVIEWED"
	CodeHandleTaken               Code = "HANDLE_TAKEN"

	CodeNotFound Code = "NOT_FOUND"
)

// Error is the typed error shared by all components.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and code, so callers can write
// errors.Is(err, apperr.Forbidden(apperr.CodeSelfModification, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func newError(kind Kind, code Code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code Code, format string, args ...any) *Error {
	return newError(KindValidation, code, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, CodeUnauthorized, format, args...)
}

func Forbidden(code Code, format string, args ...any) *Error {
	return newError(KindForbidden, code, format, args...)
}

func Conflict(code Code, format string, args ...any) *Error {
	return newError(KindConflict, code, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, CodeNotFound, format, args...)
}

// Wrap attaches a cause to a typed error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in the chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
