package httpapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/service"
)

type onboardingRequest struct {
	Handle      string `json:"handle" validate:"required,min=3,max=30"`
	DisplayName string `json:"display_name" validate:"max=100"`
	AsGuest     bool   `json:"as_guest"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=member moderator admin"`
}

type promoteRequest struct {
	EnrollmentID int64  `json:"enrollment_id" validate:"required,gt=0"`
	Notes        string `json:"notes" validate:"max=1000"`
}

type attendanceMarkRequest struct {
	AccountID int64  `json:"account_id" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required"`
}

type attendanceRequest struct {
	Marks []attendanceMarkRequest `json:"marks" validate:"required,min=1,dive"`
}

func (r attendanceRequest) toMarks() []service.AttendanceMark {
	marks := make([]service.AttendanceMark, 0, len(r.Marks))
	for _, m := range r.Marks {
		marks = append(marks, service.AttendanceMark{
			AccountID: m.AccountID,
			Status:    model.AttendanceStatus(m.Status),
		})
	}
	return marks
}

type submissionRequest struct {
	Content string `json:"content" validate:"required"`
}

type reviewRequest struct {
	Approve      bool     `json:"approve"`
	QualityScore *float64 `json:"quality_score"`
}

type profileRequest struct {
	DisplayName    *string  `json:"display_name" validate:"omitempty,max=100"`
	AvatarURL      *string  `json:"avatar_url" validate:"omitempty,max=500"`
	Bio            *string  `json:"bio" validate:"omitempty,max=2000"`
	City           *string  `json:"city" validate:"omitempty,max=100"`
	Country        *string  `json:"country" validate:"omitempty,max=100"`
	Timezone       *string  `json:"timezone" validate:"omitempty,max=64"`
	LearningTracks []string `json:"learning_tracks" validate:"omitempty,max=20,dive,max=50"`
	Availability   *string  `json:"availability" validate:"omitempty,max=200"`
	GithubHandle   *string  `json:"github_handle" validate:"omitempty,max=100"`
	TwitterHandle  *string  `json:"twitter_handle" validate:"omitempty,max=100"`
	LinkedinHandle *string  `json:"linkedin_handle" validate:"omitempty,max=100"`
	Visibility     *string  `json:"profile_visibility" validate:"omitempty,oneof=public private"`
}

func (r profileRequest) toPatch() service.ProfilePatch {
	patch := service.ProfilePatch{
		DisplayName:    r.DisplayName,
		AvatarURL:      r.AvatarURL,
		Bio:            r.Bio,
		City:           r.City,
		Country:        r.Country,
		Timezone:       r.Timezone,
		LearningTracks: r.LearningTracks,
		Availability:   r.Availability,
		GithubHandle:   r.GithubHandle,
		TwitterHandle:  r.TwitterHandle,
		LinkedinHandle: r.LinkedinHandle,
	}
	if r.Visibility != nil {
		v := model.ProfileVisibility(*r.Visibility)
		patch.Visibility = &v
	}
	return patch
}

// bind parses the JSON body into dst and validates its tags.
func bind(c *fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation(apperr.CodeValidationFailed, "malformed request body").Wrap(err)
	}
	return v.Struct(dst)
}

// idParam reads a positive integer path parameter.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(apperr.CodeValidationFailed, "%s must be a positive integer", name)
	}
	return id, nil
}

func idQuery(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(apperr.CodeValidationFailed, "query %s must be a positive integer", name)
	}
	return id, nil
}
