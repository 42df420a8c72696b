package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Freeeeeet/membership_core/internal/model"
	"github.com/Freeeeeet/membership_core/internal/service"
)

// register создаёт аккаунт для предъявленной личности или возвращает существующий
func (s *Server) register(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	account, created, err := s.identity.Register(c.UserContext(), token)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return success(c, status, account)
}

func (s *Server) completeOnboarding(c *fiber.Ctx) error {
	var req onboardingRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	account, err := s.accounts.CompleteOnboarding(c.UserContext(), currentAccount(c), service.OnboardingInput{
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		AsGuest:     req.AsGuest,
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, account)
}

func (s *Server) ownProfile(c *fiber.Ctx) error {
	view, err := s.profiles.ViewOwn(c.UserContext(), currentAccount(c))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, view)
}

func (s *Server) viewProfile(c *fiber.Ctx) error {
	view, err := s.profiles.View(c.UserContext(), currentAccount(c), c.Params("handle"))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, view)
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	profile, err := s.profiles.Update(c.UserContext(), currentAccount(c), req.toPatch())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, profile)
}

func (s *Server) enroll(c *fiber.Ctx) error {
	programID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	enrollment, err := s.enrollments.Enroll(c.UserContext(), currentAccount(c), programID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, enrollment)
}

func (s *Server) submit(c *fiber.Ctx) error {
	activityID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req submissionRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	submission, err := s.submissions.Submit(c.UserContext(), currentAccount(c), activityID, req.Content)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, submission)
}

func (s *Server) ownSubmissions(c *fiber.Ctx) error {
	submissions, err := s.submissions.ListOwn(c.UserContext(), currentAccount(c))
	if err != nil {
		return err
	}
	if submissions == nil {
		submissions = []*model.ActivitySubmission{}
	}
	return success(c, fiber.StatusOK, submissions)
}

// Администрирование

func (s *Server) changeStatus(c *fiber.Ctx) error {
	targetID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	account, err := s.accounts.Transition(c.UserContext(), currentAccount(c), targetID, model.AccountStatus(req.Status), req.Reason)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, account)
}

func (s *Server) changeRole(c *fiber.Ctx) error {
	targetID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req roleRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	account, err := s.accounts.ChangeRole(c.UserContext(), currentAccount(c), targetID, model.Role(req.Role))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, account)
}

func (s *Server) checkEligibility(c *fiber.Ctx) error {
	accountID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	enrollmentID, err := idQuery(c, "enrollment_id")
	if err != nil {
		return err
	}

	result, err := s.eligibility.Check(c.UserContext(), currentAccount(c), accountID, enrollmentID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, result)
}

func (s *Server) promote(c *fiber.Ctx) error {
	accountID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req promoteRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	result, err := s.promotion.Promote(c.UserContext(), currentAccount(c), accountID, req.EnrollmentID, req.Notes)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, result)
}

func (s *Server) markAttendance(c *fiber.Ctx) error {
	sessionID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req attendanceRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	records, err := s.attendance.MarkSession(c.UserContext(), currentAccount(c), sessionID, req.toMarks())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, records)
}

func (s *Server) startReview(c *fiber.Ctx) error {
	submissionID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	submission, err := s.submissions.StartReview(c.UserContext(), currentAccount(c), submissionID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, submission)
}

func (s *Server) review(c *fiber.Ctx) error {
	submissionID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bind(c, s.validate, &req); err != nil {
		return err
	}

	submission, err := s.submissions.Review(c.UserContext(), currentAccount(c), submissionID, service.ReviewInput{
		Approve:      req.Approve,
		QualityScore: req.QualityScore,
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, submission)
}
