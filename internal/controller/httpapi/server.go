// Package httpapi is the thin HTTP boundary over the membership services.
package httpapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/membership_core/internal/metrics"
	"github.com/Freeeeeet/membership_core/internal/policy"
	"github.com/Freeeeeet/membership_core/internal/service"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Identity    *service.IdentityService
	Accounts    *service.AccountService
	Eligibility *service.EligibilityService
	Promotion   *service.PromotionService
	Attendance  *service.AttendanceService
	Submissions *service.SubmissionService
	Enrollments *service.EnrollmentService
	Profiles    *service.ProfileService
	Gate        *policy.GuestGate
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // nil disables /metrics
	Validate    *validator.Validate // nil builds a fresh one
	Logger      *zap.Logger
}

type Server struct {
	app      *fiber.App
	validate *validator.Validate

	identity    *service.IdentityService
	accounts    *service.AccountService
	eligibility *service.EligibilityService
	promotion   *service.PromotionService
	attendance  *service.AttendanceService
	submissions *service.SubmissionService
	enrollments *service.EnrollmentService
	profiles    *service.ProfileService
	gate        *policy.GuestGate
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewServer(d Deps) *Server {
	validate := d.Validate
	if validate == nil {
		validate = validator.New()
	}

	s := &Server{
		validate:    validate,
		identity:    d.Identity,
		accounts:    d.Accounts,
		eligibility: d.Eligibility,
		promotion:   d.Promotion,
		attendance:  d.Attendance,
		submissions: d.Submissions,
		enrollments: d.Enrollments,
		profiles:    d.Profiles,
		gate:        d.Gate,
		metrics:     d.Metrics,
		logger:      d.Logger.Named("http"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "membership",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(s.logger),
	})
	s.app.Use(s.observe)
	s.app.Use(recover.New())

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	if d.Gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api/v1")
	auth := []fiber.Handler{s.authenticate, s.guestGate}
	with := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, auth...), h)
	}

	api.Post("/accounts/register", s.register)
	api.Post("/accounts/me/onboarding", with(s.completeOnboarding)...)

	api.Get("/profiles/me", with(s.ownProfile)...)
	api.Put("/profiles/me", with(s.updateProfile)...)
	api.Get("/profiles/:handle", s.optionalAuthenticate, s.guestGate, s.viewProfile)

	api.Post("/programs/:id/enrollments", with(s.enroll)...)
	api.Post("/activities/:id/submissions", with(s.submit)...)
	api.Get("/submissions/me", with(s.ownSubmissions)...)

	admin := api.Group("/admin")
	admin.Patch("/accounts/:id/status", with(s.changeStatus)...)
	admin.Patch("/accounts/:id/role", with(s.changeRole)...)
	admin.Get("/accounts/:id/eligibility", with(s.checkEligibility)...)
	admin.Post("/accounts/:id/promote", with(s.promote)...)
	admin.Post("/sessions/:id/attendance", with(s.markAttendance)...)
	admin.Post("/submissions/:id/review-start", with(s.startReview)...)
	admin.Post("/submissions/:id/review", with(s.review)...)
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
