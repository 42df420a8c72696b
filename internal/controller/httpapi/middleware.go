package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
)

const localAccount = "account"

// currentAccount returns the caller resolved by authenticate.
func currentAccount(c *fiber.Ctx) *model.Account {
	account, _ := c.Locals(localAccount).(*model.Account)
	return account
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", apperr.Unauthorized("missing bearer token")
	}
	return strings.TrimSpace(token), nil
}

// authenticate resolves the bearer token to an account and stores it in
// Locals.
func (s *Server) authenticate(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}

	account, err := s.identity.Resolve(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(localAccount, account)
	return c.Next()
}

// optionalAuthenticate resolves the caller when a token is present and lets
// anonymous requests through.
func (s *Server) optionalAuthenticate(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return c.Next()
	}
	return s.authenticate(c)
}

// guestGate enforces the guest allow and deny lists after authentication.
func (s *Server) guestGate(c *fiber.Ctx) error {
	account := currentAccount(c)
	if account == nil {
		return c.Next()
	}

	if err := s.gate.Check(c.Method(), c.Path(), account.Status); err != nil {
		s.metrics.GuestGateDenials.Inc()
		s.logger.Warn("Guest request denied",
			zap.Int64("account_id", account.ID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)
		return err
	}
	return c.Next()
}

// observe logs every request and counts it by route template. Errors are
// rendered here so the recorded status is the one the client sees.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	route := c.Route().Path
	s.metrics.ObserveHTTP(c.Method(), route, status)
	s.logger.Debug("HTTP request",
		zap.String("method", c.Method()),
		zap.String("route", route),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
