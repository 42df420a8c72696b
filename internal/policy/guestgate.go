package policy

import (
	"path"
	"strings"

	"github.com/Freeeeeet/membership_core/internal/apperr"
	"github.com/Freeeeeet/membership_core/internal/model"
)

// Route matches a request. Method "" matches any method; "*" in Pattern
// matches exactly one path segment. A pattern matches its own path and
// everything below it.
type Route struct {
	Method  string
	Pattern string
}

// GuestGate decides which paths a guest-status account may reach. Role is not
// consulted: guest is a status.
type GuestGate struct {
	deny  []Route
	allow []Route
}

func NewGuestGate(deny, allow []Route) *GuestGate {
	return &GuestGate{deny: deny, allow: allow}
}

var DefaultGuestDenyList = []Route{
	{Pattern: "/api/v1/admin"},
	{Pattern: "/api/v1/sessions/*/attendance"},
	{Pattern: "/api/v1/votes"},
	{Pattern: "/api/v1/proposals/*/votes"},
}

var DefaultGuestAllowList = []Route{
	{Method: "GET", Pattern: "/api/v1/programs"},
	{Method: "GET", Pattern: "/api/v1/activities"},
	{Method: "GET", Pattern: "/api/v1/events"},
	{Method: "GET", Pattern: "/api/v1/profiles/me"},
	{Method: "POST", Pattern: "/api/v1/programs/*/enrollments"},
	{Method: "POST", Pattern: "/api/v1/activities/*/submissions"},
	{Method: "GET", Pattern: "/api/v1/submissions/me"},
}

func DefaultGuestGate() *GuestGate {
	return NewGuestGate(DefaultGuestDenyList, DefaultGuestAllowList)
}

// Check returns nil when the request may proceed. Non-guests always pass.
// For guests the deny list wins, then the allow list, and anything else is
// denied.
func (g *GuestGate) Check(method, requestPath string, status model.AccountStatus) error {
	if status != model.AccountStatusGuest {
		return nil
	}

	p := normalizePath(requestPath)
	for _, r := range g.deny {
		if r.matches(method, p) {
			return guestDenied(p)
		}
	}
	for _, r := range g.allow {
		if r.matches(method, p) {
			return nil
		}
	}
	return guestDenied(p)
}

func guestDenied(p string) error {
	return apperr.Forbidden(apperr.CodeGuestAccessRestricted, "guest accounts cannot access %s", p)
}

func (r Route) matches(method, p string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}

	want := splitPath(r.Pattern)
	got := splitPath(p)
	if len(got) < len(want) {
		return false
	}
	for i, seg := range want {
		if seg != "*" && seg != got[i] {
			return false
		}
	}
	return true
}

// normalizePath resolves dot segments so "/api/v1/programs/../admin" cannot
// slip past the deny list.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
