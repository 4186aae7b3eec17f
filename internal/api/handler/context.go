package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/api/middleware"
	"github.com/keralahub/culturalhub/internal/core/domain"
)

// identityFrom returns the identity the guard resolved for this request,
// or an anonymous identity when the route skipped the guard.
func identityFrom(c echo.Context) domain.Identity {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Anonymous()
	}
	return identity
}

// userIDFrom returns the authenticated user's id, or "" when the
// request carries a demo or anonymous identity.
func userIDFrom(c echo.Context) string {
	id := identityFrom(c)
	if id.Kind != domain.IdentityAuthenticated || id.Session == nil {
		return ""
	}
	return id.Session.UserID
}
