package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/api/metrics"
	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/session"
)

// SessionResolver resolves the per-session manager holding cached auth state.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) *session.Manager
}

// DemoResolver resolves a persisted demo identity by token.
type DemoResolver interface {
	Get(ctx context.Context, token string) (*domain.DemoIdentity, error)
}

// GuardOptions configures one guarded route.
type GuardOptions struct {
	// Roles is the allow-list. Empty means any resolved identity passes.
	Roles []domain.Role
	// AllowDemo lets demo identities through. Demo and authenticated role
	// sources are never blended: a demo identity is judged only on its own
	// role, and only where this flag is set.
	AllowDemo bool
}

// redirectResponse tells the caller where to send the browser. Next carries
// the originally requested path so sign-in can return there.
type redirectResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
	Next     string `json:"next,omitempty"`
}

// Guard gates a route on session presence and role membership. The decision
// runs fresh on every request: loading state is the only one allowed to
// stall the caller, everything else resolves synchronously from cached
// state.
func Guard(sessions SessionResolver, demos DemoResolver, opts GuardOptions) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(opts.Roles))
	for _, r := range opts.Roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, loading := resolveIdentity(c, sessions, demos)
			if loading {
				metrics.GuardDecisionsTotal.WithLabelValues("loading").Inc()
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, redirectResponse{
					Error: "session state resolving",
				})
			}

			if identity.Kind == domain.IdentityAnonymous {
				metrics.GuardDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return c.JSON(http.StatusUnauthorized, redirectResponse{
					Error:    "sign in required",
					Redirect: "/login",
					Next:     c.Request().URL.Path,
				})
			}

			if identity.Kind == domain.IdentityDemo && !opts.AllowDemo {
				metrics.GuardDecisionsTotal.WithLabelValues("forbidden").Inc()
				return c.JSON(http.StatusForbidden, redirectResponse{
					Error:    "demo access not permitted here",
					Redirect: "/unauthorized",
				})
			}

			if len(allowed) > 0 {
				role, ok := identity.EffectiveRole()
				if !ok {
					metrics.GuardDecisionsTotal.WithLabelValues("forbidden").Inc()
					return c.JSON(http.StatusForbidden, redirectResponse{
						Error:    "access forbidden",
						Redirect: "/unauthorized",
					})
				}
				if _, member := allowed[role]; !member {
					metrics.GuardDecisionsTotal.WithLabelValues("forbidden").Inc()
					return c.JSON(http.StatusForbidden, redirectResponse{
						Error:    "access forbidden",
						Redirect: "/unauthorized",
					})
				}
			}

			metrics.GuardDecisionsTotal.WithLabelValues("authorized").Inc()
			c.Set(CtxIdentity, identity)
			return next(c)
		}
	}
}

// resolveIdentity folds the request credentials into the tagged identity.
// An authenticated session always wins; the demo token is consulted only
// when no real session is present.
func resolveIdentity(c echo.Context, sessions SessionResolver, demos DemoResolver) (domain.Identity, bool) {
	if sid, _ := c.Get(CtxSessionID).(string); sid != "" {
		m := sessions.Resolve(c.Request().Context(), sid)
		snap := m.Snapshot()
		if snap.Loading {
			return domain.Anonymous(), true
		}
		if snap.Session != nil {
			return domain.Authenticated(snap.Session, snap.Profile), false
		}
		// expired or revoked session: fall through as anonymous, never demo
		return domain.Anonymous(), false
	}

	if token, _ := c.Get(CtxDemoToken).(string); token != "" && demos != nil {
		demo, err := demos.Get(c.Request().Context(), token)
		if err == nil {
			return domain.DemoOnly(demo), false
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			// demo store trouble degrades to anonymous, not to an error page
			c.Logger().Warnf("demo identity lookup failed: %v", err)
		}
	}

	return domain.Anonymous(), false
}

// IdentityFrom extracts the identity stored by Guard. The boolean is false
// on routes that never passed through a guard.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(CtxIdentity).(domain.Identity)
	return identity, ok
}
