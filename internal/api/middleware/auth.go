package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth and read by the route guard and handlers.
const (
	CtxUserID       = "user_id"
	CtxSessionID    = "session_id"
	CtxTokenRole    = "token_role"
	CtxDemoToken    = "demo_token"
	CtxIdentity     = "identity"
	demoTokenHeader = "X-Demo-Token"
)

// Auth validates a bearer JWT when one is present and injects its claims
// into the echo context. Requests without credentials pass through as
// anonymous — the route guard decides whether that is acceptable. A present
// but invalid token is always rejected.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if demo := c.Request().Header.Get(demoTokenHeader); demo != "" {
				c.Set(CtxDemoToken, demo)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxUserID, claims["sub"])
			c.Set(CtxSessionID, claims["sid"])
			c.Set(CtxTokenRole, claims["role"])

			return next(c)
		}
	}
}
