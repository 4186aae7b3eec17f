package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keralahub/culturalhub/internal/api/metrics"
	"github.com/keralahub/culturalhub/internal/api/middleware"
	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
	"github.com/keralahub/culturalhub/internal/session"
)

const demoIdentityTTL = 24 * time.Hour

// AuthHandler fronts registration, sign-in/out, session state and the demo
// identity flow.
type AuthHandler struct {
	registry *session.Registry
	auth     ports.AuthService
	demos    ports.DemoStore
}

func NewAuthHandler(registry *session.Registry, auth ports.AuthService, demos ports.DemoStore) *AuthHandler {
	return &AuthHandler{registry: registry, auth: auth, demos: demos}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=visitor artist organizer"`
	Phone       string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type authResponse struct {
	Token   string              `json:"token,omitempty"`
	Session *sessionResponse    `json:"session,omitempty"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
}

type snapshotResponse struct {
	Loading bool                `json:"loading"`
	Session *sessionResponse    `json:"session,omitempty"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Register creates a new user account plus its profile row.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, profile, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Profile: profile})
}

// Login authenticates by email and password. The cached session state is
// updated through the auth event push, not by this handler.
//
// @Summary      Sign in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.registry.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.SignInsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, authResponse{
		Token: result.Token,
		Session: &sessionResponse{
			ID:        result.Session.ID,
			UserID:    result.Session.UserID,
			ExpiresAt: result.Session.ExpiresAt,
		},
	})
}

// Logout revokes the current session, or discards the demo identity when
// the request carries only a demo token. Both paths are idempotent.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid, _ := c.Get(middleware.CtxSessionID).(string); sid != "" {
		if err := h.registry.SignOut(c.Request().Context(), sid); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}

	if token, _ := c.Get(middleware.CtxDemoToken).(string); token != "" {
		if err := h.demos.Delete(c.Request().Context(), token); err != nil {
			return err
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Session returns the cached auth state for the caller's session.
//
// @Summary      Current session state
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  snapshotResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sid, _ := c.Get(middleware.CtxSessionID).(string)
	if sid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no session")
	}

	snap := h.registry.Resolve(c.Request().Context(), sid).Snapshot()
	resp := snapshotResponse{Loading: snap.Loading, Profile: snap.Profile, Error: snap.Err}
	if snap.Session != nil {
		resp.Session = &sessionResponse{
			ID:        snap.Session.ID,
			UserID:    snap.Session.UserID,
			ExpiresAt: snap.Session.ExpiresAt,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type oauthResponse struct {
	URL string `json:"url"`
}

// OAuth builds the external consent URL for a provider and returns it for
// the browser to follow.
//
// @Summary      Start an OAuth sign-in
// @Tags         auth
// @Produce      json
// @Param        provider     path   string  true   "google or facebook"
// @Param        redirect_to  query  string  false  "Path to return to after consent"
// @Success      200  {object}  oauthResponse
// @Failure      400  {object}  map[string]string
// @Router       /v1/auth/oauth/{provider} [get]
func (h *AuthHandler) OAuth(c echo.Context) error {
	url, err := h.registry.OAuthURL(c.Param("provider"), c.QueryParam("redirect_to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, oauthResponse{URL: url})
}

type demoSignInRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=visitor artist organizer"`
}

type demoSignInResponse struct {
	DemoToken string               `json:"demo_token"`
	Identity  *domain.DemoIdentity `json:"identity"`
}

// DemoSignIn issues a demo identity. Demo identities never pass through the
// real authentication path and are honored only on routes that opt in.
//
// @Summary      Start a demo session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      demoSignInRequest  true  "Demo identity"
// @Success      201   {object}  demoSignInResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/auth/demo [post]
func (h *AuthHandler) DemoSignIn(c echo.Context) error {
	var req demoSignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	identity := &domain.DemoIdentity{
		ID:          uuid.NewString(),
		Email:       "demo@keralahub.local",
		DisplayName: req.DisplayName,
		Role:        role,
		Demo:        true,
		CreatedAt:   time.Now().UTC(),
	}
	token := uuid.NewString()

	if err := h.demos.Put(c.Request().Context(), token, identity, demoIdentityTTL); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, demoSignInResponse{DemoToken: token, Identity: identity})
}
