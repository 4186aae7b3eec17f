package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/api/middleware"
	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
	"github.com/keralahub/culturalhub/internal/session"
)

type stubAuth struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, *domain.UserProfile, error)
	signInFn   func(ctx context.Context, email, password string) (*ports.SignInResult, error)
	signOutFn  func(ctx context.Context, sessionID string) error
}

func (s *stubAuth) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, *domain.UserProfile, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuth) SignInWithPassword(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuth) SignOut(ctx context.Context, sessionID string) error {
	if s.signOutFn != nil {
		return s.signOutFn(ctx, sessionID)
	}
	return nil
}

func (s *stubAuth) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubAuth) OAuthURL(provider, redirectTo string) (string, error) {
	if provider != "google" && provider != "facebook" {
		return "", errors.New("unknown oauth provider")
	}
	return "https://auth.keralahub.in/oauth/" + provider + "/authorize", nil
}

type noopFetcher struct{}

func (noopFetcher) Fetch(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return nil, nil
}

type memDemoStore struct {
	identities map[string]*domain.DemoIdentity
}

func newMemDemoStore() *memDemoStore {
	return &memDemoStore{identities: make(map[string]*domain.DemoIdentity)}
}

func (s *memDemoStore) Put(ctx context.Context, token string, identity *domain.DemoIdentity, ttl time.Duration) error {
	s.identities[token] = identity
	return nil
}

func (s *memDemoStore) Get(ctx context.Context, token string) (*domain.DemoIdentity, error) {
	d, ok := s.identities[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return d, nil
}

func (s *memDemoStore) Delete(ctx context.Context, token string) error {
	delete(s.identities, token)
	return nil
}

func newAuthTestHandler(auth *stubAuth, demos ports.DemoStore) *AuthHandler {
	registry := session.NewRegistry(auth, auth, noopFetcher{}, zerolog.Nop())
	return NewAuthHandler(registry, auth, demos)
}

func newJSONContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_ReturnsTokenAndSession(t *testing.T) {
	auth := &stubAuth{
		signInFn: func(ctx context.Context, email, password string) (*ports.SignInResult, error) {
			return &ports.SignInResult{
				Token: "jwt-token",
				Session: &domain.Session{
					ID:        "sess-1",
					UserID:    "user-1",
					ExpiresAt: time.Now().UTC().Add(time.Hour),
				},
			}, nil
		},
	}
	h := newAuthTestHandler(auth, newMemDemoStore())

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"meera@example.com","password":"secret123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["token"] != "jwt-token" {
		t.Fatalf("token missing: %v", resp)
	}
	sess, ok := resp["session"].(map[string]any)
	if !ok || sess["id"] != "sess-1" {
		t.Fatalf("session missing: %v", resp)
	}
}

func TestAuthHandler_Login_ErrorsBubbleToErrorHandler(t *testing.T) {
	auth := &stubAuth{
		signInFn: func(ctx context.Context, email, password string) (*ports.SignInResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := newAuthTestHandler(auth, newMemDemoStore())

	c, _ := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"meera@example.com","password":"wrong"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("credential errors must reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Register_ValidatesPayload(t *testing.T) {
	auth := &stubAuth{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, *domain.UserProfile, error) {
			t.Fatalf("service must not be called on invalid input")
			return nil, nil, nil
		},
	}
	h := newAuthTestHandler(auth, newMemDemoStore())

	// admin is not in the allowed role set
	c, _ := newJSONContext(t, http.MethodPost, "/v1/auth/register",
		`{"email":"x@example.com","password":"longenough","display_name":"X","role":"admin"}`)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for admin self-registration, got %v", err)
	}
}

func TestAuthHandler_DemoSignIn_IssuesPersistedToken(t *testing.T) {
	demos := newMemDemoStore()
	h := newAuthTestHandler(&stubAuth{}, demos)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/demo",
		`{"display_name":"Demo Organizer","role":"organizer"}`)
	if err := h.DemoSignIn(c); err != nil {
		t.Fatalf("demo sign in: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp demoSignInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.DemoToken == "" {
		t.Fatalf("demo token missing")
	}
	stored, err := demos.Get(context.Background(), resp.DemoToken)
	if err != nil {
		t.Fatalf("demo identity not persisted: %v", err)
	}
	if stored.Role != domain.RoleOrganizer || !stored.Demo {
		t.Fatalf("unexpected identity: %+v", stored)
	}
}

func TestAuthHandler_DemoSignIn_AdminRejected(t *testing.T) {
	h := newAuthTestHandler(&stubAuth{}, newMemDemoStore())

	c, _ := newJSONContext(t, http.MethodPost, "/v1/auth/demo",
		`{"display_name":"Sneaky","role":"admin"}`)
	err := h.DemoSignIn(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for demo admin, got %v", err)
	}
}

func TestAuthHandler_Logout_DemoTokenDiscarded(t *testing.T) {
	demos := newMemDemoStore()
	demos.identities["tok-1"] = &domain.DemoIdentity{ID: "demo-1", Demo: true}
	h := newAuthTestHandler(&stubAuth{}, demos)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/logout", "")
	c.Set(middleware.CtxDemoToken, "tok-1")

	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, ok := demos.identities["tok-1"]; ok {
		t.Fatalf("demo identity should be discarded")
	}
}

func TestAuthHandler_Session_RequiresSessionID(t *testing.T) {
	h := newAuthTestHandler(&stubAuth{}, newMemDemoStore())

	c, _ := newJSONContext(t, http.MethodGet, "/v1/auth/session", "")
	err := h.Session(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %v", err)
	}
}
