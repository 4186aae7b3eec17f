package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/session"
)

type guardSource struct {
	sess *domain.Session
	err  error
}

func (s *guardSource) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}

type guardFetcher struct{}

func (guardFetcher) Fetch(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return nil, nil
}

// fixedResolver always hands back the same manager.
type fixedResolver struct {
	m *session.Manager
}

func (r *fixedResolver) Resolve(ctx context.Context, sessionID string) *session.Manager {
	return r.m
}

type stubDemos struct {
	identity *domain.DemoIdentity
	err      error
}

func (s *stubDemos) Get(ctx context.Context, token string) (*domain.DemoIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func sessionWithRole(role string) *domain.Session {
	return &domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Metadata:  map[string]string{"role": role},
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}

// loadedManager returns a manager already holding the given session.
func loadedManager(t *testing.T, sess *domain.Session) *session.Manager {
	t.Helper()
	m := session.NewManager(sess.ID, &guardSource{sess: sess}, guardFetcher{}, zerolog.Nop())
	m.Initialize(context.Background())
	return m
}

func invokeGuard(t *testing.T, mw echo.MiddlewareFunc, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events/mine", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := mw(next)(c); err != nil {
		t.Fatalf("guard returned error: %v", err)
	}
	return rec
}

func TestGuard_LoadingStateReturns503(t *testing.T) {
	// A manager that has not been initialized is still loading.
	m := session.NewManager("sess-1", &guardSource{}, guardFetcher{}, zerolog.Nop())
	mw := Guard(&fixedResolver{m: m}, &stubDemos{err: domain.ErrSessionNotFound}, GuardOptions{})

	rec := invokeGuard(t, mw, func(c echo.Context) {
		c.Set(CtxSessionID, "sess-1")
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while loading, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestGuard_AnonymousGetsRedirectToLogin(t *testing.T) {
	mw := Guard(&fixedResolver{}, &stubDemos{err: domain.ErrSessionNotFound}, GuardOptions{})

	rec := invokeGuard(t, mw, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["redirect"] != "/login" {
		t.Fatalf("expected /login redirect, got %q", resp["redirect"])
	}
	if resp["next"] != "/v1/events/mine" {
		t.Fatalf("expected original path in next, got %q", resp["next"])
	}
}

func TestGuard_RoleOutsideAllowListIsForbidden(t *testing.T) {
	m := loadedManager(t, sessionWithRole("artist"))
	mw := Guard(&fixedResolver{m: m}, &stubDemos{}, GuardOptions{
		Roles: []domain.Role{domain.RoleOrganizer, domain.RoleAdmin},
	})

	rec := invokeGuard(t, mw, func(c echo.Context) {
		c.Set(CtxSessionID, "sess-1")
	})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["redirect"] != "/unauthorized" {
		t.Fatalf("expected /unauthorized redirect, got %q", resp["redirect"])
	}
}

func TestGuard_AllowedRolePasses(t *testing.T) {
	m := loadedManager(t, sessionWithRole("organizer"))
	mw := Guard(&fixedResolver{m: m}, &stubDemos{}, GuardOptions{
		Roles: []domain.Role{domain.RoleOrganizer, domain.RoleAdmin},
	})

	rec := invokeGuard(t, mw, func(c echo.Context) {
		c.Set(CtxSessionID, "sess-1")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestGuard_EmptyAllowListAdmitsAnyIdentity(t *testing.T) {
	m := loadedManager(t, sessionWithRole("visitor"))
	mw := Guard(&fixedResolver{m: m}, &stubDemos{}, GuardOptions{})

	rec := invokeGuard(t, mw, func(c echo.Context) {
		c.Set(CtxSessionID, "sess-1")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestGuard_DemoRejectedWhereNotAllowed(t *testing.T) {
	demos := &stubDemos{identity: &domain.DemoIdentity{ID: "demo-1", Role: domain.RoleOrganizer, Demo: true}}
	mw := Guard(&fixedResolver{}, demos, GuardOptions{
		Roles: []domain.Role{domain.RoleOrganizer},
	})

	rec := invokeGuard(t, mw, func(c echo.Context) {
		c.Set(CtxDemoToken, "tok-1")
	})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("demo identity must not pass a real-only guard, got %d", rec.Code)
	}
}

func TestGuard_DemoAdmittedWhereAllowed(t *testing.T) {
	demos := &stubDemos{identity: &domain.DemoIdentity{ID: "demo-1", Role: domain.RoleOrganizer, Demo: true}}
	mw := Guard(&fixedResolver{}, demos, GuardOptions{
		Roles:     []domain.Role{domain.RoleOrganizer, domain.RoleAdmin},
		AllowDemo: true,
	})

	rec := invokeGuard(t, mw, func(c echo.Context) {
		c.Set(CtxDemoToken, "tok-1")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("demo identity should pass an AllowDemo guard, got %d", rec.Code)
	}
}

func TestGuard_ExpiredSessionIsAnonymousNotDemo(t *testing.T) {
	// Session restore says not-found; a demo token rides along. The real
	// session path must resolve to anonymous without consulting the demo
	// token, because a session id was presented.
	m := session.NewManager("sess-1", &guardSource{err: domain.ErrSessionNotFound}, guardFetcher{}, zerolog.Nop())
	m.Initialize(context.Background())

	demos := &stubDemos{identity: &domain.DemoIdentity{ID: "demo-1", Role: domain.RoleAdmin, Demo: true}}
	mw := Guard(&fixedResolver{m: m}, demos, GuardOptions{AllowDemo: true})

	rec := invokeGuard(t, mw, func(c echo.Context) {
		c.Set(CtxSessionID, "sess-1")
		c.Set(CtxDemoToken, "tok-1")
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired session must degrade to anonymous, got %d", rec.Code)
	}
}
