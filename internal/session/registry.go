package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

// Registry is the injectable session service: it owns one Manager per live
// session, routes pushed auth events to the right manager and fronts the
// sign-in/sign-out flow with normalized errors. Constructed in main and
// passed to consumers — never imported as a singleton.
type Registry struct {
	auth     ports.AuthService
	source   SessionSource
	profiles ProfileFetcher
	log      zerolog.Logger

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(auth ports.AuthService, source SessionSource, profiles ProfileFetcher, log zerolog.Logger) *Registry {
	return &Registry{
		auth:     auth,
		source:   source,
		profiles: profiles,
		log:      log,
		managers: make(map[string]*Manager),
	}
}

// Listen subscribes the registry to pushed auth state changes.
func (r *Registry) Listen(b *Broadcaster) {
	b.Subscribe(r.handleAuthChange)
}

// handleAuthChange routes one pushed event. It runs on the publisher's
// goroutine and must not block; Manager.HandleAuthChange honors that.
func (r *Registry) handleAuthChange(evt domain.AuthEvent) {
	if evt.Type == domain.AuthSignedOut || evt.Session == nil {
		r.mu.Lock()
		m, ok := r.managers[evt.SessionID]
		delete(r.managers, evt.SessionID)
		r.mu.Unlock()
		if ok {
			m.HandleAuthChange(domain.AuthEvent{Type: domain.AuthSignedOut, SessionID: evt.SessionID})
		}
		return
	}

	m, created := r.getOrCreate(evt.SessionID)
	if created {
		// The pushed session is authoritative; no restore round-trip needed.
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}
	m.HandleAuthChange(evt)
}

// Resolve returns the manager for a session id, creating and initializing it
// on first use. Initialization is synchronous for the caller; concurrent
// requests for the same session observe the loading state.
func (r *Registry) Resolve(ctx context.Context, sessionID string) *Manager {
	m, created := r.getOrCreate(sessionID)
	if created {
		m.Initialize(ctx)
	}
	return m
}

// SignIn delegates to the auth service. It does not update any manager:
// that happens through the subsequent auth event push, so a caller reading
// cached state immediately after SignIn may still see pre-login state.
func (r *Registry) SignIn(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	return r.auth.SignInWithPassword(ctx, email, password)
}

// SignOut delegates to the auth service, then clears the local manager
// synchronously regardless of push timing (defensive double-clear).
func (r *Registry) SignOut(ctx context.Context, sessionID string) error {
	err := r.auth.SignOut(ctx, sessionID)

	r.mu.Lock()
	m, ok := r.managers[sessionID]
	delete(r.managers, sessionID)
	r.mu.Unlock()
	if ok {
		m.Clear()
	}
	return err
}

// OAuthURL proxies the consent URL builder.
func (r *Registry) OAuthURL(provider, redirectTo string) (string, error) {
	return r.auth.OAuthURL(provider, redirectTo)
}

func (r *Registry) getOrCreate(sessionID string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[sessionID]; ok {
		return m, false
	}
	m := NewManager(sessionID, r.source, r.profiles, r.log)
	r.managers[sessionID] = m
	return m, true
}
