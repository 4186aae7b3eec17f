package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

type stubSource struct {
	getFn func(ctx context.Context, sessionID string) (*domain.Session, error)
}

func (s *stubSource) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.getFn(ctx, sessionID)
}

type stubFetcher struct {
	mu      sync.Mutex
	fetchFn func(ctx context.Context, userID string) (*domain.UserProfile, error)
	calls   int
}

func (f *stubFetcher) Fetch(ctx context.Context, userID string) (*domain.UserProfile, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fetchFn(ctx, userID)
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testSession(id, userID string) *domain.Session {
	return &domain.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}

func TestManager_Initialize_RestoresSessionAndProfile(t *testing.T) {
	source := &stubSource{
		getFn: func(ctx context.Context, sessionID string) (*domain.Session, error) {
			return testSession(sessionID, "user-1"), nil
		},
	}
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			return &domain.UserProfile{UserID: userID, Role: domain.RoleArtist}, nil
		},
	}

	m := NewManager("sess-1", source, fetcher, zerolog.Nop())
	if snap := m.Snapshot(); !snap.Loading {
		t.Fatalf("expected loading before Initialize")
	}

	m.Initialize(context.Background())
	m.waitFetches()

	snap := m.Snapshot()
	if snap.Loading {
		t.Fatalf("expected loading to end after Initialize")
	}
	if snap.Session == nil || snap.Session.UserID != "user-1" {
		t.Fatalf("unexpected session: %+v", snap.Session)
	}
	if snap.Profile == nil || snap.Profile.Role != domain.RoleArtist {
		t.Fatalf("unexpected profile: %+v", snap.Profile)
	}
}

func TestManager_Initialize_MissingSessionClearsState(t *testing.T) {
	source := &stubSource{
		getFn: func(ctx context.Context, sessionID string) (*domain.Session, error) {
			return nil, domain.ErrSessionNotFound
		},
	}
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			t.Fatalf("fetch must not run without a session")
			return nil, nil
		},
	}

	m := NewManager("sess-1", source, fetcher, zerolog.Nop())
	m.Initialize(context.Background())

	snap := m.Snapshot()
	if snap.Loading || snap.Session != nil || snap.Profile != nil || snap.Err != "" {
		t.Fatalf("expected clean signed-out state, got %+v", snap)
	}
}

func TestManager_Initialize_UnreachableBackendSetsError(t *testing.T) {
	source := &stubSource{
		getFn: func(ctx context.Context, sessionID string) (*domain.Session, error) {
			return nil, errors.New("redis: connection refused")
		},
	}
	m := NewManager("sess-1", source, &stubFetcher{}, zerolog.Nop())
	m.Initialize(context.Background())

	snap := m.Snapshot()
	if snap.Loading {
		t.Fatalf("loading must end even when restore fails")
	}
	if snap.Err != domain.ErrAuthUnreachable.Error() {
		t.Fatalf("expected unreachable error, got %q", snap.Err)
	}
}

func TestManager_HandleAuthChange_NilSessionClearsSynchronously(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			return &domain.UserProfile{UserID: userID}, nil
		},
	}
	m := NewManager("sess-1", &stubSource{}, fetcher, zerolog.Nop())

	m.HandleAuthChange(domain.AuthEvent{
		Type:      domain.AuthSignedIn,
		SessionID: "sess-1",
		Session:   testSession("sess-1", "user-1"),
	})
	m.waitFetches()

	// The clear must be observable the moment HandleAuthChange returns,
	// with no asynchronous window where the profile lingers.
	m.HandleAuthChange(domain.AuthEvent{Type: domain.AuthSignedOut, SessionID: "sess-1"})

	snap := m.Snapshot()
	if snap.Session != nil || snap.Profile != nil {
		t.Fatalf("expected synchronous clear, got %+v", snap)
	}
}

func TestManager_HandleAuthChange_UserSwitchDropsPreviousProfile(t *testing.T) {
	block := make(chan struct{})
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			if userID == "user-2" {
				<-block
			}
			return &domain.UserProfile{UserID: userID, DisplayName: userID}, nil
		},
	}
	m := NewManager("sess-1", &stubSource{}, fetcher, zerolog.Nop())

	m.HandleAuthChange(domain.AuthEvent{Session: testSession("sess-1", "user-1")})
	m.waitFetches()

	m.HandleAuthChange(domain.AuthEvent{Session: testSession("sess-1", "user-2")})

	// While user-2's fetch is in flight, user-1's profile must be gone.
	snap := m.Snapshot()
	if snap.Profile != nil {
		t.Fatalf("previous user's profile leaked across the switch: %+v", snap.Profile)
	}

	close(block)
	m.waitFetches()

	snap = m.Snapshot()
	if snap.Profile == nil || snap.Profile.UserID != "user-2" {
		t.Fatalf("expected user-2 profile, got %+v", snap.Profile)
	}
}

func TestManager_ProfileFetch_LaterDispatchWins(t *testing.T) {
	first := make(chan struct{})
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			if userID == "user-slow" {
				<-first // completes after the later fetch
				return &domain.UserProfile{UserID: userID, DisplayName: "stale"}, nil
			}
			return &domain.UserProfile{UserID: userID, DisplayName: "fresh"}, nil
		},
	}
	m := NewManager("sess-1", &stubSource{}, fetcher, zerolog.Nop())

	m.HandleAuthChange(domain.AuthEvent{Session: testSession("sess-1", "user-slow")})
	m.HandleAuthChange(domain.AuthEvent{Session: testSession("sess-1", "user-fast")})

	// Let the earlier fetch finish last: its result must be discarded.
	close(first)
	m.waitFetches()

	snap := m.Snapshot()
	if snap.Profile == nil || snap.Profile.DisplayName != "fresh" {
		t.Fatalf("earlier fetch overwrote the later one: %+v", snap.Profile)
	}
}

func TestManager_ProfileFetch_ErrorKeepsStaleProfile(t *testing.T) {
	fail := false
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			if fail {
				return nil, errors.New("pg: down")
			}
			return &domain.UserProfile{UserID: userID, DisplayName: "cached"}, nil
		},
	}
	m := NewManager("sess-1", &stubSource{}, fetcher, zerolog.Nop())

	m.HandleAuthChange(domain.AuthEvent{Session: testSession("sess-1", "user-1")})
	m.waitFetches()

	fail = true
	m.HandleAuthChange(domain.AuthEvent{Session: testSession("sess-1", "user-1")})
	m.waitFetches()

	snap := m.Snapshot()
	if snap.Profile == nil || snap.Profile.DisplayName != "cached" {
		t.Fatalf("stale profile should survive a failed refresh, got %+v", snap.Profile)
	}
}

func TestManager_ProfileFetch_MissingProfileRecordedAsAbsent(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			return nil, nil // no profile row yet
		},
	}
	m := NewManager("sess-1", &stubSource{}, fetcher, zerolog.Nop())

	m.HandleAuthChange(domain.AuthEvent{Session: testSession("sess-1", "user-1")})
	m.waitFetches()

	snap := m.Snapshot()
	if snap.Profile != nil {
		t.Fatalf("expected absent profile, got %+v", snap.Profile)
	}
	if snap.Session == nil {
		t.Fatalf("session must survive a missing profile")
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("expected one fetch, got %d", fetcher.callCount())
	}
}

func TestManager_Identity_FallsBackToMetadataRole(t *testing.T) {
	fetcher := &stubFetcher{
		fetchFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			return nil, nil
		},
	}
	m := NewManager("sess-1", &stubSource{}, fetcher, zerolog.Nop())

	sess := testSession("sess-1", "user-1")
	sess.Metadata = map[string]string{"role": "organizer"}
	m.HandleAuthChange(domain.AuthEvent{Session: sess})
	m.waitFetches()

	identity := m.Identity()
	if identity.Kind != domain.IdentityAuthenticated {
		t.Fatalf("expected authenticated identity, got %v", identity.Kind)
	}
	role, ok := identity.EffectiveRole()
	if !ok || role != domain.RoleOrganizer {
		t.Fatalf("expected organizer from metadata hint, got %v %v", role, ok)
	}
}
