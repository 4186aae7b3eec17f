package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

const profileFetchTimeout = 10 * time.Second

// ProfileFetcher resolves a profile for a user id. A missing profile row
// resolves to (nil, nil); other errors leave the prior value in place.
type ProfileFetcher interface {
	Fetch(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// SessionSource restores a persisted session record.
type SessionSource interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Snapshot is the read-only projection consumers get. Loading is true only
// until Initialize has dispatched its work; the profile may still be in
// flight after that.
type Snapshot struct {
	Loading bool
	Session *domain.Session
	Profile *domain.UserProfile
	Err     string
}

// Manager holds the cached auth state for one session. Writes come from
// Initialize and HandleAuthChange only; everyone else reads a Snapshot.
//
// Profile fetches are asynchronous and carry a generation token: a fetch
// dispatched later always beats one dispatched earlier, no matter which
// response arrives first.
type Manager struct {
	sessionID string
	source    SessionSource
	profiles  ProfileFetcher
	log       zerolog.Logger

	mu      sync.Mutex
	loading bool
	session *domain.Session
	profile *domain.UserProfile
	errMsg  string
	gen     uint64

	fetches sync.WaitGroup
}

func NewManager(sessionID string, source SessionSource, profiles ProfileFetcher, log zerolog.Logger) *Manager {
	return &Manager{
		sessionID: sessionID,
		source:    source,
		profiles:  profiles,
		log:       log,
		loading:   true,
	}
}

// Initialize restores the persisted session and, when one exists, dispatches
// the profile fetch. Loading turns false once the dispatch has happened —
// consumers can then read without blocking, though the profile may still be
// stale or in flight.
func (m *Manager) Initialize(ctx context.Context) {
	sess, err := m.source.GetSession(ctx, m.sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err == nil:
		m.session = sess
		m.errMsg = ""
		m.dispatchProfileFetchLocked(sess.UserID)
	case errors.Is(err, domain.ErrSessionNotFound):
		m.session = nil
		m.profile = nil
	default:
		m.errMsg = domain.ErrAuthUnreachable.Error()
		m.log.Error().Err(err).Str("session_id", m.sessionID).Msg("session restore failed")
	}

	m.loading = false
}

// HandleAuthChange applies a pushed auth state change. It never blocks: a
// non-nil session stores the identity and dispatches the profile fetch
// asynchronously; a nil session clears session AND profile synchronously,
// in this same call.
func (m *Manager) HandleAuthChange(evt domain.AuthEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if evt.Session == nil {
		m.session = nil
		m.profile = nil
		m.errMsg = ""
		return
	}

	// A different user on the same manager must not inherit the previous
	// user's profile while the new fetch is in flight.
	if m.session != nil && m.session.UserID != evt.Session.UserID {
		m.profile = nil
	}
	m.session = evt.Session
	m.loading = false
	m.dispatchProfileFetchLocked(evt.Session.UserID)
}

// Clear drops session and profile synchronously. Used for the defensive
// double-clear on sign-out, independent of push timing.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.profile = nil
	m.errMsg = ""
}

// Snapshot returns the current state without blocking.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Loading: m.loading,
		Session: m.session,
		Profile: m.profile,
		Err:     m.errMsg,
	}
}

// Identity folds the snapshot into the tagged identity type.
func (m *Manager) Identity() domain.Identity {
	snap := m.Snapshot()
	if snap.Session == nil {
		return domain.Anonymous()
	}
	return domain.Authenticated(snap.Session, snap.Profile)
}

// dispatchProfileFetchLocked starts an asynchronous fetch stamped with the
// next generation. A completion whose generation is stale is discarded, so
// an earlier-dispatched fetch can never overwrite a later one. Callers must
// hold m.mu.
func (m *Manager) dispatchProfileFetchLocked(userID string) {
	m.gen++
	gen := m.gen

	m.fetches.Add(1)
	go func() {
		defer m.fetches.Done()

		ctx, cancel := context.WithTimeout(context.Background(), profileFetchTimeout)
		defer cancel()

		profile, err := m.profiles.Fetch(ctx, userID)

		m.mu.Lock()
		defer m.mu.Unlock()

		if gen != m.gen {
			m.log.Debug().Str("user_id", userID).Uint64("gen", gen).Msg("stale profile fetch discarded")
			return
		}
		if err != nil {
			// stale-but-available: keep whatever profile we had
			m.log.Error().Err(err).Str("user_id", userID).Msg("profile fetch failed")
			return
		}
		// nil means "no profile yet" — recorded as absent, not retained
		m.profile = profile
	}()
}

// waitFetches blocks until all dispatched profile fetches have completed.
// Test helper; production readers use Snapshot.
func (m *Manager) waitFetches() {
	m.fetches.Wait()
}
