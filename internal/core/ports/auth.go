package ports

import (
	"context"
	"time"

	"github.com/keralahub/culturalhub/internal/core/domain"
)

// UserRepository persists credential records.
type UserRepository interface {
	// CreateWithProfile inserts the credential and profile rows in one
	// transaction: a failed profile insert must not leave an orphan
	// credential behind its unique email.
	CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.UserProfile) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionStore persists server-side session records (Redis-backed).
type SessionStore interface {
	Put(ctx context.Context, sess *domain.Session, ttl time.Duration) error
	// Get returns domain.ErrSessionNotFound for missing or expired sessions.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// DemoStore persists demo identities, keyed by an opaque demo token.
type DemoStore interface {
	Put(ctx context.Context, token string, identity *domain.DemoIdentity, ttl time.Duration) error
	// Get returns domain.ErrSessionNotFound when the token is unknown or expired.
	Get(ctx context.Context, token string) (*domain.DemoIdentity, error)
	Delete(ctx context.Context, token string) error
}

// SignInResult is returned by a successful password sign-in.
type SignInResult struct {
	Token   string // signed JWT referencing the session
	Session *domain.Session
	User    *domain.User
}

// RegisterInput carries self-service registration data.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string // validated against the closed enum; admin rejected
	Phone       string
}

// AuthService implements registration, sign-in and sign-out.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, *domain.UserProfile, error)
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error)
	SignOut(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	// OAuthURL builds the external consent redirect URL for a provider.
	// The browser completes the flow against the auth backend directly.
	OAuthURL(provider, redirectTo string) (string, error)
}
