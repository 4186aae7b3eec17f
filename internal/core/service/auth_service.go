package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
)

// AuthEventSink receives auth state changes for push-style distribution.
type AuthEventSink interface {
	Publish(evt domain.AuthEvent)
}

// AuthService implements registration, password sign-in and sign-out.
// Sign-in does not update any session cache directly: consumers observe
// the change through the published AuthEvent.
type AuthService struct {
	users        ports.UserRepository
	profiles     ports.ProfileRepository
	sessions     ports.SessionStore
	events       AuthEventSink
	jwtSecret    string
	sessionTTL   time.Duration
	oauthBaseURL string
	log          zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	sessions ports.SessionStore,
	events AuthEventSink,
	jwtSecret string,
	sessionTTL time.Duration,
	oauthBaseURL string,
	log zerolog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:        users,
		profiles:     profiles,
		sessions:     sessions,
		events:       events,
		jwtSecret:    jwtSecret,
		sessionTTL:   sessionTTL,
		oauthBaseURL: oauthBaseURL,
		log:          log,
	}
}

// Register creates a credential record and its profile row in a single
// transaction, so password-registered users always have a profile by the
// time they sign in.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, *domain.UserProfile, error) {
	if in.Email == "" || in.Password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, nil, err
	}
	if role == domain.RoleAdmin {
		// admin accounts are provisioned out of band, never self-service
		return nil, nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	profile := &domain.UserProfile{
		DisplayName: in.DisplayName,
		Role:        role,
		Email:       in.Email,
		Phone:       in.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// One transaction for both rows: an orphan credential would pin the
	// unique email while the chosen role is lost with the missing profile.
	user, err := s.users.CreateWithProfile(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, profile)
	if err != nil {
		return nil, nil, err
	}

	return user, profile, nil
}

// SignInWithPassword verifies credentials, creates a session record and signs
// a token referencing it. A credential rejection and an unreachable backend
// are distinct errors so callers can surface different messages.
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthUnreachable, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Metadata:  map[string]string{},
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	// Role hint in session metadata: a fallback for consumers that read the
	// session before the profile fetch lands.
	if profile, perr := s.profiles.FindByUserID(ctx, user.ID); perr == nil {
		sess.Metadata["role"] = string(profile.Role)
	}

	if err := s.sessions.Put(ctx, sess, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthUnreachable, err)
	}

	token, err := s.signToken(user.ID, sess)
	if err != nil {
		return nil, err
	}

	// The session cache is updated by this push, not by the SignIn return
	// path. Callers reading cached state immediately may still observe the
	// pre-login state.
	s.events.Publish(domain.AuthEvent{Type: domain.AuthSignedIn, SessionID: sess.ID, Session: sess})

	s.log.Info().Str("user_id", user.ID).Str("session_id", sess.ID).Msg("signed in")

	return &ports.SignInResult{Token: token, Session: sess, User: user}, nil
}

// SignOut deletes the session record and publishes the signed-out event.
// A missing session is not an error: sign-out is idempotent.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("session delete failed")
	}
	s.events.Publish(domain.AuthEvent{Type: domain.AuthSignedOut, SessionID: sessionID})
	return nil
}

// GetSession resolves a persisted session; expired sessions resolve to
// ErrSessionNotFound, never to a stale record.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now().UTC()) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

var oauthProviders = map[string]struct{}{
	"google":   {},
	"facebook": {},
}

// OAuthURL builds the consent redirect for an external provider. The browser
// leaves the app here and only returns after the provider redirects back.
func (s *AuthService) OAuthURL(provider, redirectTo string) (string, error) {
	if _, ok := oauthProviders[provider]; !ok {
		return "", fmt.Errorf("unknown oauth provider %q", provider)
	}
	u, err := url.Parse(s.oauthBaseURL)
	if err != nil {
		return "", fmt.Errorf("oauth base url: %w", err)
	}
	u = u.JoinPath("oauth", provider, "authorize")
	q := u.Query()
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *AuthService) signToken(userID string, sess *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"sid": sess.ID,
		"exp": sess.ExpiresAt.Unix(),
	}
	if role, ok := sess.MetadataRole(); ok {
		claims["role"] = string(role)
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
