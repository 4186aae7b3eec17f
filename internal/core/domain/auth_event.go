package domain

// AuthEventType identifies a push-style auth state change.
type AuthEventType string

const (
	AuthSignedIn       AuthEventType = "signed_in"
	AuthSignedOut      AuthEventType = "signed_out"
	AuthTokenRefreshed AuthEventType = "token_refreshed"
)

// AuthEvent is published whenever sign-in, sign-out or token refresh occurs.
// Session is nil for signed-out events.
type AuthEvent struct {
	Type      AuthEventType
	SessionID string
	Session   *Session
}
