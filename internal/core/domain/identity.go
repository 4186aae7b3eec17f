package domain

import "time"

// Session is the server-issued proof of authentication for one browser.
// It is owned by the auth layer; everything else holds a read-only projection.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Metadata  map[string]string `json:"metadata,omitempty"` // e.g. "role" hint from sign-up
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at time now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// MetadataRole returns the role hint embedded in session metadata, if any.
func (s *Session) MetadataRole() (Role, bool) {
	raw, ok := s.Metadata["role"]
	if !ok {
		return "", false
	}
	r, err := ParseRole(raw)
	if err != nil {
		return "", false
	}
	return r, true
}

// UserProfile is the application-level identity record layered on a Session.
// At most one profile exists per user id.
type UserProfile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DemoIdentity is a persisted stand-in profile used outside the real
// authentication path. It must never satisfy a security-sensitive check.
type DemoIdentity struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	Demo        bool      `json:"demo"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdentityKind tags the Identity variant.
type IdentityKind int

const (
	IdentityAnonymous IdentityKind = iota
	IdentityAuthenticated
	IdentityDemo
)

// Identity is the single tagged-variant type every consumer switches over.
// Authenticated and Demo are mutually exclusive: a demo identity never
// contributes a role to an authenticated principal, and vice versa.
type Identity struct {
	Kind    IdentityKind
	Session *Session     // Authenticated only
	Profile *UserProfile // Authenticated only, may be nil while in flight
	Demo    *DemoIdentity
}

// Anonymous returns the zero identity.
func Anonymous() Identity { return Identity{Kind: IdentityAnonymous} }

// Authenticated builds an authenticated identity. Profile may be nil when
// the profile row does not exist yet.
func Authenticated(sess *Session, profile *UserProfile) Identity {
	return Identity{Kind: IdentityAuthenticated, Session: sess, Profile: profile}
}

// DemoOnly builds a demo identity.
func DemoOnly(d *DemoIdentity) Identity {
	return Identity{Kind: IdentityDemo, Demo: d}
}

// EffectiveRole resolves the role used for authorization decisions.
// Authenticated identities prefer the profile role and fall back to the
// session metadata hint, then to visitor. Demo identities use only their
// own role. Anonymous identities have no role.
func (i Identity) EffectiveRole() (Role, bool) {
	switch i.Kind {
	case IdentityAuthenticated:
		if i.Profile != nil {
			return i.Profile.Role, true
		}
		if i.Session != nil {
			if r, ok := i.Session.MetadataRole(); ok {
				return r, true
			}
		}
		return RoleVisitor, true
	case IdentityDemo:
		if i.Demo != nil {
			return i.Demo.Role, true
		}
	}
	return "", false
}
