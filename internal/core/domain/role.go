package domain

import "fmt"

// Role is the closed set of authorization levels attached to a profile.
type Role string

const (
	RoleVisitor   Role = "visitor"
	RoleArtist    Role = "artist"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw string at the deserialization boundary.
// Call sites must never re-derive role semantics from free-form strings.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleVisitor, RoleArtist, RoleOrganizer, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// RoleOrVisitor parses s and falls back to visitor when s is empty or
// unknown. Used where a missing role must degrade to the baseline, not fail.
func RoleOrVisitor(s string) Role {
	r, err := ParseRole(s)
	if err != nil {
		return RoleVisitor
	}
	return r
}
