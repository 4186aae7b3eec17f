package domain

import "time"

// User models a credential record in the auth store. Application-level
// identity data lives in UserProfile, keyed by the same user id.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
