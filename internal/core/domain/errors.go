package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthUnreachable    = errors.New("authentication service unreachable")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrForbidden          = errors.New("access forbidden")

	ErrProfileNotFound = errors.New("profile not found")
	ErrSessionNotFound = errors.New("session not found")

	ErrEventNotFound      = errors.New("event not found")
	ErrEventNotPublished  = errors.New("event not published")
	ErrArtistNotFound     = errors.New("artist not found")
	ErrContentNotFound    = errors.New("content not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTicketsUnavailable = errors.New("not enough tickets available")
	ErrAmountMismatch     = errors.New("order totals do not match server pricing")

	ErrPaymentProvider = errors.New("payment provider error")
)
