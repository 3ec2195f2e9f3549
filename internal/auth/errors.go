package auth

import "errors"

// Failure tags for the login flow. The messages are user-facing; route
// handlers surface them verbatim.
var (
	ErrUserNotFound   = errors.New("no user found with this email")
	ErrLinkNotFound   = errors.New("invalid magic link")
	ErrLinkExpired    = errors.New("magic link has expired")
	ErrDeliveryFailed = errors.New("could not send email")
	ErrPersistence    = errors.New("storage failure")
)
