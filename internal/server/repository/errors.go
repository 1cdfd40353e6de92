package repository

import "errors"

var (
	// ErrNotFound indicates an unknown record or identity id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername indicates a username collision on identity creation.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrSessionMissing indicates a token with no stored session.
	ErrSessionMissing = errors.New("session not found")
	// ErrSessionExpired indicates a session past its expiry; the row is
	// purged when this is returned.
	ErrSessionExpired = errors.New("session expired")
)
