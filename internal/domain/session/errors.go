package session

import "errors"

var (
	// ErrAlreadyConnected is returned when a challenge is requested for a
	// session that already has an open connection.
	ErrAlreadyConnected = errors.New("session already connected")

	// ErrSessionNotFound is returned for operations on an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrChallengeUnavailable is returned when no challenge could be
	// produced within the settle window.
	ErrChallengeUnavailable = errors.New("challenge not available yet")
)
