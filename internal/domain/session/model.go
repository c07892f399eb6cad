// Package session owns the lifecycle of live WhatsApp connections: one
// managed session per tenant token, driven through connect, challenge,
// reconnect, idle-timeout and cleanup.
package session

import (
	"sync"

	"github.com/message-mint/whatsapp-api/internal/transport"
)

// State is the lifecycle phase of a managed session.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAwaitingChallenge
	StateOpen
	StateReconnecting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAwaitingChallenge:
		return "awaiting_challenge"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// ChallengeKind selects how a session is authorized by a human.
type ChallengeKind string

const (
	// ChallengeQR is a scannable code rendered as an image data URI.
	ChallengeQR ChallengeKind = "qr"

	// ChallengePairingCode is a short numeric code typed on the phone.
	ChallengePairingCode ChallengeKind = "paircode"
)

// Challenge is an authentication artifact returned to the caller.
type Challenge struct {
	Kind    ChallengeKind `json:"kind"`
	Payload string        `json:"payload"`
}

// Info is a point-in-time snapshot of a managed session.
type Info struct {
	SessionID         string `json:"session_id"`
	Status            string `json:"status"`
	ReconnectAttempts int    `json:"reconnect_attempts"`
}

// LogoutResult reports the outcome of an operator-initiated logout.
type LogoutResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// managed is the registry record for one session id. Its mutex serializes
// state transitions for that id; registry membership is guarded separately
// by the manager.
type managed struct {
	id string

	mu       sync.Mutex
	state    State
	client   transport.Client
	attempts int
	dialing  bool
	dialErr  error

	// ready is closed when the in-flight dial settles (client set or
	// dialErr recorded). Replaced on every redial.
	ready chan struct{}
}

// settleLocked records the dial outcome and releases waiters on the ready
// channel. Callers hold s.mu. Safe to call when no dial is in flight.
func (s *managed) settleLocked(err error) {
	if !s.dialing {
		return
	}
	s.dialing = false
	s.dialErr = err
	close(s.ready)
}

func (s *managed) snapshot() (State, transport.Client, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.client, s.attempts
}

func (s *managed) isOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateOpen && s.client != nil
}
