// Package transport defines the boundary to the WhatsApp protocol library.
// The session manager only depends on the interfaces here; concrete protocol
// drivers register themselves the way database/sql drivers do.
package transport

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Identity describes the authenticated account behind an open connection.
type Identity struct {
	JID  string
	Name string
}

// Event is a connection lifecycle notification emitted by a Client.
type Event interface{ isEvent() }

// ChallengeEvent carries a fresh authentication challenge string that a
// human must scan or enter to authorize the session.
type ChallengeEvent struct {
	Code string
}

// OpenEvent signals that the handshake completed and the connection is live.
type OpenEvent struct{}

// ClosedEvent signals that the connection dropped. Reason decides whether
// the session manager retries.
type ClosedEvent struct {
	Reason DisconnectReason
}

func (ChallengeEvent) isEvent() {}
func (OpenEvent) isEvent()      {}
func (ClosedEvent) isEvent()    {}

// DisconnectReason is the platform status code attached to a close.
type DisconnectReason int

const (
	ReasonUnknown            DisconnectReason = 0
	ReasonLoggedOut          DisconnectReason = 401
	ReasonClientRejected     DisconnectReason = 405
	ReasonTimedOut           DisconnectReason = 408
	ReasonConnectionClosed   DisconnectReason = 428
	ReasonConnectionReplaced DisconnectReason = 440
	ReasonBadSession         DisconnectReason = 500
	ReasonServiceUnavailable DisconnectReason = 503
	ReasonRestartRequired    DisconnectReason = 515
)

// Terminal reports whether the reason must not trigger an automatic
// reconnect: explicit logout, expired auth, corrupted session state, or a
// client/protocol rejection.
func (r DisconnectReason) Terminal() bool {
	switch r {
	case ReasonLoggedOut, ReasonTimedOut, ReasonBadSession, ReasonClientRejected:
		return true
	}
	return false
}

func (r DisconnectReason) String() string {
	switch r {
	case ReasonLoggedOut:
		return "logged_out"
	case ReasonClientRejected:
		return "client_rejected"
	case ReasonTimedOut:
		return "timed_out"
	case ReasonConnectionClosed:
		return "connection_closed"
	case ReasonConnectionReplaced:
		return "connection_replaced"
	case ReasonBadSession:
		return "bad_session"
	case ReasonServiceUnavailable:
		return "service_unavailable"
	case ReasonRestartRequired:
		return "restart_required"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// CredentialStore holds the durable key material the protocol library needs
// per session.
type CredentialStore interface {
	// Prepare ensures storage exists for the session and returns its path.
	Prepare(sessionID string) (string, error)

	// Delete removes all stored key material for the session. Absence is
	// not an error.
	Delete(sessionID string) error
}

// Client is one live protocol connection. The handshake completes
// asynchronously: consumers watch Events until OpenEvent or ClosedEvent.
type Client interface {
	// Events returns the lifecycle event stream. The channel is closed
	// when the connection is permanently gone.
	Events() <-chan Event

	// Identity returns the authenticated account, available once open.
	Identity() (*Identity, bool)

	// PairingCode asks the platform for a numeric pairing code bound to
	// the given phone number.
	PairingCode(ctx context.Context, phone string) (string, error)

	// ProfilePictureURL fetches the avatar URL for a JID, empty when the
	// account has none.
	ProfilePictureURL(ctx context.Context, jid string) (string, error)

	// Close tears the connection down with the given cause. It does not
	// deauthorize the stored credentials.
	Close(cause error)

	// Logout deauthorizes the session on the platform and closes the
	// connection.
	Logout(ctx context.Context) error
}

// Factory dials new protocol connections.
type Factory interface {
	// Dial initializes credential storage for the session and constructs a
	// connection. The returned client is not yet open; the handshake
	// progresses via its event stream.
	Dial(ctx context.Context, sessionID string, creds CredentialStore) (Client, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// Register makes a protocol driver available under the given name. It
// panics on duplicate registration, mirroring database/sql.
func Register(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if factory == nil {
		panic("transport: Register factory is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("transport: Register called twice for driver " + name)
	}
	drivers[name] = factory
}

// Open returns the registered driver with the given name.
func Open(name string) (Factory, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	factory, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("transport: unknown driver %q (forgotten import?), registered: %v", name, driverNames())
	}
	return factory, nil
}

// driverNames is called with driversMu held.
func driverNames() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
