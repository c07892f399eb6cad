package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/message-mint/whatsapp-api/internal/domain/account"
	"github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/challengecache"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/metrics"
	"github.com/message-mint/whatsapp-api/internal/transport"
)

// Renderer turns a raw challenge string into a displayable payload,
// typically a data URI with an embedded QR image.
type Renderer interface {
	Render(code string) (string, error)
}

// Config carries the lifecycle intervals of the manager.
type Config struct {
	// ReconnectInterval is the fixed delay before an unexpected close is
	// retried.
	ReconnectInterval time.Duration

	// IdleTimeout is the staleness window after which an open session is
	// force-terminated. Re-armed on every successful (re)connection.
	IdleTimeout time.Duration

	// ChallengeSettleDelay is how long a challenge request waits after
	// dialing for the transport to emit its first challenge.
	ChallengeSettleDelay time.Duration
}

// Manager is the session registry and state machine. It owns at most one
// live transport client per session id and drives each session through
// connect, challenge, reconnect, idle-timeout and cleanup.
type Manager struct {
	cfg      Config
	log      zerolog.Logger
	clock    clockwork.Clock
	factory  transport.Factory
	creds    transport.CredentialStore
	renderer Renderer

	challenges *challengecache.Cache
	accounts   account.Repository
	instances  instance.Repository

	reconnect *timerSet
	idle      *timerSet

	mu       sync.Mutex
	sessions map[string]*managed
}

// NewManager wires the registry with its collaborators.
func NewManager(
	cfg Config,
	factory transport.Factory,
	creds transport.CredentialStore,
	renderer Renderer,
	challenges *challengecache.Cache,
	accounts account.Repository,
	instances instance.Repository,
	clock clockwork.Clock,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		cfg:        cfg,
		log:        log.With().Str("component", "session-manager").Logger(),
		clock:      clock,
		factory:    factory,
		creds:      creds,
		renderer:   renderer,
		challenges: challenges,
		accounts:   accounts,
		instances:  instances,
		reconnect:  newTimerSet(clock),
		idle:       newTimerSet(clock),
		sessions:   make(map[string]*managed),
	}
}

// Connect returns the live client for id, dialing one if none exists. While
// a session is open, repeated calls return the same client. Concurrent
// callers for the same id share a single dial; the returned client may
// still be mid-handshake.
func (m *Manager) Connect(ctx context.Context, id string) (transport.Client, error) {
	if id == "" {
		return nil, fmt.Errorf("connect: empty session id")
	}

	for {
		s := m.slot(id)

		s.mu.Lock()
		switch {
		case s.state == StateTerminated:
			// Cleanup finished between slot() and the lock. The record is
			// stale: drop it and take a fresh one, otherwise a dial would
			// attach a client to a record no longer in the registry.
			s.mu.Unlock()
			m.dropSlot(s)
			continue

		case s.client != nil:
			client := s.client
			s.mu.Unlock()
			return client, nil

		case s.dialing:
			ready := s.ready
			s.mu.Unlock()

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ready:
			}

			s.mu.Lock()
			client, dialErr := s.client, s.dialErr
			s.mu.Unlock()
			if client != nil {
				return client, nil
			}
			if dialErr != nil {
				return nil, dialErr
			}
			// Dial settled with neither client nor error: the session was
			// terminated under us. Take a fresh slot and redial.
			continue

		default:
			s.dialing = true
			s.dialErr = nil
			s.ready = make(chan struct{})
			s.state = StateConnecting
			s.mu.Unlock()
			return m.dial(ctx, s)
		}
	}
}

// slot returns the registry record for id, creating it if absent.
func (m *Manager) slot(id string) *managed {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &managed{id: id, state: StateIdle}
		m.sessions[id] = s
	}
	return s
}

func (m *Manager) lookup(id string) (*managed, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// dropSlot removes s from the registry unless a newer record already
// replaced it.
func (m *Manager) dropSlot(s *managed) {
	m.mu.Lock()
	if m.sessions[s.id] == s {
		delete(m.sessions, s.id)
	}
	m.mu.Unlock()
}

func (m *Manager) dial(ctx context.Context, s *managed) (transport.Client, error) {
	client, err := m.factory.Dial(ctx, s.id, m.creds)

	s.mu.Lock()
	if err != nil {
		wrapped := fmt.Errorf("dial session %s: %w", s.id, err)
		s.state = StateIdle
		s.settleLocked(wrapped)
		s.mu.Unlock()
		// A failed attempt leaves nothing to manage; the next Connect
		// starts from a fresh record.
		m.dropSlot(s)
		m.log.Error().Err(err).Str("session_id", s.id).Msg("dial failed")
		return nil, wrapped
	}
	if s.state == StateTerminated {
		// The session was torn down while the dial was in flight.
		s.settleLocked(nil)
		s.mu.Unlock()
		client.Close(errors.New("session terminated"))
		return nil, ErrSessionNotFound
	}
	s.client = client
	s.settleLocked(nil)
	s.mu.Unlock()

	m.log.Debug().Str("session_id", s.id).Msg("connection dialed, awaiting handshake")
	go m.watch(s, client)
	return client, nil
}

// watch consumes the lifecycle event stream of one client. It exits on the
// close event or when the stream ends.
func (m *Manager) watch(s *managed, client transport.Client) {
	for ev := range client.Events() {
		switch e := ev.(type) {
		case transport.ChallengeEvent:
			m.handleChallenge(s, client, e.Code)
		case transport.OpenEvent:
			m.handleOpen(s, client)
		case transport.ClosedEvent:
			m.handleClose(s, client, e.Reason)
			return
		}
	}
}

func (m *Manager) handleChallenge(s *managed, client transport.Client, code string) {
	s.mu.Lock()
	if s.client != client {
		s.mu.Unlock()
		return
	}
	if s.state != StateOpen {
		s.state = StateAwaitingChallenge
	}
	s.mu.Unlock()

	payload, err := m.renderer.Render(code)
	if err != nil {
		m.log.Error().Err(err).Str("session_id", s.id).Msg("failed to render challenge")
		return
	}
	m.challenges.Set(s.id, payload)
	metrics.ChallengesGeneratedTotal.WithLabelValues(string(ChallengeQR)).Inc()
	m.log.Debug().Str("session_id", s.id).Msg("challenge cached")
}

func (m *Manager) handleOpen(s *managed, client transport.Client) {
	s.mu.Lock()
	if s.client != client {
		s.mu.Unlock()
		return
	}
	s.state = StateOpen
	s.attempts = 0
	s.mu.Unlock()

	m.reconnect.Cancel(s.id)
	m.challenges.Delete(s.id)
	m.idle.Schedule(s.id, m.cfg.IdleTimeout, func() {
		m.expireIdle(s.id)
	})
	metrics.SessionOpensTotal.Inc()
	m.log.Info().Str("session_id", s.id).Msg("session open")

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	m.syncConnected(ctx, s.id, client)
}

func (m *Manager) handleClose(s *managed, client transport.Client, reason transport.DisconnectReason) {
	s.mu.Lock()
	if s.client != client {
		s.mu.Unlock()
		return
	}
	s.client = nil
	terminal := reason.Terminal()
	if !terminal {
		s.state = StateReconnecting
		s.attempts++
	}
	attempts := s.attempts
	s.mu.Unlock()

	metrics.RecordSessionClose(reason.String(), terminal)

	if terminal {
		m.log.Warn().
			Str("session_id", s.id).
			Str("reason", reason.String()).
			Msg("terminal disconnect, cleaning up session")
		m.cleanup(context.Background(), s.id)
		return
	}

	m.log.Warn().
		Str("session_id", s.id).
		Str("reason", reason.String()).
		Int("attempt", attempts).
		Dur("retry_in", m.cfg.ReconnectInterval).
		Msg("connection closed, reconnect scheduled")
	metrics.ReconnectsScheduledTotal.Inc()
	m.reconnect.Schedule(s.id, m.cfg.ReconnectInterval, func() {
		if _, err := m.Connect(context.Background(), s.id); err != nil {
			m.log.Error().Err(err).Str("session_id", s.id).Msg("reconnect failed")
		}
	})
}

// expireIdle fires when a session has been open for the full idle window
// without a fresh handshake. It force-closes the handle and cleans up.
func (m *Manager) expireIdle(id string) {
	s, ok := m.lookup(id)
	if !ok {
		return
	}

	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return
	}
	client := s.client
	s.client = nil
	s.mu.Unlock()

	m.log.Warn().Str("session_id", id).Dur("idle_timeout", m.cfg.IdleTimeout).Msg("session idle timeout, terminating")
	if client != nil {
		client.Close(fmt.Errorf("session idle for %s", m.cfg.IdleTimeout))
	}
	metrics.RecordSessionClose(transport.ReasonTimedOut.String(), true)
	m.cleanup(context.Background(), id)
}

// GetChallenge produces an authentication challenge for id. A cached QR is
// served as-is; otherwise a connection is dialed first. Pairing codes are
// requested live from the transport and bound to phone.
func (m *Manager) GetChallenge(ctx context.Context, id string, kind ChallengeKind, phone string) (*Challenge, error) {
	if s, ok := m.lookup(id); ok && s.isOpen() {
		return nil, ErrAlreadyConnected
	}

	// A still-fresh cached QR answers the request without touching the
	// transport.
	if kind == ChallengeQR {
		if payload, ok := m.challenges.Get(id); ok {
			return &Challenge{Kind: ChallengeQR, Payload: payload}, nil
		}
	}

	client, err := m.Connect(ctx, id)
	if err != nil {
		return nil, err
	}

	// Give the transport a moment to emit its first challenge.
	if m.cfg.ChallengeSettleDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.clock.After(m.cfg.ChallengeSettleDelay):
		}
	}

	if s, ok := m.lookup(id); ok && s.isOpen() {
		return nil, ErrAlreadyConnected
	}

	if kind == ChallengePairingCode {
		code, err := client.PairingCode(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("request pairing code for %s: %w", id, err)
		}
		metrics.ChallengesGeneratedTotal.WithLabelValues(string(ChallengePairingCode)).Inc()
		return &Challenge{Kind: ChallengePairingCode, Payload: code}, nil
	}

	payload, ok := m.challenges.Get(id)
	if !ok {
		return nil, ErrChallengeUnavailable
	}
	return &Challenge{Kind: ChallengeQR, Payload: payload}, nil
}

// Logout deauthorizes and tears down the session. An unknown id yields a
// failed result rather than an error, mirroring what operators expect from
// a logout endpoint.
func (m *Manager) Logout(ctx context.Context, id string) LogoutResult {
	s, ok := m.lookup(id)
	if !ok {
		return LogoutResult{Status: "failed", Message: "no active session for this instance"}
	}

	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if err := m.instances.Update(ctx, id, map[string]any{"status": instance.StatusInactive}); err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to persist logout status")
	}

	if client != nil {
		if err := client.Logout(ctx); err != nil {
			m.log.Warn().Err(err).Str("session_id", id).Msg("transport logout failed, force closing")
			client.Close(errors.New("operator logout"))
		}
	}

	m.cleanup(ctx, id)
	m.log.Info().Str("session_id", id).Msg("session logged out")
	return LogoutResult{Status: "success", Message: "session logged out"}
}

// cleanup tears down every artifact tied to id. It is idempotent: repeated
// invocations tolerate already-absent timers, rows, directories and cache
// entries.
func (m *Manager) cleanup(ctx context.Context, id string) {
	m.reconnect.Cancel(id)
	m.idle.Cancel(id)
	m.challenges.Delete(id)

	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.mu.Lock()
		client := s.client
		s.client = nil
		s.state = StateTerminated
		s.settleLocked(nil)
		s.mu.Unlock()
		if client != nil {
			client.Close(errors.New("session terminated"))
		}
	}

	if err := m.instances.Delete(ctx, id); err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to delete session row")
	}
	if err := m.accounts.UpdateByToken(ctx, id, map[string]any{
		"status":  account.StatusInactive,
		"changed": m.clock.Now().Unix(),
	}); err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to deactivate account")
	}
	if err := m.creds.Delete(id); err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("failed to remove credentials")
	}
}

// Connected reports whether id has a live, open connection.
func (m *Manager) Connected(id string) bool {
	s, ok := m.lookup(id)
	return ok && s.isOpen()
}

// Identity returns the authenticated identity for an open session.
func (m *Manager) Identity(id string) (*transport.Identity, bool) {
	s, ok := m.lookup(id)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	client := s.client
	open := s.state == StateOpen
	s.mu.Unlock()
	if !open || client == nil {
		return nil, false
	}
	return client.Identity()
}

// Info returns a snapshot of the session's lifecycle state.
func (m *Manager) Info(id string) (Info, error) {
	s, ok := m.lookup(id)
	if !ok {
		return Info{}, ErrSessionNotFound
	}
	state, _, attempts := s.snapshot()
	return Info{SessionID: id, Status: state.String(), ReconnectAttempts: attempts}, nil
}

// Shutdown closes every live connection and cancels all pending timers.
// Sessions keep their persisted state so a later startup can restore them.
func (m *Manager) Shutdown(ctx context.Context) {
	m.reconnect.CancelAll()
	m.idle.CancelAll()

	m.mu.Lock()
	sessions := make([]*managed, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*managed)
	m.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		client := s.client
		s.client = nil
		s.state = StateTerminated
		s.settleLocked(nil)
		s.mu.Unlock()
		if client != nil {
			client.Close(errors.New("service shutting down"))
		}
	}
	m.log.Info().Int("sessions", len(sessions)).Msg("session manager shut down")
}
