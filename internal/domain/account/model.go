// Package account models the social-profile account rows linked to
// WhatsApp sessions.
package account

import "context"

// Status values stored on account rows.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// Account represents one connected WhatsApp profile owned by a team.
type Account struct {
	ID            uint
	IDs           string
	Module        string
	SocialNetwork string
	Category      string
	LoginType     int
	CanPost       int
	TeamID        int64
	PID           string
	Name          string
	Username      string
	Token         string
	Avatar        string
	URL           string
	Tmp           string
	Status        int
	Changed       int64
	Created       int64
}

// Repository defines account persistence operations.
type Repository interface {
	// FindByToken returns the account linked to a session token, nil when
	// absent.
	FindByToken(ctx context.Context, token string) (*Account, error)

	// FindByStatus returns every account with the given status flag.
	FindByStatus(ctx context.Context, status int) ([]*Account, error)

	// CountByStatus counts accounts with the given status flag.
	CountByStatus(ctx context.Context, status int) (int64, error)

	// Create inserts a new account row.
	Create(ctx context.Context, acct *Account) error

	// UpdateByID applies a partial update to the row with the given
	// primary key.
	UpdateByID(ctx context.Context, id uint, patch map[string]any) error

	// UpdateByToken applies a partial update to the row linked to the
	// session token. Absence is not an error.
	UpdateByToken(ctx context.Context, token string, patch map[string]any) error
}
