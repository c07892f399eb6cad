// Package instance models the per-tenant WhatsApp session rows and the
// access validation applied before challenge endpoints are served.
package instance

import "context"

// Status values stored on instance rows.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// Instance is one persisted WhatsApp session row.
type Instance struct {
	ID         uint   `json:"id"`
	IDs        string `json:"ids"`
	TeamID     int64  `json:"team_id"`
	InstanceID string `json:"instance_id"`
	Data       string `json:"data"`
	Status     int    `json:"status"`
}

// ProfileData is the JSON blob persisted in an instance's Data column after
// a successful connection.
type ProfileData struct {
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Repository defines instance persistence operations.
type Repository interface {
	// FindByInstanceID returns the row for an external instance id, nil
	// when absent.
	FindByInstanceID(ctx context.Context, instanceID string) (*Instance, error)

	// Update applies a partial update to the row for the instance id.
	Update(ctx context.Context, instanceID string, patch map[string]any) error

	// Delete removes the row for the instance id. Absence is not an error.
	Delete(ctx context.Context, instanceID string) error

	// CountByStatus counts instance rows with the given status flag.
	CountByStatus(ctx context.Context, status int) (int64, error)

	// FindByTeamID returns every instance owned by a team.
	FindByTeamID(ctx context.Context, teamID int64) ([]*Instance, error)
}

// TeamRepository looks up team permission rows by their public ids string.
type TeamRepository interface {
	FindByIDs(ctx context.Context, ids string) (*Team, error)
}

// Team is a team permission row referenced by access tokens.
type Team struct {
	ID   uint
	IDs  string
	Name string
}
