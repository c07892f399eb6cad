// Package instance persists sp_whatsapp_sessions rows.
package instance

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/database/entities"
	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

// Repository persists instance session rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an instance repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByInstanceID fetches the row for an external instance id. Returns nil
// without error when absent.
func (r *Repository) FindByInstanceID(ctx context.Context, instanceID string) (*domain.Instance, error) {
	var entity entities.WhatsAppSession
	if err := r.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch session row",
			err,
			"instance-find-db",
		)
	}
	return entity.EtoD(), nil
}

// Update applies a partial update to the row for the instance id. Matching
// zero rows is not an error.
func (r *Repository) Update(ctx context.Context, instanceID string, patch map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.WhatsAppSession{}).
		Where("instance_id = ?", instanceID).
		Updates(patch).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update session row",
			err,
			"instance-update-db",
		)
	}
	return nil
}

// Delete removes the row for the instance id. Absence is not an error.
func (r *Repository) Delete(ctx context.Context, instanceID string) error {
	if err := r.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Delete(&entities.WhatsAppSession{}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete session row",
			err,
			"instance-delete-db",
		)
	}
	return nil
}

// CountByStatus counts session rows with the given status flag.
func (r *Repository) CountByStatus(ctx context.Context, status int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.WhatsAppSession{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count session rows",
			err,
			"instance-count-db",
		)
	}
	return count, nil
}

// FindByTeamID fetches every session row owned by a team.
func (r *Repository) FindByTeamID(ctx context.Context, teamID int64) ([]*domain.Instance, error) {
	var rows []entities.WhatsAppSession
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list session rows by team",
			err,
			"instance-find-team-db",
		)
	}

	instances := make([]*domain.Instance, len(rows))
	for i := range rows {
		instances[i] = rows[i].EtoD()
	}
	return instances, nil
}
