// Package team persists sp_team permission rows.
package team

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/database/entities"
	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

// Repository looks up team permission rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a team repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByIDs fetches a team by its public ids string. Returns nil without
// error when absent; the domain layer decides how to report it.
func (r *Repository) FindByIDs(ctx context.Context, ids string) (*domain.Team, error) {
	var entity entities.Team
	if err := r.db.WithContext(ctx).
		Where("ids = ?", ids).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch team",
			err,
			"team-find-db",
		)
	}
	return entity.EtoD(), nil
}
