// Package account persists sp_accounts rows.
package account

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/message-mint/whatsapp-api/internal/domain/account"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/database/entities"
	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

// Repository persists account rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an account repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByToken fetches the account linked to a session token. Returns nil
// without error when absent, so callers can upsert.
func (r *Repository) FindByToken(ctx context.Context, token string) (*domain.Account, error) {
	var entity entities.Account
	if err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch account by token",
			err,
			"account-find-token-db",
		)
	}
	return entity.EtoD(), nil
}

// FindByStatus fetches every WhatsApp account with the given status flag.
func (r *Repository) FindByStatus(ctx context.Context, status int) ([]*domain.Account, error) {
	var rows []entities.Account
	if err := r.db.WithContext(ctx).
		Where("social_network = ? AND status = ?", "whatsapp", status).
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list accounts by status",
			err,
			"account-find-status-db",
		)
	}

	accounts := make([]*domain.Account, len(rows))
	for i := range rows {
		accounts[i] = rows[i].EtoD()
	}
	return accounts, nil
}

// CountByStatus counts WhatsApp accounts with the given status flag.
func (r *Repository) CountByStatus(ctx context.Context, status int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Account{}).
		Where("social_network = ? AND status = ?", "whatsapp", status).
		Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count accounts by status",
			err,
			"account-count-status-db",
		)
	}
	return count, nil
}

// Create inserts a new account row.
func (r *Repository) Create(ctx context.Context, acct *domain.Account) error {
	entity := entities.NewSchemaAccount(acct)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create account",
			err,
			"account-create-db",
		)
	}
	acct.ID = entity.ID
	return nil
}

// UpdateByID applies a partial update to the row with the given primary key.
func (r *Repository) UpdateByID(ctx context.Context, id uint, patch map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Account{}).
		Where("id = ?", id).
		Updates(patch).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update account",
			err,
			"account-update-id-db",
		)
	}
	return nil
}

// UpdateByToken applies a partial update to the row linked to a session
// token. Matching zero rows is not an error.
func (r *Repository) UpdateByToken(ctx context.Context, token string, patch map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Account{}).
		Where("token = ?", token).
		Updates(patch).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update account by token",
			err,
			"account-update-token-db",
		)
	}
	return nil
}
