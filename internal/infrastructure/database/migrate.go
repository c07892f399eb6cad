package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/message-mint/whatsapp-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies schema changes for the session domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Account{},
		&entities.WhatsAppSession{},
		&entities.Team{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
