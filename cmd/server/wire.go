//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/message-mint/whatsapp-api/internal/config"
	instancedomain "github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/domain/session"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/challengecache"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/credentials"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/crontab"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/database"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/logger"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/qrimage"
	accountdomain "github.com/message-mint/whatsapp-api/internal/domain/account"
	accountrepo "github.com/message-mint/whatsapp-api/internal/infrastructure/repository/account"
	instancerepo "github.com/message-mint/whatsapp-api/internal/infrastructure/repository/instance"
	teamrepo "github.com/message-mint/whatsapp-api/internal/infrastructure/repository/team"
	"github.com/message-mint/whatsapp-api/internal/interfaces/httpserver"
	"github.com/message-mint/whatsapp-api/internal/interfaces/httpserver/handlers/instancehandler"
	v1 "github.com/message-mint/whatsapp-api/internal/interfaces/httpserver/routes/v1"
	"github.com/message-mint/whatsapp-api/internal/transport"
)

var sessionSet = wire.NewSet(
	accountrepo.NewRepository,
	wire.Bind(new(accountdomain.Repository), new(*accountrepo.Repository)),
	instancerepo.NewRepository,
	wire.Bind(new(instancedomain.Repository), new(*instancerepo.Repository)),
	teamrepo.NewRepository,
	wire.Bind(new(instancedomain.TeamRepository), new(*teamrepo.Repository)),
	instancedomain.NewService,
	wire.Bind(new(instancehandler.Validator), new(*instancedomain.Service)),
	newCredentialStore,
	wire.Bind(new(transport.CredentialStore), new(*credentials.FileStore)),
	newRenderer,
	wire.Bind(new(session.Renderer), new(*qrimage.Renderer)),
	newChallengeCache,
	newSessionConfig,
	session.NewManager,
	wire.Bind(new(session.Connector), new(*session.Manager)),
	wire.Bind(new(instancehandler.SessionManager), new(*session.Manager)),
	newOrchestratorConfig,
	session.NewOrchestrator,
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		newLogger,
		newClock,
		newDatabaseConfig,
		newGormDB,
		newTransportFactory,
		sessionSet,
		instancehandler.NewInstanceHandler,
		v1.NewV1Route,
		httpserver.New,
		newCrontab,
		NewApplication,
	)
	return nil, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

func newClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        cfg.LogLevel,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newTransportFactory(cfg *config.Config) (transport.Factory, error) {
	return transport.Open(cfg.TransportDriver)
}

func newCredentialStore(cfg *config.Config) *credentials.FileStore {
	return credentials.NewFileStore(cfg.SessionStoragePath)
}

func newRenderer(cfg *config.Config) *qrimage.Renderer {
	return qrimage.NewRenderer(cfg.QRImageSize)
}

func newChallengeCache(cfg *config.Config, clock clockwork.Clock) *challengecache.Cache {
	cache := challengecache.NewWithClock(cfg.ChallengeTTL, clock)
	cache.StartCleanupRoutine(cfg.ChallengeCleanup)
	return cache
}

func newSessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		ReconnectInterval:    cfg.ReconnectInterval,
		IdleTimeout:          cfg.SessionIdleTimeout,
		ChallengeSettleDelay: cfg.ChallengeSettleDelay,
	}
}

func newOrchestratorConfig(cfg *config.Config) session.OrchestratorConfig {
	return session.OrchestratorConfig{
		BatchSize:  cfg.StartupBatchSize,
		BatchPause: cfg.StartupBatchPause,
	}
}

func newCrontab(cfg *config.Config, orchestrator *session.Orchestrator) *crontab.Crontab {
	return crontab.NewCrontab(orchestrator, cfg.StartupEnabled)
}
