package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/message-mint/whatsapp-api/internal/config"
	instancedomain "github.com/message-mint/whatsapp-api/internal/domain/instance"
	"github.com/message-mint/whatsapp-api/internal/domain/session"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/challengecache"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/credentials"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/crontab"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/database"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/logger"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/qrimage"
	accountrepo "github.com/message-mint/whatsapp-api/internal/infrastructure/repository/account"
	instancerepo "github.com/message-mint/whatsapp-api/internal/infrastructure/repository/instance"
	teamrepo "github.com/message-mint/whatsapp-api/internal/infrastructure/repository/team"
	"github.com/message-mint/whatsapp-api/internal/interfaces/httpserver"
	"github.com/message-mint/whatsapp-api/internal/interfaces/httpserver/handlers/instancehandler"
	v1 "github.com/message-mint/whatsapp-api/internal/interfaces/httpserver/routes/v1"
	"github.com/message-mint/whatsapp-api/internal/transport"
)

// Application bundles the long-running parts of the service.
type Application struct {
	cfg        *config.Config
	httpServer *httpserver.HttpServer
	crontab    *crontab.Crontab
	manager    *session.Manager
	challenges *challengecache.Cache
	log        zerolog.Logger
}

func NewApplication(
	cfg *config.Config,
	httpServer *httpserver.HttpServer,
	cron *crontab.Crontab,
	manager *session.Manager,
	challenges *challengecache.Cache,
	log zerolog.Logger,
) *Application {
	return &Application{
		cfg:        cfg,
		httpServer: httpServer,
		crontab:    cron,
		manager:    manager,
		challenges: challenges,
		log:        log,
	}
}

// Start runs the HTTP listener and the cron scheduler until ctx is
// cancelled, then tears down live sessions.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.httpServer.Run(gctx) })
	g.Go(func() error { return a.crontab.Run(gctx) })

	err := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	a.manager.Shutdown(shutdownCtx)
	if cerr := a.challenges.Close(); cerr != nil {
		a.log.Error().Err(cerr).Msg("close challenge cache")
	}
	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        cfg.LogLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	factory, err := transport.Open(cfg.TransportDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("open transport driver")
	}

	accounts := accountrepo.NewRepository(db)
	instances := instancerepo.NewRepository(db)
	teams := teamrepo.NewRepository(db)

	clock := clockwork.NewRealClock()
	challenges := challengecache.NewWithClock(cfg.ChallengeTTL, clock)
	challenges.StartCleanupRoutine(cfg.ChallengeCleanup)

	manager := session.NewManager(
		session.Config{
			ReconnectInterval:    cfg.ReconnectInterval,
			IdleTimeout:          cfg.SessionIdleTimeout,
			ChallengeSettleDelay: cfg.ChallengeSettleDelay,
		},
		factory,
		credentials.NewFileStore(cfg.SessionStoragePath),
		qrimage.NewRenderer(cfg.QRImageSize),
		challenges,
		accounts,
		instances,
		clock,
		log,
	)

	orchestrator := session.NewOrchestrator(
		session.OrchestratorConfig{
			BatchSize:  cfg.StartupBatchSize,
			BatchPause: cfg.StartupBatchPause,
		},
		manager,
		accounts,
		clock,
		log,
	)

	validator := instancedomain.NewService(teams, instances, log)
	handler := instancehandler.NewInstanceHandler(manager, validator, log)
	httpServer := httpserver.New(cfg, log, v1.NewV1Route(handler))
	cron := crontab.NewCrontab(orchestrator, cfg.StartupEnabled)

	app := NewApplication(cfg, httpServer, cron, manager, challenges, log)
	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
