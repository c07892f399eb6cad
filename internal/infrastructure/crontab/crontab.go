// Package crontab schedules the background jobs of the service: restoring
// active sessions once at boot and reporting connection counts every minute.
package crontab

import (
	"context"
	"time"

	ctab "github.com/mileusna/crontab"

	"github.com/message-mint/whatsapp-api/internal/domain/session"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/logger"
	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

const (
	// MonitorSchedule runs the connection status report every minute.
	MonitorSchedule = "* * * * *"

	// CronJobTimeout bounds each job execution.
	CronJobTimeout = 5 * time.Minute
)

type Crontab struct {
	ctab           *ctab.Crontab
	orchestrator   *session.Orchestrator
	startupEnabled bool
}

func NewCrontab(orchestrator *session.Orchestrator, startupEnabled bool) *Crontab {
	return &Crontab{
		ctab:           ctab.New(),
		orchestrator:   orchestrator,
		startupEnabled: startupEnabled,
	}
}

// Run restores sessions once, schedules the monitor job and blocks until
// ctx is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	if c.startupEnabled {
		if _, err := c.orchestrator.StartAll(ctx); err != nil {
			// A failed restore leaves sessions reconnectable on demand.
			log.Error().Err(err).Msg("session restore failed")
		}
	}

	if err := c.ctab.AddJob(MonitorSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		if err := c.orchestrator.MonitorConnections(jobCtx); err != nil {
			log.Error().Err(err).Msg("connection monitor failed")
		}
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to add monitor job")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}
