package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/message-mint/whatsapp-api/internal/domain/account"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/metrics"
	"github.com/message-mint/whatsapp-api/internal/transport"
)

// Connector is the subset of the Manager the orchestrator drives.
type Connector interface {
	Connect(ctx context.Context, id string) (transport.Client, error)
}

// OrchestratorConfig tunes the batch startup run.
type OrchestratorConfig struct {
	// BatchSize is how many sessions are dialed concurrently per batch.
	BatchSize int

	// BatchPause is the delay between consecutive batches.
	BatchPause time.Duration
}

// Report summarizes one batch startup run.
type Report struct {
	Total    int           `json:"total"`
	Started  int           `json:"started"`
	Failed   int           `json:"failed"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}

// Orchestrator restores the sessions that were active before a restart and
// reports aggregate connection counts on a fixed cadence.
type Orchestrator struct {
	cfg       OrchestratorConfig
	connector Connector
	accounts  account.Repository
	clock     clockwork.Clock
	log       zerolog.Logger
}

func NewOrchestrator(
	cfg OrchestratorConfig,
	connector Connector,
	accounts account.Repository,
	clock clockwork.Clock,
	log zerolog.Logger,
) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &Orchestrator{
		cfg:       cfg,
		connector: connector,
		accounts:  accounts,
		clock:     clock,
		log:       log.With().Str("component", "startup-orchestrator").Logger(),
	}
}

// StartAll reconnects every account flagged active, in batches of
// cfg.BatchSize with cfg.BatchPause between them. A batch's dials run
// concurrently and must all settle before the next batch begins.
// Per-session failures are counted, never fatal.
func (o *Orchestrator) StartAll(ctx context.Context) (Report, error) {
	begin := o.clock.Now()

	accts, err := o.accounts.FindByStatus(ctx, account.StatusActive)
	if err != nil {
		return Report{}, err
	}

	report := Report{Total: len(accts)}
	if len(accts) == 0 {
		o.log.Info().Msg("no active sessions to restore")
		return report, nil
	}

	o.log.Info().
		Int("total", report.Total).
		Int("batch_size", o.cfg.BatchSize).
		Msg("restoring active sessions")

	var started, failed atomic.Int64
	for offset := 0; offset < len(accts); offset += o.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := offset + o.cfg.BatchSize
		if end > len(accts) {
			end = len(accts)
		}
		batch := accts[offset:end]
		report.Batches++

		var wg sync.WaitGroup
		for _, acct := range batch {
			wg.Add(1)
			go func(token string) {
				defer wg.Done()
				if _, err := o.connector.Connect(ctx, token); err != nil {
					failed.Add(1)
					o.log.Warn().Err(err).Str("session_id", token).Msg("failed to restore session")
					return
				}
				started.Add(1)
			}(acct.Token)
		}
		wg.Wait()

		if end < len(accts) {
			o.clock.Sleep(o.cfg.BatchPause)
		}
	}

	report.Started = int(started.Load())
	report.Failed = int(failed.Load())
	report.Duration = o.clock.Since(begin)

	metrics.RecordStartup(report.Started, report.Failed, report.Duration.Seconds())
	o.log.Info().
		Int("started", report.Started).
		Int("failed", report.Failed).
		Int("batches", report.Batches).
		Dur("duration", report.Duration).
		Msg("session restore complete")
	return report, nil
}

// MonitorConnections reports the persisted connected/disconnected account
// counts. It reads the database rather than the in-memory registry so the
// numbers match what other services of the platform see.
func (o *Orchestrator) MonitorConnections(ctx context.Context) error {
	connected, err := o.accounts.CountByStatus(ctx, account.StatusActive)
	if err != nil {
		return err
	}
	disconnected, err := o.accounts.CountByStatus(ctx, account.StatusInactive)
	if err != nil {
		return err
	}

	metrics.SetAccountCounts(connected, disconnected)
	o.log.Info().
		Int64("connected", connected).
		Int64("disconnected", disconnected).
		Msg("connection status")
	return nil
}
