package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/message-mint/whatsapp-api/internal/domain/account"
	"github.com/message-mint/whatsapp-api/internal/infrastructure/metrics"
	"github.com/message-mint/whatsapp-api/internal/transport"
)

type fakeConnector struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (c *fakeConnector) Connect(_ context.Context, id string) (transport.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, id)
	if c.fail[id] {
		return nil, errors.New("dial refused")
	}
	return newFakeClient(), nil
}

func (c *fakeConnector) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func activeAccounts(n int) []*account.Account {
	accts := make([]*account.Account, n)
	for i := range accts {
		accts[i] = &account.Account{
			Token:  fmt.Sprintf("token-%02d", i),
			Status: account.StatusActive,
		}
	}
	return accts
}

func TestStartAllBatchMath(t *testing.T) {
	clock := clockwork.NewFakeClock()
	connector := &fakeConnector{fail: map[string]bool{
		"token-03": true,
		"token-11": true,
		"token-17": true,
		"token-24": true,
	}}
	repo := newFakeAccountRepo()
	repo.active = activeAccounts(25)

	o := NewOrchestrator(
		OrchestratorConfig{BatchSize: 10, BatchPause: time.Second},
		connector, repo, clock, zerolog.Nop(),
	)

	var (
		report Report
		err    error
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		report, err = o.StartAll(context.Background())
	}()

	// Two pauses separate the three batches; each waits on the clock.
	clock.BlockUntil(1)
	if got := connector.callCount(); got != 10 {
		t.Fatalf("first batch issued %d connects, want 10", got)
	}
	clock.Advance(time.Second)

	clock.BlockUntil(1)
	if got := connector.callCount(); got != 20 {
		t.Fatalf("second batch issued %d total connects, want 20", got)
	}
	clock.Advance(time.Second)

	<-done
	if err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if report.Total != 25 || report.Batches != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Started+report.Failed != report.Total {
		t.Fatalf("started %d + failed %d != total %d", report.Started, report.Failed, report.Total)
	}
	if report.Started != 21 || report.Failed != 4 {
		t.Fatalf("unexpected outcome counts %+v", report)
	}
	if got := connector.callCount(); got != 25 {
		t.Fatalf("issued %d connects, want 25", got)
	}
}

func TestStartAllWithNoEligibleSessions(t *testing.T) {
	o := NewOrchestrator(
		OrchestratorConfig{BatchSize: 10, BatchPause: time.Second},
		&fakeConnector{}, newFakeAccountRepo(), clockwork.NewFakeClock(), zerolog.Nop(),
	)

	report, err := o.StartAll(context.Background())
	if err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if report.Total != 0 || report.Batches != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestStartAllSingleBatchSkipsPause(t *testing.T) {
	clock := clockwork.NewFakeClock()
	connector := &fakeConnector{}
	repo := newFakeAccountRepo()
	repo.active = activeAccounts(7)

	o := NewOrchestrator(
		OrchestratorConfig{BatchSize: 10, BatchPause: time.Second},
		connector, repo, clock, zerolog.Nop(),
	)

	// Must complete without anyone advancing the clock.
	report, err := o.StartAll(context.Background())
	if err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if report.Batches != 1 || report.Started != 7 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestMonitorConnections(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.statusCt[account.StatusActive] = 3
	repo.statusCt[account.StatusInactive] = 7

	o := NewOrchestrator(
		OrchestratorConfig{},
		&fakeConnector{}, repo, clockwork.NewFakeClock(), zerolog.Nop(),
	)

	if err := o.MonitorConnections(context.Background()); err != nil {
		t.Fatalf("MonitorConnections: %v", err)
	}
	if got := testutil.ToFloat64(metrics.AccountsConnected); got != 3 {
		t.Fatalf("connected gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.AccountsDisconnected); got != 7 {
		t.Fatalf("disconnected gauge = %v, want 7", got)
	}
}
