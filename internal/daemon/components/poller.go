package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/concurrency"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/daemon"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/hacktivity"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/ledger"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/poller"
)

type PollerComponent struct {
	cfg        *config.Config
	sessComp   *SessionComponent
	fwdComp    *ForwardersComponent
	poller     *poller.Poller
	ledger     *ledger.Ledger
	cancel     context.CancelFunc
	done       chan struct{}
	running    bool
	mu         sync.RWMutex
}

func NewPollerComponent(cfg *config.Config, sessComp *SessionComponent, fwdComp *ForwardersComponent) *PollerComponent {
	return &PollerComponent{
		cfg:      cfg,
		sessComp: sessComp,
		fwdComp:  fwdComp,
	}
}

func (p *PollerComponent) Name() string {
	return "Poller"
}

func (p *PollerComponent) Dependencies() []string {
	return []string{"Session", "Forwarders"}
}

func (p *PollerComponent) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ttl, err := config.DurationOrDefault(p.cfg.Ledger.TTL, config.DefaultLedgerTTL)
	if err != nil {
		return fmt.Errorf("parse ledger ttl: %w", err)
	}
	p.ledger = ledger.New(ttl)

	sess := p.sessComp.GetSession()
	if sess == nil {
		return fmt.Errorf("session not initialized")
	}
	fetcher := hacktivity.NewFetcher(p.cfg.Hacktivity, sess)

	pol, err := poller.New(sess, fetcher, p.ledger, p.fwdComp.Forwarders(), p.cfg.Poll)
	if err != nil {
		return fmt.Errorf("create poller: %w", err)
	}
	p.poller = pol

	slog.Info("Poller initialized", "component", p.Name())
	return nil
}

func (p *PollerComponent) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	done := p.done
	concurrency.SafeGo(func() {
		defer close(done)
		if err := p.poller.Run(runCtx); err != nil && runCtx.Err() == nil {
			slog.Error("Poller exited unexpectedly", "component", p.Name(), "error", err)
		}
	}, nil)

	return nil
}

func (p *PollerComponent) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("poller did not stop in time: %w", ctx.Err())
	case <-time.After(5 * time.Second):
		return fmt.Errorf("poller did not stop in time")
	}
}

func (p *PollerComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	health := &daemon.ComponentHealth{Name: p.Name(), Healthy: p.running}
	if p.poller != nil {
		health.Error = p.poller.LastError()
	}
	return health, nil
}

// Poller returns the underlying poll loop. Nil before Init.
func (p *PollerComponent) Poller() *poller.Poller {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.poller
}

// Ledger returns the de-duplication ledger. Nil before Init.
func (p *PollerComponent) Ledger() *ledger.Ledger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ledger
}
