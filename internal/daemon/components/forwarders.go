package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/daemon"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/forward"
)

type ForwardersComponent struct {
	cfg        config.ForwardersConfig
	forwarders []forward.Forwarder
	nats       *forward.NATSForwarder
	mu         sync.RWMutex
}

func NewForwardersComponent(cfg config.ForwardersConfig) *ForwardersComponent {
	return &ForwardersComponent{cfg: cfg}
}

func (f *ForwardersComponent) Name() string {
	return "Forwarders"
}

func (f *ForwardersComponent) Dependencies() []string {
	return nil
}

func (f *ForwardersComponent) Init(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cfg.Slack.Enabled {
		fwd, err := forward.NewSlackForwarder(f.cfg.Slack.WebhookURL)
		if err != nil {
			return fmt.Errorf("init slack forwarder: %w", err)
		}
		f.forwarders = append(f.forwarders, fwd)
	}

	if f.cfg.Telegram.Enabled {
		fwd, err := forward.NewTelegramForwarder(f.cfg.Telegram.BotToken, f.cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("init telegram forwarder: %w", err)
		}
		f.forwarders = append(f.forwarders, fwd)
	}

	if f.cfg.NATS.Enabled {
		fwd, err := forward.NewNATSForwarder(f.cfg.NATS)
		if err != nil {
			return fmt.Errorf("init nats forwarder: %w", err)
		}
		f.nats = fwd
		f.forwarders = append(f.forwarders, fwd)
	}

	if len(f.forwarders) == 0 {
		return fmt.Errorf("no forwarders enabled; enable at least one of slack, telegram, nats")
	}

	for _, fwd := range f.forwarders {
		slog.Info("Forwarder registered", "component", f.Name(), "forwarder", fwd.Name())
	}
	return nil
}

func (f *ForwardersComponent) Start(ctx context.Context) error {
	return nil
}

func (f *ForwardersComponent) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.nats != nil {
		f.nats.Close()
	}
	return nil
}

func (f *ForwardersComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	health := &daemon.ComponentHealth{Name: f.Name(), Healthy: true}
	for _, fwd := range f.forwarders {
		if err := fwd.Health(ctx); err != nil {
			health.Healthy = false
			health.Error = fmt.Errorf("%s: %w", fwd.Name(), err)
			break
		}
	}
	return health, nil
}

// Forwarders returns the enabled forwarders. Empty before Init.
func (f *ForwardersComponent) Forwarders() []forward.Forwarder {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.forwarders
}
