package components

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/daemon"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/session"
)

type SessionComponent struct {
	cfg         config.HacktivityConfig
	sess        *session.Session
	initialized bool
	mu          sync.RWMutex
}

func NewSessionComponent(cfg config.HacktivityConfig) *SessionComponent {
	return &SessionComponent{cfg: cfg}
}

func (s *SessionComponent) Name() string {
	return "Session"
}

func (s *SessionComponent) Dependencies() []string {
	return nil
}

func (s *SessionComponent) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := session.New(s.cfg)
	if err != nil {
		return err
	}

	s.sess = sess
	s.initialized = true
	slog.Info("Session initialized", "component", s.Name(), "landing_url", s.cfg.LandingURL)
	return nil
}

func (s *SessionComponent) Start(ctx context.Context) error {
	// Warm the token so the first cycle does not pay for the refresh. Not
	// fatal: the poller refreshes on demand anyway.
	if err := s.sess.EnsureAuthenticated(ctx); err != nil {
		slog.Warn("Initial CSRF refresh failed, poller will retry", "component", s.Name(), "error", err)
	}
	return nil
}

func (s *SessionComponent) Stop(ctx context.Context) error {
	return nil
}

func (s *SessionComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &daemon.ComponentHealth{
		Name:    s.Name(),
		Healthy: s.initialized,
	}, nil
}

// GetSession returns the shared session. Nil before Init.
func (s *SessionComponent) GetSession() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}
