package components

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
)

func TestForwardersComponentRequiresAtLeastOne(t *testing.T) {
	comp := NewForwardersComponent(config.ForwardersConfig{})
	if err := comp.Init(context.Background()); err == nil {
		t.Error("Expected error when no forwarder is enabled")
	}
}

func TestForwardersComponentSlackOnly(t *testing.T) {
	comp := NewForwardersComponent(config.ForwardersConfig{
		Slack: config.SlackConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/T/B/X",
		},
	})
	if err := comp.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	fwds := comp.Forwarders()
	if len(fwds) != 1 {
		t.Fatalf("Expected 1 forwarder, got %d", len(fwds))
	}
	if fwds[0].Name() != "slack" {
		t.Errorf("Expected slack forwarder, got %s", fwds[0].Name())
	}

	health, err := comp.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() failed: %v", err)
	}
	if !health.Healthy {
		t.Errorf("Expected healthy component, got %+v", health)
	}
}

func TestForwardersComponentSlackMissingWebhook(t *testing.T) {
	comp := NewForwardersComponent(config.ForwardersConfig{
		Slack: config.SlackConfig{Enabled: true},
	})
	if err := comp.Init(context.Background()); err == nil {
		t.Error("Expected error for enabled slack without webhook URL")
	}
}

func TestSessionComponentInit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="csrf-token" content="tok" /></head></html>`)
	}))
	defer srv.Close()

	comp := NewSessionComponent(config.HacktivityConfig{LandingURL: srv.URL})
	if err := comp.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if comp.GetSession() == nil {
		t.Fatal("Expected session after Init")
	}
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if comp.GetSession().LastRefreshed().IsZero() {
		t.Error("Expected warm token after Start")
	}
}

// An unreachable landing page must not stop the daemon from starting; the
// poll loop retries authentication on its own.
func TestSessionComponentStartToleratesAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	comp := NewSessionComponent(config.HacktivityConfig{LandingURL: srv.URL})
	if err := comp.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := comp.Start(context.Background()); err != nil {
		t.Errorf("Expected Start to tolerate a failed warm-up, got %v", err)
	}
}

func TestPollerComponentInitValidatesWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="csrf-token" content="tok" /></head></html>`)
	}))
	defer srv.Close()

	cfg := &config.Config{
		Hacktivity: config.HacktivityConfig{LandingURL: srv.URL},
		Poll:       config.PollConfig{Interval: "60s", Lookback: "30s"},
		Forwarders: config.ForwardersConfig{
			Slack: config.SlackConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/services/T/B/X"},
		},
	}

	sessComp := NewSessionComponent(cfg.Hacktivity)
	if err := sessComp.Init(context.Background()); err != nil {
		t.Fatalf("session Init() failed: %v", err)
	}
	fwdComp := NewForwardersComponent(cfg.Forwarders)
	if err := fwdComp.Init(context.Background()); err != nil {
		t.Fatalf("forwarders Init() failed: %v", err)
	}

	comp := NewPollerComponent(cfg, sessComp, fwdComp)
	if err := comp.Init(context.Background()); err == nil {
		t.Error("Expected Init to reject lookback <= interval")
	}
}
