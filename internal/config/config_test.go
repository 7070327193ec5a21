package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SLACK_WEBHOOK_URL", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("NATS_URL", "")

	// We pass nil for cmd to skip flags
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}
	if cfg.Server.LogLevel != DefaultServerLogLevel {
		t.Errorf("Expected default log level %s, got %s", DefaultServerLogLevel, cfg.Server.LogLevel)
	}
	if cfg.Hacktivity.LandingURL != DefaultHacktivityLandingURL {
		t.Errorf("Expected default landing url %s, got %s", DefaultHacktivityLandingURL, cfg.Hacktivity.LandingURL)
	}
	if cfg.Hacktivity.GraphQLURL != DefaultHacktivityGraphQLURL {
		t.Errorf("Expected default graphql url %s, got %s", DefaultHacktivityGraphQLURL, cfg.Hacktivity.GraphQLURL)
	}
	if cfg.Hacktivity.UserAgent != DefaultHacktivityUserAgent {
		t.Errorf("Expected default user agent %s, got %s", DefaultHacktivityUserAgent, cfg.Hacktivity.UserAgent)
	}
	if cfg.Poll.Interval != DefaultPollInterval {
		t.Errorf("Expected default poll interval %s, got %s", DefaultPollInterval, cfg.Poll.Interval)
	}
	if cfg.Poll.Lookback != DefaultPollLookback {
		t.Errorf("Expected default poll lookback %s, got %s", DefaultPollLookback, cfg.Poll.Lookback)
	}
	if cfg.Poll.Schedule != "" {
		t.Errorf("Expected empty default schedule, got %s", cfg.Poll.Schedule)
	}
	if cfg.Ledger.TTL != DefaultLedgerTTL {
		t.Errorf("Expected default ledger ttl %s, got %s", DefaultLedgerTTL, cfg.Ledger.TTL)
	}
	if cfg.Forwarders.Slack.Enabled || cfg.Forwarders.Telegram.Enabled || cfg.Forwarders.NATS.Enabled {
		t.Error("Expected all forwarders disabled by default")
	}
	if cfg.Forwarders.NATS.Subject != DefaultNATSSubject {
		t.Errorf("Expected default nats subject %s, got %s", DefaultNATSSubject, cfg.Forwarders.NATS.Subject)
	}
	if cfg.Forwarders.NATS.Group != DefaultNATSGroup {
		t.Errorf("Expected default nats group %s, got %s", DefaultNATSGroup, cfg.Forwarders.NATS.Group)
	}
	if cfg.Daemon.ShutdownTimeout != DefaultDaemonShutdownTimeout {
		t.Errorf("Expected default shutdown timeout %s, got %s", DefaultDaemonShutdownTimeout, cfg.Daemon.ShutdownTimeout)
	}
	if cfg.Daemon.LockPath == "" {
		t.Error("Expected a default lock path")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DISCLOSURE_BOT_POLL_INTERVAL", "30s")
	t.Setenv("DISCLOSURE_BOT_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Poll.Interval != "30s" {
		t.Errorf("Expected env poll interval 30s, got %s", cfg.Poll.Interval)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("Expected env log level debug, got %s", cfg.Server.LogLevel)
	}
}

func TestLoadGlobalConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".disclosure-bot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	yaml := []byte("poll:\n  lookback: 30m\nforwarders:\n  slack:\n    enabled: true\n    webhook_url: https://hooks.slack.com/services/T/B/X\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Poll.Lookback != "30m" {
		t.Errorf("Expected file poll lookback 30m, got %s", cfg.Poll.Lookback)
	}
	if !cfg.Forwarders.Slack.Enabled {
		t.Error("Expected slack enabled from config file")
	}
	if cfg.Forwarders.Slack.WebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("Unexpected webhook url %s", cfg.Forwarders.Slack.WebhookURL)
	}
	// Untouched keys keep their defaults.
	if cfg.Poll.Interval != DefaultPollInterval {
		t.Errorf("Expected default poll interval %s, got %s", DefaultPollInterval, cfg.Poll.Interval)
	}
}

func TestLoadStandardEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/Y")
	t.Setenv("TELEGRAM_BOT_TOKEN", "12345:token")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Forwarders.Slack.WebhookURL != "https://hooks.slack.com/services/T/B/Y" {
		t.Errorf("Expected slack webhook from SLACK_WEBHOOK_URL, got %s", cfg.Forwarders.Slack.WebhookURL)
	}
	if cfg.Forwarders.Telegram.BotToken != "12345:token" {
		t.Errorf("Expected telegram token from TELEGRAM_BOT_TOKEN, got %s", cfg.Forwarders.Telegram.BotToken)
	}
	if cfg.Forwarders.NATS.URL != "nats://localhost:4222" {
		t.Errorf("Expected nats url from NATS_URL, got %s", cfg.Forwarders.NATS.URL)
	}
}
