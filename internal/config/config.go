package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Hacktivity HacktivityConfig `koanf:"hacktivity"`
	Poll       PollConfig       `koanf:"poll"`
	Ledger     LedgerConfig     `koanf:"ledger"`
	Forwarders ForwardersConfig `koanf:"forwarders"`
	Daemon     DaemonConfig     `koanf:"daemon"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

type HacktivityConfig struct {
	LandingURL     string `koanf:"landing_url"`
	GraphQLURL     string `koanf:"graphql_url"`
	UserAgent      string `koanf:"user_agent"`
	RequestTimeout string `koanf:"request_timeout"`
}

type PollConfig struct {
	Interval string `koanf:"interval"`
	Lookback string `koanf:"lookback"`
	// Schedule is an optional cron expression. When set it drives the cadence
	// instead of the fixed interval.
	Schedule string `koanf:"schedule"`
}

type LedgerConfig struct {
	// TTL bounds how long a forwarded report ID is remembered. Zero keeps
	// every ID for the process lifetime, matching the original bot.
	TTL string `koanf:"ttl"`
}

type ForwardersConfig struct {
	Slack    SlackConfig    `koanf:"slack"`
	Telegram TelegramConfig `koanf:"telegram"`
	NATS     NATSConfig     `koanf:"nats"`
}

type SlackConfig struct {
	Enabled    bool   `koanf:"enabled"`
	WebhookURL string `koanf:"webhook_url"`
}

type TelegramConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	ChatID   int64  `koanf:"chat_id"`
}

type NATSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	Subject       string `koanf:"subject"`
	Group         string `koanf:"group"`
	MaxReconnects int    `koanf:"max_reconnects"`
	ReconnectWait string `koanf:"reconnect_wait"`
}

type DaemonConfig struct {
	ShutdownTimeout        string `koanf:"shutdown_timeout"`
	HealthCheckInterval    string `koanf:"health_check_interval"`
	StartupShutdownTimeout string `koanf:"startup_shutdown_timeout"`
	LockPath               string `koanf:"lock_path"`
}

const (
	DefaultServerPort            = 9090
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "10s"
	DefaultServerWriteTimeout    = "10s"
	DefaultServerIdleTimeout     = "60s"
	DefaultServerShutdownTimeout = "5s"

	DefaultHacktivityLandingURL     = "https://hackerone.com/hacktivity"
	DefaultHacktivityGraphQLURL     = "https://hackerone.com/graphql"
	DefaultHacktivityUserAgent      = "github.com/bored-engineer/hackeroni-slack-disclosure-bot"
	DefaultHacktivityRequestTimeout = "30s"

	// The lookback must exceed the interval so consecutive windows overlap and
	// a slow cycle cannot drop an event. The ledger absorbs the re-fetches.
	DefaultPollInterval = "60s"
	DefaultPollLookback = "15m"

	DefaultLedgerTTL = "0"

	DefaultNATSSubject       = "hacktivity.disclosed"
	DefaultNATSGroup         = "hacktivity"
	DefaultNATSMaxReconnects = 10
	DefaultNATSReconnectWait = "2s"

	DefaultDaemonShutdownTimeout        = "30s"
	DefaultDaemonHealthCheckInterval    = "30s"
	DefaultDaemonStartupShutdownTimeout = "10s"
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.port":                     DefaultServerPort,
		"server.log_level":                DefaultServerLogLevel,
		"server.read_timeout":             DefaultServerReadTimeout,
		"server.write_timeout":            DefaultServerWriteTimeout,
		"server.idle_timeout":             DefaultServerIdleTimeout,
		"server.shutdown_timeout":         DefaultServerShutdownTimeout,
		"hacktivity.landing_url":          DefaultHacktivityLandingURL,
		"hacktivity.graphql_url":          DefaultHacktivityGraphQLURL,
		"hacktivity.user_agent":           DefaultHacktivityUserAgent,
		"hacktivity.request_timeout":      DefaultHacktivityRequestTimeout,
		"poll.interval":                   DefaultPollInterval,
		"poll.lookback":                   DefaultPollLookback,
		"poll.schedule":                   "",
		"ledger.ttl":                      DefaultLedgerTTL,
		"forwarders.slack.enabled":        false,
		"forwarders.telegram.enabled":     false,
		"forwarders.nats.enabled":         false,
		"forwarders.nats.subject":         DefaultNATSSubject,
		"forwarders.nats.group":           DefaultNATSGroup,
		"forwarders.nats.max_reconnects":  DefaultNATSMaxReconnects,
		"forwarders.nats.reconnect_wait":  DefaultNATSReconnectWait,
		"daemon.shutdown_timeout":         DefaultDaemonShutdownTimeout,
		"daemon.health_check_interval":    DefaultDaemonHealthCheckInterval,
		"daemon.startup_shutdown_timeout": DefaultDaemonStartupShutdownTimeout,
		"daemon.lock_path":                filepath.Join(os.TempDir(), "disclosure-bot.lock"),
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".disclosure-bot", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("DISCLOSURE_BOT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "DISCLOSURE_BOT_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Post-Process: Inject standard Env Vars if missing
	if url := os.Getenv("SLACK_WEBHOOK_URL"); url != "" && cfg.Forwarders.Slack.WebhookURL == "" {
		cfg.Forwarders.Slack.WebhookURL = url
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" && cfg.Forwarders.Telegram.BotToken == "" {
		cfg.Forwarders.Telegram.BotToken = token
	}
	if url := os.Getenv("NATS_URL"); url != "" && cfg.Forwarders.NATS.URL == "" {
		cfg.Forwarders.NATS.URL = url
	}

	return &cfg, nil
}
