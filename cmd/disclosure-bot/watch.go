package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/daemon"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/daemon/components"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the disclosure bot as a long-lived daemon",
	Long:  `Polls hacktivity on a fixed cadence and forwards each newly disclosed report once. Exposes /health and /metrics, and shuts down cleanly on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		daemonMgr, err := daemon.NewDaemon(cfg)
		if err != nil {
			return fmt.Errorf("failed to create daemon manager: %w", err)
		}

		sessComp := components.NewSessionComponent(cfg.Hacktivity)
		fwdComp := components.NewForwardersComponent(cfg.Forwarders)
		pollerComp := components.NewPollerComponent(cfg, sessComp, fwdComp)
		httpComp := components.NewHTTPServerComponent(daemonMgr, &cfg.Server)

		daemonMgr.AddComponent(sessComp)
		daemonMgr.AddComponent(fwdComp)
		daemonMgr.AddComponent(pollerComp)
		daemonMgr.AddComponent(httpComp)

		slog.Info("Disclosure bot starting up...", "port", cfg.Server.Port)
		err = daemonMgr.Start(context.Background())
		if err != nil {
			// Cancellation via signal/context is a graceful shutdown case for CLI.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				slog.Info("Disclosure bot stopped gracefully")
				return nil
			}
			return fmt.Errorf("daemon failed: %w", err)
		}

		slog.Info("Disclosure bot stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("poll.schedule", "", "optional cron expression driving the cadence instead of poll.interval")
}
