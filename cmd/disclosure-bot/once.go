package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/daemon/components"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single polling cycle and exit",
	Long:  `Fetches one lookback window and forwards what it finds, then exits. Useful under an external scheduler (cron, Lambda-style invocation) where a downstream queue handles de-duplication across runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sessComp := components.NewSessionComponent(cfg.Hacktivity)
		if err := sessComp.Init(ctx); err != nil {
			return fmt.Errorf("init session: %w", err)
		}

		fwdComp := components.NewForwardersComponent(cfg.Forwarders)
		if err := fwdComp.Init(ctx); err != nil {
			return fmt.Errorf("init forwarders: %w", err)
		}
		defer fwdComp.Stop(context.Background())

		pollerComp := components.NewPollerComponent(cfg, sessComp, fwdComp)
		if err := pollerComp.Init(ctx); err != nil {
			return fmt.Errorf("init poller: %w", err)
		}

		slog.Info("Running single polling cycle")
		if err := pollerComp.Poller().RunCycle(ctx); err != nil {
			return fmt.Errorf("cycle failed: %w", err)
		}

		slog.Info("Cycle complete", "forwarded_total", pollerComp.Ledger().Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}
