package main

import (
	"fmt"
	"os"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "disclosure-bot",
	Short: "HackerOne disclosure bot",
	Long:  `disclosure-bot polls the HackerOne hacktivity feed for newly disclosed reports and forwards each one exactly once to Slack, Telegram and/or NATS.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Server.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.disclosure-bot/config.yaml)")
	rootCmd.PersistentFlags().String("server.log_level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("server.port", config.DefaultServerPort, "health/metrics server port")
	rootCmd.PersistentFlags().String("poll.interval", config.DefaultPollInterval, "polling interval")
	rootCmd.PersistentFlags().String("poll.lookback", config.DefaultPollLookback, "fetch window lookback (must exceed the interval)")
}
