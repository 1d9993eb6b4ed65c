package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cryptopusher/config"
	"cryptopusher/internal/pusher"
	"cryptopusher/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pusher",
	Short: "Crypto price alert pusher",
	Long: `pusher polls crypto prices in BRL, compares them with per-symbol
LOW/HIGH thresholds and pushes a consolidated alert when a symbol crosses
one of its levels.`,
	SilenceUsage: true,
	RunE:         runPusherE,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	rootCmd.AddCommand(thresholdsCmd)
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	// viper config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func runPusherE(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := pusher.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Error("pusher failed", zap.Error(err))
		return err
	}

	log.Info("pusher stopped gracefully")
	return nil
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
