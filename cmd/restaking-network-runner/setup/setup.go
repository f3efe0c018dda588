// Copyright (C) 2025-2026, Restaking Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package setup

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/restaking-labs/restaking-network-runner/config"
	"github.com/restaking-labs/restaking-network-runner/pkg/logutil"
	"github.com/restaking-labs/restaking-network-runner/setup"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cobra.EnablePrefixMatching = true
}

var (
	logLevel   string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup [options]",
		Short: "Bootstrap the restaking network against a running validator.",
		RunE:  setupFunc,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logutil.DefaultLogLevel.String(), "log level")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	return cmd
}

func setupFunc(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	logger, err := logutil.GetZapLogger(logLevel, filepath.Join(cfg.LogsDir, "setup.log"))
	if err != nil {
		return err
	}
	_ = zap.ReplaceGlobals(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return setup.New(cfg, logger).Run(ctx)
}
