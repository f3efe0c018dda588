// Copyright (C) 2025-2026, Restaking Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package start

import (
	"context"
	"path/filepath"
	"time"

	"github.com/restaking-labs/restaking-network-runner/config"
	"github.com/restaking-labs/restaking-network-runner/pkg/color"
	"github.com/restaking-labs/restaking-network-runner/pkg/logutil"
	"github.com/restaking-labs/restaking-network-runner/runner"
	"github.com/restaking-labs/restaking-network-runner/utils"
	"github.com/restaking-labs/restaking-network-runner/validator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cobra.EnablePrefixMatching = true
}

var (
	logLevel   string
	configPath string
	reset      bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [options]",
		Short: "Start the test validator and block until it is healthy.",
		RunE:  startFunc,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logutil.DefaultLogLevel.String(), "log level")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.PersistentFlags().BoolVar(&reset, "reset", false, "wipe the ledger before starting")

	return cmd
}

func startFunc(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	logger, err := logutil.GetZapLogger(logLevel, filepath.Join(cfg.LogsDir, "validator-runner.log"))
	if err != nil {
		return err
	}
	_ = zap.ReplaceGlobals(logger)
	defer func() {
		_ = logger.Sync()
	}()

	proc, err := validator.Start(cfg, validator.StartOptions{Reset: reset})
	if err != nil {
		return err
	}
	if err := validator.AwaitHealthy(context.Background(), runner.NewShellExecutor(), logger); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = proc.Stop(stopCtx)
		return err
	}
	color.Greenf("validator is healthy, ctrl-c to stop\n")

	closedOnShutdown := utils.WatchShutdownSignals(logger, func(ctx context.Context) error {
		// Bounded so a validator that ignores SIGINT still gets killed.
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		return proc.Stop(stopCtx)
	})
	<-closedOnShutdown
	return nil
}
