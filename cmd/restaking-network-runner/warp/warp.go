// Copyright (C) 2025-2026, Restaking Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package warp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/restaking-labs/restaking-network-runner/config"
	"github.com/restaking-labs/restaking-network-runner/pkg/color"
	"github.com/restaking-labs/restaking-network-runner/pkg/logutil"
	"github.com/restaking-labs/restaking-network-runner/runner"
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
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warp [slot-delta]",
		Short: "Advance the validator clock by restarting it at a future slot.",
		Args:  cobra.ExactArgs(1),
		RunE:  warpFunc,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logutil.DefaultLogLevel.String(), "log level")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	return cmd
}

func warpFunc(cmd *cobra.Command, args []string) error {
	slotDelta, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("slot delta must be a non-negative integer, got %q", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	logger, err := logutil.GetZapLogger(logLevel, filepath.Join(cfg.LogsDir, "warp.log"))
	if err != nil {
		return err
	}
	_ = zap.ReplaceGlobals(logger)
	defer func() {
		_ = logger.Sync()
	}()

	advancer := validator.NewAdvancer(cfg, runner.NewShellExecutor(), logger)
	if err := advancer.Advance(context.Background(), slotDelta); err != nil {
		if errors.Is(err, validator.ErrInvalidPositionResponse) {
			// distinguishable exit code for a validator that isn't answering
			color.Errf("{{red}}slot query failed: %v{{/}}\n", err)
			logger.Error("slot query failed", zap.Error(err))
			_ = logger.Sync()
			os.Exit(2)
		}
		return err
	}
	color.Greenf("validator warped %d slots ahead\n", slotDelta)
	return nil
}
