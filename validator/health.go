package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/restaking-labs/restaking-network-runner/runner"
	"github.com/restaking-labs/restaking-network-runner/utils/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Queries issued against the validator to judge responsiveness.
// Both must exit zero before the validator counts as healthy.
var healthQueries = []string{
	"solana cluster-version",
	"solana slot",
}

// AwaitHealthy blocks until the validator answers every health query
// or the health budget elapses. This is a bounded poll loop, not true
// asynchronous waiting: the validator exposes no readiness signal
// beyond its RPC answering.
func AwaitHealthy(ctx context.Context, executor runner.Executor, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(ctx, constants.HealthyTimeout)
	defer cancel()

	errGr, cctx := errgroup.WithContext(ctx)
	for _, query := range healthQueries {
		query := query
		errGr.Go(func() error {
			for {
				outcome, err := executor.Run(cctx, query)
				if err == nil && outcome.ExitCode == 0 {
					log.Debug("validator answered health query", zap.String("query", query))
					return nil
				}
				select {
				case <-cctx.Done():
					return fmt.Errorf("validator failed to answer %q within timeout", query)
				case <-time.After(constants.HealthCheckFreq):
				}
			}
		})
	}
	if err := errGr.Wait(); err != nil {
		return err
	}
	log.Info("validator is healthy")
	return nil
}
