package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/restaking-labs/restaking-network-runner/utils/constants"
	"go.uber.org/zap"
)

// ErrCommandExhaustedRetries is returned when a command failed on
// every attempt. The wrapping error carries the last captured output
// for diagnostics.
var ErrCommandExhaustedRetries = errors.New("command exhausted retries")

// RetrierConfig bounds the retry loop.
type RetrierConfig struct {
	// Maximum number of attempts. Defaults to constants.MaxRetryAttempts.
	MaxAttempts int
	// Delay before the second attempt. Doubles after every failed
	// attempt. Defaults to constants.BaseRetryDelay.
	BaseDelay time.Duration
}

// Retrier wraps an Executor with bounded retries and exponential backoff.
// External RPC-backed CLI calls are flaky under load (rate limits,
// not-yet-confirmed transactions) and benefit from backoff rather than
// fixed-interval retry.
type Retrier struct {
	executor    Executor
	maxAttempts int
	baseDelay   time.Duration
	log         *zap.Logger
	// wait is a cancellable delay, replaced in tests to avoid sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

func NewRetrier(executor Executor, cfg RetrierConfig, log *zap.Logger) *Retrier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.MaxRetryAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = constants.BaseRetryDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrier{
		executor:    executor,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		log:         log,
		wait:        Wait,
	}
}

// Run executes [command] until it succeeds or attempts are exhausted.
// An attempt succeeds only if the exit code is 0 and, when
// [successPattern] is non-empty, the captured output contains it.
// Returns the captured output of the successful attempt.
func (r *Retrier) Run(ctx context.Context, command string, successPattern string) (string, error) {
	delay := r.baseDelay
	var lastOutput string
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		commandsTotal.Inc()
		outcome, err := r.executor.Run(ctx, command)
		lastOutput = outcome.Output
		if err == nil && outcome.ExitCode == 0 &&
			(successPattern == "" || strings.Contains(outcome.Output, successPattern)) {
			return outcome.Output, nil
		}
		commandFailuresTotal.Inc()
		r.log.Warn("command attempt failed",
			zap.String("command", command),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", r.maxAttempts),
			zap.Int("exitCode", outcome.ExitCode),
			zap.Error(err),
		)
		if attempt == r.maxAttempts {
			break
		}
		if err := r.wait(ctx, delay); err != nil {
			return lastOutput, err
		}
		delay *= 2
	}
	retriesExhaustedTotal.Inc()
	return lastOutput, fmt.Errorf(
		"%w: command %q failed %d times, last output:\n%s",
		ErrCommandExhaustedRetries, command, r.maxAttempts, lastOutput,
	)
}

// Wait blocks for [d] or until [ctx] is cancelled, whichever comes
// first. It never blocks a caller past cancellation, unlike time.Sleep.
func Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
