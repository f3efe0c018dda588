package validator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/restaking-labs/restaking-network-runner/config"
	"github.com/restaking-labs/restaking-network-runner/runner"
	"github.com/restaking-labs/restaking-network-runner/utils/constants"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

// ErrInvalidPositionResponse is returned when the validator's slot
// query doesn't yield a non-negative integer.
var ErrInvalidPositionResponse = errors.New("invalid slot query response")

// Advancer warps the validator clock forward: it reads the current
// slot, kills the running validator and restarts it resuming at
// current+delta. Restarting at a higher slot is a coarse substitute
// for waiting real elapsed time, with the validator's own semantics
// defining what "resume at slot N" means.
type Advancer struct {
	cfg      config.Config
	executor runner.Executor
	log      *zap.Logger

	// Process control seams, replaced in tests.
	terminateValidator func(ctx context.Context) error
	startValidator     func(cfg config.Config, warpSlot uint64) error
	wait               func(ctx context.Context, d time.Duration) error
}

func NewAdvancer(cfg config.Config, executor runner.Executor, log *zap.Logger) *Advancer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Advancer{
		cfg:                cfg,
		executor:           executor,
		log:                log,
		terminateValidator: terminateByName,
		startValidator:     startDetached,
		wait:               runner.Wait,
	}
}

// Advance moves the validator [slotDelta] slots into the future.
// If the slot query response is not a pure non-negative integer the
// call fails without touching the running validator.
func (a *Advancer) Advance(ctx context.Context, slotDelta uint64) error {
	current, err := a.currentSlot(ctx)
	if err != nil {
		return err
	}
	target := current + slotDelta
	a.log.Info("warping validator clock",
		zap.Uint64("currentSlot", current),
		zap.Uint64("slotDelta", slotDelta),
		zap.Uint64("targetSlot", target),
	)

	// Best effort: a validator that isn't running is not an error.
	if err := a.terminateValidator(ctx); err != nil {
		a.log.Warn("couldn't terminate running validator", zap.Error(err))
	}
	if err := a.wait(ctx, constants.TeardownDelay); err != nil {
		return err
	}

	if err := a.startValidator(a.cfg, target); err != nil {
		return fmt.Errorf("couldn't restart validator at slot %d: %w", target, err)
	}
	return nil
}

func (a *Advancer) currentSlot(ctx context.Context) (uint64, error) {
	outcome, err := a.executor.Run(ctx, "solana slot")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPositionResponse, err)
	}
	if outcome.ExitCode != 0 {
		return 0, fmt.Errorf("%w: slot query exited %d: %s",
			ErrInvalidPositionResponse, outcome.ExitCode, outcome.Output)
	}
	slot, err := strconv.ParseUint(strings.TrimSpace(outcome.Output), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPositionResponse, strings.TrimSpace(outcome.Output))
	}
	return slot, nil
}

// terminateByName finds validator processes by executable name and
// terminates them. Absence of a running validator is not an error.
func terminateByName(_ context.Context) error {
	procs, err := process.Processes()
	if err != nil {
		return err
	}
	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil {
			continue
		}
		if name != constants.ValidatorProcessName {
			continue
		}
		_ = killDescendants(proc.Pid)
		if err := proc.Terminate(); err != nil {
			return err
		}
	}
	return nil
}

func startDetached(cfg config.Config, warpSlot uint64) error {
	_, err := Start(cfg, StartOptions{WarpSlot: warpSlot, Detach: true})
	return err
}
