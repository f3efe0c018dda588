package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/restaking-labs/restaking-network-runner/config"
	"github.com/restaking-labs/restaking-network-runner/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type slotExecutor struct {
	output   string
	exitCode int
}

func (e *slotExecutor) Run(_ context.Context, _ string) (runner.Outcome, error) {
	return runner.Outcome{ExitCode: e.exitCode, Output: e.output}, nil
}

type advancerSpy struct {
	startedAt  uint64
	started    bool
	terminated bool
}

func newTestAdvancer(executor runner.Executor) (*Advancer, *advancerSpy) {
	spy := &advancerSpy{}
	a := NewAdvancer(config.Config{}, executor, zap.NewNop())
	a.terminateValidator = func(context.Context) error {
		spy.terminated = true
		return nil
	}
	a.startValidator = func(_ config.Config, warpSlot uint64) error {
		spy.started = true
		spy.startedAt = warpSlot
		return nil
	}
	a.wait = func(context.Context, time.Duration) error { return nil }
	return a, spy
}

func TestAdvanceComputesTargetSlot(t *testing.T) {
	a, spy := newTestAdvancer(&slotExecutor{output: "1000\n"})

	require.NoError(t, a.Advance(context.Background(), 500))
	assert.True(t, spy.terminated)
	assert.True(t, spy.started)
	assert.Equal(t, uint64(1500), spy.startedAt)
}

func TestAdvanceNonNumericSlotResponse(t *testing.T) {
	a, spy := newTestAdvancer(&slotExecutor{output: "Error: connection refused\n"})

	err := a.Advance(context.Background(), 500)
	require.ErrorIs(t, err, ErrInvalidPositionResponse)
	assert.False(t, spy.terminated, "the running validator is left alone on an invalid slot response")
	assert.False(t, spy.started)
}

type erroringExecutor struct{}

func (erroringExecutor) Run(context.Context, string) (runner.Outcome, error) {
	return runner.Outcome{}, errors.New("couldn't run command")
}

// A query that couldn't even spawn counts as an invalid position
// response, so the warp command exits with its distinct code.
func TestAdvanceExecutorErrorIsInvalidResponse(t *testing.T) {
	a, spy := newTestAdvancer(erroringExecutor{})

	err := a.Advance(context.Background(), 500)
	require.ErrorIs(t, err, ErrInvalidPositionResponse)
	assert.False(t, spy.started)
}

func TestAdvanceFailedSlotQuery(t *testing.T) {
	a, spy := newTestAdvancer(&slotExecutor{output: "1000\n", exitCode: 1})

	err := a.Advance(context.Background(), 500)
	require.ErrorIs(t, err, ErrInvalidPositionResponse)
	assert.False(t, spy.started)
}

func TestBuildFlags(t *testing.T) {
	cfg := config.Config{
		LedgerDir: "test-ledger",
		Programs: []config.Program{
			{Address: "RestakingProg111", Path: "/tmp/restaking.so"},
			{Address: "VaultProg111", Path: "/tmp/vault.so"},
		},
	}

	flags := buildFlags(cfg, StartOptions{WarpSlot: 1500})
	assert.Equal(t, []string{
		"--ledger", "test-ledger",
		"--rpc-port", "8899",
		"--bpf-program", "RestakingProg111", "/tmp/restaking.so",
		"--bpf-program", "VaultProg111", "/tmp/vault.so",
		"--warp-slot", "1500",
	}, flags)

	flags = buildFlags(cfg, StartOptions{Reset: true})
	assert.NotContains(t, flags, "--warp-slot")
	assert.Contains(t, flags, "--reset")
}
