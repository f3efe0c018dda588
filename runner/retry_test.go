package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedExecutor returns canned outcomes in order, repeating the
// last one when the script runs out.
type scriptedExecutor struct {
	outcomes []Outcome
	calls    int
}

func (e *scriptedExecutor) Run(_ context.Context, _ string) (Outcome, error) {
	i := e.calls
	if i >= len(e.outcomes) {
		i = len(e.outcomes) - 1
	}
	e.calls++
	return e.outcomes[i], nil
}

func newTestRetrier(executor Executor) (*Retrier, *[]time.Duration) {
	waits := []time.Duration{}
	r := NewRetrier(executor, RetrierConfig{MaxAttempts: 5, BaseDelay: 5 * time.Second}, zap.NewNop())
	r.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetrierFirstAttemptSuccess(t *testing.T) {
	executor := &scriptedExecutor{outcomes: []Outcome{
		{ExitCode: 0, Output: "Transaction confirmed\n"},
	}}
	r, waits := newTestRetrier(executor)

	out, err := r.Run(context.Background(), "client do-thing", MarkerTransactionConfirmed)
	require.NoError(t, err)
	assert.Contains(t, out, "Transaction confirmed")
	assert.Equal(t, 1, executor.calls)
	assert.Empty(t, *waits, "no backoff wait on first-attempt success")
}

func TestRetrierExhaustsAttemptsWithDoublingDelays(t *testing.T) {
	executor := &scriptedExecutor{outcomes: []Outcome{
		{ExitCode: 1, Output: "Error: rate limited\n"},
	}}
	r, waits := newTestRetrier(executor)

	out, err := r.Run(context.Background(), "client do-thing", MarkerTransactionConfirmed)
	require.ErrorIs(t, err, ErrCommandExhaustedRetries)
	assert.Equal(t, 5, executor.calls)
	assert.Equal(t, []time.Duration{
		5 * time.Second,
		10 * time.Second,
		20 * time.Second,
		40 * time.Second,
	}, *waits)
	// the last captured output rides along for diagnostics
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, out, "rate limited")
}

func TestRetrierZeroExitWithoutPatternIsFailure(t *testing.T) {
	executor := &scriptedExecutor{outcomes: []Outcome{
		{ExitCode: 0, Output: "submitted, not yet confirmed\n"},
		{ExitCode: 0, Output: "Transaction confirmed\n"},
	}}
	r, waits := newTestRetrier(executor)

	_, err := r.Run(context.Background(), "client do-thing", MarkerTransactionConfirmed)
	require.NoError(t, err)
	assert.Equal(t, 2, executor.calls)
	assert.Equal(t, []time.Duration{5 * time.Second}, *waits)
}

func TestRetrierNoPatternAcceptsZeroExit(t *testing.T) {
	executor := &scriptedExecutor{outcomes: []Outcome{
		{ExitCode: 0, Output: "whatever\n"},
	}}
	r, _ := newTestRetrier(executor)

	out, err := r.Run(context.Background(), "client query", "")
	require.NoError(t, err)
	assert.Equal(t, "whatever\n", out)
}

func TestRetrierCancelledContextAbortsWait(t *testing.T) {
	executor := &scriptedExecutor{outcomes: []Outcome{
		{ExitCode: 1, Output: "nope\n"},
	}}
	r := NewRetrier(executor, RetrierConfig{MaxAttempts: 5, BaseDelay: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, "client do-thing", "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, executor.calls)
}

func TestShellExecutorCapturesExitCodeAndOutput(t *testing.T) {
	executor := NewShellExecutor()

	outcome, err := executor.Run(context.Background(), "echo hello; echo world >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.ExitCode)
	assert.Contains(t, outcome.Output, "hello")
	assert.Contains(t, outcome.Output, "world")
}
