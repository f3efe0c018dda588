// Package funding tops up accounts that fall below a balance threshold.
package funding

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/restaking-labs/restaking-network-runner/runner"
	"go.uber.org/zap"
)

// Guard inspects an account's balance and requests an airdrop only
// when the balance is below the configured threshold.
type Guard struct {
	executor runner.Executor
	retrier  *runner.Retrier
	log      *zap.Logger
	// Threshold and top-up amount, in whole SOL.
	minBalance uint64
	airdrop    uint64
}

func NewGuard(executor runner.Executor, retrier *runner.Retrier, minBalance, airdrop uint64, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{
		executor:   executor,
		retrier:    retrier,
		log:        log,
		minBalance: minBalance,
		airdrop:    airdrop,
	}
}

// EnsureFunded queries [accountRef]'s balance and, if its truncated
// integer part is below the threshold, requests an airdrop and
// re-queries to report the new balance. [accountRef] may be a pubkey
// or a keypair file path; the client CLI accepts both.
func (g *Guard) EnsureFunded(ctx context.Context, accountRef string) error {
	balance := g.queryBalance(ctx, accountRef)
	if balance >= g.minBalance {
		g.log.Info("account sufficiently funded",
			zap.String("account", accountRef),
			zap.Uint64("balanceSol", balance),
		)
		return nil
	}

	g.log.Info("requesting airdrop",
		zap.String("account", accountRef),
		zap.Uint64("balanceSol", balance),
		zap.Uint64("airdropSol", g.airdrop),
	)
	cmd := fmt.Sprintf("solana airdrop %d %s", g.airdrop, accountRef)
	if _, err := g.retrier.Run(ctx, cmd, runner.MarkerSignature); err != nil {
		return fmt.Errorf("airdrop for %q failed: %w", accountRef, err)
	}

	g.log.Info("airdrop complete",
		zap.String("account", accountRef),
		zap.Uint64("newBalanceSol", g.queryBalance(ctx, accountRef)),
	)
	return nil
}

// queryBalance returns the truncated integer SOL balance of
// [accountRef]. Any query or parse failure is treated as a zero
// balance so the guard fails open toward funding, never toward
// skipping it.
func (g *Guard) queryBalance(ctx context.Context, accountRef string) uint64 {
	outcome, err := g.executor.Run(ctx, fmt.Sprintf("solana balance %s", accountRef))
	if err != nil || outcome.ExitCode != 0 {
		g.log.Warn("balance query failed, assuming zero",
			zap.String("account", accountRef),
			zap.Int("exitCode", outcome.ExitCode),
			zap.Error(err),
		)
		return 0
	}
	return parseBalance(outcome.Output)
}

// parseBalance extracts the whole-SOL part of output like "4.5 SOL".
func parseBalance(output string) uint64 {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || value < 0 {
		return 0
	}
	return uint64(value)
}
