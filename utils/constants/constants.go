package constants

import "time"

const (
	// Retry policy for flaky RPC-backed CLI calls.
	MaxRetryAttempts = 5
	BaseRetryDelay   = 5 * time.Second

	// Delay between a relationship's initialize call and its warmup call,
	// giving the initializing transaction time to finalize.
	SettleDelay = 5 * time.Second

	// Validator health polling.
	HealthCheckFreq = 2 * time.Second
	HealthyTimeout  = 60 * time.Second

	// Validator teardown settle before a warp restart.
	TeardownDelay = 1 * time.Second

	// Accounts below MinBalanceSol get topped up with AirdropSol.
	MinBalanceSol = 10
	AirdropSol    = 50

	ValidatorProcessName = "solana-test-validator"
)

// Tools that must be resolvable on PATH before the pipeline runs.
var RequiredTools = []string{
	"solana",
	"solana-keygen",
	"spl-token",
	"jito-restaking-cli",
	ValidatorProcessName,
}
