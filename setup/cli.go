package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/restaking-labs/restaking-network-runner/runner"
)

// clientCmd builds a restaking client CLI invocation. [keypair] is the
// signing keypair file, empty for the default identity.
func (rc *RunContext) clientCmd(keypair string, args ...string) string {
	parts := []string{"jito-restaking-cli", "--rpc-url", rc.Config.RPCURL}
	if keypair != "" {
		parts = append(parts, "--keypair", keypair)
	}
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

// tokenCmd builds a token utility invocation.
func (rc *RunContext) tokenCmd(args ...string) string {
	parts := append([]string{"spl-token", "--url", rc.Config.RPCURL}, args...)
	return strings.Join(parts, " ")
}

// tracked runs [command] through the retry policy requiring [marker]
// in its output, after appending the command to the replay script.
func (rc *RunContext) tracked(ctx context.Context, command, marker string) (string, error) {
	if err := rc.Replay.Append(command); err != nil {
		return "", err
	}
	return rc.Retrier.Run(ctx, command, marker)
}

// confirmed is tracked with the client CLI's transaction marker.
func (rc *RunContext) confirmed(ctx context.Context, command string) error {
	_, err := rc.tracked(ctx, command, runner.MarkerTransactionConfirmed)
	return err
}

// createAndStore runs [command] via the retry policy, extracts the
// identifier behind [prefix] from the output and persists it under
// [artifact]. The prefix doubles as the success pattern: a run whose
// output never announces the identifier is a failed run.
func (rc *RunContext) createAndStore(ctx context.Context, command, prefix, artifact string) (string, error) {
	out, err := rc.Retrier.Run(ctx, command, prefix)
	if err != nil {
		return "", err
	}
	id, err := runner.Extract(out, runner.Rule{Prefix: prefix})
	if err != nil {
		return "", fmt.Errorf("creating %q: %w", artifact, err)
	}
	if err := rc.Store.Put(artifact, id); err != nil {
		return "", err
	}
	return id, nil
}
