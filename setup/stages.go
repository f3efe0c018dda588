package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/restaking-labs/restaking-network-runner/artifacts"
	"github.com/restaking-labs/restaking-network-runner/pkg/color"
	"github.com/restaking-labs/restaking-network-runner/runner"
	"github.com/restaking-labs/restaking-network-runner/utils/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// checkPrerequisites verifies every required external tool resolves on
// PATH, naming the first missing one. Fatal, no retry.
func checkPrerequisites(_ context.Context, rc *RunContext) error {
	for _, tool := range constants.RequiredTools {
		if _, err := rc.lookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingPrerequisite, tool)
		}
	}
	return nil
}

// configureEnvironment points the client CLI at the target RPC
// endpoint and makes sure the default operating identity can pay for
// the transactions the pipeline is about to send.
func configureEnvironment(ctx context.Context, rc *RunContext) error {
	cmd := fmt.Sprintf("solana config set --url %s", rc.Config.RPCURL)
	if _, err := rc.Retrier.Run(ctx, cmd, ""); err != nil {
		return err
	}
	return rc.Funding.EnsureFunded(ctx, "~/.config/solana/id.json")
}

// createDirectories makes the output tree. Idempotent.
func createDirectories(_ context.Context, rc *RunContext) error {
	if err := rc.Config.EnsureDirs(); err != nil {
		return err
	}
	for _, sub := range []string{"ncn", "vault", "operators"} {
		if err := os.MkdirAll(filepath.Join(rc.Config.KeysDir, sub), 0o750); err != nil {
			return err
		}
	}
	return nil
}

// generateKeypairs creates one admin keypair per role, skipping
// generation when the keypair file already exists. Funding happens
// either way, so a resumed run still tops up drained accounts.
func generateKeypairs(ctx context.Context, rc *RunContext) error {
	paths := []string{
		rc.ncnAdminKeypair(),
		rc.vaultAdminKeypair(),
	}
	for i := 1; i <= rc.Config.NumOperators; i++ {
		paths = append(paths, rc.operatorAdminKeypair(i))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			rc.Log.Info("keypair exists, skipping generation", zap.String("path", path))
		} else {
			cmd := fmt.Sprintf("solana-keygen new --no-bip39-passphrase --force -o %s", path)
			if _, err := rc.Retrier.Run(ctx, cmd, ""); err != nil {
				return err
			}
		}
		if err := rc.Funding.EnsureFunded(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// initializePrograms issues the two global program config
// initializations. Order matters: config must exist before any
// account referencing it can be created.
func initializePrograms(ctx context.Context, rc *RunContext) error {
	for _, cmd := range []string{
		rc.clientCmd("", "restaking", "config", "initialize"),
		rc.clientCmd("", "vault", "config", "initialize"),
	} {
		if _, err := rc.Retrier.Run(ctx, cmd, ""); err != nil {
			return err
		}
	}
	return nil
}

// initializeNCN creates the NCN account and persists its pubkey.
func initializeNCN(ctx context.Context, rc *RunContext) error {
	if id, ok, err := rc.Store.Get(artifacts.NCNPubkey); err != nil {
		return err
	} else if ok {
		color.Yellowf("ncn already initialized: %s\n", id)
		rc.Log.Info("ncn already initialized", zap.String("ncn", id))
		rc.NCN = id
		return nil
	}
	cmd := rc.clientCmd(rc.ncnAdminKeypair(), "restaking", "ncn", "initialize")
	id, err := rc.createAndStore(ctx, cmd, runner.PrefixInitializingNCN, artifacts.NCNPubkey)
	if err != nil {
		return err
	}
	rc.NCN = id
	return nil
}

// initializeOperators creates each operator account, parameterized by
// the operator fee, and persists its pubkey.
func initializeOperators(ctx context.Context, rc *RunContext) error {
	rc.Operators = rc.Operators[:0]
	for i := 1; i <= rc.Config.NumOperators; i++ {
		name := artifacts.OperatorPubkey(i)
		if id, ok, err := rc.Store.Get(name); err != nil {
			return err
		} else if ok {
			color.Yellowf("operator %d already initialized: %s\n", i, id)
			rc.Log.Info("operator already initialized", zap.Int("operator", i), zap.String("pubkey", id))
			rc.Operators = append(rc.Operators, id)
			continue
		}
		cmd := rc.clientCmd(
			rc.operatorAdminKeypair(i),
			"restaking", "operator", "initialize",
			fmt.Sprintf("%d", rc.Config.OperatorFeeBps),
		)
		id, err := rc.createAndStore(ctx, cmd, runner.PrefixInitializingOperator, name)
		if err != nil {
			return err
		}
		rc.Operators = append(rc.Operators, id)
	}
	return nil
}

// createToken mints the supported token: create the mint, persist its
// address, create the vault admin's token account and mint the
// initial supply to it.
func createToken(ctx context.Context, rc *RunContext) error {
	if id, ok, err := rc.Store.Get(artifacts.TokenAddress); err != nil {
		return err
	} else if ok {
		color.Yellowf("token already created: %s\n", id)
		rc.Log.Info("token already created", zap.String("token", id))
		rc.Token = id
		return nil
	}

	cmd := rc.tokenCmd("create-token", "--decimals", fmt.Sprintf("%d", rc.Config.Decimals))
	out, err := rc.Retrier.Run(ctx, cmd, runner.MarkerCreatingToken)
	if err != nil {
		return err
	}
	id, err := runner.Extract(out, runner.Rule{Prefix: runner.MarkerCreatingToken})
	if err != nil {
		return err
	}
	if err := rc.Store.Put(artifacts.TokenAddress, id); err != nil {
		return err
	}
	rc.Token = id

	accountCmd := rc.tokenCmd("create-account", rc.Token, "--owner", rc.vaultAdminKeypair())
	if _, err := rc.Retrier.Run(ctx, accountCmd, runner.MarkerCreatingAccount); err != nil {
		return err
	}
	mintCmd := rc.tokenCmd("mint", rc.Token, fmt.Sprintf("%d", rc.Config.MintAmount))
	_, err = rc.Retrier.Run(ctx, mintCmd, runner.MarkerSignature)
	return err
}

// initializeVault creates the vault account over the supported token
// and persists its address.
func initializeVault(ctx context.Context, rc *RunContext) error {
	if err := rc.requireToken(); err != nil {
		return err
	}
	if id, ok, err := rc.Store.Get(artifacts.VaultAddress); err != nil {
		return err
	} else if ok {
		color.Yellowf("vault already initialized: %s\n", id)
		rc.Log.Info("vault already initialized", zap.String("vault", id))
		rc.Vault = id
		return nil
	}
	cfg := rc.Config
	cmd := rc.clientCmd(
		rc.vaultAdminKeypair(),
		"vault", "vault", "initialize",
		fmt.Sprintf("%d", cfg.DepositFeeBps),
		fmt.Sprintf("%d", cfg.WithdrawalFeeBps),
		fmt.Sprintf("%d", cfg.RewardFeeBps),
		fmt.Sprintf("%d", cfg.Decimals),
		fmt.Sprintf("%d", cfg.InitializeTokenAmount),
		rc.Token,
	)
	id, err := rc.createAndStore(ctx, cmd, runner.PrefixInitializingVault, artifacts.VaultAddress)
	if err != nil {
		return err
	}
	rc.Vault = id
	return nil
}

// validate checks that every expected artifact exists and is
// non-empty, then emits a human-readable summary of the network.
func validate(_ context.Context, rc *RunContext) error {
	names := artifacts.Expected(rc.Config.NumOperators)
	ids := make([]string, len(names))

	var errGr errgroup.Group
	for i, name := range names {
		i, name := i, name
		errGr.Go(func() error {
			id, ok, err := rc.Store.Get(name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: artifact %q missing or empty", ErrValidationFailure, name)
			}
			ids[i] = id
			return nil
		})
	}
	if err := errGr.Wait(); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("restaking network setup summary\n")
	sb.WriteString("================================\n")
	lines := make([]string, len(names))
	for i := range names {
		lines[i] = fmt.Sprintf("%-32s %s\n", names[i], ids[i])
	}
	sort.Strings(lines)
	for _, line := range lines {
		sb.WriteString(line)
	}
	summaryPath := filepath.Join(filepath.Dir(rc.Config.KeysDir), SummaryFileName)
	if err := os.WriteFile(summaryPath, []byte(sb.String()), 0o644); err != nil {
		return err
	}

	color.Greenf("%s", sb.String())
	rc.Log.Info("all artifacts validated", zap.Int("artifacts", len(names)))
	return nil
}

// requireToken reloads the token address from the store when the
// in-memory copy is empty (resumed run).
func (rc *RunContext) requireToken() error {
	if rc.Token != "" {
		return nil
	}
	id, ok, err := rc.Store.Get(artifacts.TokenAddress)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: token address not captured", ErrValidationFailure)
	}
	rc.Token = id
	return nil
}
