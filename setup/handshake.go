package setup

import (
	"context"
	"fmt"

	"github.com/restaking-labs/restaking-network-runner/runner"
)

// runHandshake establishes the bidirectional opt-in relationships
// among NCN, operators and vault. Each relationship follows the same
// pattern: initialize the connection state, wait a fixed settle delay
// for the initializing transaction to finalize, then warm it up.
// Every call goes through the retry policy and must report
// "Transaction confirmed".
func runHandshake(ctx context.Context, rc *RunContext) error {
	if err := rc.requireHandshakeInputs(); err != nil {
		return err
	}

	// 1. ncn <-> operator: init, ncn-side warmup, operator-side warmup.
	for i, operator := range rc.Operators {
		admin := rc.operatorAdminKeypair(i + 1)
		if err := rc.confirmed(ctx, rc.clientCmd(rc.ncnAdminKeypair(),
			"restaking", "ncn", "ncn-operator-state", "initialize", rc.NCN, operator)); err != nil {
			return err
		}
		if err := rc.settle(ctx); err != nil {
			return err
		}
		if err := rc.confirmed(ctx, rc.clientCmd(rc.ncnAdminKeypair(),
			"restaking", "ncn", "ncn-operator-state", "ncn-warmup", rc.NCN, operator)); err != nil {
			return err
		}
		if err := rc.confirmed(ctx, rc.clientCmd(admin,
			"restaking", "ncn", "ncn-operator-state", "operator-warmup", rc.NCN, operator)); err != nil {
			return err
		}
	}

	// 2. ncn <-> vault ticket.
	if err := rc.initThenWarmup(ctx, rc.ncnAdminKeypair(),
		[]string{"restaking", "ncn", "ncn-vault-ticket"}, rc.NCN, rc.Vault); err != nil {
		return err
	}

	// 3. operator <-> vault tickets.
	for i, operator := range rc.Operators {
		if err := rc.initThenWarmup(ctx, rc.operatorAdminKeypair(i+1),
			[]string{"restaking", "operator", "operator-vault-ticket"}, operator, rc.Vault); err != nil {
			return err
		}
	}

	// 4. vault <-> ncn ticket (reverse direction).
	if err := rc.initThenWarmup(ctx, rc.vaultAdminKeypair(),
		[]string{"vault", "vault", "vault-ncn-ticket"}, rc.Vault, rc.NCN); err != nil {
		return err
	}

	// 5. asset infrastructure: depositor token account, extra supply,
	// VRT issuance, vault balance accounting.
	if err := rc.mintAndTrack(ctx); err != nil {
		return err
	}

	// 6. vault -> operator delegation.
	for _, operator := range rc.Operators {
		if err := rc.confirmed(ctx, rc.clientCmd(rc.vaultAdminKeypair(),
			"vault", "vault", "initialize-operator-delegation", rc.Vault, operator)); err != nil {
			return err
		}
		if err := rc.settle(ctx); err != nil {
			return err
		}
		if err := rc.confirmed(ctx, rc.clientCmd(rc.vaultAdminKeypair(),
			"vault", "vault", "delegate-to-operator", rc.Vault, operator,
			fmt.Sprintf("%d", rc.Config.DelegationAmount))); err != nil {
			return err
		}
	}
	return nil
}

// initThenWarmup performs the two-phase opt-in for one ticket type:
// "<subcommand...> initialize a b", settle, "<subcommand...> warmup a b".
func (rc *RunContext) initThenWarmup(ctx context.Context, keypair string, subcommand []string, a, b string) error {
	initCmd := rc.clientCmd(keypair, append(append([]string{}, subcommand...), "initialize", a, b)...)
	if err := rc.confirmed(ctx, initCmd); err != nil {
		return err
	}
	if err := rc.settle(ctx); err != nil {
		return err
	}
	warmupCmd := rc.clientCmd(keypair, append(append([]string{}, subcommand...), "warmup", a, b)...)
	return rc.confirmed(ctx, warmupCmd)
}

// mintAndTrack wires the token plumbing the delegations depend on.
func (rc *RunContext) mintAndTrack(ctx context.Context) error {
	cfg := rc.Config
	if _, err := rc.tracked(ctx,
		rc.tokenCmd("create-account", rc.Token),
		runner.MarkerCreatingAccount); err != nil {
		return err
	}
	if _, err := rc.tracked(ctx,
		rc.tokenCmd("mint", rc.Token, fmt.Sprintf("%d", cfg.DepositorMintAmount)),
		runner.MarkerSignature); err != nil {
		return err
	}
	if err := rc.confirmed(ctx, rc.clientCmd(rc.vaultAdminKeypair(),
		"vault", "vault", "mint-vrt", rc.Vault,
		fmt.Sprintf("%d", cfg.VRTMintAmount), "0")); err != nil {
		return err
	}
	return rc.confirmed(ctx, rc.clientCmd(rc.vaultAdminKeypair(),
		"vault", "vault", "update-vault-balance", rc.Vault))
}

func (rc *RunContext) settle(ctx context.Context) error {
	return rc.wait(ctx, rc.Config.SettleDelay)
}

// requireHandshakeInputs asserts that the earlier stages left every
// identifier the handshake needs, whether created or reloaded.
func (rc *RunContext) requireHandshakeInputs() error {
	if rc.NCN == "" || rc.Vault == "" || rc.Token == "" || len(rc.Operators) == 0 {
		return fmt.Errorf("handshake inputs incomplete (ncn=%q vault=%q token=%q operators=%d)",
			rc.NCN, rc.Vault, rc.Token, len(rc.Operators))
	}
	return nil
}
