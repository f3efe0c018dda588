// Package setup drives the bootstrap pipeline: a fixed, strictly
// ordered sequence of stages that takes a freshly started test
// validator to a fully wired restaking network (NCN, operators,
// vault, token, opt-in handshakes, delegation). Stages are idempotent
// where they can be, so a failed run can be restarted and will skip
// what already exists on disk.
package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/restaking-labs/restaking-network-runner/artifacts"
	"github.com/restaking-labs/restaking-network-runner/config"
	"github.com/restaking-labs/restaking-network-runner/funding"
	"github.com/restaking-labs/restaking-network-runner/pkg/color"
	"github.com/restaking-labs/restaking-network-runner/runner"
	"go.uber.org/zap"
)

var (
	// ErrMissingPrerequisite is returned when a required external tool
	// is not resolvable on PATH. Fatal, never retried.
	ErrMissingPrerequisite = errors.New("missing prerequisite tool")
	// ErrValidationFailure is returned when the post-run artifact check
	// finds a missing or empty artifact.
	ErrValidationFailure = errors.New("setup validation failed")
)

// ReplayFileName is the audit script every handshake command is
// appended to, verbatim and in order.
const ReplayFileName = "handshake_commands.sh"

// SummaryFileName is the human-readable report written by the final
// validation stage.
const SummaryFileName = "setup_summary.txt"

// Stage is one named unit of the pipeline. Stages execute strictly in
// declaration order and the pipeline halts permanently on the first
// stage returning an unrecoverable error.
type Stage struct {
	Name string
	Run  func(ctx context.Context, rc *RunContext) error
}

// RunContext threads everything a stage needs: configuration, the
// command plumbing and the identifiers captured so far. Identifiers
// live here and in the artifact store, never in package globals.
type RunContext struct {
	Config   config.Config
	Executor runner.Executor
	Retrier  *runner.Retrier
	Store    *artifacts.Store
	Funding  *funding.Guard
	Log      *zap.Logger
	Replay   *ReplayLog

	// Identifiers captured (or reloaded) during the run.
	NCN       string
	Token     string
	Vault     string
	Operators []string

	// Seams for tests.
	lookPath func(file string) (string, error)
	wait     func(ctx context.Context, d time.Duration) error
}

// Orchestrator runs the pipeline stages in order.
type Orchestrator struct {
	rc     *RunContext
	stages []Stage
}

// New returns an orchestrator backed by the real shell executor.
func New(cfg config.Config, log *zap.Logger) *Orchestrator {
	return NewWithBackend(cfg, runner.NewShellExecutor(), log)
}

// NewWithBackend returns an orchestrator running all external commands
// through [executor]. Tests inject a scripted backend here.
func NewWithBackend(cfg config.Config, executor runner.Executor, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	retrier := runner.NewRetrier(executor, runner.RetrierConfig{
		MaxAttempts: cfg.MaxRetryAttempts,
		BaseDelay:   cfg.BaseRetryDelay,
	}, log)
	rc := &RunContext{
		Config:   cfg,
		Executor: executor,
		Retrier:  retrier,
		Store:    artifacts.NewStore(cfg.KeysDir),
		Funding:  funding.NewGuard(executor, retrier, cfg.MinBalanceSol, cfg.AirdropSol, log),
		Log:      log,
		Replay:   NewReplayLog(filepath.Join(filepath.Dir(cfg.KeysDir), ReplayFileName)),
		lookPath: exec.LookPath,
		wait:     runner.Wait,
	}
	return &Orchestrator{
		rc:     rc,
		stages: pipelineStages(),
	}
}

func pipelineStages() []Stage {
	return []Stage{
		{Name: "prerequisites", Run: checkPrerequisites},
		{Name: "environment", Run: configureEnvironment},
		{Name: "directories", Run: createDirectories},
		{Name: "keypairs", Run: generateKeypairs},
		{Name: "program config", Run: initializePrograms},
		{Name: "ncn", Run: initializeNCN},
		{Name: "operators", Run: initializeOperators},
		{Name: "token", Run: createToken},
		{Name: "vault", Run: initializeVault},
		{Name: "handshake", Run: runHandshake},
		{Name: "validation", Run: validate},
	}
}

// Run executes every stage in order, aborting on the first
// unrecoverable error. Partial progress stays on disk so a restarted
// run skips completed idempotent stages.
func (o *Orchestrator) Run(ctx context.Context) error {
	wd, _ := os.Getwd()
	for i, stage := range o.stages {
		color.Bluef("[%d/%d] %s\n", i+1, len(o.stages), stage.Name)
		o.rc.Log.Info("stage starting", zap.String("stage", stage.Name))
		if err := stage.Run(ctx, o.rc); err != nil {
			color.Redf("stage %q failed: %v\n", stage.Name, err)
			o.rc.Log.Error("stage failed",
				zap.String("stage", stage.Name),
				zap.String("workingDir", wd),
				zap.Error(err),
			)
			return fmt.Errorf("stage %q: %w", stage.Name, err)
		}
		o.rc.Log.Info("stage complete", zap.String("stage", stage.Name))
	}
	color.Greenf("setup complete\n")
	return nil
}

// Keypair locations under the keys directory, one per admin role.

func (rc *RunContext) ncnAdminKeypair() string {
	return filepath.Join(rc.Config.KeysDir, "ncn", "ncn-admin.json")
}

func (rc *RunContext) vaultAdminKeypair() string {
	return filepath.Join(rc.Config.KeysDir, "vault", "vault-admin.json")
}

// operatorAdminKeypair returns the keypair path of the i-th operator
// admin (1-based).
func (rc *RunContext) operatorAdminKeypair(i int) string {
	return filepath.Join(rc.Config.KeysDir, "operators", fmt.Sprintf("operator%d-admin.json", i))
}
