// Package validator controls the external test validator process: it
// launches it with the restaking programs preloaded, polls it for
// responsiveness and can warp its clock forward by restarting it at a
// future slot.
package validator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/restaking-labs/restaking-network-runner/config"
	"github.com/restaking-labs/restaking-network-runner/utils"
	"github.com/shirou/gopsutil/process"
)

// Status of a validator process.
type Status int

const (
	Running Status = iota
	Stopping
	Stopped
)

var _ Process = (*validatorProcess)(nil)

// Process as an interface so we can mock running validator
// binaries in tests
type Process interface {
	// Sends a SIGINT to this process and returns when the process
	// has exited or when [ctx] is cancelled.
	// If [ctx] is cancelled, sends a SIGKILL to this process and descendants
	// and returns [ctx.Err()].
	// Otherwise, returns nil when the process exits.
	// Subsequent calls to [Stop] always return nil.
	Stop(ctx context.Context) error
	// Returns when the process exits.
	// Returns an error if there was a process-level problem
	// (i.e. the process couldn't run) or if the process's
	// exit code was non-zero.
	// Subsequent calls to [Wait] always return the same value.
	Wait() error
	// Returns the status of the process.
	Status() Status
}

type validatorProcess struct {
	lock sync.RWMutex
	cmd  *exec.Cmd
	// Process status
	state Status
	// Closed when the process exits.
	// If closed, [onExitErr] is guaranteed to be set.
	closedOnStop chan struct{}
	// Set when the process exits.
	// Non-nil if there was a process-level problem or
	// if the process had a non-zero exit code.
	onExitErr error
}

// StartOptions control how the validator is launched.
type StartOptions struct {
	// Slot to resume at. 0 means a fresh start from the current ledger.
	WarpSlot uint64
	// Wipe the ledger before starting.
	Reset bool
	// Detach the validator into its own session so it survives the
	// launching process, with output appended to a log file instead
	// of colored stdout. Used by one-shot commands like warp.
	Detach bool
}

// Start launches the test validator described by [cfg] and returns a
// handle to the running process.
func Start(cfg config.Config, opts StartOptions) (Process, error) {
	if err := utils.CheckExecPath(cfg.ValidatorBinary); err != nil {
		if _, lookErr := exec.LookPath(cfg.ValidatorBinary); lookErr != nil {
			return nil, err
		}
	}

	cmd := exec.Command(cfg.ValidatorBinary, buildFlags(cfg, opts)...)
	if opts.Detach {
		if err := os.MkdirAll(cfg.LogsDir, 0o750); err != nil {
			return nil, err
		}
		logFile, err := os.OpenFile(
			filepath.Join(cfg.LogsDir, "validator.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return nil, err
		}
		cmd.Stdout = logFile
		cmd.Stderr = logFile
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	} else {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("could not create stdout pipe: %w", err)
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return nil, fmt.Errorf("could not create stderr pipe: %w", err)
		}
		color := utils.NewColorPicker().NextColor()
		utils.ColorAndPrepend(stdout, os.Stdout, "validator", color)
		utils.ColorAndPrepend(stderr, os.Stderr, "validator", color)
	}

	vp := &validatorProcess{
		cmd:          cmd,
		closedOnStop: make(chan struct{}),
	}
	return vp, vp.start()
}

// buildFlags assembles the validator invocation: ledger location, one
// --bpf-program pair per preloaded program and, when warping, the
// resume slot.
func buildFlags(cfg config.Config, opts StartOptions) []string {
	flags := []string{
		"--ledger", cfg.LedgerDir,
		"--rpc-port", "8899",
	}
	for _, program := range cfg.Programs {
		flags = append(flags, "--bpf-program", program.Address, program.Path)
	}
	if opts.WarpSlot > 0 {
		flags = append(flags, "--warp-slot", fmt.Sprintf("%d", opts.WarpSlot))
	}
	if opts.Reset {
		flags = append(flags, "--reset")
	}
	return flags
}

// Start this process.
// Must only be called once.
func (p *validatorProcess) start() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.state = Running
	if err := p.cmd.Start(); err != nil {
		p.state = Stopped
		return fmt.Errorf("couldn't start process: %w", err)
	}

	go func() {
		// Wait for the process to exit.
		err := p.cmd.Wait()
		p.lock.Lock()
		p.state = Stopped
		p.onExitErr = err
		close(p.closedOnStop)
		p.lock.Unlock()
	}()
	return nil
}

func (p *validatorProcess) Wait() error {
	<-p.closedOnStop
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.onExitErr
}

func (p *validatorProcess) Stop(ctx context.Context) error {
	p.lock.Lock()
	if p.state != Running {
		p.lock.Unlock()
		return nil
	}
	p.state = Stopping
	proc := p.cmd.Process
	// Release the lock before blocking on [closedOnStop]: the exit
	// goroutine needs it to record the exit and close the channel.
	p.lock.Unlock()

	// There isn't anything to do with this error.
	// Either the process got the signal, in which case
	// we should wait until it exits, or it didn't,
	// in which case we should wait until the context
	// is cancelled and then try to SIGKILL it.
	_ = proc.Signal(os.Interrupt)

	select {
	case <-ctx.Done():
		_ = killDescendants(int32(proc.Pid))
		_ = proc.Signal(os.Kill)
		return ctx.Err()
	case <-p.closedOnStop:
		return nil
	}
}

func (p *validatorProcess) Status() Status {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.state
}

func killDescendants(pid int32) error {
	procs, err := process.Processes()
	if err != nil {
		return err
	}
	for _, proc := range procs {
		ppid, err := proc.Ppid()
		if err != nil {
			return err
		}
		if ppid != pid {
			continue
		}
		if err := killDescendants(proc.Pid); err != nil {
			return err
		}
		_ = proc.Kill()
	}
	return nil
}
