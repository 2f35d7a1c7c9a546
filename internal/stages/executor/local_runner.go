package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/pkg/constants"
	customErr "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/solution"
)

// pipeDrainDelay bounds how long Wait keeps reading pipes held open by
// processes that escaped the killed group.
const pipeDrainDelay = 500 * time.Millisecond

type localRunner struct {
	maxOutputBytes int
	logger         *zap.SugaredLogger
}

// NewLocalRunner runs commands as child processes of the harness, each in its own process group.
func NewLocalRunner(maxOutputBytes int) Runner {
	return &localRunner{
		maxOutputBytes: maxOutputBytes,
		logger:         logger.NewNamedLogger("local-runner"),
	}
}

func (r *localRunner) Execute(
	ctx context.Context,
	cmd Command,
	input string,
	cwd string,
	timeout time.Duration,
) (solution.ExecutionResult, error) {
	if cmd.Name == "" {
		return solution.ExecutionResult{}, customErr.ErrEmptyCommand
	}
	if err := ctx.Err(); err != nil {
		return solution.ExecutionResult{}, fmt.Errorf("%w: %w", customErr.ErrRunCancelled, err)
	}

	stdout := newCappedBuffer(r.maxOutputBytes)
	stderr := newCappedBuffer(r.maxOutputBytes)

	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = cwd
	c.Stdin = strings.NewReader(input)
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = pipeDrainDelay
	setProcessGroup(c)

	start := time.Now()
	if err := c.Start(); err != nil {
		r.logger.Warnf("Failed to start %s: %s", cmd.Name, err)
		return solution.ExecutionResult{
			ExitCode: constants.ExitCodeCommandNotFound,
			Stderr:   err.Error(),
			Duration: time.Since(start),
		}, nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	var (
		waitErr   error
		timedOut  bool
		cancelled bool
	)
	select {
	case waitErr = <-done:
	case <-timer:
		timedOut = true
		killProcessGroup(c)
		waitErr = <-done
	case <-ctx.Done():
		cancelled = true
		killProcessGroup(c)
		waitErr = <-done
	}
	// Background children of a finished process must not outlive the call.
	killProcessGroup(c)

	result := solution.ExecutionResult{
		ExitCode:  exitCode(c, waitErr),
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		TimedOut:  timedOut,
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}

	if cancelled {
		return result, fmt.Errorf("%w: %w", customErr.ErrRunCancelled, ctx.Err())
	}
	if timedOut {
		r.logger.Infof("Process %s timed out after %s", cmd.Name, timeout)
	}
	return result, nil
}

func exitCode(c *exec.Cmd, waitErr error) int {
	if c.ProcessState != nil {
		return c.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
