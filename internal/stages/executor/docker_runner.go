package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"github.com/mini-maxit/harness/internal/docker"
	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/pkg/constants"
	customErr "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/solution"
)

const containerCleanupTimeout = 10 * time.Second

type dockerRunner struct {
	docker         docker.DockerClient
	maxOutputBytes int
	memoryBytes    int64
	logger         *zap.SugaredLogger
}

// NewDockerRunner runs every command in a fresh container with the working
// directory bind-mounted and networking disabled.
func NewDockerRunner(dCli docker.DockerClient, maxOutputBytes int, memoryMB int64) Runner {
	return &dockerRunner{
		docker:         dCli,
		maxOutputBytes: maxOutputBytes,
		memoryBytes:    memoryMB * 1024 * 1024,
		logger:         logger.NewNamedLogger("docker-runner"),
	}
}

func (r *dockerRunner) Execute(
	ctx context.Context,
	cmd Command,
	input string,
	cwd string,
	timeout time.Duration,
) (solution.ExecutionResult, error) {
	if cmd.Name == "" {
		return solution.ExecutionResult{}, customErr.ErrEmptyCommand
	}
	if cmd.Image == "" {
		return solution.ExecutionResult{}, fmt.Errorf("%w: no image for %s", customErr.ErrContainerFailed, cmd.Name)
	}
	if err := ctx.Err(); err != nil {
		return solution.ExecutionResult{}, fmt.Errorf("%w: %w", customErr.ErrRunCancelled, err)
	}

	hostDir, err := filepath.Abs(cwd)
	if err != nil {
		return solution.ExecutionResult{}, err
	}
	if err := r.docker.EnsureImage(ctx, cmd.Image); err != nil {
		return solution.ExecutionResult{}, fmt.Errorf("%w: %w", customErr.ErrContainerFailed, err)
	}

	containerID, err := r.docker.CreateContainer(ctx, r.containerConfig(cmd, hostDir), r.hostConfig(hostDir))
	if err != nil {
		return solution.ExecutionResult{}, fmt.Errorf("%w: %w", customErr.ErrContainerFailed, err)
	}
	defer r.remove(containerID)

	hijack, err := r.docker.AttachContainer(ctx, containerID)
	if err != nil {
		return solution.ExecutionResult{}, fmt.Errorf("%w: %w", customErr.ErrContainerFailed, err)
	}
	defer hijack.Close()

	stdout := newCappedBuffer(r.maxOutputBytes)
	stderr := newCappedBuffer(r.maxOutputBytes)
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, _ = stdcopy.StdCopy(stdout, stderr, hijack.Reader)
	}()

	start := time.Now()
	if err := r.docker.StartContainer(ctx, containerID); err != nil {
		return solution.ExecutionResult{}, fmt.Errorf("%w: %w", customErr.ErrContainerFailed, err)
	}
	go func() {
		_, _ = io.WriteString(hijack.Conn, input)
		_ = hijack.CloseWrite()
	}()

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	code, waitErr := r.docker.WaitContainer(runCtx, containerID)
	var timedOut, cancelled bool
	if waitErr != nil {
		switch {
		case ctx.Err() != nil:
			cancelled = true
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			timedOut = true
		default:
			return solution.ExecutionResult{}, fmt.Errorf("%w: %w", customErr.ErrContainerFailed, waitErr)
		}
		r.kill(containerID)
	}

	select {
	case <-copied:
	case <-time.After(pipeDrainDelay):
	}

	result := solution.ExecutionResult{
		ExitCode:  int(code),
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		TimedOut:  timedOut,
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}
	if cancelled {
		return result, fmt.Errorf("%w: %w", customErr.ErrRunCancelled, ctx.Err())
	}
	return result, nil
}

func (r *dockerRunner) containerConfig(cmd Command, hostDir string) *container.Config {
	argv := make([]string, 0, len(cmd.Args)+1)
	argv = append(argv, toContainerPath(cmd.Name, hostDir))
	for _, arg := range cmd.Args {
		argv = append(argv, toContainerPath(arg, hostDir))
	}

	return &container.Config{
		Image:           cmd.Image,
		Cmd:             argv,
		WorkingDir:      constants.ContainerWorkDir,
		OpenStdin:       true,
		StdinOnce:       true,
		AttachStdin:     true,
		AttachStdout:    true,
		AttachStderr:    true,
		NetworkDisabled: true,
	}
}

func (r *dockerRunner) hostConfig(hostDir string) *container.HostConfig {
	pids := int64(constants.ContainerPidsLimit)
	return &container.HostConfig{
		Binds:       []string{hostDir + ":" + constants.ContainerWorkDir},
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    r.memoryBytes,
			PidsLimit: &pids,
		},
	}
}

func (r *dockerRunner) kill(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), containerCleanupTimeout)
	defer cancel()
	if err := r.docker.KillContainer(ctx, containerID); err != nil {
		r.logger.Warnf("Failed to kill container %s: %s", containerID, err)
	}
}

func (r *dockerRunner) remove(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), containerCleanupTimeout)
	defer cancel()
	if err := r.docker.RemoveContainer(ctx, containerID); err != nil {
		r.logger.Warnf("Failed to remove container %s: %s", containerID, err)
	}
}

// toContainerPath rewrites paths under the host working directory to the bind mount.
func toContainerPath(arg, hostDir string) string {
	if arg == hostDir {
		return constants.ContainerWorkDir
	}
	prefix := hostDir + string(filepath.Separator)
	if strings.HasPrefix(arg, prefix) {
		return constants.ContainerWorkDir + "/" + filepath.ToSlash(strings.TrimPrefix(arg, prefix))
	}
	return arg
}
