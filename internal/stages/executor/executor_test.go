package executor_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/mock/gomock"

	. "github.com/mini-maxit/harness/internal/stages/executor"
	pkgErr "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/tests/mocks"
)

const testImage = "gcc:13"

// hijacked returns an attach response replaying the given multiplexed output
// and a channel receiving everything written to the container's stdin.
func hijacked(t *testing.T, stdout, stderr string) (types.HijackedResponse, <-chan string) {
	t.Helper()
	var frames bytes.Buffer
	if stdout != "" {
		if _, err := stdcopy.NewStdWriter(&frames, stdcopy.Stdout).Write([]byte(stdout)); err != nil {
			t.Fatalf("failed to frame stdout: %v", err)
		}
	}
	if stderr != "" {
		if _, err := stdcopy.NewStdWriter(&frames, stdcopy.Stderr).Write([]byte(stderr)); err != nil {
			t.Fatalf("failed to frame stderr: %v", err)
		}
	}

	client, server := net.Pipe()
	received := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(server)
		received <- string(b)
	}()

	return types.HijackedResponse{Conn: client, Reader: bufio.NewReader(&frames)}, received
}

func TestDockerRunnerSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	dir := t.TempDir()
	resp, stdin := hijacked(t, "[0,1]\n", "note\n")

	mockDocker.EXPECT().EnsureImage(gomock.Any(), testImage).Return(nil)
	mockDocker.EXPECT().CreateContainer(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cfg *container.Config, host *container.HostConfig) (string, error) {
			if !reflect.DeepEqual([]string(cfg.Cmd), []string{"/workspace/solution", "--flag"}) {
				t.Errorf("unexpected container command %v", cfg.Cmd)
			}
			if !cfg.NetworkDisabled || !cfg.OpenStdin || !cfg.StdinOnce {
				t.Errorf("expected stdin attached and networking disabled: %+v", cfg)
			}
			if len(host.Binds) != 1 || host.Binds[0] != dir+":/workspace" {
				t.Errorf("unexpected binds %v", host.Binds)
			}
			if host.Resources.Memory != 64*1024*1024 {
				t.Errorf("unexpected memory limit %d", host.Resources.Memory)
			}
			return "cid", nil
		})
	mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid").Return(resp, nil)
	mockDocker.EXPECT().StartContainer(gomock.Any(), "cid").Return(nil)
	mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid").Return(int64(0), nil)
	mockDocker.EXPECT().RemoveContainer(gomock.Any(), "cid").Return(nil)

	r := NewDockerRunner(mockDocker, 0, 64)
	cmd := Command{Name: dir + "/solution", Args: []string{"--flag"}, Image: testImage}
	res, err := r.Execute(context.Background(), cmd, "[2,7,11,15]\n9", dir, time.Second)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.ExitCode != 0 || res.TimedOut {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Stdout != "[0,1]\n" || res.Stderr != "note\n" {
		t.Fatalf("unexpected streams stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}

	select {
	case got := <-stdin:
		if got != "[2,7,11,15]\n9" {
			t.Fatalf("unexpected stdin %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("stdin was never closed")
	}
}

func TestDockerRunnerTimeoutKillsContainer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	resp, _ := hijacked(t, "", "")

	mockDocker.EXPECT().EnsureImage(gomock.Any(), testImage).Return(nil)
	mockDocker.EXPECT().CreateContainer(gomock.Any(), gomock.Any(), gomock.Any()).Return("cid", nil)
	mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid").Return(resp, nil)
	mockDocker.EXPECT().StartContainer(gomock.Any(), "cid").Return(nil)
	mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid").DoAndReturn(
		func(ctx context.Context, _ string) (int64, error) {
			<-ctx.Done()
			return -1, ctx.Err()
		})
	mockDocker.EXPECT().KillContainer(gomock.Any(), "cid").Return(nil).Times(1)
	mockDocker.EXPECT().RemoveContainer(gomock.Any(), "cid").Return(nil).Times(1)

	r := NewDockerRunner(mockDocker, 0, 64)
	res, err := r.Execute(context.Background(), Command{Name: "sleep", Image: testImage}, "", t.TempDir(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !res.TimedOut {
		t.Fatalf("expected TimedOut to be set")
	}
}

func TestDockerRunnerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	resp, _ := hijacked(t, "", "")
	ctx, cancel := context.WithCancel(context.Background())

	mockDocker.EXPECT().EnsureImage(gomock.Any(), testImage).Return(nil)
	mockDocker.EXPECT().CreateContainer(gomock.Any(), gomock.Any(), gomock.Any()).Return("cid", nil)
	mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid").Return(resp, nil)
	mockDocker.EXPECT().StartContainer(gomock.Any(), "cid").Return(nil)
	mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid").DoAndReturn(
		func(waitCtx context.Context, _ string) (int64, error) {
			cancel()
			<-waitCtx.Done()
			return -1, waitCtx.Err()
		})
	mockDocker.EXPECT().KillContainer(gomock.Any(), "cid").Return(nil)
	mockDocker.EXPECT().RemoveContainer(gomock.Any(), "cid").Return(nil)

	_, err := NewDockerRunner(mockDocker, 0, 64).Execute(ctx, Command{Name: "sleep", Image: testImage}, "", t.TempDir(), time.Minute)
	if !errors.Is(err, pkgErr.ErrRunCancelled) {
		t.Fatalf("expected ErrRunCancelled, got %v", err)
	}
}

func TestDockerRunnerWaitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocker := mocks.NewMockDockerClient(ctrl)
	resp, _ := hijacked(t, "", "")

	mockDocker.EXPECT().EnsureImage(gomock.Any(), testImage).Return(nil)
	mockDocker.EXPECT().CreateContainer(gomock.Any(), gomock.Any(), gomock.Any()).Return("cid", nil)
	mockDocker.EXPECT().AttachContainer(gomock.Any(), "cid").Return(resp, nil)
	mockDocker.EXPECT().StartContainer(gomock.Any(), "cid").Return(nil)
	mockDocker.EXPECT().WaitContainer(gomock.Any(), "cid").Return(int64(-1), errors.New("daemon gone"))
	mockDocker.EXPECT().RemoveContainer(gomock.Any(), "cid").Return(nil)

	_, err := NewDockerRunner(mockDocker, 0, 64).Execute(context.Background(), Command{Name: "true", Image: testImage}, "", t.TempDir(), time.Second)
	if !errors.Is(err, pkgErr.ErrContainerFailed) {
		t.Fatalf("expected ErrContainerFailed, got %v", err)
	}
}

func TestDockerRunnerRequiresImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := NewDockerRunner(mocks.NewMockDockerClient(ctrl), 0, 64)
	_, err := r.Execute(context.Background(), Command{Name: "true"}, "", t.TempDir(), time.Second)
	if !errors.Is(err, pkgErr.ErrContainerFailed) {
		t.Fatalf("expected ErrContainerFailed, got %v", err)
	}
}
