package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/mini-maxit/harness/internal/config"
	"github.com/mini-maxit/harness/internal/docker"
	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/pipeline"
	"github.com/mini-maxit/harness/internal/stages/executor"
	"github.com/mini-maxit/harness/internal/stages/packager"
	"github.com/mini-maxit/harness/internal/stages/planner"
	"github.com/mini-maxit/harness/internal/stages/verifier"
	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/languages"
)

// Process exit codes of the CLI.
const (
	exitAllPassed = 0
	exitFailed    = 1
	exitHardError = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	logger.Sync()

	os.Exit(exitCode(err))
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "harness",
		Usage: "run a solution against a problem's test cases",
		// Exit codes are resolved in main so deferred cleanup still runs.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			runCommand(),
			initCommand(),
			addCommand(),
			importCommand(),
			problemsCommand(),
			languagesCommand(),
			workerCommand(),
		},
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitAllPassed
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return exitHardError
}

// newHarness assembles the harness stages from configuration.
func newHarness(cfg *config.Config, reporter pipeline.Reporter, workers int) (pipeline.Harness, error) {
	runner, err := newRunner(cfg)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = cfg.HarnessWorkers
	}

	return pipeline.NewHarness(
		packager.NewPackager(cfg.WorkRoot),
		planner.NewPlanner(map[languages.LanguageType][]string{
			languages.CPP:  cfg.CppFlags,
			languages.JAVA: cfg.JavaFlags,
		}),
		runner,
		verifier.NewVerifier(),
		reporter,
		pipeline.HarnessConfig{
			Workers:        workers,
			CompileTimeout: cfg.CompileTimeout,
		},
	), nil
}

func newRunner(cfg *config.Config) (executor.Runner, error) {
	if cfg.RunnerBackend != constants.RunnerBackendDocker {
		return executor.NewLocalRunner(cfg.MaxOutputBytes), nil
	}

	dCli, err := docker.NewDockerClient()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize docker client: %w", err)
	}
	return executor.NewDockerRunner(dCli, cfg.MaxOutputBytes, cfg.DockerMemoryMB), nil
}
