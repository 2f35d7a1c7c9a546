package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/stages/executor"
	"github.com/mini-maxit/harness/internal/stages/packager"
	"github.com/mini-maxit/harness/internal/stages/planner"
	"github.com/mini-maxit/harness/internal/stages/templates"
	"github.com/mini-maxit/harness/internal/stages/verifier"
	"github.com/mini-maxit/harness/pkg/constants"
	customErr "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/solution"
)

type Harness interface {
	// RunHarness wraps, builds and runs the artifact against every case of the
	// suite. Per-case failures are reported as outcomes. Only an unsupported
	// language, an invalid suite or a working directory failure return an error.
	// A cancelled ctx yields the completed outcomes with Partial set.
	RunHarness(
		ctx context.Context,
		artifact solution.SolutionArtifact,
		suite solution.TestSuite,
		timeoutPerCase time.Duration,
	) (solution.RunReport, error)
}

type HarnessConfig struct {
	Workers        int
	CompileTimeout time.Duration
}

type harness struct {
	packager packager.Packager
	planner  planner.Planner
	runner   executor.Runner
	verifier verifier.Verifier
	reporter Reporter
	cfg      HarnessConfig
	logger   *zap.SugaredLogger

	reportMu sync.Mutex
}

func NewHarness(
	packager packager.Packager,
	planner planner.Planner,
	runner executor.Runner,
	verifier verifier.Verifier,
	reporter Reporter,
	cfg HarnessConfig,
) Harness {
	if reporter == nil {
		reporter = NewNoopReporter()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = constants.DefaultHarnessWorkers
	}
	if cfg.CompileTimeout <= 0 {
		cfg.CompileTimeout = constants.DefaultCompileTimeout
	}

	return &harness{
		packager: packager,
		planner:  planner,
		runner:   runner,
		verifier: verifier,
		reporter: reporter,
		cfg:      cfg,
		logger:   logger.NewNamedLogger("harness"),
	}
}

func (h *harness) RunHarness(
	ctx context.Context,
	artifact solution.SolutionArtifact,
	suite solution.TestSuite,
	timeoutPerCase time.Duration,
) (report solution.RunReport, err error) {
	report = solution.RunReport{
		RunID:      uuid.NewString(),
		Problem:    suite.Problem,
		Language:   artifact.Language,
		State:      solution.Idle,
		Outcomes:   []solution.TestOutcome{},
		TotalCount: len(suite.Cases),
		StartedAt:  time.Now(),
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("[RunID: %s] Recovered from panic: %v", report.RunID, r)
			err = fmt.Errorf("%w: %v", customErr.ErrHarnessPanic, r)
		}
	}()

	if _, err := artifact.Language.Definition(); err != nil {
		return report, err
	}
	if err := suite.Validate(); err != nil {
		return report, err
	}
	if timeoutPerCase <= 0 {
		timeoutPerCase = constants.DefaultCaseTimeout
	}

	h.logger.Infof("[RunID: %s] Starting run of %d cases in %s", report.RunID, len(suite.Cases), artifact.Language)
	h.emit(func() { h.reporter.StartRun(report.RunID, report.Problem, report.TotalCount) })

	h.transition(&report, solution.Wrapping)
	wrapped, err := templates.WrapWithSignature(artifact.Language, artifact.RawSource, artifact.Signature)
	if err != nil {
		return report, err
	}
	artifact.WrappedSource = wrapped

	dc, err := h.packager.PrepareWorkDir(report.RunID)
	if err != nil {
		return report, err
	}
	defer func() {
		if cleanupErr := h.packager.Cleanup(dc); cleanupErr != nil {
			h.logger.Errorf("[RunID: %s] Failed to clean up: %s", report.RunID, cleanupErr)
		}
	}()

	plan, err := h.planner.Plan(artifact.Language, dc.DirPath)
	if err != nil {
		return report, err
	}
	if err := h.packager.WriteSource(dc, plan.SourcePath, artifact.WrappedSource); err != nil {
		return report, err
	}

	h.transition(&report, solution.Building)
	if plan.RequiresCompilation() {
		ok, output, cancelled := h.compile(ctx, report.RunID, plan, dc.DirPath)
		report.CompileOutput = output
		h.emit(func() { h.reporter.FinishCompile(report.RunID, ok, output) })
		if cancelled {
			return h.finish(report, nil), nil
		}
		if !ok {
			h.logger.Infof("[RunID: %s] Compilation failed", report.RunID)
			h.transition(&report, solution.CompileFailed)
			outcomes := make([]*solution.TestOutcome, len(suite.Cases))
			for i, tc := range suite.Cases {
				outcome := h.verifier.CompileFailure(tc)
				outcomes[i] = &outcome
				h.emit(func() { h.reporter.FinishCase(report.RunID, i, outcome) })
			}
			return h.finish(report, outcomes), nil
		}
	}

	h.transition(&report, solution.Running)
	outcomes := h.runCases(ctx, report.RunID, plan, dc.DirPath, suite.Cases, timeoutPerCase)
	h.transition(&report, solution.Completed)
	return h.finish(report, outcomes), nil
}

// compile runs the compile step once and returns whether it succeeded, the
// diagnostics to show and whether ctx was cancelled meanwhile.
func (h *harness) compile(ctx context.Context, runID string, plan planner.BuildPlan, dir string) (bool, string, bool) {
	h.logger.Infof("[RunID: %s] Compiling: %s", runID, plan.Compile)
	res, err := h.runner.Execute(ctx, *plan.Compile, "", dir, h.cfg.CompileTimeout)
	switch {
	case errors.Is(err, customErr.ErrRunCancelled):
		return false, "", true
	case err != nil:
		return false, err.Error(), false
	case res.TimedOut:
		return false, fmt.Sprintf(constants.CompileTimeoutMessage, h.cfg.CompileTimeout), false
	}

	output := strings.TrimSpace(strings.Join([]string{res.Stderr, res.Stdout}, "\n"))
	if res.ExitCode != constants.ExitCodeSuccess {
		if output == "" {
			output = fmt.Sprintf(constants.RuntimeErrorFallbackMessage, res.ExitCode)
		}
		return false, output, false
	}
	return true, output, false
}

// runCases executes the cases on at most cfg.Workers concurrent processes. The
// returned slice is indexed like cases; a nil entry was never completed.
func (h *harness) runCases(
	ctx context.Context,
	runID string,
	plan planner.BuildPlan,
	dir string,
	cases []solution.TestCase,
	timeout time.Duration,
) []*solution.TestOutcome {
	outcomes := make([]*solution.TestOutcome, len(cases))

	var g errgroup.Group
	g.SetLimit(h.cfg.Workers)
	for i, tc := range cases {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := h.runner.Execute(ctx, plan.Run, tc.Input, dir, timeout)
			if errors.Is(err, customErr.ErrRunCancelled) {
				return nil
			}

			var outcome solution.TestOutcome
			if err != nil {
				h.logger.Warnf("[RunID: %s] Case %s could not be executed: %s", runID, tc.ID, err)
				outcome = solution.TestOutcome{
					TestCase:     tc,
					ActualOutput: err.Error(),
					ErrorKind:    solution.RuntimeError,
					ExitCode:     res.ExitCode,
				}
			} else {
				outcome = h.verifier.Classify(tc, res)
			}

			outcomes[i] = &outcome
			h.emit(func() { h.reporter.FinishCase(runID, i, outcome) })
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// finish collects completed outcomes in suite order, counts passes and marks
// the report partial when any case is missing.
func (h *harness) finish(report solution.RunReport, outcomes []*solution.TestOutcome) solution.RunReport {
	report.Outcomes = make([]solution.TestOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		report.Outcomes = append(report.Outcomes, *outcome)
		if outcome.Passed {
			report.PassedCount++
		}
	}
	report.Partial = len(report.Outcomes) < report.TotalCount
	report.FinishedAt = time.Now()

	if report.Partial {
		h.logger.Infof("[RunID: %s] Run cancelled after %d of %d cases", report.RunID, len(report.Outcomes), report.TotalCount)
	} else {
		h.logger.Infof("[RunID: %s] Finished: %d/%d passed", report.RunID, report.PassedCount, report.TotalCount)
	}
	h.emit(func() { h.reporter.FinishRun(report) })
	return report
}

func (h *harness) transition(report *solution.RunReport, state solution.HarnessState) {
	report.State = state
	h.emit(func() { h.reporter.StateChanged(report.RunID, state) })
}

func (h *harness) emit(event func()) {
	h.reportMu.Lock()
	defer h.reportMu.Unlock()
	event()
}
