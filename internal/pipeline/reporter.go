package pipeline

import "github.com/mini-maxit/harness/pkg/solution"

// Reporter receives progress of a single run. The harness serializes every
// call, so implementations need no locking of their own.
type Reporter interface {
	StartRun(runID string, problem string, total int)
	StateChanged(runID string, state solution.HarnessState)
	FinishCompile(runID string, ok bool, output string)
	FinishCase(runID string, index int, outcome solution.TestOutcome)
	FinishRun(report solution.RunReport)
}

type noopReporter struct{}

// NewNoopReporter returns a Reporter discarding every event.
func NewNoopReporter() Reporter {
	return noopReporter{}
}

func (noopReporter) StartRun(string, string, int) {}
func (noopReporter) StateChanged(string, solution.HarnessState) {}
func (noopReporter) FinishCompile(string, bool, string) {}
func (noopReporter) FinishCase(string, int, solution.TestOutcome) {}
func (noopReporter) FinishRun(solution.RunReport) {}
