package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mini-maxit/harness/internal/pipeline"
	"github.com/mini-maxit/harness/pkg/solution"
)

var _ pipeline.Reporter = (*Terminal)(nil)

// Terminal prints live progress of a run. Cases are printed as they finish,
// which may differ from suite order when they run concurrently.
type Terminal struct {
	out     io.Writer
	verbose bool

	pass  func(a ...interface{}) string
	fail  func(a ...interface{}) string
	warn  func(a ...interface{}) string
	faint func(a ...interface{}) string
}

func NewTerminal(out io.Writer, verbose bool) *Terminal {
	return &Terminal{
		out:     out,
		verbose: verbose,
		pass:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		fail:    color.New(color.FgRed, color.Bold).SprintFunc(),
		warn:    color.New(color.FgYellow).SprintFunc(),
		faint:   color.New(color.Faint).SprintFunc(),
	}
}

func (t *Terminal) StartRun(runID string, problem string, total int) {
	if problem == "" {
		problem = "solution"
	}
	fmt.Fprintf(t.out, "Running %d test case(s) for %s\n", total, problem)
	if t.verbose {
		fmt.Fprintln(t.out, t.faint("run "+runID))
	}
}

func (t *Terminal) StateChanged(_ string, state solution.HarnessState) {
	if t.verbose {
		fmt.Fprintln(t.out, t.faint("-> "+state.String()))
	}
}

func (t *Terminal) FinishCompile(_ string, ok bool, output string) {
	if ok {
		if t.verbose && output != "" {
			fmt.Fprintln(t.out, t.warn(output))
		}
		return
	}
	fmt.Fprintln(t.out, t.fail("Compilation failed"))
	if output != "" {
		fmt.Fprintln(t.out, indent(output))
	}
}

func (t *Terminal) FinishCase(_ string, index int, outcome solution.TestOutcome) {
	name := outcome.TestCase.ID
	if name == "" {
		name = fmt.Sprintf("#%d", index+1)
	}

	if outcome.Passed {
		fmt.Fprintf(t.out, "%s Test %s %s\n", t.pass("PASS"), name, t.faint(fmt.Sprintf("(%dms)", outcome.DurationMs)))
		return
	}
	if outcome.ErrorKind == solution.CompileError {
		fmt.Fprintf(t.out, "%s Test %s: not run\n", t.fail("FAIL"), name)
		return
	}

	fmt.Fprintf(t.out, "%s Test %s: %s\n", t.fail("FAIL"), name, describe(outcome))
	fmt.Fprintf(t.out, "  Input:    %s\n", oneLine(outcome.TestCase.Input))
	fmt.Fprintf(t.out, "  Expected: %s\n", oneLine(outcome.TestCase.ExpectedOutput))
	fmt.Fprintf(t.out, "  Actual:   %s\n", oneLine(outcome.ActualOutput))
}

func (t *Terminal) FinishRun(report solution.RunReport) {
	summary := fmt.Sprintf("Passed %d/%d", report.PassedCount, report.TotalCount)
	switch {
	case report.Partial:
		fmt.Fprintf(t.out, "%s (cancelled after %d of %d cases)\n",
			t.warn(summary), len(report.Outcomes), report.TotalCount)
	case report.AllPassed():
		fmt.Fprintln(t.out, t.pass(summary))
	default:
		fmt.Fprintln(t.out, t.fail(summary))
	}
}

func describe(outcome solution.TestOutcome) string {
	switch outcome.ErrorKind {
	case solution.Timeout:
		return "timed out"
	case solution.RuntimeError:
		return fmt.Sprintf("runtime error (exit code %d)", outcome.ExitCode)
	default:
		return "wrong answer"
	}
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\r\n"), "\n", `\n`)
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}
