package verifier

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/solution"
)

// Verifier turns one execution result into the outcome of its test case.
type Verifier interface {
	Classify(tc solution.TestCase, result solution.ExecutionResult) solution.TestOutcome
	CompileFailure(tc solution.TestCase) solution.TestOutcome
}

type verifier struct{}

func NewVerifier() Verifier {
	return &verifier{}
}

func (v *verifier) Classify(tc solution.TestCase, result solution.ExecutionResult) solution.TestOutcome {
	outcome := solution.TestOutcome{
		TestCase:   tc,
		ExitCode:   result.ExitCode,
		DurationMs: result.Duration.Milliseconds(),
	}

	switch {
	case result.TimedOut:
		outcome.ErrorKind = solution.Timeout
		outcome.ActualOutput = trimLineEnd(result.Stdout)
	case result.ExitCode != constants.ExitCodeSuccess:
		outcome.ErrorKind = solution.RuntimeError
		outcome.ActualOutput = strings.TrimSpace(result.Stderr)
		if outcome.ActualOutput == "" {
			outcome.ActualOutput = fmt.Sprintf(constants.RuntimeErrorFallbackMessage, result.ExitCode)
		}
	default:
		outcome.ActualOutput = trimLineEnd(result.Stdout)
		outcome.Passed = Equal(result.Stdout, tc.ExpectedOutput)
		if !outcome.Passed {
			outcome.ErrorKind = solution.Mismatch
		}
	}

	if result.Truncated {
		outcome.ActualOutput += constants.OutputTruncatedSuffix
	}
	return outcome
}

func (v *verifier) CompileFailure(tc solution.TestCase) solution.TestOutcome {
	return solution.TestOutcome{
		TestCase:  tc,
		ErrorKind: solution.CompileError,
	}
}

// Equal compares two outputs after Normalize. It cannot tell "abc", ABC and
// a b c apart, formatting differences are never a failure.
func Equal(actual, expected string) bool {
	return Normalize(actual) == Normalize(expected)
}

// Normalize removes every whitespace character, lowercases the text and strips
// one pair of matching surrounding quotes.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}

func trimLineEnd(s string) string {
	return strings.TrimRight(s, "\r\n")
}
