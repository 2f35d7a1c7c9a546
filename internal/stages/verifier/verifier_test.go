package verifier_test

import (
	"testing"
	"time"

	. "github.com/mini-maxit/harness/internal/stages/verifier"
	"github.com/mini-maxit/harness/pkg/solution"
)

func TestEqual(t *testing.T) {
	cases := []struct {
		actual, expected string
		want             bool
	}{
		{"[1, 2]", "[1,2]", true},
		{"ABC", "abc", true},
		{`"x"`, "x", true},
		{"'x'", "x", true},
		{"a b\tc\n", "abc", true},
		{"[0,1]\n", "[0,1]", true},
		{`"abc"`, "A B C", true},
		{" [1] ", "[1]", true},
		{`"x'`, "x", false},
		{`""x""`, "x", false},
		{"[0,1]", "[1,0]", false},
		{"", "[]", false},
		{"", "", true},
		{`"`, "", false},
	}

	for _, c := range cases {
		if got := Equal(c.actual, c.expected); got != c.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", c.actual, c.expected, got, c.want)
		}
		if Equal(c.actual, c.expected) != Equal(c.expected, c.actual) {
			t.Errorf("Equal is not symmetric for %q and %q", c.actual, c.expected)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(" \"Hello World\" \n"); got != "helloworld" {
		t.Fatalf("unexpected normalized text %q", got)
	}
	if got := Normalize("'a'b'"); got != "a'b" {
		t.Fatalf("expected only one quote pair stripped, got %q", got)
	}
}

func TestClassify(t *testing.T) {
	tc := solution.TestCase{ID: "1", Input: "[2,7,11,15]\n9", ExpectedOutput: "[0,1]"}
	v := NewVerifier()

	tests := []struct {
		name       string
		result     solution.ExecutionResult
		wantKind   solution.ErrorKind
		wantPassed bool
		wantOutput string
	}{
		{
			name:       "passing output",
			result:     solution.ExecutionResult{Stdout: "[0, 1]\n", Duration: 15 * time.Millisecond},
			wantKind:   solution.None,
			wantPassed: true,
			wantOutput: "[0, 1]",
		},
		{
			name:       "mismatch",
			result:     solution.ExecutionResult{Stdout: "[]\n"},
			wantKind:   solution.Mismatch,
			wantOutput: "[]",
		},
		{
			name:       "runtime error with stderr",
			result:     solution.ExecutionResult{ExitCode: 1, Stdout: "[0,1]", Stderr: "Traceback: boom\n"},
			wantKind:   solution.RuntimeError,
			wantOutput: "Traceback: boom",
		},
		{
			name:       "runtime error without stderr",
			result:     solution.ExecutionResult{ExitCode: -1},
			wantKind:   solution.RuntimeError,
			wantOutput: "process exited with code -1",
		},
		{
			name:       "timeout wins over exit code",
			result:     solution.ExecutionResult{ExitCode: -1, TimedOut: true, Stdout: "[0,1]"},
			wantKind:   solution.Timeout,
			wantOutput: "[0,1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Classify(tc, tt.result)
			if got.ErrorKind != tt.wantKind || got.Passed != tt.wantPassed || got.ActualOutput != tt.wantOutput {
				t.Fatalf("unexpected outcome %+v", got)
			}
			if got.TestCase.ID != tc.ID || got.ExitCode != tt.result.ExitCode {
				t.Fatalf("outcome lost case identity or exit code: %+v", got)
			}
		})
	}
}

func TestClassifyMarksTruncatedOutput(t *testing.T) {
	got := NewVerifier().Classify(solution.TestCase{ID: "1", ExpectedOutput: "x"}, solution.ExecutionResult{Stdout: "yyyy", Truncated: true})
	if got.Passed || got.ActualOutput != "yyyy\n... output truncated" {
		t.Fatalf("unexpected outcome %+v", got)
	}
}

func TestCompileFailure(t *testing.T) {
	got := NewVerifier().CompileFailure(solution.TestCase{ID: "7"})
	if got.Passed || got.ErrorKind != solution.CompileError || got.TestCase.ID != "7" {
		t.Fatalf("unexpected outcome %+v", got)
	}
}
