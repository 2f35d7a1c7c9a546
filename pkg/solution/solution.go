package solution

import (
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/languages"
)

// ParamKind is the decoded type of one stdin record.
type ParamKind int

const (
	IntArray ParamKind = iota + 1
	Int
	String
	StringArray
	Bool
)

var paramKindNames = map[ParamKind]string{
	IntArray:    "int[]",
	Int:         "int",
	String:      "string",
	StringArray: "string[]",
	Bool:        "bool",
}

func (pk ParamKind) String() string {
	return paramKindNames[pk]
}

func ParseParamKind(s string) (ParamKind, error) {
	for kind, name := range paramKindNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown parameter kind %q", s)
}

// Signature lists the parameters of the user entry point, one stdin record each.
type Signature []ParamKind

// DefaultSignature is the array + scalar shape used by the starter solutions.
var DefaultSignature = Signature{IntArray, Int}

func ParseSignature(kinds []string) (Signature, error) {
	if len(kinds) == 0 {
		return DefaultSignature, nil
	}
	sig := make(Signature, 0, len(kinds))
	for _, k := range kinds {
		kind, err := ParseParamKind(k)
		if err != nil {
			return nil, err
		}
		sig = append(sig, kind)
	}
	return sig, nil
}

type SolutionArtifact struct {
	Language  languages.LanguageType `json:"language"`
	RawSource string                 `json:"raw_source"`
	// Signature defaults to DefaultSignature when empty.
	Signature     Signature `json:"-"`
	WrappedSource string    `json:"-"`
}

type TestCase struct {
	ID             string `json:"id" toml:"id" yaml:"id"`
	Input          string `json:"input" toml:"input" yaml:"input"`
	ExpectedOutput string `json:"expected_output" toml:"expected" yaml:"expected"`
}

type TestSuite struct {
	Problem string     `json:"problem" toml:"problem" yaml:"problem"`
	Cases   []TestCase `json:"cases" toml:"cases" yaml:"cases"`
}

// Validate checks that every case has a non-empty id unique within the suite.
func (ts TestSuite) Validate() error {
	seen := mapset.NewThreadUnsafeSet[string]()
	for i, tc := range ts.Cases {
		if tc.ID == "" {
			return fmt.Errorf("%w: case at position %d has no id", errors.ErrInvalidSuite, i)
		}
		if !seen.Add(tc.ID) {
			return fmt.Errorf("%w: duplicate case id %q", errors.ErrInvalidSuite, tc.ID)
		}
	}
	return nil
}

type ExecutionResult struct {
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	TimedOut  bool          `json:"timed_out"`
	Truncated bool          `json:"truncated"`
	Duration  time.Duration `json:"duration"`
}

type ErrorKind int

const (
	None ErrorKind = iota
	CompileError
	RuntimeError
	Timeout
	Mismatch
)

var errorKindNames = map[ErrorKind]string{
	None:         "",
	CompileError: "compile_error",
	RuntimeError: "runtime_error",
	Timeout:      "timeout",
	Mismatch:     "mismatch",
}

func (ek ErrorKind) String() string {
	return errorKindNames[ek]
}

func (ek ErrorKind) MarshalText() ([]byte, error) {
	return []byte(ek.String()), nil
}

func (ek *ErrorKind) UnmarshalText(text []byte) error {
	for kind, name := range errorKindNames {
		if name == string(text) {
			*ek = kind
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", string(text))
}

type TestOutcome struct {
	TestCase     TestCase  `json:"test_case"`
	ActualOutput string    `json:"actual_output"`
	Passed       bool      `json:"passed"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	ExitCode     int       `json:"exit_code"`
	DurationMs   int64     `json:"duration_ms"`
}

type HarnessState int

const (
	Idle HarnessState = iota
	Wrapping
	Building
	CompileFailed
	Running
	Completed
)

var harnessStateNames = [...]string{"idle", "wrapping", "building", "compile_failed", "running", "completed"}

func (hs HarnessState) String() string {
	if hs < 0 || int(hs) >= len(harnessStateNames) {
		return "unknown"
	}
	return harnessStateNames[hs]
}

func (hs HarnessState) MarshalText() ([]byte, error) {
	return []byte(hs.String()), nil
}

func (hs *HarnessState) UnmarshalText(text []byte) error {
	for i, name := range harnessStateNames {
		if name == string(text) {
			*hs = HarnessState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown harness state %q", string(text))
}

type RunReport struct {
	RunID         string                 `json:"run_id"`
	Problem       string                 `json:"problem"`
	Language      languages.LanguageType `json:"language"`
	State         HarnessState           `json:"state"`
	Outcomes      []TestOutcome          `json:"outcomes"`
	PassedCount   int                    `json:"passed_count"`
	TotalCount    int                    `json:"total_count"`
	Partial       bool                   `json:"partial"`
	CompileOutput string                 `json:"compile_output,omitempty"`
	StartedAt     time.Time              `json:"started_at"`
	FinishedAt    time.Time              `json:"finished_at"`
}

// AllPassed reports whether the run finished every case and all of them passed.
func (r RunReport) AllPassed() bool {
	return !r.Partial && r.TotalCount > 0 && r.PassedCount == r.TotalCount
}
