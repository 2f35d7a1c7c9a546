package executor

import (
	"context"
	"strings"
	"time"

	"github.com/mini-maxit/harness/pkg/solution"
)

// Command is an argument vector. It is never passed through a shell.
type Command struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
	// Image is used by the docker runner only.
	Image string `json:"image,omitempty"`
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner spawns exactly one process per Execute call. The input is written to
// stdin and stdin is closed. On timeout the process and its children are
// killed and TimedOut is set. A cancelled ctx yields ErrRunCancelled.
type Runner interface {
	Execute(
		ctx context.Context,
		cmd Command,
		input string,
		cwd string,
		timeout time.Duration,
	) (solution.ExecutionResult, error)
}
