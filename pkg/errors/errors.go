package errors

import "errors"

// Error messages.
var (
	ErrUnsupportedLanguage   = errors.New("unsupported language")
	ErrWorkDir               = errors.New("working directory failure")
	ErrInvalidSuite          = errors.New("invalid test suite")
	ErrCompilationFailed     = errors.New("compilation failed")
	ErrRunCancelled          = errors.New("run cancelled")
	ErrEmptyCommand          = errors.New("command is empty after expansion")
	ErrFailedToGetFreeWorker = errors.New("failed to get free worker")
	ErrUnknownMessageType    = errors.New("unknown message type")
	ErrUnknownTask           = errors.New("no running task with given message id")
	ErrTaskAlreadyRunning    = errors.New("a task with given message id is already running")
	ErrContainerFailed       = errors.New("container failed to execute")
	ErrProblemNotFound       = errors.New("problem not found")
	ErrMissingExpectedOutput = errors.New("expected output file is missing")
	ErrEmptyTestCase         = errors.New("test case input and expected output must not be empty")
	ErrHarnessPanic          = errors.New("harness panicked")
	ErrResponderClosed       = errors.New("responder is closed")
)
