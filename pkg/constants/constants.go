package constants

import (
	"encoding/json"
	"time"
)

// Queue message types.
const (
	QueueMessageTypeTask      = "task"
	QueueMessageTypeCancel    = "cancel"
	QueueMessageTypeHandshake = "handshake"
	QueueMessageTypeStatus    = "status"
)

// Worker specific constants.
type WorkerStatus int

const (
	WorkerStatusIdle WorkerStatus = iota
	WorkerStatusBusy
)

func (ws WorkerStatus) String() string {
	switch ws {
	case WorkerStatusIdle:
		return "idle"
	case WorkerStatusBusy:
		return "busy"
	default:
		return "unknown"
	}
}

func (ws WorkerStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(ws.String())
}

// Exit codes.
const (
	ExitCodeSuccess         = 0
	ExitCodeCommandNotFound = 127
)

// Outcome messages.
const (
	RuntimeErrorFallbackMessage = "process exited with code %d"
	CompileTimeoutMessage       = "compilation timed out after %s"
	OutputTruncatedSuffix       = "\n... output truncated"
)

// Configuration constants.
const (
	DefaultHarnessWorkers          = 4
	DefaultCaseTimeout             = 2 * time.Second
	DefaultCompileTimeout          = 30 * time.Second
	DefaultMaxOutputBytes          = 1 << 20
	DefaultWorkRoot                = "/tmp/harness"
	DefaultSuitesDir               = "test_cases"
	DefaultRunnerBackend           = RunnerBackendLocal
	DefaultCppFlags                = ""
	DefaultJavaFlags               = ""
	DefaultDockerMemoryMB          = 256
	DefaultRabbitmqHost            = "localhost"
	DefaultRabbitmqUser            = "guest"
	DefaultRabbitmqPassword        = "guest"
	DefaultRabbitmqPort            = "5672"
	DefaultWorkerQueueName         = "harness_queue"
	DefaultMaxWorkers              = 2
	DefaultLogLevel                = "info"
	DefaultLogDir                  = "logs"
	DefaultRabbitmqPublishChanSize = 100
)

// Runner backends.
const (
	RunnerBackendLocal  = "local"
	RunnerBackendDocker = "docker"
)

// Working directory layout.
const (
	WorkDirPrefix      = "run-"
	BinaryFileName     = "solution"
	ContainerWorkDir   = "/workspace"
	ContainerPidsLimit = 64
	TOMLSuiteFileName  = "suite.toml"
	YAMLSuiteFileName  = "suite.yaml"
	InputFilePrefix    = "input_"
	OutputFilePrefix   = "output_"
	TestFileExtension  = ".txt"
	StarterDirName     = "solutions"
	StarterFileName    = "solution"
)

// RabbitMQ specific constants.
const (
	RabbitMQMaxPriority     = 3
	RabbitMQRequeuePriority = 2
	RabbitMQDialAttempts    = 5
	RabbitMQDialBackoff     = 2 * time.Second
	RabbitMQContentType     = "application/json"
)
