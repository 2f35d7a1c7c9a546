package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"
	"github.com/joho/godotenv"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/pkg/constants"
)

type Config struct {
	HarnessWorkers   int
	CaseTimeout      time.Duration
	CompileTimeout   time.Duration
	MaxOutputBytes   int
	WorkRoot         string
	SuitesDir        string
	RunnerBackend    string
	CppFlags         []string
	JavaFlags        []string
	DockerMemoryMB   int64
	RabbitMQURL      string
	PublishChanSize  int
	ConsumeQueueName string
	MaxWorkers       int
}

func NewConfig() *Config {
	logger := logger.NewNamedLogger("config")

	_, err := os.Stat(".env")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatalf("failed to stat .env file with error: %v", err)
		}
	} else {
		err = godotenv.Load(".env")
		if err != nil {
			logger.Fatalf("failed to load .env file with error: %v", err)
		}
	}

	harnessWorkers, caseTimeout, compileTimeout, maxOutputBytes := harnessConfig()
	workRoot, suitesDir := directoriesConfig()
	backend, dockerMemoryMB := runnerConfig()
	cppFlags, javaFlags := compilerConfig()
	rabbitmqURL, publishChanSize := rabbitmqConfig()
	workerQueueName, maxWorkers := workerConfig()

	return &Config{
		HarnessWorkers:   harnessWorkers,
		CaseTimeout:      caseTimeout,
		CompileTimeout:   compileTimeout,
		MaxOutputBytes:   maxOutputBytes,
		WorkRoot:         workRoot,
		SuitesDir:        suitesDir,
		RunnerBackend:    backend,
		CppFlags:         cppFlags,
		JavaFlags:        javaFlags,
		DockerMemoryMB:   dockerMemoryMB,
		RabbitMQURL:      rabbitmqURL,
		PublishChanSize:  publishChanSize,
		ConsumeQueueName: workerQueueName,
		MaxWorkers:       maxWorkers,
	}
}

func harnessConfig() (int, time.Duration, time.Duration, int) {
	workers := intFromEnv("HARNESS_WORKERS", constants.DefaultHarnessWorkers)
	if workers < 1 {
		logger.NewNamedLogger("config").Fatalf("HARNESS_WORKERS must be positive, got %d", workers)
	}
	caseTimeout := millisFromEnv("CASE_TIMEOUT_MS", constants.DefaultCaseTimeout)
	compileTimeout := millisFromEnv("COMPILE_TIMEOUT_MS", constants.DefaultCompileTimeout)
	maxOutputBytes := intFromEnv("MAX_OUTPUT_BYTES", constants.DefaultMaxOutputBytes)

	return workers, caseTimeout, compileTimeout, maxOutputBytes
}

func directoriesConfig() (string, string) {
	workRoot := stringFromEnv("WORK_ROOT", constants.DefaultWorkRoot)
	suitesDir := stringFromEnv("SUITES_DIR", constants.DefaultSuitesDir)
	return workRoot, suitesDir
}

func runnerConfig() (string, int64) {
	logger := logger.NewNamedLogger("config")

	backend := stringFromEnv("RUNNER_BACKEND", constants.DefaultRunnerBackend)
	if backend != constants.RunnerBackendLocal && backend != constants.RunnerBackendDocker {
		logger.Fatalf("RUNNER_BACKEND must be %q or %q, got %q",
			constants.RunnerBackendLocal, constants.RunnerBackendDocker, backend)
	}
	memoryMB := intFromEnv("DOCKER_MEMORY_MB", constants.DefaultDockerMemoryMB)

	return backend, int64(memoryMB)
}

func compilerConfig() ([]string, []string) {
	logger := logger.NewNamedLogger("config")

	cppFlags, err := shlex.Split(stringFromEnv("CPP_FLAGS", constants.DefaultCppFlags))
	if err != nil {
		logger.Fatalf("failed to parse CPP_FLAGS with error: %v", err)
	}
	javaFlags, err := shlex.Split(stringFromEnv("JAVA_FLAGS", constants.DefaultJavaFlags))
	if err != nil {
		logger.Fatalf("failed to parse JAVA_FLAGS with error: %v", err)
	}

	return cppFlags, javaFlags
}

func rabbitmqConfig() (string, int) {
	logger := logger.NewNamedLogger("config")

	rabbitmqHost := stringFromEnv("RABBITMQ_HOST", constants.DefaultRabbitmqHost)
	rabbitmqPortStr := stringFromEnv("RABBITMQ_PORT", constants.DefaultRabbitmqPort)
	rabbitmqPort, err := strconv.ParseUint(rabbitmqPortStr, 10, 16)
	if err != nil {
		logger.Fatalf("failed to parse RABBITMQ_PORT with error: %v", err)
	}
	rabbitmqUser := stringFromEnv("RABBITMQ_USER", constants.DefaultRabbitmqUser)
	rabbitmqPassword := stringFromEnv("RABBITMQ_PASSWORD", constants.DefaultRabbitmqPassword)
	publishChanSize := intFromEnv("RABBITMQ_PUBLISH_CHAN_SIZE", constants.DefaultRabbitmqPublishChanSize)

	rabbitmqURL := fmt.Sprintf("amqp://%s:%s@%s:%d/", rabbitmqUser, rabbitmqPassword, rabbitmqHost, rabbitmqPort)

	return rabbitmqURL, publishChanSize
}

func workerConfig() (string, int) {
	workerQueueName := stringFromEnv("WORKER_QUEUE_NAME", constants.DefaultWorkerQueueName)
	maxWorkers := intFromEnv("MAX_WORKERS", constants.DefaultMaxWorkers)
	return workerQueueName, maxWorkers
}

func stringFromEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		logger.NewNamedLogger("config").Warnf("%s is not set, using default value %q", key, fallback)
		return fallback
	}
	return value
}

func intFromEnv(key string, fallback int) int {
	logger := logger.NewNamedLogger("config")

	valueStr := os.Getenv(key)
	if valueStr == "" {
		logger.Warnf("%s is not set, using default value %d", key, fallback)
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Fatalf("failed to parse %s with error: %v", key, err)
	}
	return value
}

func millisFromEnv(key string, fallback time.Duration) time.Duration {
	logger := logger.NewNamedLogger("config")

	valueStr := os.Getenv(key)
	if valueStr == "" {
		logger.Warnf("%s is not set, using default value %s", key, fallback)
		return fallback
	}
	ms, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil || ms <= 0 {
		logger.Fatalf("failed to parse %s as positive milliseconds: %q", key, valueStr)
	}
	return time.Duration(ms) * time.Millisecond
}
