package config_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	. "github.com/mini-maxit/harness/internal/config"
	"github.com/mini-maxit/harness/pkg/constants"
)

func TestHarnessConfig_DefaultsAndCustom(t *testing.T) {
	config := NewConfig()
	if config.HarnessWorkers != constants.DefaultHarnessWorkers {
		t.Fatalf("expected %d workers, got %d", constants.DefaultHarnessWorkers, config.HarnessWorkers)
	}
	if config.CaseTimeout != constants.DefaultCaseTimeout {
		t.Fatalf("expected case timeout %s, got %s", constants.DefaultCaseTimeout, config.CaseTimeout)
	}
	if config.CompileTimeout != constants.DefaultCompileTimeout {
		t.Fatalf("expected compile timeout %s, got %s", constants.DefaultCompileTimeout, config.CompileTimeout)
	}
	if config.MaxOutputBytes != constants.DefaultMaxOutputBytes {
		t.Fatalf("expected max output %d, got %d", constants.DefaultMaxOutputBytes, config.MaxOutputBytes)
	}

	t.Setenv("HARNESS_WORKERS", "8")
	t.Setenv("CASE_TIMEOUT_MS", "250")
	t.Setenv("COMPILE_TIMEOUT_MS", "5000")
	t.Setenv("MAX_OUTPUT_BYTES", "4096")

	config2 := NewConfig()
	if config2.HarnessWorkers != 8 {
		t.Fatalf("expected 8 workers, got %d", config2.HarnessWorkers)
	}
	if config2.CaseTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms case timeout, got %s", config2.CaseTimeout)
	}
	if config2.CompileTimeout != 5*time.Second {
		t.Fatalf("expected 5s compile timeout, got %s", config2.CompileTimeout)
	}
	if config2.MaxOutputBytes != 4096 {
		t.Fatalf("expected max output 4096, got %d", config2.MaxOutputBytes)
	}
}

func TestDirectoriesAndRunnerConfig(t *testing.T) {
	config := NewConfig()
	if config.WorkRoot != constants.DefaultWorkRoot || config.SuitesDir != constants.DefaultSuitesDir {
		t.Fatalf("unexpected default directories %q %q", config.WorkRoot, config.SuitesDir)
	}
	if config.RunnerBackend != constants.RunnerBackendLocal {
		t.Fatalf("expected local runner by default, got %q", config.RunnerBackend)
	}

	t.Setenv("WORK_ROOT", "/var/tmp/runs")
	t.Setenv("SUITES_DIR", "/srv/suites")
	t.Setenv("RUNNER_BACKEND", constants.RunnerBackendDocker)
	t.Setenv("DOCKER_MEMORY_MB", "512")

	config2 := NewConfig()
	if config2.WorkRoot != "/var/tmp/runs" || config2.SuitesDir != "/srv/suites" {
		t.Fatalf("unexpected directories %q %q", config2.WorkRoot, config2.SuitesDir)
	}
	if config2.RunnerBackend != constants.RunnerBackendDocker || config2.DockerMemoryMB != 512 {
		t.Fatalf("unexpected runner config %q %d", config2.RunnerBackend, config2.DockerMemoryMB)
	}
}

func TestCompilerFlagsAreSplitLikeAShell(t *testing.T) {
	t.Setenv("CPP_FLAGS", `-Wall -DNAME="two words"`)
	t.Setenv("JAVA_FLAGS", "-encoding UTF-8")

	config := NewConfig()
	if want := []string{"-Wall", "-DNAME=two words"}; !reflect.DeepEqual(config.CppFlags, want) {
		t.Fatalf("expected cpp flags %q, got %q", want, config.CppFlags)
	}
	if want := []string{"-encoding", "UTF-8"}; !reflect.DeepEqual(config.JavaFlags, want) {
		t.Fatalf("expected java flags %q, got %q", want, config.JavaFlags)
	}
}

func TestRabbitmqConfig_DefaultsAndCustom(t *testing.T) {
	config := NewConfig()
	expectedURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		constants.DefaultRabbitmqUser,
		constants.DefaultRabbitmqPassword,
		constants.DefaultRabbitmqHost,
		constants.DefaultRabbitmqPort)
	if config.RabbitMQURL != expectedURL {
		t.Fatalf("expected url %q, got %q", expectedURL, config.RabbitMQURL)
	}
	if config.ConsumeQueueName != constants.DefaultWorkerQueueName {
		t.Fatalf("expected queue %q, got %q", constants.DefaultWorkerQueueName, config.ConsumeQueueName)
	}

	t.Setenv("RABBITMQ_HOST", "rm-host")
	t.Setenv("RABBITMQ_PORT", "12345")
	t.Setenv("RABBITMQ_USER", "u1")
	t.Setenv("RABBITMQ_PASSWORD", "p1")
	t.Setenv("WORKER_QUEUE_NAME", "custom_queue")
	t.Setenv("MAX_WORKERS", "3")

	config2 := NewConfig()
	if config2.RabbitMQURL != "amqp://u1:p1@rm-host:12345/" {
		t.Fatalf("unexpected url %q", config2.RabbitMQURL)
	}
	if config2.ConsumeQueueName != "custom_queue" || config2.MaxWorkers != 3 {
		t.Fatalf("unexpected worker config %q %d", config2.ConsumeQueueName, config2.MaxWorkers)
	}
}
