package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	. "github.com/mini-maxit/harness/internal/pipeline"
	"github.com/mini-maxit/harness/pkg/constants"
	pkgErr "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/languages"
	"github.com/mini-maxit/harness/pkg/messages"
	"github.com/mini-maxit/harness/pkg/solution"
	"github.com/mini-maxit/harness/tests/mocks"
)

func TestProcessTask_SuccessFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	harness := mocks.NewMockHarness(ctrl)
	responder := mocks.NewMockResponder(ctrl)
	w := NewWorker(1, harness, responder)

	task := &messages.TaskQueueMessage{
		Problem:        "two-sum",
		LanguageType:   "c++",
		SourceCode:     "int solution() {}",
		Signature:      []string{"int[]", "int"},
		TimeoutPerCase: 1500,
		TestCases: []messages.TestCase{
			{Input: "[1]\n1", ExpectedOutput: "[]"},
			{ID: "named", Input: "[2]\n2", ExpectedOutput: "[]"},
		},
	}
	report := solution.RunReport{RunID: "run", State: solution.Completed, TotalCount: 2}

	harness.EXPECT().RunHarness(gomock.Any(), gomock.Any(), gomock.Any(), 1500*time.Millisecond).DoAndReturn(
		func(_ context.Context, artifact solution.SolutionArtifact, suite solution.TestSuite, _ time.Duration) (solution.RunReport, error) {
			if w.GetProcessingMessageID() != "msg-1" {
				t.Errorf("expected processing message id to be set while running")
			}
			if artifact.Language != languages.CPP || artifact.RawSource != task.SourceCode {
				t.Errorf("unexpected artifact %+v", artifact)
			}
			if len(artifact.Signature) != 2 || artifact.Signature[0] != solution.IntArray {
				t.Errorf("unexpected signature %v", artifact.Signature)
			}
			if suite.Problem != "two-sum" || suite.Cases[0].ID != "1" || suite.Cases[1].ID != "named" {
				t.Errorf("unexpected suite %+v", suite)
			}
			return report, nil
		})
	responder.EXPECT().PublishSucessTaskRespond(constants.QueueMessageTypeTask, "msg-1", "respQ", report).Return(nil)

	w.ProcessTask(context.Background(), "respQ", "msg-1", task)

	if got := w.GetProcessingMessageID(); got != "" {
		t.Fatalf("expected processingMessageID to be cleared, got %q", got)
	}
}

func TestProcessTask_InvalidLanguage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	responder := mocks.NewMockResponder(ctrl)
	responder.EXPECT().PublishErrorToResponseQueue(constants.QueueMessageTypeTask, "msg-2", "respQ", gomock.Any()).Do(
		func(_, _, _ string, err error) {
			if !errors.Is(err, pkgErr.ErrUnsupportedLanguage) {
				t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
			}
		})

	w := NewWorker(1, mocks.NewMockHarness(ctrl), responder)
	w.ProcessTask(context.Background(), "respQ", "msg-2", &messages.TaskQueueMessage{LanguageType: "cobol"})
}

func TestProcessTask_HarnessError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	harness := mocks.NewMockHarness(ctrl)
	responder := mocks.NewMockResponder(ctrl)

	harness.EXPECT().RunHarness(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(solution.RunReport{}, pkgErr.ErrWorkDir)
	responder.EXPECT().PublishErrorToResponseQueue(constants.QueueMessageTypeTask, "msg-3", "respQ", pkgErr.ErrWorkDir)

	w := NewWorker(1, harness, responder)
	w.ProcessTask(context.Background(), "respQ", "msg-3", &messages.TaskQueueMessage{LanguageType: "python"})
}

func TestProcessTask_RecoversFromPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	harness := mocks.NewMockHarness(ctrl)
	responder := mocks.NewMockResponder(ctrl)

	harness.EXPECT().RunHarness(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(context.Context, solution.SolutionArtifact, solution.TestSuite, time.Duration) {
			panic("boom")
		})
	responder.EXPECT().PublishErrorToResponseQueue(constants.QueueMessageTypeTask, "msg-4", "respQ", gomock.Any()).Do(
		func(_, _, _ string, err error) {
			if !errors.Is(err, pkgErr.ErrHarnessPanic) {
				t.Fatalf("expected ErrHarnessPanic, got %v", err)
			}
		})

	w := NewWorker(1, harness, responder)
	w.ProcessTask(context.Background(), "respQ", "msg-4", &messages.TaskQueueMessage{LanguageType: "js"})
}

func TestWorkerStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w := NewWorker(7, mocks.NewMockHarness(ctrl), mocks.NewMockResponder(ctrl))
	if w.GetId() != 7 || w.GetState().Status != constants.WorkerStatusIdle {
		t.Fatalf("unexpected initial state %+v", w.GetState())
	}
	w.UpdateStatus(constants.WorkerStatusBusy)
	if w.GetState().Status != constants.WorkerStatusBusy {
		t.Fatalf("expected busy status")
	}
}
