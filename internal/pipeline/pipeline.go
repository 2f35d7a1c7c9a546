package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/rabbitmq/responder"
	"github.com/mini-maxit/harness/pkg/constants"
	customErr "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/languages"
	"github.com/mini-maxit/harness/pkg/messages"
	"github.com/mini-maxit/harness/pkg/solution"
)

// Worker runs queued run requests through the harness one at a time and
// publishes the resulting report.
type Worker interface {
	ProcessTask(ctx context.Context, responseQueue, messageID string, task *messages.TaskQueueMessage)
	GetState() WorkerState
	UpdateStatus(status constants.WorkerStatus)
	GetProcessingMessageID() string
	GetId() int
}

type WorkerState struct {
	Status              constants.WorkerStatus `json:"status"`
	ProcessingMessageID string                 `json:"processing_message_id"`
}

type worker struct {
	id        int
	mu        sync.RWMutex
	state     WorkerState
	harness   Harness
	responder responder.Responder
	logger    *zap.SugaredLogger
}

func NewWorker(id int, harness Harness, responder responder.Responder) Worker {
	return &worker{
		id:        id,
		state:     WorkerState{Status: constants.WorkerStatusIdle},
		harness:   harness,
		responder: responder,
		logger:    logger.NewNamedLogger(fmt.Sprintf("worker-%d", id)),
	}
}

func (ws *worker) GetId() int {
	return ws.id
}

func (ws *worker) GetState() WorkerState {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.state
}

func (ws *worker) UpdateStatus(status constants.WorkerStatus) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.state.Status = status
}

func (ws *worker) GetProcessingMessageID() string {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.state.ProcessingMessageID
}

func (ws *worker) setProcessingMessageID(messageID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.state.ProcessingMessageID = messageID
}

func (ws *worker) ProcessTask(
	ctx context.Context,
	responseQueue, messageID string,
	task *messages.TaskQueueMessage,
) {
	defer func() {
		if r := recover(); r != nil {
			ws.logger.Errorf("[MsgID: %s] Recovered from panic: %v", messageID, r)
			ws.responder.PublishErrorToResponseQueue(
				constants.QueueMessageTypeTask,
				messageID,
				responseQueue,
				fmt.Errorf("%w: %v", customErr.ErrHarnessPanic, r),
			)
		}
	}()

	ws.logger.Infof("Processing task [MsgID: %s]", messageID)
	ws.setProcessingMessageID(messageID)
	defer ws.setProcessingMessageID("")

	artifact, suite, err := toRunRequest(task)
	if err != nil {
		ws.logger.Errorf("[MsgID: %s] Invalid task: %s", messageID, err)
		ws.responder.PublishErrorToResponseQueue(constants.QueueMessageTypeTask, messageID, responseQueue, err)
		return
	}

	timeout := time.Duration(task.TimeoutPerCase) * time.Millisecond
	report, err := ws.harness.RunHarness(ctx, artifact, suite, timeout)
	if err != nil {
		ws.responder.PublishErrorToResponseQueue(constants.QueueMessageTypeTask, messageID, responseQueue, err)
		return
	}

	if err := ws.responder.PublishSucessTaskRespond(constants.QueueMessageTypeTask, messageID, responseQueue, report); err != nil {
		ws.logger.Errorf("[MsgID: %s] Failed to publish report: %s", messageID, err)
		ws.responder.PublishErrorToResponseQueue(constants.QueueMessageTypeTask, messageID, responseQueue, err)
		return
	}
	ws.logger.Infof("Finished processing task [MsgID: %s]", messageID)
}

// toRunRequest converts a queued task into the harness inputs. Cases without
// an id are numbered by position.
func toRunRequest(task *messages.TaskQueueMessage) (solution.SolutionArtifact, solution.TestSuite, error) {
	if task == nil {
		return solution.SolutionArtifact{}, solution.TestSuite{}, errors.New("task payload is empty")
	}

	lang, err := languages.ParseLanguageType(task.LanguageType)
	if err != nil {
		return solution.SolutionArtifact{}, solution.TestSuite{}, err
	}
	sig, err := solution.ParseSignature(task.Signature)
	if err != nil {
		return solution.SolutionArtifact{}, solution.TestSuite{}, err
	}

	suite := solution.TestSuite{Problem: task.Problem, Cases: make([]solution.TestCase, len(task.TestCases))}
	for i, tc := range task.TestCases {
		id := tc.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		suite.Cases[i] = solution.TestCase{ID: id, Input: tc.Input, ExpectedOutput: tc.ExpectedOutput}
	}

	artifact := solution.SolutionArtifact{Language: lang, RawSource: task.SourceCode, Signature: sig}
	return artifact, suite, nil
}
