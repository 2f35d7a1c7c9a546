package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/pipeline"
	"github.com/mini-maxit/harness/internal/rabbitmq/responder"
	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/messages"
)

type Scheduler interface {
	GetWorkersStatus() map[string]interface{}
	ProcessTask(responseQueueName, messageID string, task *messages.TaskQueueMessage) error
	// CancelTask stops the run started for messageID. Its partial report is
	// still published.
	CancelTask(messageID string) error
	// Shutdown cancels every running task and waits for the workers to return.
	Shutdown()
}

// runningTask identifies one run, so a finished run never removes the entry
// of a later run reusing its message id.
type runningTask struct {
	cancel context.CancelFunc
}

type scheduler struct {
	mu               sync.Mutex
	busyWorkersCount int
	workers          map[int]pipeline.Worker
	maxWorkers       int
	running          *xsync.MapOf[string, *runningTask]
	baseCtx          context.Context
	stop             context.CancelFunc
	inFlight         sync.WaitGroup
	logger           *zap.SugaredLogger
}

func NewScheduler(maxWorkers int, harness pipeline.Harness, responder responder.Responder) Scheduler {
	workers := make(map[int]pipeline.Worker, maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		workers[i] = pipeline.NewWorker(i, harness, responder)
	}
	return NewSchedulerWithWorkers(maxWorkers, workers)
}

// NewSchedulerWithWorkers builds a scheduler over prepared workers keyed 0..maxWorkers-1.
func NewSchedulerWithWorkers(maxWorkers int, workers map[int]pipeline.Worker) Scheduler {
	ctx, stop := context.WithCancel(context.Background())
	return &scheduler{
		workers:    workers,
		maxWorkers: maxWorkers,
		running:    xsync.NewMapOf[string, *runningTask](),
		baseCtx:    ctx,
		stop:       stop,
		logger:     logger.NewNamedLogger("workerPool"),
	}
}

func (s *scheduler) GetWorkersStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make(map[string]string, len(s.workers))
	for id, worker := range s.workers {
		state := worker.GetState()
		key := strconv.Itoa(id)
		if state.Status == constants.WorkerStatusBusy && state.ProcessingMessageID != "" {
			statuses[key] = state.Status.String() + " Processing message: " + state.ProcessingMessageID
			continue
		}
		statuses[key] = state.Status.String()
	}

	return map[string]interface{}{
		"busy_workers":  s.busyWorkersCount,
		"total_workers": s.maxWorkers,
		"worker_status": statuses,
	}
}

func (s *scheduler) getFreeWorker() (pipeline.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < s.maxWorkers; i++ {
		worker := s.workers[i]
		if worker.GetState().Status == constants.WorkerStatusIdle {
			worker.UpdateStatus(constants.WorkerStatusBusy)
			s.busyWorkersCount++
			return worker, nil
		}
	}

	return nil, errors.ErrFailedToGetFreeWorker
}

func (s *scheduler) ProcessTask(responseQueueName, messageID string, task *messages.TaskQueueMessage) error {
	s.logger.Infof("Processing task [MsgID: %s]", messageID)

	if _, ok := s.running.Load(messageID); ok {
		return fmt.Errorf("%w: %s", errors.ErrTaskAlreadyRunning, messageID)
	}

	worker, err := s.getFreeWorker()
	if err != nil {
		s.logger.Errorf("No available workers: %s", err)
		return err
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	run := &runningTask{cancel: cancel}
	if _, loaded := s.running.LoadOrStore(messageID, run); loaded {
		cancel()
		s.markWorkerAsIdle(worker)
		return fmt.Errorf("%w: %s", errors.ErrTaskAlreadyRunning, messageID)
	}
	s.inFlight.Add(1)

	go func(w pipeline.Worker) {
		defer s.inFlight.Done()
		defer s.markWorkerAsIdle(w)
		defer func() {
			s.running.Compute(messageID, func(current *runningTask, loaded bool) (*runningTask, bool) {
				return current, !loaded || current == run
			})
			cancel()
		}()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorf("Worker panicked: %v", r)
			}
		}()

		w.ProcessTask(ctx, responseQueueName, messageID, task)
	}(worker)

	return nil
}

func (s *scheduler) CancelTask(messageID string) error {
	task, ok := s.running.LoadAndDelete(messageID)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownTask, messageID)
	}

	s.logger.Infof("Cancelling task [MsgID: %s]", messageID)
	task.cancel()
	return nil
}

func (s *scheduler) Shutdown() {
	s.logger.Infof("Shutting down, cancelling %d running task(s)", s.running.Size())
	s.stop()
	s.inFlight.Wait()
}

func (s *scheduler) markWorkerAsIdle(worker pipeline.Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	worker.UpdateStatus(constants.WorkerStatusIdle)
	s.busyWorkersCount--

	s.logger.Infof("Worker marked as idle [WorkerID: %d]", worker.GetId())
}
