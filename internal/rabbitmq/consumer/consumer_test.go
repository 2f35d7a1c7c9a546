package consumer

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/mock/gomock"

	"github.com/mini-maxit/harness/pkg/constants"
	pkgerrors "github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/messages"
	"github.com/mini-maxit/harness/tests/mocks"
)

const workerQueue = "worker_queue_test"

func delivery(t *testing.T, msgType, msgID string, payload any) amqp.Delivery {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		raw = b
	}
	body, err := json.Marshal(messages.QueueMessage{Type: msgType, MessageID: msgID, Payload: raw})
	if err != nil {
		t.Fatalf("failed to marshal queue message: %v", err)
	}
	return amqp.Delivery{Body: body, ReplyTo: "reply"}
}

func TestProcessMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockScheduler := mocks.NewMockScheduler(ctrl)
	mockResponder := mocks.NewMockResponder(ctrl)

	cIface := NewConsumer(nil, workerQueue, 2, mockScheduler, mockResponder)
	c, ok := cIface.(*consumer)
	if !ok {
		t.Fatalf("NewConsumer returned unexpected type: %T", cIface)
	}

	task := messages.TaskQueueMessage{Problem: "two-sum", LanguageType: "python", SourceCode: "def solution(a, t): pass"}

	t.Run("invalid json", func(t *testing.T) {
		mockResponder.EXPECT().PublishErrorToResponseQueue("", "", "reply", gomock.Any()).Times(1)

		c.processMessage(amqp.Delivery{Body: []byte("not json"), ReplyTo: "reply"})
	})

	t.Run("unknown type", func(t *testing.T) {
		mockResponder.EXPECT().PublishErrorToResponseQueue("foo", "mid", "reply", pkgerrors.ErrUnknownMessageType).Times(1)

		c.processMessage(delivery(t, "foo", "mid", nil))
	})

	t.Run("task success", func(t *testing.T) {
		mockScheduler.EXPECT().ProcessTask(
			"reply", "task-id-1", gomock.AssignableToTypeOf(&messages.TaskQueueMessage{}),
		).Do(func(_ string, _ string, got *messages.TaskQueueMessage) {
			if got.Problem != "two-sum" || got.LanguageType != "python" {
				t.Fatalf("unexpected task %+v", got)
			}
		}).Return(nil).Times(1)

		c.processMessage(delivery(t, constants.QueueMessageTypeTask, "task-id-1", task))
	})

	t.Run("task requeue when no worker", func(t *testing.T) {
		mockScheduler.EXPECT().ProcessTask(
			"reply", "task-id-2", gomock.AssignableToTypeOf(&messages.TaskQueueMessage{}),
		).Return(pkgerrors.ErrFailedToGetFreeWorker).Times(1)

		mockResponder.EXPECT().Publish(
			workerQueue, gomock.AssignableToTypeOf(amqp.Publishing{}),
		).Do(func(_ string, p amqp.Publishing) {
			if p.Priority != uint8(constants.RabbitMQRequeuePriority) {
				t.Fatalf("expected Priority to be %d got %d", constants.RabbitMQRequeuePriority, p.Priority)
			}
			if p.ReplyTo != "reply" {
				t.Fatalf("expected the reply queue to survive the requeue, got %q", p.ReplyTo)
			}
		}).Return(nil).Times(1)

		c.processMessage(delivery(t, constants.QueueMessageTypeTask, "task-id-2", task))
	})

	t.Run("task scheduling error", func(t *testing.T) {
		schedErr := errors.New("boom")
		mockScheduler.EXPECT().ProcessTask("reply", "task-id-3", gomock.Any()).Return(schedErr).Times(1)
		mockResponder.EXPECT().PublishErrorToResponseQueue(
			constants.QueueMessageTypeTask, "task-id-3", "reply", schedErr,
		).Times(1)

		c.processMessage(delivery(t, constants.QueueMessageTypeTask, "task-id-3", task))
	})

	t.Run("cancel success", func(t *testing.T) {
		mockScheduler.EXPECT().CancelTask("task-id-1").Return(nil).Times(1)

		c.processMessage(delivery(t, constants.QueueMessageTypeCancel, "cancel-id",
			messages.CancelQueueMessage{TargetMessageID: "task-id-1"}))
	})

	t.Run("cancel unknown task", func(t *testing.T) {
		mockScheduler.EXPECT().CancelTask("missing").Return(pkgerrors.ErrUnknownTask).Times(1)
		mockResponder.EXPECT().PublishErrorToResponseQueue(
			constants.QueueMessageTypeCancel, "cancel-id-2", "reply", pkgerrors.ErrUnknownTask,
		).Times(1)

		c.processMessage(delivery(t, constants.QueueMessageTypeCancel, "cancel-id-2",
			messages.CancelQueueMessage{TargetMessageID: "missing"}))
	})

	t.Run("status success", func(t *testing.T) {
		status := map[string]any{"w1": "idle"}
		mockScheduler.EXPECT().GetWorkersStatus().Return(status).Times(1)
		mockResponder.EXPECT().PublishSucessStatusRespond(
			constants.QueueMessageTypeStatus, "status-id", "reply", status,
		).Return(nil).Times(1)

		c.processMessage(delivery(t, constants.QueueMessageTypeStatus, "status-id", nil))
	})

	t.Run("handshake success", func(t *testing.T) {
		mockResponder.EXPECT().PublishSucessHandshakeRespond(
			constants.QueueMessageTypeHandshake, "hs-id", "reply", gomock.AssignableToTypeOf([]messages.LanguageSpec{}),
		).Do(func(_ string, _ string, _ string, langs []messages.LanguageSpec) {
			if len(langs) != 4 {
				t.Fatalf("expected four languages in handshake payload, got %d", len(langs))
			}
		}).Return(nil).Times(1)

		c.processMessage(delivery(t, constants.QueueMessageTypeHandshake, "hs-id", nil))
	})

	t.Run("handshake publish failure", func(t *testing.T) {
		pubErr := errors.New("closed")
		mockResponder.EXPECT().PublishSucessHandshakeRespond(gomock.Any(), "hs-id-2", "reply", gomock.Any()).Return(pubErr)
		mockResponder.EXPECT().PublishErrorToResponseQueue(constants.QueueMessageTypeHandshake, "hs-id-2", "reply", pubErr)

		c.processMessage(delivery(t, constants.QueueMessageTypeHandshake, "hs-id-2", nil))
	})
}

type recordingAcknowledger struct {
	mu    sync.Mutex
	acked []uint64
}

func (a *recordingAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcknowledger) Nack(uint64, bool, bool) error { return nil }
func (a *recordingAcknowledger) Reject(uint64, bool) error { return nil }

func (a *recordingAcknowledger) tags() []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uint64(nil), a.acked...)
}

func TestListen_ProcessTaskMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChannel := mocks.NewMockChannel(ctrl)
	mockScheduler := mocks.NewMockScheduler(ctrl)
	mockResponder := mocks.NewMockResponder(ctrl)

	deliveries := make(chan amqp.Delivery)

	mockChannel.EXPECT().QueueDeclare(workerQueue, true, false, false, false, gomock.AssignableToTypeOf(amqp.Table{})).Do(
		func(_ string, _, _, _, _ bool, args amqp.Table) {
			if v := args["x-max-priority"]; v != constants.RabbitMQMaxPriority {
				t.Fatalf("expected x-max-priority %v got %v", constants.RabbitMQMaxPriority, v)
			}
		}).Return(amqp.Queue{Name: workerQueue}, nil).Times(1)
	mockChannel.EXPECT().Qos(2, 0, false).Return(nil).Times(1)
	mockChannel.EXPECT().Consume(
		workerQueue, "", false, false, false, false, nil,
	).Return((<-chan amqp.Delivery)(deliveries), nil).Times(1)

	done := make(chan struct{}, 1)
	mockScheduler.EXPECT().ProcessTask(
		"reply", "task-id-listen", gomock.AssignableToTypeOf(&messages.TaskQueueMessage{}),
	).Do(func(_ string, _ string, _ *messages.TaskQueueMessage) {
		done <- struct{}{}
	}).Return(nil).Times(1)

	c := NewConsumer(mockChannel, workerQueue, 2, mockScheduler, mockResponder)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Listen()
	}()

	acks := &recordingAcknowledger{}
	msg := delivery(t, constants.QueueMessageTypeTask, "task-id-listen", messages.TaskQueueMessage{LanguageType: "cpp"})
	msg.Acknowledger = acks
	msg.DeliveryTag = 7
	deliveries <- msg

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for ProcessTask to be called")
	}

	close(deliveries)
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Listen to finish")
	}

	if tags := acks.tags(); len(tags) != 1 || tags[0] != 7 {
		t.Fatalf("expected delivery 7 to be acked once, got %v", tags)
	}
}

func TestListen_QueueDeclareErrorPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChannel := mocks.NewMockChannel(ctrl)
	mockChannel.EXPECT().QueueDeclare(
		workerQueue, true, false, false, false, gomock.Any(),
	).Return(amqp.Queue{}, errors.New("queue error")).Times(1)

	c := NewConsumer(mockChannel, workerQueue, 1, mocks.NewMockScheduler(ctrl), mocks.NewMockResponder(ctrl))

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected Listen to panic on QueueDeclare error")
		}
	}()
	c.Listen()
}

func TestListen_ConsumeErrorPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChannel := mocks.NewMockChannel(ctrl)
	mockChannel.EXPECT().QueueDeclare(
		workerQueue, true, false, false, false, gomock.Any(),
	).Return(amqp.Queue{Name: workerQueue}, nil).Times(1)
	mockChannel.EXPECT().Qos(1, 0, false).Return(nil).Times(1)
	mockChannel.EXPECT().Consume(
		workerQueue, "", false, false, false, false, nil,
	).Return((<-chan amqp.Delivery)(nil), errors.New("consume error")).Times(1)

	c := NewConsumer(mockChannel, workerQueue, 1, mocks.NewMockScheduler(ctrl), mocks.NewMockResponder(ctrl))

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected Listen to panic on Consume error")
		}
	}()
	c.Listen()
}
