package consumer

import (
	"encoding/json"
	e "errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/rabbitmq/channel"
	"github.com/mini-maxit/harness/internal/rabbitmq/responder"
	"github.com/mini-maxit/harness/internal/scheduler"
	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/languages"
	"github.com/mini-maxit/harness/pkg/messages"
)

type Consumer interface {
	// Listen blocks until the delivery channel is closed.
	Listen()
}

type consumer struct {
	channel         channel.Channel
	workerQueueName string
	prefetch        int
	scheduler       scheduler.Scheduler
	responder       responder.Responder
	logger          *zap.SugaredLogger
}

func NewConsumer(
	mainChannel channel.Channel,
	workerQueueName string,
	prefetch int,
	scheduler scheduler.Scheduler,
	responder responder.Responder,
) Consumer {
	return &consumer{
		channel:         mainChannel,
		workerQueueName: workerQueueName,
		prefetch:        prefetch,
		scheduler:       scheduler,
		responder:       responder,
		logger:          logger.NewNamedLogger("consumer"),
	}
}

func (c *consumer) Listen() {
	c.logger.Infof("Declaring queue %s", c.workerQueueName)

	args := make(amqp.Table)
	args["x-max-priority"] = constants.RabbitMQMaxPriority
	_, err := c.channel.QueueDeclare(c.workerQueueName, true, false, false, false, args)
	if err != nil {
		c.logger.Panicf("Failed to declare queue %s: %s", c.workerQueueName, err)
	}
	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		c.logger.Panicf("Failed to set prefetch on queue %s: %s", c.workerQueueName, err)
	}

	c.logger.Infof("Listening for messages on queue %s", c.workerQueueName)

	// Deliveries are acked once scheduled or requeued, so the prefetch bounds
	// how many the broker pushes ahead of the scheduler.
	msgs, err := c.channel.Consume(c.workerQueueName, "", false, false, false, false, nil)
	if err != nil {
		c.logger.Panicf("Failed to consume messages from queue %s: %s", c.workerQueueName, err)
	}

	for msg := range msgs {
		c.processMessage(msg)
		if err := msg.Ack(false); err != nil {
			c.logger.Errorf("Failed to ack delivery %d: %s", msg.DeliveryTag, err)
		}
	}
	c.logger.Infof("Delivery channel closed, stopped listening on %s", c.workerQueueName)
}

func (c *consumer) processMessage(msg amqp.Delivery) {
	var queueMessage messages.QueueMessage
	if err := json.Unmarshal(msg.Body, &queueMessage); err != nil {
		c.logger.Errorf("Failed to unmarshal message: %s", err)
		c.responder.PublishErrorToResponseQueue(queueMessage.Type, queueMessage.MessageID, msg.ReplyTo, err)
		return
	}

	switch queueMessage.Type {
	case constants.QueueMessageTypeTask:
		c.logger.Infof("Received task message: %s", queueMessage.MessageID)
		c.handleTaskMessage(queueMessage, msg.ReplyTo)
	case constants.QueueMessageTypeCancel:
		c.logger.Infof("Received cancel message: %s", queueMessage.MessageID)
		c.handleCancelMessage(queueMessage, msg.ReplyTo)
	case constants.QueueMessageTypeStatus:
		c.logger.Infof("Received status message: %s", queueMessage.MessageID)
		c.handleStatusMessage(queueMessage, msg.ReplyTo)
	case constants.QueueMessageTypeHandshake:
		c.logger.Infof("Received handshake message: %s", queueMessage.MessageID)
		c.handleHandshakeMessage(queueMessage, msg.ReplyTo)
	default:
		c.logger.Errorf("Unknown message type: %s", queueMessage.Type)
		c.responder.PublishErrorToResponseQueue(
			queueMessage.Type,
			queueMessage.MessageID,
			msg.ReplyTo,
			errors.ErrUnknownMessageType)
	}
}

func (c *consumer) requeueTaskWithPriority2(queueMessage messages.QueueMessage, replyTo string) error {
	queueMessageJSON, err := json.Marshal(queueMessage)
	if err != nil {
		c.logger.Errorf("Failed to marshal queue message: %s", err)
		return err
	}

	return c.responder.Publish(c.workerQueueName, amqp.Publishing{
		ContentType:   constants.RabbitMQContentType,
		CorrelationId: queueMessage.MessageID,
		ReplyTo:       replyTo,
		Body:          queueMessageJSON,
		Priority:      uint8(constants.RabbitMQRequeuePriority),
	})
}

func (c *consumer) handleTaskMessage(queueMessage messages.QueueMessage, replyTo string) {
	var task *messages.TaskQueueMessage
	if err := json.Unmarshal(queueMessage.Payload, &task); err != nil {
		c.logger.Errorf("Failed to unmarshal task message: %s", err)
		c.responder.PublishErrorToResponseQueue(queueMessage.Type, queueMessage.MessageID, replyTo, err)
		return
	}

	err := c.scheduler.ProcessTask(replyTo, queueMessage.MessageID, task)
	if err == nil {
		return
	}

	if e.Is(err, errors.ErrFailedToGetFreeWorker) {
		c.logger.Infof("No free worker, requeueing [MsgID: %s]", queueMessage.MessageID)
		if requeueErr := c.requeueTaskWithPriority2(queueMessage, replyTo); requeueErr != nil {
			c.logger.Errorf("Failed to requeue task with higher priority: %s", requeueErr)
		}
		return
	}

	c.logger.Errorf("Failed to process task message: %s", err)
	c.responder.PublishErrorToResponseQueue(queueMessage.Type, queueMessage.MessageID, replyTo, err)
}

func (c *consumer) handleCancelMessage(queueMessage messages.QueueMessage, replyTo string) {
	var cancel messages.CancelQueueMessage
	if err := json.Unmarshal(queueMessage.Payload, &cancel); err != nil {
		c.logger.Errorf("Failed to unmarshal cancel message: %s", err)
		c.responder.PublishErrorToResponseQueue(queueMessage.Type, queueMessage.MessageID, replyTo, err)
		return
	}

	if err := c.scheduler.CancelTask(cancel.TargetMessageID); err != nil {
		c.logger.Warnf("Failed to cancel task %s: %s", cancel.TargetMessageID, err)
		c.responder.PublishErrorToResponseQueue(queueMessage.Type, queueMessage.MessageID, replyTo, err)
	}
}

func (c *consumer) handleStatusMessage(queueMessage messages.QueueMessage, replyTo string) {
	status := c.scheduler.GetWorkersStatus()

	err := c.responder.PublishSucessStatusRespond(queueMessage.Type, queueMessage.MessageID, replyTo, status)
	if err != nil {
		c.logger.Errorf("Failed to publish status message: %s", err)
		c.responder.PublishErrorToResponseQueue(queueMessage.Type, queueMessage.MessageID, replyTo, err)
	}
}

func (c *consumer) handleHandshakeMessage(queueMessage messages.QueueMessage, replyTo string) {
	specs := languages.GetSupportedLanguagesWithVersions().Languages

	err := c.responder.PublishSucessHandshakeRespond(queueMessage.Type, queueMessage.MessageID, replyTo, specs)
	if err != nil {
		c.logger.Errorf("Failed to publish supported languages: %s", err)
		c.responder.PublishErrorToResponseQueue(queueMessage.Type, queueMessage.MessageID, replyTo, err)
	}
}
