package responder

import (
	"encoding/json"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/rabbitmq/channel"
	"github.com/mini-maxit/harness/pkg/constants"
	"github.com/mini-maxit/harness/pkg/errors"
	"github.com/mini-maxit/harness/pkg/messages"
	"github.com/mini-maxit/harness/pkg/solution"
)

type Responder interface {
	PublishErrorToResponseQueue(messageType, messageID, responseQueue string, err error)
	PublishSucessHandshakeRespond(
		messageType, messageID, responseQueue string,
		languageSpecs []messages.LanguageSpec,
	) error
	PublishSucessStatusRespond(
		messageType, messageID, responseQueue string,
		statusMap map[string]interface{},
	) error
	PublishSucessTaskRespond(
		messageType, messageID, responseQueue string,
		report solution.RunReport,
	) error
	Publish(queueName string, msg amqp.Publishing) error
	Close() error
}

type publishRequest struct {
	queueName string
	msg       amqp.Publishing
	result    chan error
}

// responder funnels every publish through one goroutine, since an AMQP
// channel must not be used concurrently.
type responder struct {
	logger   *zap.SugaredLogger
	channel  channel.Channel
	requests chan publishRequest

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewResponder(ch channel.Channel, publishChanSize int) Responder {
	r := &responder{
		logger:   logger.NewNamedLogger("responder"),
		channel:  ch,
		requests: make(chan publishRequest, publishChanSize),
		done:     make(chan struct{}),
	}
	go r.publishLoop()
	return r
}

func (r *responder) publishLoop() {
	defer close(r.done)
	for req := range r.requests {
		req.result <- r.channel.Publish("", req.queueName, false, false, req.msg)
	}
}

// Publish sends msg to queueName and waits until the broker call returns.
func (r *responder) Publish(queueName string, msg amqp.Publishing) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errors.ErrResponderClosed
	}

	result := make(chan error, 1)
	r.requests <- publishRequest{queueName: queueName, msg: msg, result: result}
	return <-result
}

// Close stops accepting publishes and waits for queued ones to finish.
func (r *responder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.requests)
	r.mu.Unlock()

	<-r.done
	return nil
}

func (r *responder) PublishErrorToResponseQueue(messageType, messageID, responseQueue string, err error) {
	payload, jsonErr := json.Marshal(map[string]string{"error": err.Error()})
	if jsonErr != nil {
		r.logger.Errorf("Failed to marshal error payload: %s", jsonErr)
		return
	}

	if pubErr := r.publishResponse(messageType, messageID, responseQueue, false, payload); pubErr != nil {
		r.logger.Errorf("Failed to publish error message: %s", pubErr)
		return
	}
	r.logger.Infof("Published error message to response queue [MsgID: %s]", messageID)
}

func (r *responder) PublishSucessTaskRespond(
	messageType, messageID, responseQueue string,
	report solution.RunReport,
) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return r.publishResponse(messageType, messageID, responseQueue, true, payload)
}

func (r *responder) PublishSucessHandshakeRespond(
	messageType, messageID, responseQueue string,
	languageSpecs []messages.LanguageSpec,
) error {
	payload, err := json.Marshal(messages.ResponseHandshakePayload{Languages: languageSpecs})
	if err != nil {
		return err
	}
	return r.publishResponse(messageType, messageID, responseQueue, true, payload)
}

func (r *responder) PublishSucessStatusRespond(
	messageType, messageID, responseQueue string,
	statusMap map[string]interface{},
) error {
	payload, err := json.Marshal(statusMap)
	if err != nil {
		return err
	}
	return r.publishResponse(messageType, messageID, responseQueue, true, payload)
}

func (r *responder) publishResponse(messageType, messageID, responseQueue string, ok bool, payload []byte) error {
	body, err := json.Marshal(messages.ResponseQueueMessage{
		Type:      messageType,
		MessageID: messageID,
		Ok:        ok,
		Payload:   payload,
	})
	if err != nil {
		return err
	}

	return r.Publish(responseQueue, amqp.Publishing{
		ContentType:   constants.RabbitMQContentType,
		CorrelationId: messageID,
		Body:          body,
	})
}
