package rabbitmq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mini-maxit/harness/internal/config"
	"github.com/mini-maxit/harness/internal/logger"
	"github.com/mini-maxit/harness/internal/rabbitmq/channel"
	"github.com/mini-maxit/harness/pkg/constants"
)

// NewRabbitMqConnection dials the broker, retrying while it starts up.
func NewRabbitMqConnection(cfg *config.Config) *amqp.Connection {
	log := logger.NewNamedLogger("rabbitmq")

	var lastErr error
	for attempt := 1; attempt <= constants.RabbitMQDialAttempts; attempt++ {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err == nil {
			log.Infof("Connected to RabbitMQ after %d attempt(s)", attempt)
			return conn
		}
		lastErr = err
		log.Warnf("Failed to connect to RabbitMQ (attempt %d/%d): %s", attempt, constants.RabbitMQDialAttempts, err)
		time.Sleep(constants.RabbitMQDialBackoff * time.Duration(attempt))
	}

	log.Fatalf("Failed to connect to RabbitMQ: %s", lastErr)
	return nil
}

func NewRabbitMQChannel(conn *amqp.Connection) channel.Channel {
	ch, err := conn.Channel()
	if err != nil {
		logger.NewNamedLogger("rabbitmq").Fatalf("Failed to open a channel: %s", err)
	}
	return channel.NewAmqpChannel(ch)
}
