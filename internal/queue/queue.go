// Package queue owns the RabbitMQ embed pipeline: topology, publishing
// and the worker-side message processing.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/util"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// EmbedQueue carries embed jobs. Every queue gets a _retry companion
// whose TTL dead-letters expired messages back to the main queue, and a
// _dlq companion for messages that exhausted their retries.
const EmbedQueue = "embed_queue"

// retryDelayMs is how long a message parks in the retry queue before it
// is dead-lettered back for another attempt.
const retryDelayMs = 10000

const publishConfirmTimeout = 5 * time.Second

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares each queue with its retry and dead-letter
// companions and puts the channel into confirm mode.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryDelayMs),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

// PublishFIFO publishes a persistent message straight to a queue. On a
// confirm-mode channel it blocks until the broker acknowledges the
// publish.
func PublishFIFO(ch *amqp091.Channel, queueName string, data []byte) error {
	if ch == nil {
		return fmt.Errorf("no channel open for queue %s", queueName)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishConfirmTimeout)
	defer cancel()

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(
		ctx,
		"",
		q.Name,
		false,
		false,
		publishing,
	)
	if err != nil {
		return err
	}
	if confirm != nil {
		acked, err := confirm.WaitContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to confirm publish to %s: %w", queueName, err)
		}
		if !acked {
			return fmt.Errorf("publish to %s nacked by broker", queueName)
		}
	}

	return nil
}
