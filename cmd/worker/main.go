package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/gateway"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/metrics"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/queue"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/storage"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/util"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	catalogpgx "github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog/pgx"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger/console"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// maxRetries bounds how often a failed embed job cycles through the
// retry queue before it lands in the DLQ.
const maxRetries = 3

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Init(console.New(console.Options{
		Debug:  util.GetEnvBool("DEBUG", false),
		Prefix: "worker",
	}))

	s3Client := storage.NewS3Client(ctx)

	agentClient, err := gateway.NewClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create agent client", "err", err)
	}

	pgCfg, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to parse database url", "err", err)
	}
	pgCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pgConn, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	store := catalogpgx.NewStore(pgConn)

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.EmbedQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	prefetch := int(util.GetEnvNumeric("WORKER_PREFETCH", 1))
	if err := consumerCh.Qos(prefetch, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.EmbedQueue,
		"embed_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.EmbedQueue, "err", err)
	}

	logger.Info("Listening for embed jobs", "queue", queue.EmbedQueue, "prefetch", prefetch)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed, exiting...")
				return
			}
			handleMessage(ctx, consumerCh, msg, s3Client, agentClient, store, pgConn)
		}
	}
}

func handleMessage(
	ctx context.Context,
	ch *amqp.Channel,
	msg amqp.Delivery,
	s3Client *awss3.Client,
	agentClient agent.Client,
	store catalog.Store,
	pgConn *pgxpool.Pool,
) {
	start := time.Now()

	err := queue.ProcessEmbedMessage(ctx, s3Client, agentClient, store, pgConn, string(msg.Body))
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			logger.Error("Failed to ack message", "err", ackErr)
		}
		metrics.EmbedJobsTotal.WithLabelValues("ok").Inc()
		logger.Info("Embed job done", "duration_ms", time.Since(start).Milliseconds())
	case errors.Is(err, queue.ErrLeaseBusy):
		logger.Info("Embed lease busy, cycling through retry queue", "err", err)
		requeueOrDeadLetter(ch, msg, "busy")
	default:
		logger.Error("Error processing embed job", "err", err)
		requeueOrDeadLetter(ch, msg, "retry")
	}
}

// requeueOrDeadLetter parks a message in the retry queue, or in the DLQ
// once it has burned through maxRetries attempts.
func requeueOrDeadLetter(ch *amqp.Channel, msg amqp.Delivery, status string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	if retries >= maxRetries {
		dlqName := queue.EmbedQueue + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		metrics.EmbedJobsTotal.WithLabelValues("dlq").Inc()
		pubErr := ch.PublishWithContext(
			context.Background(),
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = int32(retries + 1)

	retryName := queue.EmbedQueue + "_retry"
	metrics.EmbedJobsTotal.WithLabelValues(status).Inc()
	pubErr := ch.PublishWithContext(
		context.Background(),
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
