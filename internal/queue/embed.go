package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/metrics"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/agent"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/leaselock"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// EmbedJob is the payload on the embed queue. Records are re-read from
// the catalog at processing time, so the id is all a job carries.
type EmbedJob struct {
	PublicID string `json:"publicId"`
}

// ErrLeaseBusy signals another worker currently holds the record's
// embed lease. The message should cycle through the retry queue rather
// than count as a hard failure.
var ErrLeaseBusy = errors.New("embed lease busy")

const (
	embedLeaseTTL   = 2 * time.Minute
	embedLeaseRenew = 45 * time.Second
)

// PublishEmbedJob queues a record for (re-)embedding.
func PublishEmbedJob(ch *amqp091.Channel, publicID string) error {
	body, err := json.Marshal(EmbedJob{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to marshal embed job: %w", err)
	}
	return PublishFIFO(ch, EmbedQueue, body)
}

// ProcessEmbedMessage embeds one catalog record: lease the record,
// compose its embedding text, call the gateway, store the vector. A
// record deleted between enqueue and processing is not an error.
func ProcessEmbedMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	agentClient agent.Client,
	store catalog.Store,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(EmbedJob)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to parse embed job: %w", err)
	}
	if data.PublicID == "" {
		return errors.New("embed job carries no public id")
	}

	start := time.Now()

	lockClient := leaselock.New(conn)
	lease, err := lockClient.Acquire(ctx, "embed:"+data.PublicID, leaselock.Options{
		TTL:        embedLeaseTTL,
		RenewEvery: embedLeaseRenew,
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			return fmt.Errorf("%w: %s", ErrLeaseBusy, data.PublicID)
		}
		return fmt.Errorf("failed to acquire embed lease: %w", err)
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			logger.Warn("[Queue] Failed to release embed lease", "object", data.PublicID, "err", err)
		}
	}()

	rec, err := store.FetchByID(lease.Context, data.PublicID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			logger.Info("[Queue] Skipping embed for deleted object", "object", data.PublicID)
			return nil
		}
		return fmt.Errorf("failed to load object %s: %w", data.PublicID, err)
	}

	text, err := ComposeEmbeddingText(lease.Context, s3Client, rec)
	if err != nil {
		return err
	}
	if text == "" {
		logger.Warn("[Queue] Object has no embeddable text", "object", rec.ID, "type", rec.Type)
		return nil
	}

	embedding, err := agentClient.GenerateEmbedding(lease.Context, []byte(text))
	if err != nil {
		return fmt.Errorf("failed to generate embedding for %s: %w", rec.ID, err)
	}

	if err := store.SetEmbedding(lease.Context, rec.ID, embedding); err != nil {
		return fmt.Errorf("failed to store embedding for %s: %w", rec.ID, err)
	}

	metrics.EmbedDuration.Observe(time.Since(start).Seconds())
	logger.Info("[Queue] Embedded object", "object", rec.ID, "type", rec.Type, "chars", len(text))
	return nil
}
