package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/infra/db"
	"storefront/internal/infra/repository"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type JobStore interface {
	ListDue(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]repository.NotificationJob, error)
	MarkSent(ctx context.Context, tx db.DBTX, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, tx db.DBTX, jobID uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
}

type Options struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// OutboxPublisher moves queued notification jobs to Kafka. Jobs are locked
// while being sent, so several instances can poll the same table.
type OutboxPublisher struct {
	runner TxRunner
	jobs   JobStore
	writer MessageWriter
	clock  clock.Clock
	opts   Options
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxPublisher(runner TxRunner, jobs JobStore, writer MessageWriter, clk clock.Clock, opts Options, logger *slog.Logger) *OutboxPublisher {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &OutboxPublisher{
		runner: runner,
		jobs:   jobs,
		writer: writer,
		clock:  clk,
		opts:   opts,
		logger: logger,
	}
}

// NewKafkaWriter builds a writer that takes the topic from each message.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func (p *OutboxPublisher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Run(ctx)
	}()
	p.logger.Info("outbox publisher started", "interval", p.opts.Interval.String())
}

func (p *OutboxPublisher) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return p.writer.Close()
}

func (p *OutboxPublisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("outbox batch failed", "error", err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}

// PublishBatch sends one batch of due jobs and returns how many were sent.
// A job that fails to publish is rescheduled; the rest of the batch goes on.
func (p *OutboxPublisher) PublishBatch(ctx context.Context) (int, error) {
	sent := 0
	err := p.runner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sent = 0
		now := p.clock.Now()
		jobs, err := p.jobs.ListDue(ctx, tx, now, p.opts.BatchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			if err := p.writer.WriteMessages(ctx, toMessage(job)); err != nil {
				p.logger.Warn("failed to publish notification job",
					"job_id", job.ID, "kind", job.Kind, "attempt", job.Attempts+1, "error", err.Error())
				retryAt := now.Add(backoff(job.Attempts, p.opts.Interval))
				if err := p.jobs.MarkFailed(ctx, tx, job.ID, err.Error(), retryAt, p.opts.MaxAttempts); err != nil {
					return err
				}
				continue
			}
			if err := p.jobs.MarkSent(ctx, tx, job.ID); err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "publish outbox batch")
	}
	return sent, nil
}

// toMessage keys the message by the event's aggregate so every event of one
// order lands on the same partition.
func toMessage(job repository.NotificationJob) kafka.Message {
	var envelope struct {
		AggregateID string `json:"aggregate_id"`
	}
	key := job.ID.String()
	if err := json.Unmarshal(job.Payload, &envelope); err == nil && envelope.AggregateID != "" {
		key = envelope.AggregateID
	}
	return kafka.Message{
		Topic: job.Topic,
		Key:   []byte(key),
		Value: job.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(job.Kind)},
		},
	}
}

func backoff(attempts int, base time.Duration) time.Duration {
	n := min(attempts, 6)
	return base * time.Duration(1<<n)
}
