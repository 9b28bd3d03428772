package repository

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	JobQueued = "queued"
	JobSent   = "sent"
	JobFailed = "failed"
)

// NotificationJob is an outbox row waiting to be published.
type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	Attempts int
}

type NotificationRepository struct {
	logger *slog.Logger
}

func NewNotificationRepository(logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{logger: logger}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO notification_jobs (kind, topic, payload, status, run_at)
		VALUES ($1, $2, $3, $4, $5)`,
		kind, topic, string(payload), JobQueued, runAt)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to create notification job", err)
	}
	return nil
}

// ListDue locks up to limit queued jobs that are due. Rows locked by another
// publisher are skipped.
func (r *NotificationRepository) ListDue(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]NotificationJob, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, kind, topic, payload::text, attempts
		FROM notification_jobs
		WHERE status = $1 AND run_at <= $2
		ORDER BY run_at, created_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED`, JobQueued, now, limit)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list due notification jobs", err)
	}
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (NotificationJob, error) {
		var j NotificationJob
		var payload string
		err := row.Scan(&j.ID, &j.Kind, &j.Topic, &payload, &j.Attempts)
		j.Payload = []byte(payload)
		return j, err
	})
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to scan notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, tx db.DBTX, jobID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET status = $2, attempts = attempts + 1, last_error = NULL, updated_at = now()
		WHERE id = $1`, jobID, JobSent)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to mark notification job sent", err)
	}
	return nil
}

// MarkFailed records a failed attempt. The job is retried at retryAt until
// maxAttempts is reached, then parked as failed.
func (r *NotificationRepository) MarkFailed(ctx context.Context, tx db.DBTX, jobID uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error {
	_, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $4 THEN $5 ELSE status END,
		    last_error = $2,
		    run_at = $3,
		    updated_at = now()
		WHERE id = $1`, jobID, lastError, retryAt, maxAttempts, JobFailed)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to mark notification job failed", err)
	}
	return nil
}
