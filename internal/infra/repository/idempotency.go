package repository

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type IdempotencyRepository struct {
	logger *slog.Logger
}

func NewIdempotencyRepository(logger *slog.Logger) *IdempotencyRepository {
	return &IdempotencyRepository{logger: logger}
}

// TryInsert claims key for clientID. An expired record is taken over; a
// live one leaves inserted false.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, key uuid.UUID, clientID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO idempotency_keys (key, client_id, endpoint, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, 'processing', $5)
		ON CONFLICT (key, client_id) DO UPDATE
		SET endpoint = EXCLUDED.endpoint,
		    request_hash = EXCLUDED.request_hash,
		    status = 'processing',
		    response_body_hash = NULL,
		    result_order_id = NULL,
		    expires_at = EXCLUDED.expires_at,
		    created_at = now()
		WHERE idempotency_keys.expires_at < now()`,
		key, clientID, endpoint, requestHash, expiresAt)
	if err != nil {
		return false, infra.WrapPgErr(r.logger, "failed to try insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key uuid.UUID, clientID uuid.UUID, responseBodyHash string, orderID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE idempotency_keys
		SET status = 'completed', response_body_hash = $3, result_order_id = $4
		WHERE key = $1 AND client_id = $2 AND status = 'processing'`,
		key, clientID, responseBodyHash, orderID)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to update idempotency key status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindConflict, "idempotency key no longer processing", nil)
	}
	return nil
}

// Release drops a claim whose request failed so the client can retry.
func (r *IdempotencyRepository) Release(ctx context.Context, tx db.DBTX, key uuid.UUID, clientID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM idempotency_keys WHERE key = $1 AND client_id = $2 AND status = 'processing'`,
		key, clientID)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to release idempotency key", err)
	}
	return nil
}
