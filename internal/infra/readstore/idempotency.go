package readstore

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type IdempotencyReadStore struct {
	db     db.DBTX
	logger *slog.Logger
	now    func() time.Time
}

func NewIdempotencyReadStore(dbtx db.DBTX, logger *slog.Logger) *IdempotencyReadStore {
	return &IdempotencyReadStore{db: dbtx, logger: logger, now: time.Now}
}

// Get returns the live record for key. Expired records read as not found.
func (r *IdempotencyReadStore) Get(ctx context.Context, key uuid.UUID, clientID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var rec shared.IdempotencyRecord
	var resultOrderID pgtype.UUID
	err := r.db.QueryRow(ctx, `
		SELECT key, client_id, status, request_hash, result_order_id, expires_at
		FROM idempotency_keys WHERE key = $1 AND client_id = $2`, key, clientID).
		Scan(&rec.Key, &rec.ClientID, &rec.Status, &rec.RequestHash, &resultOrderID, &rec.ExpiresAt)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to get idempotency key", err)
	}
	rec.ResultOrderID = pgconv.UUIDPtrFromPgtype(resultOrderID)

	if r.now().After(rec.ExpiresAt) {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "idempotency key expired", nil)
	}
	return &rec, nil
}
