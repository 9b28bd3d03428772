package repository

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type ClientRepository struct {
	logger *slog.Logger
}

func NewClientRepository(logger *slog.Logger) *ClientRepository {
	return &ClientRepository{logger: logger}
}

func (r *ClientRepository) UpdateLastLogin(ctx context.Context, tx db.DBTX, clientID uuid.UUID, at time.Time) error {
	tag, err := tx.Exec(ctx, `UPDATE clients SET last_login_at = $2 WHERE id = $1`, clientID, at)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "client not found", nil)
	}
	return nil
}
