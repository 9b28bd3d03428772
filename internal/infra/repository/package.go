package repository

import (
	"context"
	"log/slog"

	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type PackageRepository struct {
	logger *slog.Logger
}

func NewPackageRepository(logger *slog.Logger) *PackageRepository {
	return &PackageRepository{logger: logger}
}

// DecrementStock takes qty units off a stock-tracked package. A NULL qty is
// unlimited and stays NULL. Not enough stock left is a conflict.
func (r *PackageRepository) DecrementStock(ctx context.Context, tx db.DBTX, packageID uuid.UUID, qty int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE packages SET qty = qty - $2
		WHERE id = $1 AND (qty IS NULL OR qty >= $2)`, packageID, qty)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to decrement package stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindConflict, "package stock exhausted", nil)
	}
	return nil
}
