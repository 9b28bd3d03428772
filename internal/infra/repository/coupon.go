package repository

import (
	"context"
	"log/slog"

	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type CouponRepository struct {
	logger *slog.Logger
}

func NewCouponRepository(logger *slog.Logger) *CouponRepository {
	return &CouponRepository{logger: logger}
}

// IncrementUsage counts one redemption. The guard in the WHERE clause makes
// a concurrent last redemption fail with a conflict instead of overshooting.
func (r *CouponRepository) IncrementUsage(ctx context.Context, tx db.DBTX, couponID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE coupons SET used_qty = used_qty + 1
		WHERE id = $1 AND (max_qty = 0 OR used_qty < max_qty)`, couponID)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to increment coupon usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindConflict, "coupon usage exhausted", nil)
	}
	return nil
}
