package repository

import (
	"context"
	"log/slog"

	"storefront/internal/domain/affiliate"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"
)

type ReferralRepository struct {
	logger *slog.Logger
}

func NewReferralRepository(logger *slog.Logger) *ReferralRepository {
	return &ReferralRepository{logger: logger}
}

func (r *ReferralRepository) Create(ctx context.Context, tx db.DBTX, ref *affiliate.Referral) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO affiliate_referrals (id, affiliate_id, order_id, status, amount, commission, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ref.ID, ref.AffiliateID, ref.OrderID, string(ref.Status), pgconv.DecimalToNumeric(ref.Amount),
		pgconv.DecimalToNumeric(ref.Commission), ref.Currency, ref.CreatedAt)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to create referral", err)
	}
	return nil
}
