package readstore

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"
	"storefront/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgtype"
)

type CouponReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewCouponReadStore(dbtx db.DBTX, logger *slog.Logger) *CouponReadStore {
	return &CouponReadStore{db: dbtx, logger: logger}
}

// FindByCode matches codes case-insensitively.
func (r *CouponReadStore) FindByCode(ctx context.Context, code string) (*shared.CouponSnapshot, error) {
	var c shared.CouponSnapshot
	var value pgtype.Numeric
	var currency pgtype.Text
	var validFrom, validTo pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT id, code, type, value, currency, max_qty, used_qty, active, valid_from, valid_to
		FROM coupons WHERE upper(code) = $1`, strings.ToUpper(strings.TrimSpace(code))).
		Scan(&c.ID, &c.Code, &c.Type, &value, &currency, &c.MaxQty, &c.UsedQty, &c.Active, &validFrom, &validTo)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find coupon by code", err)
	}

	if c.Value, err = pgconv.DecimalFromNumeric(value); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid coupon value", err)
	}
	c.Currency = pgconv.StringFromPgtype(currency)
	c.ValidFrom = pgconv.TimePtrFromPgtype(validFrom)
	c.ValidTo = pgconv.TimePtrFromPgtype(validTo)
	return &c, nil
}
