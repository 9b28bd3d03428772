package readstore

import (
	"context"
	"log/slog"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderFormReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewOrderFormReadStore(dbtx db.DBTX, logger *slog.Logger) *OrderFormReadStore {
	return &OrderFormReadStore{db: dbtx, logger: logger}
}

func (r *OrderFormReadStore) FindByLabel(ctx context.Context, label string) (*shared.OrderFormSnapshot, error) {
	var f shared.OrderFormSnapshot
	var currency pgtype.Text
	err := r.db.QueryRow(ctx, `
		SELECT id, label, name, active, manual_review, allow_coupons, redirect_url, default_currency
		FROM order_forms WHERE label = $1`, label).
		Scan(&f.ID, &f.Label, &f.Name, &f.Active, &f.ManualReview, &f.AllowCoupons, &f.RedirectURL, &currency)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find order form", err)
	}
	f.DefaultCurrency = pgconv.StringFromPgtype(currency)

	rows, err := r.db.Query(ctx, `SELECT group_id FROM order_form_groups WHERE order_form_id = $1`, f.ID)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list order form groups", err)
	}
	f.GroupIDs, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to scan order form groups", err)
	}
	return &f, nil
}
