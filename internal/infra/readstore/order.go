package readstore

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type OrderReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewOrderReadStore(dbtx db.DBTX, logger *slog.Logger) *OrderReadStore {
	return &OrderReadStore{db: dbtx, logger: logger}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var v queries.OrderView
	var subtotal, discount, total pgtype.Numeric
	var couponCode, invoiceStatus pgtype.Text
	var invoiceID pgtype.UUID
	err := r.db.QueryRow(ctx, `
		SELECT o.id, o.client_id, o.order_form_id, o.status, o.fraud_status, o.currency,
		       o.subtotal, o.discount, o.total, o.coupon_code, i.id, i.status, o.created_at
		FROM orders o
		LEFT JOIN invoices i ON i.order_id = o.id
		WHERE o.id = $1`, id).
		Scan(&v.ID, &v.ClientID, &v.OrderFormID, &v.Status, &v.FraudStatus, &v.Currency,
			&subtotal, &discount, &total, &couponCode, &invoiceID, &invoiceStatus, &v.CreatedAt)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find order", err)
	}
	for _, m := range []struct {
		dst *decimal.Decimal
		src pgtype.Numeric
	}{{&v.Subtotal, subtotal}, {&v.Discount, discount}, {&v.Total, total}} {
		if *m.dst, err = pgconv.DecimalFromNumeric(m.src); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid order amounts", err)
		}
	}
	v.CouponCode = pgconv.StringPtrFromPgtype(couponCode)
	v.InvoiceID = pgconv.UUIDPtrFromPgtype(invoiceID)
	v.InvoiceStatus = pgconv.StringPtrFromPgtype(invoiceStatus)

	lines, err := r.lines(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Lines = lines
	return &v, nil
}

func (r *OrderReadStore) lines(ctx context.Context, orderID uuid.UUID) ([]queries.OrderLineView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.service_id, s.parent_service_id, l.package_id, l.pricing_id, l.name, l.domain,
		       l.qty, l.unit_price, l.setup_fee
		FROM order_lines l
		JOIN services s ON s.id = l.service_id
		WHERE l.order_id = $1
		ORDER BY l.position`, orderID)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list order lines", err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (queries.OrderLineView, error) {
		var l queries.OrderLineView
		var parent pgtype.UUID
		var domain pgtype.Text
		var unit, setup pgtype.Numeric
		if err := row.Scan(&l.ID, &l.ServiceID, &parent, &l.PackageID, &l.PricingID, &l.Name, &domain,
			&l.Qty, &unit, &setup); err != nil {
			return l, err
		}
		l.ParentServiceID = pgconv.UUIDPtrFromPgtype(parent)
		l.Domain = pgconv.StringPtrFromPgtype(domain)
		var err error
		if l.UnitPrice, err = pgconv.DecimalFromNumeric(unit); err != nil {
			return l, err
		}
		l.SetupFee, err = pgconv.DecimalFromNumeric(setup)
		return l, err
	})
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to scan order lines", err)
	}
	return lines, nil
}

// FindByClientAfter lists a client's orders newest first, starting after
// the (created_at, id) keyset position when one is given.
func (r *OrderReadStore) FindByClientAfter(ctx context.Context, clientID uuid.UUID, afterTime *time.Time, afterID *uuid.UUID, limit int) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.status, o.currency, o.total, i.status, o.created_at
		FROM orders o
		LEFT JOIN invoices i ON i.order_id = o.id
		WHERE o.client_id = $1
		  AND ($2::timestamptz IS NULL OR (o.created_at, o.id) < ($2, $3::uuid))
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $4`, clientID, pgconv.TimePtrToPgtype(afterTime), pgconv.UUIDPtrToPgtype(afterID), limit)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list client orders", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.OrderListItem, error) {
		var it queries.OrderListItem
		var total pgtype.Numeric
		var invoiceStatus pgtype.Text
		if err := row.Scan(&it.ID, &it.Status, &it.Currency, &total, &invoiceStatus, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.InvoiceStatus = pgconv.StringPtrFromPgtype(invoiceStatus)
		var err error
		it.Total, err = pgconv.DecimalFromNumeric(total)
		return &it, err
	})
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to scan client orders", err)
	}
	return items, nil
}

func (r *OrderReadStore) CountByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM orders WHERE client_id = $1`, clientID).Scan(&n); err != nil {
		return 0, infra.WrapPgErr(r.logger, "failed to count client orders", err)
	}
	return n, nil
}
