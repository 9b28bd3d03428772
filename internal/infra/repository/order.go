package repository

import (
	"context"
	"log/slog"

	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/infra/repository/converter"
	"storefront/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	logger *slog.Logger
}

func NewOrderRepository(logger *slog.Logger) *OrderRepository {
	return &OrderRepository{logger: logger}
}

// Create stores the order, a pending service per line and the lines.
func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o *order.Order) error {
	t := o.Totals()
	_, err := tx.Exec(ctx, `
		INSERT INTO orders (id, client_id, order_form_id, status, fraud_status, fraud_report, currency,
		                    subtotal, discount, total, coupon_id, coupon_code, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID(), o.ClientID(), o.OrderFormID(), o.Status().String(), string(o.Fraud().Status), o.Fraud().Report,
		o.Currency(), pgconv.DecimalToNumeric(t.Subtotal), pgconv.DecimalToNumeric(t.Discount),
		pgconv.DecimalToNumeric(t.Total), pgconv.UUIDPtrToPgtype(o.CouponID()), pgconv.NullableString(o.CouponCode()),
		o.IPAddress(), o.CreatedAt())
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to create order", err)
	}

	batch := &pgx.Batch{}
	for _, s := range converter.ServicesToInfra(o) {
		batch.Queue(`
			INSERT INTO services (id, client_id, order_id, package_id, pricing_id, parent_service_id, name, domain, qty, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $10)`,
			s.ID, s.ClientID, s.OrderID, s.PackageID, s.PricingID, s.ParentServiceID, s.Name, s.Domain, s.Qty, s.CreatedAt)
	}
	for _, l := range converter.LinesToInfra(o) {
		batch.Queue(`
			INSERT INTO order_lines (id, order_id, service_id, item_uuid, position, package_id, pricing_id, group_id,
			                         name, domain, meta, options, qty, unit_price, setup_fee, affiliate_excluded)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			l.ID, l.OrderID, l.ServiceID, l.ItemUUID, l.Position, l.PackageID, l.PricingID, l.GroupID,
			l.Name, l.Domain, l.Meta, l.Options, l.Qty, l.UnitPrice, l.SetupFee, l.AffiliateExcluded)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return infra.WrapPgErr(r.logger, "failed to create order lines", err)
	}
	return nil
}

func (r *OrderRepository) CreateInvoice(ctx context.Context, tx db.DBTX, inv *order.Invoice) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO invoices (id, order_id, client_id, currency, subtotal, discount, total, status, date_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.OrderID, inv.ClientID, inv.Currency, pgconv.DecimalToNumeric(inv.Subtotal),
		pgconv.DecimalToNumeric(inv.Discount), pgconv.DecimalToNumeric(inv.Total), string(inv.Status),
		pgconv.TimePtrToPgtype(inv.DatePaid), inv.CreatedAt)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to create invoice", err)
	}
	return nil
}
