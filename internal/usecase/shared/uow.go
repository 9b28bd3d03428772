package shared

import (
	"context"
	"time"

	"storefront/internal/domain/affiliate"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/currency"
	"storefront/internal/domain/order"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Orders() OrderRepository
	Coupons() CouponRepository
	Packages() PackageRepository
	Referrals() ReferralRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Clients() ClientRepository
	Reads() CommandReads
	DB() db.DBTX
}

// CommandReads are the lookups commands need for validation and pricing.
type CommandReads interface {
	OrderFormByLabel(ctx context.Context, label string) (*OrderFormSnapshot, error)
	PackageByPricingID(ctx context.Context, pricingID uuid.UUID) (*catalog.Package, error)
	GroupByID(ctx context.Context, id uuid.UUID) (*catalog.Group, error)
	AddonGroups(ctx context.Context, ids []uuid.UUID) ([]catalog.AddonGroup, error)
	ClientHasPackageAccess(ctx context.Context, clientID, packageID uuid.UUID) (bool, error)
	CountClientServices(ctx context.Context, clientID, packageID uuid.UUID) (int, error)
	CouponByCode(ctx context.Context, code string) (*CouponSnapshot, error)
	CurrencyByCode(ctx context.Context, code string) (*currency.Currency, error)
	ClientByID(ctx context.Context, id uuid.UUID) (*ClientSnapshot, error)
	ClientByEmail(ctx context.Context, email string) (*ClientSnapshot, error)
	CountClientOrders(ctx context.Context, clientID uuid.UUID) (int, error)
	AffiliateByCode(ctx context.Context, code string) (*affiliate.Affiliate, error)
	AffiliateSettings(ctx context.Context, affiliateID uuid.UUID) (affiliate.Settings, error)
	IdempotencyByKey(ctx context.Context, key, clientID uuid.UUID) (*IdempotencyRecord, error)
}

type OrderRepository interface {
	// Create stores the order with its lines and the pending services they provision.
	Create(ctx context.Context, tx db.DBTX, o *order.Order) error
	CreateInvoice(ctx context.Context, tx db.DBTX, inv *order.Invoice) error
}

type CouponRepository interface {
	// IncrementUsage fails with a conflict when the coupon is already exhausted.
	IncrementUsage(ctx context.Context, tx db.DBTX, couponID uuid.UUID) error
}

type PackageRepository interface {
	// DecrementStock fails with a conflict when fewer than qty units are left.
	DecrementStock(ctx context.Context, tx db.DBTX, packageID uuid.UUID, qty int) error
}

type ReferralRepository interface {
	Create(ctx context.Context, tx db.DBTX, ref *affiliate.Referral) error
}

type IdempotencyRepository interface {
	// TryInsert claims the key; inserted is false when a live record already exists.
	TryInsert(ctx context.Context, tx db.DBTX, key, clientID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (inserted bool, err error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, clientID uuid.UUID, resultHash string, orderID uuid.UUID) error
	Release(ctx context.Context, tx db.DBTX, key, clientID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

type ClientRepository interface {
	UpdateLastLogin(ctx context.Context, tx db.DBTX, clientID uuid.UUID, at time.Time) error
}
