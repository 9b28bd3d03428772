package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/affiliate"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/currency"
	"storefront/internal/infra/db"
	"storefront/internal/infra/readstore"
	"storefront/internal/infra/repository"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger) *PostgresUoW {
	return &PostgresUoW{
		pool:   pool,
		logger: logger,
	}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, pgxTx pgx.Tx) error {
		return fn(ctx, &pgTx{dbtx: pgxTx, logger: u.logger})
	})
}

// WithinTx hands fn the raw transaction, for infrastructure jobs that use
// repositories outside the command surface.
func (u *PostgresUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, pgxTx pgx.Tx) error {
		return fn(ctx, pgxTx)
	})
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return newCommandReads(u.pool, u.logger)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, pgxTx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- masked to a non-negative value above
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx   db.DBTX
	logger *slog.Logger

	// Lazy-initialized repositories
	orderRepo        *repository.OrderRepository
	couponRepo       *repository.CouponRepository
	packageRepo      *repository.PackageRepository
	referralRepo     *repository.ReferralRepository
	idempotencyRepo  *repository.IdempotencyRepository
	notificationRepo *repository.NotificationRepository
	clientRepo       *repository.ClientRepository
	commandReads     *commandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orderRepo == nil {
		t.orderRepo = repository.NewOrderRepository(t.logger)
	}
	return t.orderRepo
}

func (t *pgTx) Coupons() shared.CouponRepository {
	if t.couponRepo == nil {
		t.couponRepo = repository.NewCouponRepository(t.logger)
	}
	return t.couponRepo
}

func (t *pgTx) Packages() shared.PackageRepository {
	if t.packageRepo == nil {
		t.packageRepo = repository.NewPackageRepository(t.logger)
	}
	return t.packageRepo
}

func (t *pgTx) Referrals() shared.ReferralRepository {
	if t.referralRepo == nil {
		t.referralRepo = repository.NewReferralRepository(t.logger)
	}
	return t.referralRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository(t.logger)
	}
	return t.idempotencyRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.logger)
	}
	return t.notificationRepo
}

func (t *pgTx) Clients() shared.ClientRepository {
	if t.clientRepo == nil {
		t.clientRepo = repository.NewClientRepository(t.logger)
	}
	return t.clientRepo
}

// Reads sees the transaction's own uncommitted writes.
func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = newCommandReads(t.dbtx, t.logger)
	}
	return t.commandReads
}

type commandReads struct {
	catalog     *readstore.CatalogReadStore
	forms       *readstore.OrderFormReadStore
	coupons     *readstore.CouponReadStore
	currencies  *readstore.CurrencyReadStore
	clients     *readstore.ClientReadStore
	orders      *readstore.OrderReadStore
	affiliates  *readstore.AffiliateReadStore
	idempotency *readstore.IdempotencyReadStore
}

func newCommandReads(dbtx db.DBTX, logger *slog.Logger) *commandReads {
	return &commandReads{
		catalog:     readstore.NewCatalogReadStore(dbtx, logger),
		forms:       readstore.NewOrderFormReadStore(dbtx, logger),
		coupons:     readstore.NewCouponReadStore(dbtx, logger),
		currencies:  readstore.NewCurrencyReadStore(dbtx, logger),
		clients:     readstore.NewClientReadStore(dbtx, logger),
		orders:      readstore.NewOrderReadStore(dbtx, logger),
		affiliates:  readstore.NewAffiliateReadStore(dbtx, logger),
		idempotency: readstore.NewIdempotencyReadStore(dbtx, logger),
	}
}

func (r *commandReads) OrderFormByLabel(ctx context.Context, label string) (*shared.OrderFormSnapshot, error) {
	return r.forms.FindByLabel(ctx, label)
}

func (r *commandReads) PackageByPricingID(ctx context.Context, pricingID uuid.UUID) (*catalog.Package, error) {
	return r.catalog.PackageByPricingID(ctx, pricingID)
}

func (r *commandReads) GroupByID(ctx context.Context, id uuid.UUID) (*catalog.Group, error) {
	return r.catalog.GroupByID(ctx, id)
}

func (r *commandReads) AddonGroups(ctx context.Context, ids []uuid.UUID) ([]catalog.AddonGroup, error) {
	return r.catalog.AddonGroups(ctx, ids)
}

func (r *commandReads) ClientHasPackageAccess(ctx context.Context, clientID, packageID uuid.UUID) (bool, error) {
	return r.catalog.ClientHasPackageAccess(ctx, clientID, packageID)
}

func (r *commandReads) CountClientServices(ctx context.Context, clientID, packageID uuid.UUID) (int, error) {
	return r.catalog.CountClientServices(ctx, clientID, packageID)
}

func (r *commandReads) CouponByCode(ctx context.Context, code string) (*shared.CouponSnapshot, error) {
	return r.coupons.FindByCode(ctx, code)
}

func (r *commandReads) CurrencyByCode(ctx context.Context, code string) (*currency.Currency, error) {
	return r.currencies.FindByCode(ctx, code)
}

func (r *commandReads) ClientByID(ctx context.Context, id uuid.UUID) (*shared.ClientSnapshot, error) {
	return r.clients.SnapshotByID(ctx, id)
}

func (r *commandReads) ClientByEmail(ctx context.Context, email string) (*shared.ClientSnapshot, error) {
	return r.clients.SnapshotByEmail(ctx, email)
}

func (r *commandReads) CountClientOrders(ctx context.Context, clientID uuid.UUID) (int, error) {
	return r.orders.CountByClient(ctx, clientID)
}

func (r *commandReads) AffiliateByCode(ctx context.Context, code string) (*affiliate.Affiliate, error) {
	return r.affiliates.FindByCode(ctx, code)
}

func (r *commandReads) AffiliateSettings(ctx context.Context, affiliateID uuid.UUID) (affiliate.Settings, error) {
	return r.affiliates.Settings(ctx, affiliateID)
}

func (r *commandReads) IdempotencyByKey(ctx context.Context, key, clientID uuid.UUID) (*shared.IdempotencyRecord, error) {
	return r.idempotency.Get(ctx, key, clientID)
}
