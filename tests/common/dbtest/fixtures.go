//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestPassword is the plain text behind every fixture client's hash.
const TestPassword = "password123"

const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestClient(t *testing.T, db DBLike, email string) uuid.UUID {
	t.Helper()

	clientID := uuid.New()
	ctx := context.Background()
	tag, err := db.Exec(ctx, `INSERT INTO clients (id, email, password_hash, first_name, last_name, email_verified, is_active)
		VALUES ($1, $2, $3, 'Ada', 'Lovelace', true, true) ON CONFLICT (email) DO NOTHING`,
		clientID, email, testPasswordHash)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		require.NoError(t, db.QueryRow(ctx, "SELECT id FROM clients WHERE email = $1", email).Scan(&clientID))
	}
	return clientID
}

func DeactivateClient(t *testing.T, db DBLike, email string) {
	t.Helper()
	_, err := db.Exec(context.Background(), "UPDATE clients SET is_active = false WHERE email = $1", email)
	require.NoError(t, err)
}

// Catalog is a minimal storefront: one order form selling one hosting
// package and one domain package.
type Catalog struct {
	FormLabel        string
	GroupID          uuid.UUID
	HostingPackageID uuid.UUID
	HostingPricingID uuid.UUID
	DomainPackageID  uuid.UUID
	DomainPricingID  uuid.UUID
}

func SeedCatalog(t *testing.T, db DBLike) Catalog {
	t.Helper()
	ctx := context.Background()

	c := Catalog{
		FormLabel:        "default",
		GroupID:          uuid.New(),
		HostingPackageID: uuid.New(),
		HostingPricingID: uuid.New(),
		DomainPackageID:  uuid.New(),
		DomainPricingID:  uuid.New(),
	}
	formID := uuid.New()

	stmts := []struct {
		sql  string
		args []any
	}{
		{"INSERT INTO product_groups (id, name, type) VALUES ($1, 'Hosting', 'standard')", []any{c.GroupID}},
		{"INSERT INTO packages (id, name, module) VALUES ($1, 'Starter Hosting', 'none')", []any{c.HostingPackageID}},
		{"INSERT INTO packages (id, name, module) VALUES ($1, 'Domain registration', 'domain')", []any{c.DomainPackageID}},
		{"INSERT INTO package_groups (package_id, group_id) VALUES ($1, $3), ($2, $3)", []any{c.HostingPackageID, c.DomainPackageID, c.GroupID}},
		{`INSERT INTO pricings (id, package_id, term, period, price, setup_fee, currency)
			VALUES ($1, $2, 1, 'month', 10.00, 5.00, 'USD')`, []any{c.HostingPricingID, c.HostingPackageID}},
		{`INSERT INTO pricings (id, package_id, term, period, price, setup_fee, currency)
			VALUES ($1, $2, 1, 'year', 12.00, 0, 'USD')`, []any{c.DomainPricingID, c.DomainPackageID}},
		{"INSERT INTO order_forms (id, label, name, default_currency) VALUES ($1, $2, 'Default order form', 'USD')", []any{formID, c.FormLabel}},
		{"INSERT INTO order_form_groups (order_form_id, group_id) VALUES ($1, $2)", []any{formID, c.GroupID}},
	}
	for _, st := range stmts {
		_, err := db.Exec(ctx, st.sql, st.args...)
		require.NoError(t, err, st.sql)
	}
	return c
}

// CreateCoupon inserts an active, unlimited coupon. kind is "percent" or "amount".
func CreateCoupon(t *testing.T, db DBLike, code, kind, value string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO coupons (id, code, type, value) VALUES ($1, $2, $3, $4::text::numeric)", id, code, kind, value)
	require.NoError(t, err)
	return id
}

// CreateAffiliate registers an active affiliate paying a percentage commission.
func CreateAffiliate(t *testing.T, db DBLike, clientID uuid.UUID, code, percent string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	_, err := db.Exec(ctx, "INSERT INTO affiliates (id, client_id, code) VALUES ($1, $2, $3)", id, clientID, code)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `INSERT INTO affiliate_settings (affiliate_id, key, value)
		VALUES ($1, 'commission_type', 'percentage'), ($1, 'commission_amount', $2)`, id, percent)
	require.NoError(t, err)
	return id
}

// SeedReferenceData inserts the currencies every test relies on.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO currencies (code, exchange_rate, precision, is_default) VALUES
		    ('USD', 1, 2, true),
		    ('EUR', 0.9, 2, false)
		ON CONFLICT (code) DO NOTHING;
	`)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates all tables and reseeds reference data.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
