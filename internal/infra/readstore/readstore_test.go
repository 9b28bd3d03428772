//go:build unit

package readstore

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"storefront/internal/infra"
	"storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgconn.CommandTag), called.Error(1)
}

func (m *MockDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	called := m.Called(ctx, sql, args)
	rows, _ := called.Get(0).(pgx.Rows)
	return rows, called.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

func (m *MockDBTX) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	called := m.Called(ctx, b)
	return called.Get(0).(pgx.BatchResults)
}

// stubRow copies values into Scan destinations in order.
type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== ClientReadStore =====

func TestClientReadStore_SnapshotByEmail(t *testing.T) {
	c := builder.NewClientBuilder().BuildSnapshot()

	tests := []struct {
		name     string
		row      stubRow
		wantKind infra.RepositoryErrorKind
	}{
		{
			name: "success: active client",
			row: stubRow{values: []any{
				c.ID, c.Email, c.PasswordHash, c.FirstName, c.LastName, c.EmailVerified, c.IsActive,
			}},
		},
		{
			name:     "error: unknown email",
			row:      stubRow{err: pgx.ErrNoRows},
			wantKind: infra.KindNotFound,
		},
		{
			name:     "error: connection failure",
			row:      stubRow{err: &pgconn.PgError{Code: "08006"}},
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDBTX)
			db.On("QueryRow", mock.Anything, mock.Anything, []any{"buyer@example.com"}).Return(tt.row)
			store := NewClientReadStore(db, discardLogger())

			got, err := store.SnapshotByEmail(context.Background(), "  Buyer@Example.com ")

			if tt.wantKind != "" {
				assert.True(t, infra.IsKind(err, tt.wantKind), "got %v", err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, c, got)
			}
			db.AssertExpectations(t)
		})
	}
}

func TestClientReadStore_FindByID(t *testing.T) {
	c := builder.NewClientBuilder().Unverified().BuildSnapshot()
	db := new(MockDBTX)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{c.ID}).Return(stubRow{values: []any{
		c.ID, c.Email, c.PasswordHash, c.FirstName, c.LastName, c.EmailVerified, c.IsActive,
	}})
	store := NewClientReadStore(db, discardLogger())

	view, err := store.FindByID(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, c.ID, view.ID)
	assert.False(t, view.EmailVerified)
	assert.True(t, view.IsActive)
}

// ===== CatalogReadStore =====

func TestCatalogReadStore_CountClientServices(t *testing.T) {
	clientID, packageID := uuid.New(), uuid.New()
	db := new(MockDBTX)
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "sum(qty)")
	}), []any{clientID, packageID}).Return(stubRow{values: []any{3}})
	store := NewCatalogReadStore(db, discardLogger())

	n, err := store.CountClientServices(context.Background(), clientID, packageID)

	require.NoError(t, err)
	assert.Equal(t, 3, n, "units held, not service rows")
	db.AssertExpectations(t)
}

// ===== IdempotencyReadStore =====

func TestIdempotencyReadStore_Get(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	key, clientID, orderID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name      string
		expiresAt time.Time
		orderID   pgtype.UUID
		wantFound bool
	}{
		{
			name:      "success: live completed key",
			expiresAt: now.Add(time.Hour),
			orderID:   pgtype.UUID{Bytes: orderID, Valid: true},
			wantFound: true,
		},
		{
			name:      "success: live processing key has no order",
			expiresAt: now.Add(time.Hour),
			wantFound: true,
		},
		{
			name:      "error: expired key reads as missing",
			expiresAt: now.Add(-time.Minute),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDBTX)
			db.On("QueryRow", mock.Anything, mock.Anything, []any{key, clientID}).Return(stubRow{values: []any{
				key, clientID, "completed", "hash", tt.orderID, tt.expiresAt,
			}})
			store := NewIdempotencyReadStore(db, discardLogger())
			store.now = func() time.Time { return now }

			rec, err := store.Get(context.Background(), key, clientID)

			if !tt.wantFound {
				assert.True(t, infra.IsKind(err, infra.KindNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "hash", rec.RequestHash)
			if tt.orderID.Valid {
				require.NotNil(t, rec.ResultOrderID)
				assert.Equal(t, orderID, *rec.ResultOrderID)
			} else {
				assert.Nil(t, rec.ResultOrderID)
			}
		})
	}
}
