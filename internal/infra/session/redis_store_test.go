//go:build unit

package session

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func sampleItem() cart.Item {
	st := cart.NewState()
	return st.PrequeueItem(cart.Selection{PricingID: uuid.New(), GroupID: uuid.New(), Domain: "example.com"})
}

func TestRedisStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("success: unknown session is an empty cart", func(t *testing.T) {
		store, _ := newTestStore(t)

		st, err := store.Load(ctx, "missing")

		require.NoError(t, err)
		assert.True(t, st.IsEmptyCart())
		assert.True(t, st.IsEmptyQueue())
		assert.Zero(t, st.Version)
	})

	t.Run("error: corrupted payload", func(t *testing.T) {
		store, mr := newTestStore(t)
		require.NoError(t, mr.Set("cart:broken", "{not json"))

		_, err := store.Load(ctx, "broken")

		require.Error(t, err)
		assert.ErrorContains(t, err, "decode cart")
		var syntaxErr *json.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr)

		err = store.Save(ctx, "broken", cart.NewState())
		assert.ErrorContains(t, err, "decode cart")
	})
}

func TestRedisStore_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("success: round trip bumps the version and sets a ttl", func(t *testing.T) {
		store, mr := newTestStore(t)
		st, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		st.AddItem(sampleItem())
		st.Currency = "EUR"

		require.NoError(t, store.Save(ctx, "s1", st))

		assert.Equal(t, int64(1), st.Version)
		assert.Equal(t, time.Hour, mr.TTL("cart:s1"))
		got, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		if diff := cmp.Diff(st, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("stored state mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("error: stale version is a conflict", func(t *testing.T) {
		store, _ := newTestStore(t)
		first, err := store.Load(ctx, "s2")
		require.NoError(t, err)
		second, err := store.Load(ctx, "s2")
		require.NoError(t, err)

		first.AddItem(sampleItem())
		require.NoError(t, store.Save(ctx, "s2", first))
		second.Currency = "GBP"
		err = store.Save(ctx, "s2", second)

		assert.True(t, errs.Is(err, shared.ErrCartConflict), "got %v", err)
		assert.Zero(t, second.Version)
		got, err := store.Load(ctx, "s2")
		require.NoError(t, err)
		assert.Len(t, got.Items, 1)
		assert.Empty(t, got.Currency)
	})

	t.Run("success: MutateCart retries after a conflict", func(t *testing.T) {
		store, _ := newTestStore(t)
		raced := false

		st, err := shared.MutateCart(ctx, store, "s3", 3, func(st *cart.State) (bool, error) {
			if !raced {
				raced = true
				other, err := store.Load(ctx, "s3")
				require.NoError(t, err)
				other.AddItem(sampleItem())
				require.NoError(t, store.Save(ctx, "s3", other))
			}
			st.AddItem(sampleItem())
			return true, nil
		})

		require.NoError(t, err)
		assert.Len(t, st.Items, 2)
		assert.Equal(t, int64(2), st.Version)
	})
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	st := cart.NewState()
	st.AddItem(sampleItem())
	require.NoError(t, store.Save(ctx, "s4", st))

	require.NoError(t, store.Delete(ctx, "s4"))

	assert.False(t, mr.Exists("cart:s4"))
}
