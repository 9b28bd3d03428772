package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cart:"

// RedisStore keeps one JSON cart state per session key. Saves are
// optimistic: the stored version must still match the one that was loaded.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*cart.State, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.NewState(), nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "redis get cart")
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, st *cart.State) error {
	k := key(sessionID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := storedVersion(ctx, tx, k)
		if err != nil {
			return err
		}
		if current != st.Version {
			return shared.ErrCartConflict
		}

		next := *st
		next.Version++
		raw, err := json.Marshal(&next)
		if err != nil {
			return errs.Wrap(err, "encode cart")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, raw, s.ttl)
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		st.Version++
		return nil
	case errors.Is(err, redis.TxFailedErr), errs.Is(err, shared.ErrCartConflict):
		s.logger.Debug("cart save conflict", "session_id", sessionID, "version", st.Version)
		return errs.Mark(errs.Wrap(err, "save cart"), shared.ErrCartConflict)
	default:
		return errs.Wrap(err, "redis save cart")
	}
}

// Delete drops the session, e.g. on logout.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return errs.Wrap(err, "redis delete cart")
	}
	return nil
}

func storedVersion(ctx context.Context, tx *redis.Tx, k string) (int64, error) {
	raw, err := tx.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Wrap(err, "redis get cart")
	}
	st, err := decode(raw)
	if err != nil {
		return 0, err
	}
	return st.Version, nil
}

func decode(raw []byte) (*cart.State, error) {
	st := cart.NewState()
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, errs.Wrap(err, "decode cart")
	}
	return st, nil
}
