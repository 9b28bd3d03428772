package shared

import (
	"context"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/errs"
)

var (
	ErrCartConflict       = errs.New("cart session was modified concurrently")
	ErrSessionUnavailable = errs.New("cart session unavailable")
)

// CartStore persists cart state per session. Save must fail with
// ErrCartConflict when the stored version differs from st.Version, and
// bump st.Version on success.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*cart.State, error)
	Save(ctx context.Context, sessionID string, st *cart.State) error
}

// CartMutation edits st. commit asks for st to be saved even when err is
// set, e.g. to drop an invalid queue entry while reporting why.
type CartMutation func(st *cart.State) (commit bool, err error)

// MutateCart runs load-mutate-save, re-running fn on a fresh state when a
// concurrent request saved first.
func MutateCart(ctx context.Context, store CartStore, sessionID string, attempts int, fn CartMutation) (*cart.State, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		st, err := store.Load(ctx, sessionID)
		if err != nil {
			return nil, errs.Mark(errs.Wrap(err, "load cart"), ErrSessionUnavailable)
		}

		commit, fnErr := fn(st)
		if !commit {
			return st, fnErr
		}

		if err := store.Save(ctx, sessionID, st); err != nil {
			if errs.Is(err, ErrCartConflict) {
				lastErr = err
				continue
			}
			return nil, errs.Mark(errs.Wrap(err, "save cart"), ErrSessionUnavailable)
		}
		return st, fnErr
	}
	return nil, errs.Mark(errs.Wrap(lastErr, "cart retries exhausted"), ErrCartConflict)
}
