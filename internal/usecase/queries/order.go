package queries

import (
	"context"
	"time"

	"storefront/internal/infra"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errs.New("order not found")
	ErrOrderAccess   = errs.New("order access denied")
	ErrInvalidCursor = errs.New("invalid cursor")
)

type OrderQueries interface {
	// GetByID returns the order only when actor owns it.
	GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*OrderView, error)
	// GetByIDSystem skips the ownership check; used for idempotent replays.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
}

type OrderReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindByClientAfter(ctx context.Context, clientID uuid.UUID, afterTime *time.Time, afterID *uuid.UUID, limit int) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	readStore OrderReadStore
}

func NewOrderQueries(readStore OrderReadStore) OrderQueries {
	return &orderQueriesImpl{readStore: readStore}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*OrderView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.ClientID != actor {
		// Indistinguishable from a missing order to the caller
		return nil, errs.Mark(ErrOrderAccess, ErrOrderNotFound)
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *orderQueriesImpl) ListByClient(ctx context.Context, clientID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var afterTime *time.Time
	var afterID *uuid.UUID
	if after != nil && after.After != "" {
		t, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrInvalidCursor)
		}
		afterTime, afterID = &t, &id
	}

	// One extra row tells us whether another page exists.
	rows, err := q.readStore.FindByClientAfter(ctx, clientID, afterTime, afterID, limit+1)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) <= limit {
		return rows, nil, nil
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}, nil
}
