package queries

import (
	"context"

	"storefront/internal/infra"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound = errs.New("client not found")
	ErrClientInactive = errs.New("client inactive")
)

type ClientQueries interface {
	GetCurrentClient(ctx context.Context, clientID uuid.UUID) (*ClientView, error)
}

type ClientReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ClientView, error)
}

type clientQueriesImpl struct {
	readStore ClientReadStore
}

func NewClientQueries(readStore ClientReadStore) ClientQueries {
	return &clientQueriesImpl{
		readStore: readStore,
	}
}

func (q *clientQueriesImpl) GetCurrentClient(ctx context.Context, clientID uuid.UUID) (*ClientView, error) {
	c, err := q.readStore.FindByID(ctx, clientID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if !c.IsActive {
		return nil, ErrClientInactive
	}

	return c, nil
}
