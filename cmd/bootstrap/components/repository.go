package components

import (
	"storefront/internal/infra/db"
	"storefront/internal/infra/readstore"
	"storefront/internal/infra/uow"
	"storefront/internal/usecase/queries"
	"storefront/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		// Command side: repositories live behind the unit of work.
		uow.NewPostgresUoW,
		func(u *uow.PostgresUoW) shared.UnitOfWork { return u },
		func(u shared.UnitOfWork) shared.CommandReads { return u.CommandReads() },
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		fx.Annotate(
			readstore.NewClientReadStore,
			fx.As(new(queries.ClientReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
