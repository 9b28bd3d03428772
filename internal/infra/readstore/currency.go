package readstore

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/domain/currency"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type CurrencyReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewCurrencyReadStore(dbtx db.DBTX, logger *slog.Logger) *CurrencyReadStore {
	return &CurrencyReadStore{db: dbtx, logger: logger}
}

func (r *CurrencyReadStore) FindByCode(ctx context.Context, code string) (*currency.Currency, error) {
	var c string
	var rate pgtype.Numeric
	var precision int32
	err := r.db.QueryRow(ctx, `SELECT code, exchange_rate, precision FROM currencies WHERE code = $1`,
		strings.ToUpper(code)).Scan(&c, &rate, &precision)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find currency", err)
	}

	d, err := pgconv.DecimalFromNumeric(rate)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid exchange rate", err)
	}
	cur, err := currency.New(c, d, precision)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "invalid currency row", err)
	}
	return &cur, nil
}
