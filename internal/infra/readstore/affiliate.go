package readstore

import (
	"context"
	"log/slog"

	"storefront/internal/domain/affiliate"
	"storefront/internal/infra"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type AffiliateReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewAffiliateReadStore(dbtx db.DBTX, logger *slog.Logger) *AffiliateReadStore {
	return &AffiliateReadStore{db: dbtx, logger: logger}
}

func (r *AffiliateReadStore) FindByCode(ctx context.Context, code string) (*affiliate.Affiliate, error) {
	var a affiliate.Affiliate
	var status string
	err := r.db.QueryRow(ctx, `SELECT id, client_id, code, status FROM affiliates WHERE code = $1`,
		affiliate.NormalizeCode(code)).Scan(&a.ID, &a.ClientID, &a.Code, &status)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find affiliate", err)
	}
	a.Status = affiliate.Status(status)
	return &a, nil
}

func (r *AffiliateReadStore) Settings(ctx context.Context, affiliateID uuid.UUID) (affiliate.Settings, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM affiliate_settings WHERE affiliate_id = $1`, affiliateID)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to load affiliate settings", err)
	}
	defer rows.Close()

	settings := affiliate.Settings{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, infra.WrapPgErr(r.logger, "failed to scan affiliate setting", err)
		}
		settings[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to read affiliate settings", err)
	}
	return settings, nil
}
