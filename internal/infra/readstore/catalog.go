package readstore

import (
	"context"
	"log/slog"

	"storefront/internal/domain/catalog"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const packageColumns = `p.id, p.name, p.module, p.status, p.qty, p.client_qty, p.affiliate_excluded, p.option_groups`

// CatalogReadStore loads packages with their pricings and group links.
type CatalogReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewCatalogReadStore(dbtx db.DBTX, logger *slog.Logger) *CatalogReadStore {
	return &CatalogReadStore{db: dbtx, logger: logger}
}

func (r *CatalogReadStore) PackageByPricingID(ctx context.Context, pricingID uuid.UUID) (*catalog.Package, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+packageColumns+`
		FROM packages p
		JOIN pricings pr ON pr.package_id = p.id
		WHERE pr.id = $1`, pricingID)

	pkg, err := scanPackage(row)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find package by pricing", err)
	}
	if err := r.loadRelations(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (r *CatalogReadStore) GroupByID(ctx context.Context, id uuid.UUID) (*catalog.Group, error) {
	var g catalog.Group
	err := r.db.QueryRow(ctx, `SELECT id, name, type FROM product_groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Type)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to find product group", err)
	}
	return &g, nil
}

// AddonGroups returns the addon groups among ids with their active packages.
func (r *CatalogReadStore) AddonGroups(ctx context.Context, ids []uuid.UUID) ([]catalog.AddonGroup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, name, type FROM product_groups
		WHERE id = ANY($1) AND type = 'addon'
		ORDER BY sort_order, name`, ids)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list addon groups", err)
	}
	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.AddonGroup, error) {
		var g catalog.AddonGroup
		err := row.Scan(&g.ID, &g.Name, &g.Type)
		return g, err
	})
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to scan addon groups", err)
	}

	for i := range groups {
		pkgs, err := r.packagesInGroup(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Packages = pkgs
	}
	return groups, nil
}

func (r *CatalogReadStore) packagesInGroup(ctx context.Context, groupID uuid.UUID) ([]catalog.Package, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+packageColumns+`
		FROM packages p
		JOIN package_groups pg ON pg.package_id = p.id
		WHERE pg.group_id = $1 AND p.status <> 'inactive'
		ORDER BY p.name`, groupID)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list group packages", err)
	}
	pkgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Package, error) {
		p, err := scanPackage(row)
		if err != nil {
			return catalog.Package{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to scan group packages", err)
	}
	for i := range pkgs {
		if err := r.loadRelations(ctx, &pkgs[i]); err != nil {
			return nil, err
		}
	}
	return pkgs, nil
}

func (r *CatalogReadStore) ClientHasPackageAccess(ctx context.Context, clientID, packageID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM package_access WHERE client_id = $1 AND package_id = $2)`,
		clientID, packageID).Scan(&ok)
	if err != nil {
		return false, infra.WrapPgErr(r.logger, "failed to check package access", err)
	}
	return ok, nil
}

// CountClientServices sums the units the client holds in live services of a
// package, the same measure the cart uses for its items.
func (r *CatalogReadStore) CountClientServices(ctx context.Context, clientID, packageID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(sum(qty), 0) FROM services
		WHERE client_id = $1 AND package_id = $2 AND status NOT IN ('cancelled', 'terminated')`,
		clientID, packageID).Scan(&n)
	if err != nil {
		return 0, infra.WrapPgErr(r.logger, "failed to count client services", err)
	}
	return n, nil
}

func (r *CatalogReadStore) loadRelations(ctx context.Context, pkg *catalog.Package) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, package_id, term, period, price, setup_fee, currency
		FROM pricings WHERE package_id = $1
		ORDER BY period, term`, pkg.ID)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to list pricings", err)
	}
	pricings, err := pgx.CollectRows(rows, scanPricing)
	if err != nil {
		return infra.WrapPgErr(r.logger, "failed to scan pricings", err)
	}
	pkg.Pricings = pricings

	if pkg.GroupIDs, err = r.ids(ctx, `SELECT group_id FROM package_groups WHERE package_id = $1`, pkg.ID); err != nil {
		return err
	}
	if pkg.AddonGroupIDs, err = r.ids(ctx, `SELECT group_id FROM package_addon_groups WHERE package_id = $1`, pkg.ID); err != nil {
		return err
	}
	return nil
}

func (r *CatalogReadStore) ids(ctx context.Context, query string, arg uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to list related ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, infra.WrapPgErr(r.logger, "failed to scan related ids", err)
	}
	return ids, nil
}

func scanPackage(row pgx.Row) (*catalog.Package, error) {
	var p catalog.Package
	var status string
	var qty, clientQty pgtype.Int4
	err := row.Scan(&p.ID, &p.Name, &p.Module, &status, &qty, &clientQty, &p.AffiliateExcluded, &p.OptionGroups)
	if err != nil {
		return nil, err
	}
	p.Status = catalog.PackageStatus(status)
	p.Qty = pgconv.IntPtrFromPgtype(qty)
	p.ClientQty = pgconv.IntPtrFromPgtype(clientQty)
	return &p, nil
}

func scanPricing(row pgx.CollectableRow) (catalog.Pricing, error) {
	var pr catalog.Pricing
	var period string
	var price, setup pgtype.Numeric
	if err := row.Scan(&pr.ID, &pr.PackageID, &pr.Term, &period, &price, &setup, &pr.Currency); err != nil {
		return catalog.Pricing{}, err
	}
	pr.Period = catalog.Period(period)

	var err error
	if pr.Price, err = pgconv.DecimalFromNumeric(price); err != nil {
		return catalog.Pricing{}, err
	}
	if pr.SetupFee, err = pgconv.DecimalFromNumeric(setup); err != nil {
		return catalog.Pricing{}, err
	}
	return pr, nil
}
