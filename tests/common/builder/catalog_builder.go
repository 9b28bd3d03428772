//go:build unit || e2e

package builder

import (
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/module"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PackageBuilder struct {
	pkg catalog.Package
}

// NewPackageBuilder starts an active, unlimited package in groupID with one
// monthly USD pricing of 10.00.
func NewPackageBuilder(groupID uuid.UUID) *PackageBuilder {
	id := uuid.New()
	return &PackageBuilder{pkg: catalog.Package{
		ID:       id,
		Name:     "Starter Hosting",
		Module:   module.NameNone,
		Status:   catalog.StatusActive,
		GroupIDs: []uuid.UUID{groupID},
		Pricings: []catalog.Pricing{{
			ID:        uuid.New(),
			PackageID: id,
			Term:      1,
			Period:    catalog.PeriodMonth,
			Price:     decimal.RequireFromString("10.00"),
			SetupFee:  decimal.Zero,
			Currency:  "USD",
		}},
	}}
}

func (b *PackageBuilder) WithName(name string) *PackageBuilder {
	b.pkg.Name = name
	return b
}

func (b *PackageBuilder) WithModule(name string) *PackageBuilder {
	b.pkg.Module = name
	return b
}

func (b *PackageBuilder) WithPrice(price, setup string) *PackageBuilder {
	b.pkg.Pricings[0].Price = decimal.RequireFromString(price)
	b.pkg.Pricings[0].SetupFee = decimal.RequireFromString(setup)
	return b
}

func (b *PackageBuilder) WithStatus(s catalog.PackageStatus) *PackageBuilder {
	b.pkg.Status = s
	return b
}

func (b *PackageBuilder) WithQty(n int) *PackageBuilder {
	b.pkg.Qty = &n
	return b
}

func (b *PackageBuilder) WithClientQty(n int) *PackageBuilder {
	b.pkg.ClientQty = &n
	return b
}

func (b *PackageBuilder) WithAddonGroups(ids ...uuid.UUID) *PackageBuilder {
	b.pkg.AddonGroupIDs = append(b.pkg.AddonGroupIDs, ids...)
	return b
}

func (b *PackageBuilder) WithOptions(options ...catalog.Option) *PackageBuilder {
	b.pkg.OptionGroups = append(b.pkg.OptionGroups, catalog.OptionGroup{Name: "Configuration", Options: options})
	return b
}

func (b *PackageBuilder) AffiliateExcluded() *PackageBuilder {
	b.pkg.AffiliateExcluded = true
	return b
}

func (b *PackageBuilder) Build() *catalog.Package {
	p := b.pkg
	return &p
}

// PricingID is the id of the first pricing.
func (b *PackageBuilder) PricingID() uuid.UUID {
	return b.pkg.Pricings[0].ID
}

type OrderFormBuilder struct {
	form shared.OrderFormSnapshot
}

func NewOrderFormBuilder(groupIDs ...uuid.UUID) *OrderFormBuilder {
	return &OrderFormBuilder{form: shared.OrderFormSnapshot{
		ID:              uuid.New(),
		Label:           "default",
		Name:            "Default order form",
		Active:          true,
		AllowCoupons:    true,
		DefaultCurrency: "USD",
		GroupIDs:        groupIDs,
	}}
}

func (b *OrderFormBuilder) WithLabel(label string) *OrderFormBuilder {
	b.form.Label = label
	return b
}

func (b *OrderFormBuilder) WithRedirect(url string) *OrderFormBuilder {
	b.form.RedirectURL = url
	return b
}

func (b *OrderFormBuilder) WithManualReview() *OrderFormBuilder {
	b.form.ManualReview = true
	return b
}

func (b *OrderFormBuilder) WithoutCoupons() *OrderFormBuilder {
	b.form.AllowCoupons = false
	return b
}

func (b *OrderFormBuilder) Build() *shared.OrderFormSnapshot {
	f := b.form
	return &f
}

func NewGroup(name string, kind catalog.GroupType) *catalog.Group {
	return &catalog.Group{ID: uuid.New(), Name: name, Type: kind}
}
