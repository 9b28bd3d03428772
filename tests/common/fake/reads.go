//go:build unit || e2e

package fake

import (
	"context"
	"sync"

	"storefront/internal/domain/affiliate"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/currency"
	"storefront/internal/infra"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type pair [2]uuid.UUID

// Reads is an in-memory shared.CommandReads.
type Reads struct {
	mu sync.Mutex

	Forms       map[string]*shared.OrderFormSnapshot
	Packages    map[uuid.UUID]*catalog.Package
	Groups      map[uuid.UUID]*catalog.Group
	AddonGroupM map[uuid.UUID]catalog.AddonGroup
	Access      map[pair]bool
	Services    map[pair]int
	Coupons     map[string]*shared.CouponSnapshot
	Currencies  map[string]*currency.Currency
	Clients     map[uuid.UUID]*shared.ClientSnapshot
	OrderCounts map[uuid.UUID]int
	Affiliates  map[string]*affiliate.Affiliate
	AffSettings map[uuid.UUID]affiliate.Settings
	Keys        map[pair]*shared.IdempotencyRecord

	// Err fails every lookup when set.
	Err error
}

func NewReads() *Reads {
	return &Reads{
		Forms:       map[string]*shared.OrderFormSnapshot{},
		Packages:    map[uuid.UUID]*catalog.Package{},
		Groups:      map[uuid.UUID]*catalog.Group{},
		AddonGroupM: map[uuid.UUID]catalog.AddonGroup{},
		Access:      map[pair]bool{},
		Services:    map[pair]int{},
		Coupons:     map[string]*shared.CouponSnapshot{},
		Currencies:  map[string]*currency.Currency{},
		Clients:     map[uuid.UUID]*shared.ClientSnapshot{},
		OrderCounts: map[uuid.UUID]int{},
		Affiliates:  map[string]*affiliate.Affiliate{},
		AffSettings: map[uuid.UUID]affiliate.Settings{},
		Keys:        map[pair]*shared.IdempotencyRecord{},
	}
}

func notFound() error {
	return infra.RepositoryError{Kind: infra.KindNotFound}
}

// Seeding helpers

func (r *Reads) AddForm(f *shared.OrderFormSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Forms[f.Label] = f
}

func (r *Reads) AddPackage(p *catalog.Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Packages[p.ID] = p
}

func (r *Reads) AddGroup(g *catalog.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Groups[g.ID] = g
}

func (r *Reads) AddAddonGroup(g catalog.AddonGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddonGroupM[g.ID] = g
	r.Groups[g.ID] = &g.Group
}

func (r *Reads) AddCurrency(c currency.Currency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Currencies[c.Code] = &c
}

func (r *Reads) AddCoupon(c *shared.CouponSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Coupons[c.Code] = c
}

func (r *Reads) AddClient(c *shared.ClientSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clients[c.ID] = c
}

func (r *Reads) AddAffiliate(a *affiliate.Affiliate, s affiliate.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Affiliates[a.Code] = a
	r.AffSettings[a.ID] = s
}

func (r *Reads) SetServices(clientID, packageID uuid.UUID, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Services[pair{clientID, packageID}] = n
}

func (r *Reads) GrantAccess(clientID, packageID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Access[pair{clientID, packageID}] = true
}

// shared.CommandReads

func (r *Reads) OrderFormByLabel(_ context.Context, label string) (*shared.OrderFormSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	f, ok := r.Forms[label]
	if !ok {
		return nil, notFound()
	}
	return f, nil
}

func (r *Reads) PackageByPricingID(_ context.Context, pricingID uuid.UUID) (*catalog.Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, p := range r.Packages {
		if _, ok := p.PricingIDs()[pricingID]; ok {
			return p, nil
		}
	}
	return nil, notFound()
}

func (r *Reads) GroupByID(_ context.Context, id uuid.UUID) (*catalog.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	g, ok := r.Groups[id]
	if !ok {
		return nil, notFound()
	}
	return g, nil
}

func (r *Reads) AddonGroups(_ context.Context, ids []uuid.UUID) ([]catalog.AddonGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]catalog.AddonGroup, 0, len(ids))
	for _, id := range ids {
		if g, ok := r.AddonGroupM[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *Reads) ClientHasPackageAccess(_ context.Context, clientID, packageID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	return r.Access[pair{clientID, packageID}], nil
}

func (r *Reads) CountClientServices(_ context.Context, clientID, packageID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return r.Services[pair{clientID, packageID}], nil
}

func (r *Reads) CouponByCode(_ context.Context, code string) (*shared.CouponSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.Coupons[code]
	if !ok {
		return nil, notFound()
	}
	cp := *c
	return &cp, nil
}

func (r *Reads) CurrencyByCode(_ context.Context, code string) (*currency.Currency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.Currencies[code]
	if !ok {
		return nil, notFound()
	}
	return c, nil
}

func (r *Reads) ClientByID(_ context.Context, id uuid.UUID) (*shared.ClientSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.Clients[id]
	if !ok {
		return nil, notFound()
	}
	return c, nil
}

func (r *Reads) ClientByEmail(_ context.Context, email string) (*shared.ClientSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, c := range r.Clients {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, notFound()
}

func (r *Reads) CountClientOrders(_ context.Context, clientID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return r.OrderCounts[clientID], nil
}

func (r *Reads) AffiliateByCode(_ context.Context, code string) (*affiliate.Affiliate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	a, ok := r.Affiliates[code]
	if !ok {
		return nil, notFound()
	}
	return a, nil
}

func (r *Reads) AffiliateSettings(_ context.Context, affiliateID uuid.UUID) (affiliate.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.AffSettings[affiliateID], nil
}

func (r *Reads) IdempotencyByKey(_ context.Context, key, clientID uuid.UUID) (*shared.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	rec, ok := r.Keys[pair{key, clientID}]
	if !ok {
		return nil, notFound()
	}
	cp := *rec
	return &cp, nil
}

var _ shared.CommandReads = (*Reads)(nil)
