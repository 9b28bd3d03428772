//go:build unit

package commands_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/currency"
	"storefront/internal/domain/module"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/jwt"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/shared"
	"storefront/tests/common/builder"
	"storefront/tests/common/fake"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const sessionID = "sess-1"

type fixture struct {
	reads *fake.Reads
	uow   *fake.UoW
	store *fake.CartStore
	clock *clock.MockClock

	form        *shared.OrderFormSnapshot
	hostGroup   *catalog.Group
	domainGroup *catalog.Group
	addonGroup  catalog.AddonGroup

	// hosting has an addon group, so it always needs configuring.
	hosting *catalog.Package
	// simple has nothing to configure.
	simple *catalog.Package
	domain *catalog.Package
	ssl    *catalog.Package

	client   *shared.ClientSnapshot
	settings commands.Settings

	cart     commands.CartCommands
	config   commands.ConfigCommands
	checkout commands.CheckoutCommands
	auth     commands.AuthCommands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		reads: fake.NewReads(),
		store: fake.NewCartStore(),
		clock: clock.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.uow = fake.NewUoW(f.reads)
	f.uow.Now = f.clock.Now

	f.hostGroup = builder.NewGroup("Hosting", catalog.GroupStandard)
	f.domainGroup = builder.NewGroup("Domains", catalog.GroupDomain)
	addonGroup := builder.NewGroup("Security", catalog.GroupAddon)

	f.ssl = builder.NewPackageBuilder(addonGroup.ID).WithName("SSL Certificate").WithPrice("5.00", "0").Build()
	f.addonGroup = catalog.AddonGroup{Group: *addonGroup, Packages: []catalog.Package{*f.ssl}}

	f.hosting = builder.NewPackageBuilder(f.hostGroup.ID).WithAddonGroups(addonGroup.ID).Build()
	f.simple = builder.NewPackageBuilder(f.hostGroup.ID).WithName("Backup Plan").WithPrice("3.00", "1.00").Build()
	f.domain = builder.NewPackageBuilder(f.domainGroup.ID).
		WithName("Domain Registration").
		WithModule(module.NameDomain).
		WithPrice("12.00", "0").
		AffiliateExcluded().
		Build()

	f.form = builder.NewOrderFormBuilder(f.hostGroup.ID, f.domainGroup.ID).Build()
	f.reads.AddForm(f.form)
	f.reads.AddGroup(f.hostGroup)
	f.reads.AddGroup(f.domainGroup)
	f.reads.AddAddonGroup(f.addonGroup)
	for _, p := range []*catalog.Package{f.hosting, f.simple, f.domain, f.ssl} {
		f.reads.AddPackage(p)
	}

	usd, err := currency.New("USD", decimal.NewFromInt(1), 2)
	require.NoError(t, err)
	eur, err := currency.New("EUR", decimal.RequireFromString("0.5"), 2)
	require.NoError(t, err)
	f.reads.AddCurrency(usd)
	f.reads.AddCurrency(eur)

	f.client = builder.NewClientBuilder().BuildSnapshot()
	f.reads.AddClient(f.client)

	f.settings = commands.Settings{
		CartRetries:     3,
		HoldUnverified:  true,
		ReviewThreshold: decimal.NewFromInt(1000),
		DefaultCurrency: "USD",
		IdempotencyTTL:  24 * time.Hour,
		OrderTopic:      "storefront.orders",
	}
	f.rebuild()
	return f
}

// rebuild recreates the commands after settings changed.
func (f *fixture) rebuild() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	modules := module.NewDefaultRegistry()
	f.cart = commands.NewCartCommands(f.uow, f.store, f.settings, f.clock, logger)
	f.config = commands.NewConfigCommands(f.uow, f.store, modules, f.settings, logger)
	f.checkout = commands.NewCheckoutCommands(f.uow, f.store, modules, fake.OrderQueries{UoW: f.uow}, f.settings, f.clock, logger)
	f.auth = commands.NewAuthCommands(f.uow, jwt.NewService("test-secret", time.Hour), f.clock, logger)
}

func (f *fixture) selection(p *catalog.Package, domain string) cart.Selection {
	return cart.Selection{PricingID: p.Pricings[0].ID, GroupID: p.GroupIDs[0], Domain: domain}
}

// item builds a configured cart item for p.
func (f *fixture) item(p *catalog.Package, domain string) cart.Item {
	st := cart.NewState()
	return st.PrequeueItem(f.selection(p, domain))
}

// seedCart stores a cart holding items.
func (f *fixture) seedCart(items ...cart.Item) *cart.State {
	st := cart.NewState()
	for _, it := range items {
		st.AddItem(it)
	}
	f.store.Put(sessionID, st)
	return st
}

func (f *fixture) clientID() *uuid.UUID {
	id := f.client.ID
	return &id
}

func decimalOf(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
