package queries

import (
	"context"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/config"
	"storefront/internal/usecase/shared"
)

type CartQueries interface {
	// Summary prices the session cart in the session currency.
	Summary(ctx context.Context, sessionID, formLabel string) (*CartSummary, error)
}

type cartQueriesImpl struct {
	reads           shared.CommandReads
	store           shared.CartStore
	pricer          *shared.Pricer
	clock           clock.Clock
	defaultCurrency string
}

func NewCartQueries(reads shared.CommandReads, store shared.CartStore, clock clock.Clock, cfg config.Config) CartQueries {
	return &cartQueriesImpl{
		reads:           reads,
		store:           store,
		pricer:          shared.NewPricer(reads),
		clock:           clock,
		defaultCurrency: cfg.Order.DefaultCurrency,
	}
}

func (q *cartQueriesImpl) Summary(ctx context.Context, sessionID, formLabel string) (*CartSummary, error) {
	form, err := shared.LoadOrderForm(ctx, q.reads, formLabel)
	if err != nil {
		return nil, err
	}
	st, err := q.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	currencyCode := q.defaultCurrency
	switch {
	case st.Currency != "":
		currencyCode = st.Currency
	case form.DefaultCurrency != "":
		currencyCode = form.DefaultCurrency
	}

	quote, err := q.pricer.Quote(ctx, st, currencyCode, form.AllowCoupons, q.clock.Now())
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{
		Currency:     quote.Currency,
		Items:        make([]CartLineView, 0, len(quote.Lines)),
		Queue:        make([]QueueEntryView, 0, len(st.Queue)),
		Subtotal:     quote.Subtotal,
		Discount:     quote.Discount,
		Total:        quote.Total,
		Coupon:       st.Coupon,
		TempCoupon:   st.TempCoupon,
		SkipCheckout: st.SkipCheckout,
		CanCheckout:  !st.IsEmptyCart() && st.IsEmptyQueue() && quote.Valid(),
	}
	if quote.CouponErr != nil {
		summary.CouponError = quote.CouponErr.Error()
		summary.CanCheckout = false
	}

	for _, line := range quote.Lines {
		summary.Items = append(summary.Items, lineView(st, line))
	}
	for i, entry := range st.Queue {
		summary.Queue = append(summary.Queue, QueueEntryView{
			Index:     i,
			UUID:      entry.UUID,
			PricingID: entry.PricingID,
			GroupID:   entry.GroupID,
			Domain:    entry.Domain,
		})
	}
	return summary, nil
}

func lineView(st *cart.State, line shared.QuoteLine) CartLineView {
	v := CartLineView{
		Index:     line.Index,
		UUID:      line.Item.UUID,
		PricingID: line.Item.PricingID,
		Domain:    line.Item.Domain,
		Qty:       line.Item.Quantity(),
		Options:   line.Item.Options,
		UnitPrice: line.UnitPrice,
		SetupFee:  line.SetupFee,
		Subtotal:  line.Subtotal,
	}
	if parent, ok := st.ParentOf(line.Item.UUID); ok {
		id := parent.UUID
		v.ParentUUID = &id
	}
	if line.Err != nil {
		v.Error = "This package is no longer available."
		return v
	}
	pkgID := line.Package.ID
	v.PackageID = &pkgID
	v.Name = line.Package.Name
	v.Term = line.Pricing.Term
	v.Period = string(line.Pricing.Period)
	return v
}
