package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"

	"storefront/internal/domain/affiliate"
	"storefront/internal/domain/cart"
	"storefront/internal/domain/module"
	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/queries"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const checkoutEndpoint = "POST /api/order/:form/checkout"

type CheckoutInput struct {
	FormLabel      string
	ClientID       uuid.UUID
	IPAddress      string
	AffiliateCode  string
	IdempotencyKey uuid.UUID
}

// PaymentDue is set when the client still has to pay the invoice.
type PaymentDue struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Currency  string
}

type CheckoutResult struct {
	OrderID   uuid.UUID
	Status    string
	InvoiceID *uuid.UUID
	Currency  string
	Total     decimal.Decimal
	// Complete means nothing is left to pay or review.
	Complete   bool
	Payment    *PaymentDue
	IsReplayed bool
}

type CheckoutCommands interface {
	CreateOrder(ctx context.Context, sessionID string, in CheckoutInput) (*CheckoutResult, error)
}

type checkoutCommandsImpl struct {
	uow          shared.UnitOfWork
	store        shared.CartStore
	validator    *ItemValidator
	pricer       *shared.Pricer
	modules      *module.Registry
	orderQueries queries.OrderQueries
	settings     Settings
	clock        clock.Clock
	logger       *slog.Logger
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	store shared.CartStore,
	modules *module.Registry,
	orderQueries queries.OrderQueries,
	settings Settings,
	clock clock.Clock,
	logger *slog.Logger,
) CheckoutCommands {
	reads := uow.CommandReads()
	return &checkoutCommandsImpl{
		uow:          uow,
		store:        store,
		validator:    NewItemValidator(reads),
		pricer:       shared.NewPricer(reads),
		modules:      modules,
		orderQueries: orderQueries,
		settings:     settings,
		clock:        clock,
		logger:       logger,
	}
}

func (c *checkoutCommandsImpl) CreateOrder(ctx context.Context, sessionID string, in CheckoutInput) (*CheckoutResult, error) {
	if in.IdempotencyKey == uuid.Nil {
		return nil, ErrIdempotencyKeyRequired
	}
	form, err := loadForm(ctx, c.uow.CommandReads(), in.FormLabel)
	if err != nil {
		return nil, err
	}

	// A completed key replays even though its cart has been emptied since.
	rec, err := c.idempotencyRecord(ctx, in)
	if err != nil {
		return nil, err
	}
	if rec != nil && rec.Status == shared.IdempotencyCompleted {
		return c.replay(ctx, rec)
	}

	st, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, errs.Mark(err, ErrSessionUnavailable)
	}
	if st.IsEmptyCart() {
		return nil, ErrEmptyCart
	}
	if !st.IsEmptyQueue() {
		return nil, ErrPendingConfiguration
	}

	requestHash, err := calculateRequestHash(form.ID, st)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if prior, ok := st.PriorCheckout(in.IdempotencyKey, requestHash); ok {
		result, err := c.handlePriorCheckout(ctx, sessionID, in, prior)
		if result != nil || err != nil {
			return result, err
		}
	}
	inserted, err := c.claimKey(ctx, in, requestHash)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return c.handleExistingKey(ctx, in, requestHash)
	}

	// The mark is saved against the loaded version, so of two requests
	// checking out the same cart only one gets past this point.
	st.MarkCheckout(in.IdempotencyKey, requestHash)
	if err := c.store.Save(ctx, sessionID, st); err != nil {
		c.releaseKey(ctx, in)
		if errs.Is(err, shared.ErrCartConflict) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrSessionUnavailable)
	}

	result, err := c.materialize(ctx, sessionID, form, st, in)
	if err != nil {
		c.releaseKey(ctx, in)
		return nil, err
	}
	return result, nil
}

func (c *checkoutCommandsImpl) materialize(ctx context.Context, sessionID string, form *shared.OrderFormSnapshot, st *cart.State, in CheckoutInput) (*CheckoutResult, error) {
	reads := c.uow.CommandReads()
	now := c.clock.Now()

	client, err := reads.ClientByID(ctx, in.ClientID)
	if err != nil {
		return nil, shared.MarkNotFound(err, ErrClientNotFound)
	}
	if !client.IsActive {
		return nil, ErrClientNotFound
	}

	verr := errs.NewValidationError()
	for i, item := range st.Items {
		_, err := c.validator.Validate(ctx, ValidationInput{Form: form, ClientID: &in.ClientID, State: st, Item: item})
		if err == nil {
			continue
		}
		if !errs.Is(err, ErrInvalidItem) {
			return nil, err
		}
		verr.Merge("items."+strconv.Itoa(i), itemValidationError("", err).Fields)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	quote, err := c.pricer.Quote(ctx, st, c.settings.SessionCurrency(st.Currency, form.DefaultCurrency), form.AllowCoupons, now)
	if err != nil {
		return nil, err
	}
	for _, line := range quote.Lines {
		if line.Err != nil {
			verr.Add("items."+strconv.Itoa(line.Index)+".pricing_id", ErrInvalidPricing.Error())
		}
	}
	if quote.CouponErr != nil {
		verr.Add("coupon", couponErrorMessage(quote.CouponErr))
	}
	if verr.HasErrors() {
		return nil, verr
	}

	fraud := order.ThresholdScreener{Threshold: c.settings.ReviewThreshold}.
		Screen(quote.Total, quote.Currency, order.ParseFraudStatus(st.FraudStatus))
	if fraud.Status == order.FraudReject {
		c.recordFraud(ctx, sessionID, fraud)
		return nil, ErrFraudRejected
	}
	status := order.HoldPolicy{ManualReview: form.ManualReview, HoldUnverified: c.settings.HoldUnverified}.
		Decide(client.EmailVerified, fraud.Status)

	params := order.NewParams{
		ClientID:    client.ID,
		OrderFormID: form.ID,
		Currency:    quote.Currency,
		Lines:       c.buildLines(st, quote),
		Discount:    quote.Discount,
		IPAddress:   in.IPAddress,
		Status:      status,
		Fraud:       fraud,
		Now:         now,
	}
	if quote.Coupon != nil {
		id := quote.Coupon.ID()
		params.CouponID = &id
		params.CouponCode = quote.Coupon.Code().String()
	}
	o, err := order.New(params)
	if err != nil {
		return nil, err
	}
	inv := order.NewInvoice(o, now)

	payload, err := json.Marshal(order.NewCreatedEvent(o, inv, now))
	if err != nil {
		return nil, errs.Wrap(err, "marshal order event")
	}

	soldOut := -1
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Orders().Create(ctx, tx.DB(), o); err != nil {
			return err
		}
		for _, s := range stockUsage(o) {
			if err := tx.Packages().DecrementStock(ctx, tx.DB(), s.packageID, s.qty); err != nil {
				if infra.IsKind(err, infra.KindConflict) {
					soldOut = s.line
					return errs.Mark(err, ErrSoldOut)
				}
				return err
			}
		}
		if err := tx.Orders().CreateInvoice(ctx, tx.DB(), inv); err != nil {
			return err
		}
		if id := o.CouponID(); id != nil {
			if err := tx.Coupons().IncrementUsage(ctx, tx.DB(), *id); err != nil {
				if infra.IsKind(err, infra.KindConflict) {
					return errs.Mark(err, shared.ErrCouponRejected)
				}
				return err
			}
		}
		if err := tx.Notifications().CreateJob(ctx, tx.DB(), order.EventOrderCreated, c.settings.OrderTopic, payload, now); err != nil {
			return err
		}
		return tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), in.IdempotencyKey, in.ClientID, calculateIDHash(o.ID()), o.ID())
	})
	if err != nil {
		if errs.Is(err, shared.ErrCouponRejected) {
			verr.Add("coupon", shared.ErrCouponRejected.Error())
			return nil, verr
		}
		if errs.Is(err, ErrSoldOut) {
			verr.Add("items."+strconv.Itoa(soldOut)+".pricing_id", ErrSoldOut.Error())
			return nil, verr
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	c.logger.Info("order created",
		"order_id", o.ID(), "client_id", o.ClientID(), "status", o.Status(),
		"total", o.Totals().Total.StringFixed(2), "currency", o.Currency())

	c.clearCart(ctx, sessionID)
	c.recordReferral(ctx, o, in.AffiliateCode)

	result := &CheckoutResult{
		OrderID:   o.ID(),
		Status:    o.Status().String(),
		InvoiceID: &inv.ID,
		Currency:  o.Currency(),
		Total:     o.Totals().Total,
		Complete:  o.Status() == order.StatusComplete,
	}
	if !inv.IsPaid() {
		result.Payment = &PaymentDue{InvoiceID: inv.ID, Amount: inv.Total, Currency: inv.Currency}
	}
	return result, nil
}

type packageStock struct {
	packageID uuid.UUID
	qty       int
	// line is the first order line of the package.
	line int
}

// stockUsage totals the units each package loses to o, in line order.
func stockUsage(o *order.Order) []packageStock {
	var usage []packageStock
	seen := map[uuid.UUID]int{}
	for i, l := range o.Lines() {
		if j, ok := seen[l.PackageID]; ok {
			usage[j].qty += l.Qty
			continue
		}
		seen[l.PackageID] = len(usage)
		usage = append(usage, packageStock{packageID: l.PackageID, qty: l.Qty, line: i})
	}
	return usage
}

func (c *checkoutCommandsImpl) buildLines(st *cart.State, quote *shared.Quote) []order.Line {
	lines := make([]order.Line, 0, len(quote.Lines))
	for _, ql := range quote.Lines {
		item := ql.Item
		line := order.Line{
			ItemUUID:          item.UUID,
			PackageID:         ql.Package.ID,
			PricingID:         item.PricingID,
			GroupID:           item.GroupID,
			Name:              c.modules.ServiceName(ql.Package, item.Meta),
			Domain:            item.Domain,
			Meta:              item.Meta,
			Options:           item.Options,
			Qty:               item.Quantity(),
			UnitPrice:         ql.UnitPrice,
			SetupFee:          ql.SetupFee,
			AffiliateExcluded: ql.Package.AffiliateExcluded,
		}
		if parent, ok := st.ParentOf(item.UUID); ok {
			id := parent.UUID
			line.ParentItemUUID = &id
		}
		lines = append(lines, line)
	}
	return lines
}

func (c *checkoutCommandsImpl) idempotencyRecord(ctx context.Context, in CheckoutInput) (*shared.IdempotencyRecord, error) {
	rec, err := c.uow.CommandReads().IdempotencyByKey(ctx, in.IdempotencyKey, in.ClientID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	return rec, nil
}

func (c *checkoutCommandsImpl) claimKey(ctx context.Context, in CheckoutInput, requestHash string) (bool, error) {
	var inserted bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		inserted, err = tx.Idempotency().TryInsert(ctx, tx.DB(), in.IdempotencyKey, in.ClientID,
			checkoutEndpoint, requestHash, c.clock.Now().Add(c.settings.IdempotencyTTL))
		return err
	})
	if err != nil {
		return false, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	return inserted, nil
}

func (c *checkoutCommandsImpl) handleExistingKey(ctx context.Context, in CheckoutInput, requestHash string) (*CheckoutResult, error) {
	rec, err := c.idempotencyRecord(ctx, in)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// Released by a failed attempt between our insert and read.
		return nil, ErrIdempotencyInProgress
	}

	switch rec.Status {
	case shared.IdempotencyCompleted:
		return c.replay(ctx, rec)
	case shared.IdempotencyProcessing:
		if rec.RequestHash != requestHash {
			return nil, ErrDuplicateOrderRequest
		}
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.Mark(errs.New("invalid idempotency key status"), ErrIdempotencyCheckFailed)
	}
}

// handlePriorCheckout deals with a cart another key already checked out.
// A nil result and error means that attempt left nothing behind.
func (c *checkoutCommandsImpl) handlePriorCheckout(ctx context.Context, sessionID string, in CheckoutInput, prior cart.CheckoutMark) (*CheckoutResult, error) {
	rec, err := c.idempotencyRecord(ctx, CheckoutInput{IdempotencyKey: prior.Key, ClientID: in.ClientID})
	if err != nil || rec == nil {
		return nil, err
	}
	switch rec.Status {
	case shared.IdempotencyCompleted:
		c.logger.Warn("cart was already ordered", "session_id", sessionID, "order_id", rec.ResultOrderID)
		c.clearCart(ctx, sessionID)
		return c.replay(ctx, rec)
	case shared.IdempotencyProcessing:
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.Mark(errs.New("invalid idempotency key status"), ErrIdempotencyCheckFailed)
	}
}

func (c *checkoutCommandsImpl) replay(ctx context.Context, rec *shared.IdempotencyRecord) (*CheckoutResult, error) {
	if rec.ResultOrderID == nil {
		return nil, errs.Mark(errs.New("completed request missing result order ID"), ErrIdempotencyCheckFailed)
	}
	// System-level access: the key is already scoped to the client.
	view, err := c.orderQueries.GetByIDSystem(ctx, *rec.ResultOrderID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	result := &CheckoutResult{
		OrderID:    view.ID,
		Status:     view.Status,
		InvoiceID:  view.InvoiceID,
		Currency:   view.Currency,
		Total:      view.Total,
		Complete:   view.Status == order.StatusComplete.String(),
		IsReplayed: true,
	}
	if view.InvoiceID != nil && !view.InvoicePaid() {
		result.Payment = &PaymentDue{InvoiceID: *view.InvoiceID, Amount: view.Total, Currency: view.Currency}
	}
	return result, nil
}

func (c *checkoutCommandsImpl) releaseKey(ctx context.Context, in CheckoutInput) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Release(ctx, tx.DB(), in.IdempotencyKey, in.ClientID)
	})
	if err != nil {
		c.logger.Warn("failed to release idempotency key", "key", in.IdempotencyKey, "error", err.Error())
	}
}

// recordFraud keeps the verdict on the session so later attempts fail fast.
func (c *checkoutCommandsImpl) recordFraud(ctx context.Context, sessionID string, fraud order.FraudResult) {
	_, err := shared.MutateCart(ctx, c.store, sessionID, c.settings.CartRetries, func(st *cart.State) (bool, error) {
		st.FraudStatus = string(fraud.Status)
		st.FraudReport = fraud.Report
		return true, nil
	})
	if err != nil {
		c.logger.Warn("failed to record fraud verdict", "session_id", sessionID, "error", err.Error())
	}
}

// clearCart empties the session after the order committed. A failure here
// leaves a stale cart, and its checkout mark replays the order on retry.
func (c *checkoutCommandsImpl) clearCart(ctx context.Context, sessionID string) {
	_, err := shared.MutateCart(ctx, c.store, sessionID, c.settings.CartRetries, func(st *cart.State) (bool, error) {
		st.EmptyCart()
		st.SkipCheckout = false
		return true, nil
	})
	if err != nil {
		c.logger.Error("failed to empty cart after checkout", "session_id", sessionID, "error", err.Error())
	}
}

// recordReferral credits the referring affiliate. Every failure is logged
// and swallowed; the order is already placed.
func (c *checkoutCommandsImpl) recordReferral(ctx context.Context, o *order.Order, rawCode string) {
	code := affiliate.NormalizeCode(rawCode)
	if code == "" {
		return
	}
	reads := c.uow.CommandReads()
	log := c.logger.With("order_id", o.ID(), "affiliate_code", code)

	aff, err := reads.AffiliateByCode(ctx, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			log.Info("unknown affiliate code")
		} else {
			log.Warn("affiliate lookup failed", "error", err.Error())
		}
		return
	}
	settings, err := reads.AffiliateSettings(ctx, aff.ID)
	if err != nil {
		log.Warn("affiliate settings lookup failed", "error", err.Error())
		return
	}
	orders, err := reads.CountClientOrders(ctx, o.ClientID())
	if err != nil {
		log.Warn("order count failed", "error", err.Error())
		return
	}

	ref, err := affiliate.NewReferral(affiliate.ReferralInput{
		Affiliate:      *aff,
		Settings:       settings,
		OrderID:        o.ID(),
		PurchaserID:    o.ClientID(),
		Commissionable: o.CommissionableTotal(),
		Currency:       o.Currency(),
		PriorOrders:    max(orders-1, 0),
		Now:            c.clock.Now(),
	})
	if errs.Is(err, affiliate.ErrUnknownCommissionType) {
		log.Warn("referral not recorded", "affiliate_id", aff.ID, "error", err.Error())
		return
	}
	if err != nil {
		log.Info("referral not recorded", "reason", err.Error())
		return
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Referrals().Create(ctx, tx.DB(), ref)
	})
	if err != nil {
		log.Warn("failed to store referral", "error", err.Error())
		return
	}
	log.Info("referral recorded", "affiliate_id", aff.ID, "commission", ref.Commission.StringFixed(2))
}

type requestFingerprint struct {
	FormID   uuid.UUID   `json:"form_id"`
	Currency string      `json:"currency"`
	Coupon   string      `json:"coupon"`
	Items    []cart.Item `json:"items"`
}

// calculateRequestHash fingerprints what would be ordered, so a reused key
// with a different cart is detected.
func calculateRequestHash(formID uuid.UUID, st *cart.State) (string, error) {
	data, err := json.Marshal(requestFingerprint{
		FormID:   formID,
		Currency: st.Currency,
		Coupon:   st.Coupon,
		Items:    st.Items,
	})
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}

func couponErrorMessage(err error) string {
	for _, sentinel := range []error{shared.ErrCouponsDisabled, shared.ErrCouponNotFound, shared.ErrCouponRejected} {
		if errs.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "is invalid"
}
