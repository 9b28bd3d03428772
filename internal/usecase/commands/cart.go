package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type AddToCartInput struct {
	FormLabel    string
	ClientID     *uuid.UUID
	Selections   []cart.Selection
	SkipCheckout bool
}

type CartCommands interface {
	// AddToCart queues selections for configuration; all or none are queued.
	AddToCart(ctx context.Context, sessionID string, in AddToCartInput) (*Step, error)
	RemoveQueued(ctx context.Context, sessionID string, index int) error
	RemoveItem(ctx context.Context, sessionID string, index int) error
	EmptyCart(ctx context.Context, sessionID string) error
	ApplyCoupon(ctx context.Context, sessionID, formLabel, code string) error
	RemoveCoupon(ctx context.Context, sessionID string) error
	SetCurrency(ctx context.Context, sessionID, code string) error
	ClearTempCoupon(ctx context.Context, sessionID string) error
}

type cartCommandsImpl struct {
	uow       shared.UnitOfWork
	store     shared.CartStore
	validator *ItemValidator
	pricer    *shared.Pricer
	clock     clock.Clock
	retries   int
	logger    *slog.Logger
}

func NewCartCommands(uow shared.UnitOfWork, store shared.CartStore, settings Settings, clock clock.Clock, logger *slog.Logger) CartCommands {
	reads := uow.CommandReads()
	return &cartCommandsImpl{
		uow:       uow,
		store:     store,
		validator: NewItemValidator(reads),
		pricer:    shared.NewPricer(reads),
		clock:     clock,
		retries:   settings.CartRetries,
		logger:    logger,
	}
}

func (c *cartCommandsImpl) AddToCart(ctx context.Context, sessionID string, in AddToCartInput) (*Step, error) {
	form, err := loadForm(ctx, c.uow.CommandReads(), in.FormLabel)
	if err != nil {
		return nil, err
	}
	if len(in.Selections) == 0 {
		verr := errs.NewValidationError()
		verr.Add("selections", "must contain at least one package")
		return nil, verr
	}

	var step Step
	_, err = c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		verr := errs.NewValidationError()
		for i, sel := range in.Selections {
			item := st.PrequeueItem(sel)
			if _, err := c.validator.Validate(ctx, ValidationInput{Form: form, ClientID: in.ClientID, State: st, Item: item}); err != nil {
				if !errs.Is(err, ErrInvalidItem) {
					return false, err
				}
				verr.Merge("selections."+strconv.Itoa(i), itemValidationError("", err).Fields)
				continue
			}
			st.Enqueue(item)
		}
		if verr.HasErrors() {
			return false, verr
		}
		if in.SkipCheckout {
			st.SkipCheckout = true
		}
		step = nextStep(st, form)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (c *cartCommandsImpl) RemoveQueued(ctx context.Context, sessionID string, index int) error {
	_, err := c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		if _, err := st.RemoveQueued(index); err != nil {
			return false, errs.Mark(err, ErrItemNotFound)
		}
		return true, nil
	})
	return err
}

func (c *cartCommandsImpl) RemoveItem(ctx context.Context, sessionID string, index int) error {
	_, err := c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		if _, err := st.RemoveItem(index); err != nil {
			return false, errs.Mark(err, ErrItemNotFound)
		}
		return true, nil
	})
	return err
}

func (c *cartCommandsImpl) EmptyCart(ctx context.Context, sessionID string) error {
	_, err := c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		st.EmptyCart()
		return true, nil
	})
	return err
}

// ApplyCoupon keeps the entered code as temp_coupon until it validates, so
// the form can show it back with the error.
func (c *cartCommandsImpl) ApplyCoupon(ctx context.Context, sessionID, formLabel, code string) error {
	form, err := loadForm(ctx, c.uow.CommandReads(), formLabel)
	if err != nil {
		return err
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	_, err = c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		st.TempCoupon = code
		cp, err := c.pricer.CheckCoupon(ctx, code, form.AllowCoupons, c.clock.Now())
		if err != nil {
			return true, err
		}
		st.Coupon = cp.Code().String()
		st.TempCoupon = ""
		return true, nil
	})
	return err
}

func (c *cartCommandsImpl) RemoveCoupon(ctx context.Context, sessionID string) error {
	_, err := c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		if st.Coupon == "" && st.TempCoupon == "" {
			return false, nil
		}
		st.Coupon = ""
		st.TempCoupon = ""
		return true, nil
	})
	return err
}

func (c *cartCommandsImpl) SetCurrency(ctx context.Context, sessionID, code string) error {
	cur, err := c.uow.CommandReads().CurrencyByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return shared.MarkNotFound(err, shared.ErrCurrencyNotFound)
	}
	_, err = c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		st.SetData(cart.KeyCurrency, cur.Code)
		return true, nil
	})
	return err
}

func (c *cartCommandsImpl) ClearTempCoupon(ctx context.Context, sessionID string) error {
	_, err := c.mutate(ctx, sessionID, func(st *cart.State) (bool, error) {
		if st.TempCoupon == "" {
			return false, nil
		}
		st.ClearTempCoupon()
		return true, nil
	})
	return err
}

func (c *cartCommandsImpl) mutate(ctx context.Context, sessionID string, fn shared.CartMutation) (*cart.State, error) {
	st, err := shared.MutateCart(ctx, c.store, sessionID, c.retries, fn)
	if err != nil && errs.Is(err, shared.ErrCartConflict) {
		c.logger.Warn("cart update kept conflicting", "session_id", sessionID)
	}
	return st, err
}

func loadForm(ctx context.Context, reads shared.CommandReads, label string) (*shared.OrderFormSnapshot, error) {
	return shared.LoadOrderForm(ctx, reads, label)
}
