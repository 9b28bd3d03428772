package commands

import (
	"context"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/module"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

// ConfigRequest names the entry being configured. It is one of
// NewFromSelection, EditExisting or ResumeQueue.
type ConfigRequest interface {
	configRequest()
}

// NewFromSelection configures a package picked straight from the catalog.
type NewFromSelection struct {
	PricingID uuid.UUID
	GroupID   uuid.UUID
	Domain    string
}

// EditExisting reconfigures the cart item at ItemIndex.
type EditExisting struct {
	ItemIndex int
}

// ResumeQueue configures the queued entry at QueueIndex.
type ResumeQueue struct {
	QueueIndex int
}

func (NewFromSelection) configRequest() {}
func (EditExisting) configRequest()     {}
func (ResumeQueue) configRequest()      {}

type PrepareInput struct {
	FormLabel string
	ClientID  *uuid.UUID
	Request   ConfigRequest
	Ajax      bool
}

type SubmitInput struct {
	FormLabel string
	ClientID  *uuid.UUID
	Request   ConfigRequest
	// Nonce is the entry UUID the form was rendered for. Resubmitting an
	// entry that was already promoted is a no-op.
	Nonce   uuid.UUID
	Fields  map[string]string
	Options map[string]string
	// Addons replaces the entry's addons; nil keeps them.
	Addons []cart.Selection
	Qty    int
}

type PackageOptionsInput struct {
	PricingID uuid.UUID
	Selected  map[string]string
}

// ConfigView is everything needed to render the configuration form.
type ConfigView struct {
	Request     ConfigRequest
	Item        cart.Item
	Package     *catalog.Package
	Pricing     catalog.Pricing
	Group       *catalog.Group
	Fields      module.FieldSet
	AddonGroups []catalog.AddonGroup
	Options     []catalog.OptionState
}

func (v *ConfigView) skippable() bool {
	return len(v.Fields) == 0 && len(v.AddonGroups) == 0 && len(v.Options) == 0
}

// ConfigResult holds either a view to render or the step to continue with.
type ConfigResult struct {
	View *ConfigView
	Step *Step
}

type ConfigCommands interface {
	Prepare(ctx context.Context, sessionID string, in PrepareInput) (*ConfigResult, error)
	Submit(ctx context.Context, sessionID string, in SubmitInput) (*ConfigResult, error)
	PackageOptions(ctx context.Context, in PackageOptionsInput) ([]catalog.OptionState, map[string][]string, error)
}

type configCommandsImpl struct {
	uow       shared.UnitOfWork
	store     shared.CartStore
	validator *ItemValidator
	modules   *module.Registry
	retries   int
	logger    *slog.Logger
}

func NewConfigCommands(uow shared.UnitOfWork, store shared.CartStore, modules *module.Registry, settings Settings, logger *slog.Logger) ConfigCommands {
	return &configCommandsImpl{
		uow:       uow,
		store:     store,
		validator: NewItemValidator(uow.CommandReads()),
		modules:   modules,
		retries:   settings.CartRetries,
		logger:    logger,
	}
}

func (c *configCommandsImpl) Prepare(ctx context.Context, sessionID string, in PrepareInput) (*ConfigResult, error) {
	form, err := loadForm(ctx, c.uow.CommandReads(), in.FormLabel)
	if err != nil {
		return nil, err
	}

	var result *ConfigResult
	_, err = shared.MutateCart(ctx, c.store, sessionID, c.retries, func(st *cart.State) (bool, error) {
		result = nil

		var item cart.Item
		switch req := in.Request.(type) {
		case NewFromSelection:
			item = st.PrequeueItem(cart.Selection{PricingID: req.PricingID, GroupID: req.GroupID, Domain: req.Domain})
		case EditExisting:
			found, ok := st.GetItem(req.ItemIndex)
			if !ok {
				result = redirect(withNotice(Step{Kind: StepCart}, "That item is no longer in your cart."))
				return false, nil
			}
			item = found
		case ResumeQueue:
			found, ok := st.CheckQueue(req.QueueIndex)
			if !ok {
				result = redirect(nextStep(st, form))
				return false, nil
			}
			item = found
		default:
			return false, errs.New("unknown configuration request")
		}

		verdict, err := c.validator.Validate(ctx, ValidationInput{Form: form, ClientID: in.ClientID, State: st, Item: item})
		if err != nil {
			return c.rejectItem(st, form, in.Request, item, err, &result)
		}

		view, err := c.buildView(ctx, in.Request, item, verdict)
		if err != nil {
			return false, err
		}

		if in.Ajax || !view.skippable() {
			result = &ConfigResult{View: view}
			return false, nil
		}

		// Nothing to configure: move straight on.
		switch req := in.Request.(type) {
		case NewFromSelection:
			st.AddItem(item)
		case ResumeQueue:
			if _, err := st.Promote(req.QueueIndex, item); err != nil {
				return false, err
			}
		case EditExisting:
			result = &ConfigResult{View: view}
			return false, nil
		}
		result = redirect(nextStep(st, form))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *configCommandsImpl) Submit(ctx context.Context, sessionID string, in SubmitInput) (*ConfigResult, error) {
	form, err := loadForm(ctx, c.uow.CommandReads(), in.FormLabel)
	if err != nil {
		return nil, err
	}

	var result *ConfigResult
	_, err = shared.MutateCart(ctx, c.store, sessionID, c.retries, func(st *cart.State) (bool, error) {
		result = nil

		req := in.Request
		var base cart.Item
		switch r := req.(type) {
		case NewFromSelection:
			if in.Nonce != uuid.Nil {
				if _, _, ok := st.FindItem(in.Nonce); ok {
					result = redirect(nextStep(st, form))
					return false, nil
				}
			}
			base = st.PrequeueItem(cart.Selection{PricingID: r.PricingID, GroupID: r.GroupID, Domain: r.Domain})
			if in.Nonce != uuid.Nil {
				base.UUID = in.Nonce
			}
		case EditExisting:
			found, ok := st.GetItem(r.ItemIndex)
			if !ok || (in.Nonce != uuid.Nil && found.UUID != in.Nonce) {
				result = redirect(withNotice(Step{Kind: StepCart}, "That item is no longer in your cart."))
				return false, nil
			}
			base = found
		case ResumeQueue:
			idx, done := resolveQueueEntry(st, r.QueueIndex, in.Nonce)
			if done {
				// Already promoted by an earlier submit.
				result = redirect(nextStep(st, form))
				return false, nil
			}
			if idx < 0 {
				result = redirect(withNotice(nextStep(st, form), "That item is no longer waiting for configuration."))
				return false, nil
			}
			req = ResumeQueue{QueueIndex: idx}
			base, _ = st.CheckQueue(idx)
		default:
			return false, errs.New("unknown configuration request")
		}

		item := applySubmission(base, in)

		verdict, err := c.validator.Validate(ctx, ValidationInput{Form: form, ClientID: in.ClientID, State: st, Item: item})
		if err != nil {
			return c.rejectItem(st, form, req, item, err, &result)
		}
		pkg := verdict.Package

		verr := errs.NewValidationError()
		verr.Merge("", c.modules.ValidateService(pkg, item.Meta))
		verr.Merge("options", catalog.ValidateOptions(pkg.Options(), item.Options))
		addonEntries, err := c.resolveAddons(ctx, st, pkg, in.Addons, verr)
		if err != nil {
			return false, err
		}
		if verr.HasErrors() {
			return false, verr
		}
		item.Options = catalog.ApplyOptions(pkg.Options(), item.Options)

		switch r := req.(type) {
		case NewFromSelection:
			st.AddItem(item)
		case EditExisting:
			if err := st.UpdateItem(r.ItemIndex, item); err != nil {
				return false, err
			}
		case ResumeQueue:
			if _, err := st.Promote(r.QueueIndex, item); err != nil {
				return false, err
			}
		}
		if in.Addons != nil {
			if _, err := st.ReplaceAddons(item.UUID, addonEntries); err != nil {
				return false, err
			}
		}

		result = redirect(nextStep(st, form))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *configCommandsImpl) PackageOptions(ctx context.Context, in PackageOptionsInput) ([]catalog.OptionState, map[string][]string, error) {
	pkg, err := c.uow.CommandReads().PackageByPricingID(ctx, in.PricingID)
	if err != nil {
		return nil, nil, c.validator.lookupErr(err, ErrInvalidPricing)
	}
	options := pkg.Options()
	return catalog.EvaluateOptions(options, in.Selected), catalog.ValidateOptions(options, in.Selected), nil
}

// rejectItem handles an item that failed validation. Queued entries that
// fail are dequeued; items that can no longer be bought redirect instead
// of erroring.
func (c *configCommandsImpl) rejectItem(st *cart.State, form *shared.OrderFormSnapshot, req ConfigRequest, item cart.Item, err error, result **ConfigResult) (bool, error) {
	if !errs.Is(err, ErrInvalidItem) {
		return false, err
	}

	commit := false
	if r, ok := req.(ResumeQueue); ok {
		if _, derr := st.RemoveQueued(r.QueueIndex); derr == nil {
			commit = true
		}
	}

	if isGoneItem(err) {
		c.logger.Info("dropping unavailable item from order flow", "pricing_id", item.PricingID, "reason", err.Error())
		*result = redirect(withNotice(nextStep(st, form), "The selected package is no longer available."))
		return commit, nil
	}
	return commit, itemValidationError("", err)
}

func (c *configCommandsImpl) buildView(ctx context.Context, req ConfigRequest, item cart.Item, verdict *Verdict) (*ConfigView, error) {
	pkg := verdict.Package
	addonGroups, err := c.uow.CommandReads().AddonGroups(ctx, pkg.AddonGroupIDs)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &ConfigView{
		Request:     req,
		Item:        item,
		Package:     pkg,
		Pricing:     verdict.Pricing,
		Group:       verdict.Group,
		Fields:      c.modules.ClientAddFields(pkg, item.Meta),
		AddonGroups: addonGroups,
		Options:     catalog.EvaluateOptions(pkg.Options(), item.Options),
	}, nil
}

// resolveAddons checks each addon selection against the package's addon
// groups and shapes the accepted ones into queue entries.
func (c *configCommandsImpl) resolveAddons(ctx context.Context, st *cart.State, pkg *catalog.Package, sels []cart.Selection, verr *errs.ValidationError) ([]cart.Item, error) {
	if len(sels) == 0 {
		return nil, nil
	}
	groups, err := c.uow.CommandReads().AddonGroups(ctx, pkg.AddonGroupIDs)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	entries := make([]cart.Item, 0, len(sels))
	for i, sel := range sels {
		offered := false
		for _, g := range groups {
			if g.ID == sel.GroupID && g.Offers(sel.PricingID) {
				offered = true
				break
			}
		}
		if !offered {
			verr.Add("addons."+strconv.Itoa(i), "is not offered for this package")
			continue
		}
		entries = append(entries, st.PrequeueItem(sel))
	}
	return entries, nil
}

// resolveQueueEntry finds the queue entry a submit refers to. done reports
// that the nonce was already promoted into the cart.
func resolveQueueEntry(st *cart.State, index int, nonce uuid.UUID) (idx int, done bool) {
	if nonce == uuid.Nil {
		if _, ok := st.CheckQueue(index); ok {
			return index, false
		}
		return -1, false
	}
	pos, inQueue, ok := st.FindItem(nonce)
	switch {
	case !ok:
		return -1, false
	case !inQueue:
		return -1, true
	default:
		return pos, false
	}
}

func applySubmission(base cart.Item, in SubmitInput) cart.Item {
	item := base.Clone()
	if len(in.Fields) > 0 {
		meta := maps.Clone(item.Meta)
		if meta == nil {
			meta = map[string]string{}
		}
		for k, v := range in.Fields {
			meta[k] = strings.TrimSpace(v)
		}
		if d, ok := meta["domain"]; ok {
			meta["domain"] = strings.ToLower(d)
		}
		item.Meta = meta
	}
	if len(in.Options) > 0 {
		options := maps.Clone(item.Options)
		if options == nil {
			options = map[string]string{}
		}
		maps.Copy(options, in.Options)
		item.Options = options
	}
	if d, ok := item.Meta["domain"]; ok {
		item.Domain = strings.ToLower(d)
	}
	if in.Qty > 0 {
		item.Qty = in.Qty
	}
	return item
}

func redirect(s Step) *ConfigResult {
	return &ConfigResult{Step: &s}
}
