package commands

import (
	"context"
	"slices"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/module"
	"storefront/internal/infra"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type ValidationInput struct {
	Form     *shared.OrderFormSnapshot
	ClientID *uuid.UUID
	// State supplies the other cart entries for duplicate and limit checks.
	State *cart.State
	Item  cart.Item
}

// Verdict carries the catalog records resolved while validating.
type Verdict struct {
	Package *catalog.Package
	Pricing catalog.Pricing
	Group   *catalog.Group
}

// ItemValidator decides whether an item may be bought. It never mutates state.
type ItemValidator struct {
	reads shared.CommandReads
}

func NewItemValidator(reads shared.CommandReads) *ItemValidator {
	return &ItemValidator{reads: reads}
}

func (v *ItemValidator) IsValidItem(ctx context.Context, in ValidationInput) bool {
	_, err := v.Validate(ctx, in)
	return err == nil
}

func (v *ItemValidator) Validate(ctx context.Context, in ValidationInput) (*Verdict, error) {
	item := in.Item

	pkg, err := v.reads.PackageByPricingID(ctx, item.PricingID)
	if err != nil {
		return nil, v.lookupErr(err, ErrInvalidPricing)
	}
	pricing, err := pkg.PricingByID(item.PricingID)
	if err != nil {
		return nil, invalid(ErrInvalidPricing)
	}
	if err := pricing.Validate(); err != nil {
		return nil, invalid(ErrInvalidPricing)
	}

	group, err := v.reads.GroupByID(ctx, item.GroupID)
	if err != nil {
		return nil, v.lookupErr(err, ErrGroupNotOffered)
	}
	if !pkg.InGroup(group.ID) {
		return nil, invalid(ErrGroupNotOffered)
	}
	offered, err := v.groupOffered(ctx, in, group.ID)
	if err != nil {
		return nil, err
	}
	if !offered {
		return nil, invalid(ErrGroupNotOffered)
	}

	if !pkg.IsActive() {
		return nil, invalid(ErrPackageUnavailable)
	}
	if pkg.IsRestricted() {
		if in.ClientID == nil {
			return nil, invalid(ErrPackageUnavailable)
		}
		ok, err := v.reads.ClientHasPackageAccess(ctx, *in.ClientID, pkg.ID)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !ok {
			return nil, invalid(ErrPackageUnavailable)
		}
	}

	if pkg.SoldOut() || (pkg.Qty != nil && item.Quantity() > *pkg.Qty) {
		return nil, invalid(ErrSoldOut)
	}

	if pkg.ClientQty != nil {
		held := 0
		if in.ClientID != nil {
			held, err = v.reads.CountClientServices(ctx, *in.ClientID, pkg.ID)
			if err != nil {
				return nil, errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		if in.State != nil {
			held += in.State.CountPricings(pkg.PricingIDs(), item.UUID)
		}
		if pkg.ExceedsClientLimit(held, item.Quantity()) {
			return nil, invalid(ErrClientLimitReached)
		}
	}

	if (group.IsDomain() || pkg.Module == module.NameDomain) && in.State != nil &&
		in.State.DuplicateDomain(item.Domain, item.UUID) {
		return nil, invalid(ErrDuplicateDomain)
	}

	return &Verdict{Package: pkg, Pricing: pricing, Group: group}, nil
}

// groupOffered accepts groups listed on the order form, and addon groups of
// the package the item is attached to.
func (v *ItemValidator) groupOffered(ctx context.Context, in ValidationInput, groupID uuid.UUID) (bool, error) {
	if in.Form == nil || in.Form.HasGroup(groupID) {
		return true, nil
	}
	if in.State == nil {
		return false, nil
	}
	parent, ok := in.State.ParentOf(in.Item.UUID)
	if !ok {
		return false, nil
	}
	parentPkg, err := v.reads.PackageByPricingID(ctx, parent.PricingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return false, nil
		}
		return false, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return slices.Contains(parentPkg.AddonGroupIDs, groupID), nil
}

func (v *ItemValidator) lookupErr(err, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return invalid(sentinel)
	}
	return errs.Mark(err, ErrDatabaseOperationFailed)
}

func invalid(sentinel error) error {
	return errs.Mark(sentinel, ErrInvalidItem)
}
