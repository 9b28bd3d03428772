package commands

import (
	"storefront/internal/domain/cart"
	"storefront/internal/usecase/shared"
)

type StepKind string

const (
	StepConfigure StepKind = "configure"
	StepCart      StepKind = "cart"
	StepCheckout  StepKind = "checkout"
	StepRedirect  StepKind = "redirect"
	StepCatalog   StepKind = "catalog"
)

// Step tells the client where the order flow continues.
type Step struct {
	Kind        StepKind
	QueueIndex  int
	RedirectURL string
	// Notice explains a redirect the client did not ask for.
	Notice string
}

// nextStep drains the queue head first, then honours a custom order-form
// redirect, then skip_checkout, and finally falls back to the cart.
func nextStep(st *cart.State, form *shared.OrderFormSnapshot) Step {
	switch {
	case !st.IsEmptyQueue():
		return Step{Kind: StepConfigure, QueueIndex: 0}
	case form != nil && form.RedirectURL != "":
		return Step{Kind: StepRedirect, RedirectURL: form.RedirectURL}
	case st.SkipCheckout && !st.IsEmptyCart():
		return Step{Kind: StepCheckout}
	default:
		return Step{Kind: StepCart}
	}
}

func withNotice(s Step, notice string) Step {
	s.Notice = notice
	return s
}
