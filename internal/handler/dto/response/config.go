package response

import (
	"storefront/internal/domain/catalog"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

// ConfigResponse carries either a form to render or the next step.
type ConfigResponse struct {
	View *ConfigViewResponse `json:"view,omitempty"`
	Step *StepResponse       `json:"step,omitempty"`
}

type ConfigViewResponse struct {
	Mode        string                `json:"mode"`
	Index       *int                  `json:"index,omitempty"`
	Nonce       uuid.UUID             `json:"nonce"`
	Domain      string                `json:"domain,omitempty"`
	Qty         int                   `json:"qty"`
	Meta        map[string]string     `json:"meta,omitempty"`
	Package     PackageResponse       `json:"package"`
	Pricing     PricingResponse       `json:"pricing"`
	Group       *GroupResponse        `json:"group,omitempty"`
	Fields      []FieldResponse       `json:"fields"`
	AddonGroups []AddonGroupResponse  `json:"addon_groups"`
	Options     []OptionStateResponse `json:"options"`
}

type PackageResponse struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Module   string            `json:"module"`
	Pricings []PricingResponse `json:"pricings,omitempty"`
}

type PricingResponse struct {
	ID       uuid.UUID `json:"id"`
	Term     int       `json:"term"`
	Period   string    `json:"period"`
	Price    string    `json:"price"`
	SetupFee string    `json:"setup_fee"`
	Currency string    `json:"currency"`
}

type GroupResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type string    `json:"type"`
}

type FieldResponse struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Choices []string `json:"choices,omitempty"`
}

type AddonGroupResponse struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Packages []PackageResponse `json:"packages"`
}

type OptionValueResponse struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type OptionStateResponse struct {
	Name     string                `json:"name"`
	Label    string                `json:"label"`
	Type     string                `json:"type"`
	Values   []OptionValueResponse `json:"values"`
	Enabled  bool                  `json:"enabled"`
	Required bool                  `json:"required"`
	Selected string                `json:"selected,omitempty"`
}

func FromConfigResult(r *commands.ConfigResult) (*ConfigResponse, error) {
	if r.View == nil {
		step := commands.Step{Kind: commands.StepCart}
		if r.Step != nil {
			step = *r.Step
		}
		return &ConfigResponse{Step: FromStep(step)}, nil
	}
	view, err := FromConfigView(r.View)
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{View: view}, nil
}

func FromConfigView(v *commands.ConfigView) (*ConfigViewResponse, error) {
	res := &ConfigViewResponse{
		Nonce:  v.Item.UUID,
		Domain: v.Item.Domain,
		Qty:    v.Item.Qty,
		Meta:   v.Item.Meta,
	}
	switch req := v.Request.(type) {
	case commands.NewFromSelection:
		res.Mode = "new"
	case commands.EditExisting:
		res.Mode = "edit"
		res.Index = &req.ItemIndex
	case commands.ResumeQueue:
		res.Mode = "queue"
		res.Index = &req.QueueIndex
	}

	if err := copyInto(&res.Package, v.Package); err != nil {
		return nil, err
	}
	// The configured package only needs the chosen pricing.
	res.Package.Pricings = nil
	if err := copyInto(&res.Pricing, &v.Pricing); err != nil {
		return nil, err
	}
	if v.Group != nil {
		res.Group = &GroupResponse{ID: v.Group.ID, Name: v.Group.Name, Type: string(v.Group.Type)}
	}

	res.Fields = make([]FieldResponse, 0, len(v.Fields))
	if err := copyInto(&res.Fields, v.Fields); err != nil {
		return nil, err
	}

	res.AddonGroups = make([]AddonGroupResponse, len(v.AddonGroups))
	for i, g := range v.AddonGroups {
		res.AddonGroups[i] = AddonGroupResponse{ID: g.ID, Name: g.Name, Packages: make([]PackageResponse, len(g.Packages))}
		for j := range g.Packages {
			if err := copyInto(&res.AddonGroups[i].Packages[j], &g.Packages[j]); err != nil {
				return nil, err
			}
		}
	}

	res.Options = FromOptionStates(v.Options)
	return res, nil
}

func FromOptionStates(states []catalog.OptionState) []OptionStateResponse {
	out := make([]OptionStateResponse, len(states))
	for i, s := range states {
		values := make([]OptionValueResponse, len(s.Values))
		for j, val := range s.Values {
			values[j] = OptionValueResponse{Value: val.Value, Name: val.Name, Price: Money(val.Price)}
		}
		out[i] = OptionStateResponse{
			Name:     s.Name,
			Label:    s.Label,
			Type:     string(s.Type),
			Values:   values,
			Enabled:  s.Enabled,
			Required: s.Require,
			Selected: s.Selected,
		}
	}
	return out
}

type PackageOptionsResponse struct {
	Options []OptionStateResponse `json:"options"`
	Errors  map[string][]string   `json:"errors,omitempty"`
}
