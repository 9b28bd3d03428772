package catalog

import (
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

type OptionType string

const (
	OptionSelect   OptionType = "select"
	OptionCheckbox OptionType = "checkbox"
	OptionQuantity OptionType = "quantity"
	OptionText     OptionType = "text"
)

type ConditionAction string

const (
	ActionEnable  ConditionAction = "enable"
	ActionRequire ConditionAction = "require"
)

type ConditionOperator string

const (
	OperatorIn    ConditionOperator = "in"
	OperatorNotIn ConditionOperator = "not_in"
)

type OptionValue struct {
	Value string          `json:"value"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Min   int             `json:"min,omitempty"`
	Max   int             `json:"max,omitempty"`
}

// Condition makes the owning option enabled or required depending on the
// value selected for another option.
type Condition struct {
	Action   ConditionAction   `json:"action"`
	Option   string            `json:"option"`
	Operator ConditionOperator `json:"operator"`
	Values   []string          `json:"values"`
}

type Option struct {
	Name       string        `json:"name"`
	Label      string        `json:"label"`
	Type       OptionType    `json:"type"`
	Required   bool          `json:"required"`
	Values     []OptionValue `json:"values"`
	Conditions []Condition   `json:"conditions,omitempty"`
}

type OptionGroup struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// OptionState is an option after its conditions were evaluated against a selection.
type OptionState struct {
	Option
	Enabled  bool   `json:"enabled"`
	Require  bool   `json:"require"`
	Selected string `json:"selected,omitempty"`
}

func (c Condition) holds(value string) bool {
	in := slices.Contains(c.Values, value)
	if c.Operator == OperatorNotIn {
		return !in
	}
	return in
}

func (o Option) value(v string) (OptionValue, bool) {
	for _, ov := range o.Values {
		if ov.Value == v {
			return ov, true
		}
	}
	return OptionValue{}, false
}

// EvaluateOptions resolves which options are enabled and required for the
// given selection. Values of disabled options do not satisfy conditions, so
// evaluation repeats until nothing changes.
func EvaluateOptions(options []Option, selected map[string]string) []OptionState {
	enabled := make(map[string]bool, len(options))
	for _, o := range options {
		enabled[o.Name] = true
	}
	effective := func(name string) string {
		if !enabled[name] {
			return ""
		}
		return selected[name]
	}

	for pass := 0; pass <= len(options); pass++ {
		changed := false
		for _, o := range options {
			on := true
			for _, c := range o.Conditions {
				if c.Action == ActionEnable && !c.holds(effective(c.Option)) {
					on = false
					break
				}
			}
			if enabled[o.Name] != on {
				enabled[o.Name] = on
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	states := make([]OptionState, 0, len(options))
	for _, o := range options {
		st := OptionState{Option: o, Enabled: enabled[o.Name], Require: o.Required}
		for _, c := range o.Conditions {
			if c.Action == ActionRequire && c.holds(effective(c.Option)) {
				st.Require = true
			}
		}
		if st.Enabled {
			st.Selected = selected[o.Name]
		}
		states = append(states, st)
	}
	return states
}

// ValidateOptions returns field errors keyed by option name.
func ValidateOptions(options []Option, selected map[string]string) map[string][]string {
	fields := map[string][]string{}
	known := make(map[string]struct{}, len(options))

	for _, st := range EvaluateOptions(options, selected) {
		known[st.Name] = struct{}{}
		raw := selected[st.Name]
		switch {
		case !st.Enabled && raw != "":
			fields[st.Name] = append(fields[st.Name], "is not available with the current selection")
		case st.Enabled && st.Require && raw == "":
			fields[st.Name] = append(fields[st.Name], "is required")
		case st.Enabled && raw != "":
			if msg := st.checkValue(raw); msg != "" {
				fields[st.Name] = append(fields[st.Name], msg)
			}
		}
	}
	for name := range selected {
		if _, ok := known[name]; !ok {
			fields[name] = append(fields[name], "is not a valid option")
		}
	}
	return fields
}

func (o Option) checkValue(raw string) string {
	switch o.Type {
	case OptionSelect:
		if _, ok := o.value(raw); !ok {
			return "has an invalid value"
		}
	case OptionCheckbox:
		if raw != "0" && raw != "1" {
			return "has an invalid value"
		}
	case OptionQuantity:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return "must be a whole number"
		}
		if len(o.Values) > 0 {
			v := o.Values[0]
			if n < v.Min || (v.Max > 0 && n > v.Max) {
				return "is out of range"
			}
		}
	}
	return ""
}

// ApplyOptions keeps only the values of enabled options.
func ApplyOptions(options []Option, selected map[string]string) map[string]string {
	out := map[string]string{}
	for _, st := range EvaluateOptions(options, selected) {
		if st.Enabled && st.Selected != "" {
			out[st.Name] = st.Selected
		}
	}
	return out
}

// OptionsPrice sums the per-unit price added by the selected option values.
func OptionsPrice(options []Option, selected map[string]string) decimal.Decimal {
	total := decimal.Zero
	for _, st := range EvaluateOptions(options, selected) {
		if !st.Enabled || st.Selected == "" {
			continue
		}
		switch st.Type {
		case OptionSelect:
			if v, ok := st.value(st.Selected); ok {
				total = total.Add(v.Price)
			}
		case OptionCheckbox:
			if st.Selected == "1" && len(st.Values) > 0 {
				total = total.Add(st.Values[0].Price)
			}
		case OptionQuantity:
			if n, err := strconv.Atoi(st.Selected); err == nil && len(st.Values) > 0 {
				total = total.Add(st.Values[0].Price.Mul(decimal.NewFromInt(int64(n))))
			}
		case OptionText:
			if len(st.Values) > 0 {
				total = total.Add(st.Values[0].Price)
			}
		}
	}
	return total
}
