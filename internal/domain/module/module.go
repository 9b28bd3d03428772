// Package module holds the provisioning modules that decide which service
// fields a package asks for and how the resulting service is named.
package module

import (
	"strings"

	"storefront/internal/domain/catalog"

	"github.com/go-playground/validator/v10"
)

const (
	NameNone   = "none"
	NameDomain = "domain"
)

type FieldType string

const (
	FieldText   FieldType = "text"
	FieldSelect FieldType = "select"
)

// Field is one input a module needs before a service can be provisioned.
// Rules uses validator tag syntax, e.g. "required,fqdn".
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Rules   string    `json:"-"`
	Choices []string  `json:"choices,omitempty"`
}

type FieldSet []Field

func (fs FieldSet) Has(name string) bool {
	for _, f := range fs {
		if f.Name == name {
			return true
		}
	}
	return false
}

type Module interface {
	Name() string
	ClientAddFields(pkg *catalog.Package, vars map[string]string) FieldSet
	ServiceName(pkg *catalog.Package, vars map[string]string) string
}

type Registry struct {
	modules  map[string]Module
	validate *validator.Validate
}

func NewRegistry(modules ...Module) *Registry {
	r := &Registry{
		modules:  map[string]Module{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	r.Register(noneModule{})
	for _, m := range modules {
		r.Register(m)
	}
	return r
}

// NewDefaultRegistry registers the built-in modules.
func NewDefaultRegistry() *Registry {
	return NewRegistry(domainModule{})
}

func (r *Registry) Register(m Module) {
	r.modules[m.Name()] = m
}

// Get falls back to the none module for unknown names.
func (r *Registry) Get(name string) Module {
	if m, ok := r.modules[name]; ok {
		return m
	}
	return r.modules[NameNone]
}

func (r *Registry) ClientAddFields(pkg *catalog.Package, vars map[string]string) FieldSet {
	return r.Get(pkg.Module).ClientAddFields(pkg, vars)
}

func (r *Registry) ServiceName(pkg *catalog.Package, vars map[string]string) string {
	return r.Get(pkg.Module).ServiceName(pkg, vars)
}

// ValidateService checks vars against the module's field rules and returns
// field errors keyed by field name.
func (r *Registry) ValidateService(pkg *catalog.Package, vars map[string]string) map[string][]string {
	fields := map[string][]string{}
	for _, f := range r.ClientAddFields(pkg, vars) {
		value := strings.TrimSpace(vars[f.Name])
		if f.Type == FieldSelect && value != "" && !contains(f.Choices, value) {
			fields[f.Name] = append(fields[f.Name], "has an invalid value")
			continue
		}
		if f.Rules == "" {
			continue
		}
		if err := r.validate.Var(value, f.Rules); err != nil {
			fields[f.Name] = append(fields[f.Name], messages(err)...)
		}
	}
	return fields
}

func messages(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"is invalid"}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, "is required")
		case "fqdn":
			out = append(out, "must be a valid domain name")
		case "max":
			out = append(out, "must be at most "+fe.Param()+" characters")
		case "hostname", "hostname_rfc1123":
			out = append(out, "must be a valid hostname")
		default:
			out = append(out, "is invalid")
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
