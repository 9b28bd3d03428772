package module

import (
	"strings"

	"storefront/internal/domain/catalog"
)

type noneModule struct{}

func (noneModule) Name() string { return NameNone }

func (noneModule) ClientAddFields(*catalog.Package, map[string]string) FieldSet { return nil }

func (noneModule) ServiceName(pkg *catalog.Package, _ map[string]string) string {
	return pkg.Name
}

// domainModule registers a domain name, so each service needs an FQDN.
type domainModule struct{}

func (domainModule) Name() string { return NameDomain }

func (domainModule) ClientAddFields(*catalog.Package, map[string]string) FieldSet {
	return FieldSet{
		{Name: "domain", Label: "Domain name", Type: FieldText, Rules: "required,fqdn,max=253"},
	}
}

func (domainModule) ServiceName(pkg *catalog.Package, vars map[string]string) string {
	if d := strings.ToLower(strings.TrimSpace(vars["domain"])); d != "" {
		return d
	}
	return pkg.Name
}
