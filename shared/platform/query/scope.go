package query

import (
	"fmt"

	"github.com/davicafu/scopequery/shared/domain"
)

// ScopeRule exige column = principal.Attribute(Attribute).
type ScopeRule struct {
	Column    string
	Attribute string
}

// ScopePolicy declara las reglas de scope por rol. Default aplica a los roles
// que no aparecen en ByRole; si Default está vacío esos roles no pueden consultar.
// Un rol declarado en ByRole con lista vacía no tiene restricción de scope.
type ScopePolicy struct {
	ByRole  map[string][]ScopeRule
	Default []ScopeRule
}

func (p ScopePolicy) rulesFor(role string) ([]ScopeRule, bool) {
	if rules, ok := p.ByRole[role]; ok {
		return rules, true
	}
	if len(p.Default) > 0 {
		return p.Default, true
	}
	return nil, false
}

func (p ScopePolicy) validate() error {
	if len(p.ByRole) == 0 && len(p.Default) == 0 {
		return fmt.Errorf("scope policy without rules")
	}
	check := func(rules []ScopeRule) error {
		for _, r := range rules {
			if !IsIdentifier(r.Column) {
				return fmt.Errorf("scope rule: invalid column %q", r.Column)
			}
			if r.Attribute == "" {
				return fmt.Errorf("scope rule on %s without attribute", r.Column)
			}
		}
		return nil
	}
	for _, rules := range p.ByRole {
		if err := check(rules); err != nil {
			return err
		}
	}
	return check(p.Default)
}

// ResolveScope deriva el fragmento obligatorio del predicado a partir del principal.
// Falla con Authorization si no hay principal, si el rol no está permitido o si
// falta un atributo exigido. Nunca toca el store.
func ResolveScope(principal *domain.Principal, policy ScopePolicy) ([]domain.Criterion, error) {
	if principal == nil || principal.ID == "" {
		return nil, domain.NewAuthorizationError("UNAUTHENTICATED", "an authenticated principal is required")
	}

	rules, ok := policy.rulesFor(principal.Role)
	if !ok {
		return nil, domain.NewAuthorizationError("ROLE_NOT_PERMITTED", "role is not permitted to query this resource")
	}

	scope := make([]domain.Criterion, 0, len(rules))
	for _, rule := range rules {
		value := principal.Attribute(rule.Attribute)
		if value == "" {
			return nil, domain.NewAuthorizationError("MISSING_SCOPE_ATTRIBUTE", "principal lacks a required scoping attribute")
		}
		scope = append(scope, domain.Criterion{Field: rule.Column, Op: domain.OpEq, Value: value})
	}
	return scope, nil
}
