package domain

import "strings"

// Atributos de scoping que una regla puede exigir al principal.
const (
	AttrPrincipalID    = "principal_id"
	AttrTenantID       = "tenant_id"
	AttrOrganizationID = "organization_id"
	claimPrefix        = "claim:"
)

// Roles conocidos por las entidades del servicio.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Principal es el contexto de scope de una petición: se construye una vez a
// partir de la identidad verificada y no se modifica después.
type Principal struct {
	ID             string
	Role           string
	TenantID       string
	OrganizationID string
	claims         map[string]string
}

// NewPrincipal copia los claims extra para que el caller no pueda mutarlos luego.
func NewPrincipal(id, role, tenantID, organizationID string, claims map[string]string) *Principal {
	copied := make(map[string]string, len(claims))
	for k, v := range claims {
		copied[k] = v
	}
	return &Principal{
		ID:             id,
		Role:           role,
		TenantID:       tenantID,
		OrganizationID: organizationID,
		claims:         copied,
	}
}

// Claim devuelve un claim extra, "" si no existe.
func (p *Principal) Claim(name string) string {
	return p.claims[name]
}

// Attribute resuelve un atributo de scoping. "claim:<nombre>" lee de los claims extra.
func (p *Principal) Attribute(name string) string {
	switch name {
	case AttrPrincipalID:
		return p.ID
	case AttrTenantID:
		return p.TenantID
	case AttrOrganizationID:
		return p.OrganizationID
	}
	if strings.HasPrefix(name, claimPrefix) {
		return p.Claim(strings.TrimPrefix(name, claimPrefix))
	}
	return ""
}

// ClaimAttribute construye el nombre de atributo para un claim extra.
func ClaimAttribute(claim string) string {
	return claimPrefix + claim
}
