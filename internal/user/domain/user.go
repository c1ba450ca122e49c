package domain

import (
	"time"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

var userColumns = []string{
	"id", "organization_id", "email", "nombre", "role", "birth_date", "created_at", "last_login_at",
}

// UserSummary representa un usuario tal como lo devuelven las consultas.
// last_login_at no aparece si el usuario nunca ha iniciado sesión.
type UserSummary struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Nombre      string  `json:"nombre"`
	Role        string  `json:"role"`
	BirthDate   string  `json:"birth_date"`
	CreatedAt   string  `json:"created_at"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// Age calcula la edad del usuario en la fecha dada a partir de su fecha de nacimiento.
func (u UserSummary) Age(now time.Time) (int, error) {
	birth, err := sharedQuery.ParseTimestamp(u.BirthDate)
	if err != nil {
		return 0, err
	}
	now = now.UTC()
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years, nil
}

// UserEntity describe la consulta de usuarios: cualquier rol ve solo los de su organización.
func UserEntity() sharedQuery.Entity[UserSummary] {
	return sharedQuery.Entity[UserSummary]{
		Name:     "user",
		Source:   "users",
		IDColumn: "id",
		IDType:   sharedQuery.TypeUUID,
		Columns:  userColumns,
		Fields: []sharedQuery.Field{
			{Name: "nombre", Column: "nombre", Match: sharedQuery.MatchContains, Type: sharedQuery.TypeString, CaseInsensitive: true},
			{Name: "email", Column: "email", Match: sharedQuery.MatchEquals, Type: sharedQuery.TypeString},
			{Name: "role", Column: "role", Match: sharedQuery.MatchEquals, Type: sharedQuery.TypeString,
				Enum: []string{sharedDomain.RoleAdmin, sharedDomain.RoleMember}},
			{Name: "birth_date", Column: "birth_date", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeTimestamp},
			{Name: "created_at", Column: "created_at", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeTimestamp},
			{Name: "last_login_at", Column: "last_login_at", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeTimestamp, Nullable: true},
		},
		Sorts: []sharedQuery.SortField{
			{Name: "created_at", Column: "created_at"},
			{Name: "nombre", Column: "nombre", Default: sharedQuery.Asc},
			{Name: "email", Column: "email", Default: sharedQuery.Asc},
			{Name: "birth_date", Column: "birth_date"},
			{Name: "last_login_at", Column: "last_login_at"},
		},
		DefaultSort: "created_at",
		Scope: sharedQuery.ScopePolicy{
			Default: []sharedQuery.ScopeRule{{Column: "organization_id", Attribute: sharedDomain.AttrOrganizationID}},
		},
		SoftDeleteColumn:    "deleted_at",
		IncludeDeletedRoles: []string{sharedDomain.RoleAdmin},
		Paging:              sharedQuery.PagePolicy{DefaultLimit: 50, MaxLimit: 100, RejectOverLimit: true},
		Map:                 mapUserSummary,
	}
}

func mapUserSummary(row sharedQuery.Row) (UserSummary, error) {
	r := sharedQuery.NewRowReader(row)
	u := UserSummary{
		ID:          r.UUID("id"),
		Email:       r.String("email"),
		Nombre:      r.String("nombre"),
		Role:        r.String("role"),
		BirthDate:   r.Timestamp("birth_date"),
		CreatedAt:   r.Timestamp("created_at"),
		LastLoginAt: r.OptionalTimestamp("last_login_at"),
	}
	return u, r.Err()
}
