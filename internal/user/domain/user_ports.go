package domain

import (
	"context"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// ---------- Interfaces (Ports) ----------

// UserReader define las consultas de usuarios acotadas por principal.
type UserReader interface {
	QueryUsers(ctx context.Context, principal *sharedDomain.Principal, req sharedQuery.FilterRequest) (*sharedQuery.Page[UserSummary], error)

	// Debe devolver sharedDomain.ErrNotFound si no existe o queda fuera del scope.
	GetUser(ctx context.Context, principal *sharedDomain.Principal, id string) (UserSummary, error)
}
