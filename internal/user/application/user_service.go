package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
	"github.com/davicafu/scopequery/internal/user/domain"
	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// UserService define los casos de uso de consulta de User.
type UserService struct {
	queries *sharedApp.QueryService[domain.UserSummary]
}

var _ domain.UserReader = (*UserService)(nil)

// NewUserService constructor
func NewUserService(store sharedQuery.Store, observer sharedApp.QueryObserver, timeout time.Duration, log *zap.Logger) (*UserService, error) {
	engine, err := sharedQuery.NewEngine(domain.UserEntity(), store, log)
	if err != nil {
		return nil, err
	}
	return &UserService{queries: sharedApp.NewQueryService(engine, observer, timeout, log)}, nil
}

func (s *UserService) QueryUsers(ctx context.Context, principal *sharedDomain.Principal, req sharedQuery.FilterRequest) (*sharedQuery.Page[domain.UserSummary], error) {
	return s.queries.Query(ctx, principal, req)
}

func (s *UserService) GetUser(ctx context.Context, principal *sharedDomain.Principal, id string) (domain.UserSummary, error) {
	return s.queries.Get(ctx, principal, id)
}
