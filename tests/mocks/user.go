package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	userDomain "github.com/davicafu/scopequery/internal/user/domain"
	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// MockUserReader simula el servicio de consulta de usuarios
type MockUserReader struct {
	mock.Mock
}

var _ userDomain.UserReader = (*MockUserReader)(nil)

func (m *MockUserReader) QueryUsers(ctx context.Context, principal *sharedDomain.Principal, req sharedQuery.FilterRequest) (*sharedQuery.Page[userDomain.UserSummary], error) {
	args := m.Called(ctx, principal, req)
	page, _ := args.Get(0).(*sharedQuery.Page[userDomain.UserSummary])
	return page, args.Error(1)
}

func (m *MockUserReader) GetUser(ctx context.Context, principal *sharedDomain.Principal, id string) (userDomain.UserSummary, error) {
	args := m.Called(ctx, principal, id)
	user, _ := args.Get(0).(userDomain.UserSummary)
	return user, args.Error(1)
}
