package domain

import (
	"context"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// --- Puerto de lectura de Tasks ---
type TaskReader interface {
	QueryTasks(ctx context.Context, principal *sharedDomain.Principal, req sharedQuery.FilterRequest) (*sharedQuery.Page[TaskSummary], error)
	GetTask(ctx context.Context, principal *sharedDomain.Principal, id string) (TaskSummary, error)
}
