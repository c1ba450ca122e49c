package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
	taskDomain "github.com/davicafu/scopequery/internal/task/domain"
	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// TaskService define los casos de uso de lectura de Task.
type TaskService struct {
	queries *sharedApp.QueryService[taskDomain.TaskSummary]
}

var _ taskDomain.TaskReader = (*TaskService)(nil)

// NewTaskService construye el motor de consultas de tareas sobre el store dado.
func NewTaskService(store sharedQuery.Store, observer sharedApp.QueryObserver, timeout time.Duration, log *zap.Logger) (*TaskService, error) {
	engine, err := sharedQuery.NewEngine(taskDomain.TaskEntity(), store, log)
	if err != nil {
		return nil, err
	}
	return &TaskService{queries: sharedApp.NewQueryService(engine, observer, timeout, log)}, nil
}

// QueryTasks devuelve la página de tareas visible para el principal.
func (s *TaskService) QueryTasks(ctx context.Context, principal *sharedDomain.Principal, req sharedQuery.FilterRequest) (*sharedQuery.Page[taskDomain.TaskSummary], error) {
	return s.queries.Query(ctx, principal, req)
}

// GetTask obtiene una tarea por id dentro del scope del principal.
func (s *TaskService) GetTask(ctx context.Context, principal *sharedDomain.Principal, id string) (taskDomain.TaskSummary, error) {
	return s.queries.Get(ctx, principal, id)
}
