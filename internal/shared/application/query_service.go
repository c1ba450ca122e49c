package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// QueryService envuelve un motor de consulta con timeout, logs y observadores.
// Es la pieza común de los servicios de cada contexto (tareas, usuarios).
type QueryService[S any] struct {
	engine   *sharedQuery.Engine[S]
	observer QueryObserver
	timeout  time.Duration
	log      *zap.Logger
}

func NewQueryService[S any](engine *sharedQuery.Engine[S], observer QueryObserver, timeout time.Duration, log *zap.Logger) *QueryService[S] {
	if observer == nil {
		observer = Observers(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryService[S]{engine: engine, observer: observer, timeout: timeout, log: log}
}

// Query ejecuta la consulta paginada y notifica el resultado a los observadores.
func (s *QueryService[S]) Query(ctx context.Context, principal *sharedDomain.Principal, req sharedQuery.FilterRequest) (*sharedQuery.Page[S], error) {
	start := time.Now()
	evt := s.newEvent("query", principal)

	plan, err := s.engine.Plan(principal, req)
	if err != nil {
		s.finish(ctx, evt, start, err)
		return nil, err
	}
	evt.Predicate = plan.Statement.Predicate.String()
	evt.Sort = plan.Statement.Order[0].String()
	evt.Page = plan.Window.Page
	evt.Limit = plan.Window.Limit

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page, err := s.engine.Execute(ctx, plan)
	if err != nil {
		s.finish(ctx, evt, start, err)
		return nil, err
	}

	evt.Records = page.Pagination.Records
	evt.Returned = len(page.Data)
	s.finish(ctx, evt, start, nil)
	return page, nil
}

// Get busca un registro por id dentro del scope del principal.
func (s *QueryService[S]) Get(ctx context.Context, principal *sharedDomain.Principal, id string) (S, error) {
	start := time.Now()
	evt := s.newEvent("get", principal)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.engine.Get(ctx, principal, id)
	if err == nil {
		evt.Returned = 1
	}
	s.finish(ctx, evt, start, err)
	return out, err
}

func (s *QueryService[S]) newEvent(op string, principal *sharedDomain.Principal) QueryEvent {
	evt := QueryEvent{Entity: s.engine.Entity(), Operation: op}
	if principal != nil {
		evt.PrincipalID = principal.ID
		evt.Role = principal.Role
	}
	return evt
}

func (s *QueryService[S]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *QueryService[S]) finish(ctx context.Context, evt QueryEvent, start time.Time, err error) {
	evt.Duration = time.Since(start)
	evt.Outcome = OutcomeOK

	if err != nil {
		kind := sharedDomain.KindOf(err)
		evt.Outcome = string(kind)

		fields := []zap.Field{
			zap.String("entity", evt.Entity),
			zap.String("operation", evt.Operation),
			zap.String("principal_id", evt.PrincipalID),
			zap.Error(err),
		}
		switch kind {
		case sharedDomain.KindValidation, sharedDomain.KindAuthorization:
			s.log.Warn("Consulta rechazada", fields...)
		case sharedDomain.KindNotFound:
			s.log.Debug("Registro no encontrado", fields...)
		default:
			if errors.Is(err, context.Canceled) {
				evt.Outcome = "canceled"
			} else if kind == "" {
				evt.Outcome = "error"
			}
			s.log.Error("Fallo ejecutando consulta", fields...)
		}
	}

	// la auditoría sigue aunque el contexto del caller se haya cancelado
	s.observer.ObserveQuery(context.WithoutCancel(ctx), evt)
}
