package query

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/davicafu/scopequery/shared/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entity describe un tipo de registro consultable: dónde vive, qué se puede
// filtrar y ordenar, cómo se acota por principal y cómo se proyecta cada fila.
type Entity[S any] struct {
	Name     string
	Source   string
	IDColumn string
	IDType   FieldType
	Columns  []string

	Fields      []Field
	Sorts       []SortField
	DefaultSort string
	Scope       ScopePolicy

	// SoftDeleteColumn vacío significa que la entidad no tiene borrado lógico.
	SoftDeleteColumn    string
	IncludeDeletedRoles []string

	Paging PagePolicy
	Map    func(Row) (S, error)
}

func (e Entity[S]) validate() error {
	if e.Name == "" {
		return errors.New("entity without name")
	}
	if e.Map == nil {
		return fmt.Errorf("entity %s: missing row mapper", e.Name)
	}
	for _, id := range append([]string{e.Source, e.IDColumn}, e.Columns...) {
		if !IsIdentifier(id) {
			return fmt.Errorf("entity %s: invalid identifier %q", e.Name, id)
		}
	}
	if e.SoftDeleteColumn != "" && !IsIdentifier(e.SoftDeleteColumn) {
		return fmt.Errorf("entity %s: invalid soft delete column %q", e.Name, e.SoftDeleteColumn)
	}
	seen := make(map[string]struct{}, len(e.Fields))
	for _, f := range e.Fields {
		if err := f.validate(); err != nil {
			return fmt.Errorf("entity %s: %w", e.Name, err)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("entity %s: duplicated field %s", e.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	for _, s := range e.Sorts {
		if !IsIdentifier(s.Column) {
			return fmt.Errorf("entity %s: invalid sort column %q", e.Name, s.Column)
		}
		if s.Default != "" && s.Default != Asc && s.Default != Desc {
			return fmt.Errorf("entity %s: invalid sort direction %q", e.Name, s.Default)
		}
	}
	if _, err := ResolveSort("", e.Sorts, e.DefaultSort); err != nil {
		return fmt.Errorf("entity %s: %w", e.Name, err)
	}
	if err := e.Scope.validate(); err != nil {
		return fmt.Errorf("entity %s: %w", e.Name, err)
	}
	return e.Paging.validate()
}

// Page es el envelope de salida. Data nunca es nil para que se serialice como [].
type Page[S any] struct {
	Pagination PageInfo `json:"pagination"`
	Data       []S      `json:"data"`
}

// Plan es la consulta resuelta antes de tocar el store.
type Plan struct {
	Statement Statement
	Window    Window
}

// Engine ejecuta consultas acotadas, filtradas y paginadas sobre una entidad.
// No guarda estado entre peticiones; es seguro para uso concurrente.
type Engine[S any] struct {
	entity Entity[S]
	store  Store
	logger *zap.Logger
}

func NewEngine[S any](entity Entity[S], store Store, logger *zap.Logger) (*Engine[S], error) {
	if store == nil {
		return nil, errors.New("query engine requires a store")
	}
	if err := entity.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine[S]{entity: entity, store: store, logger: logger}, nil
}

func (e *Engine[S]) Entity() string { return e.entity.Name }

// Plan resuelve scope, predicado, orden y ventana. Cualquier fallo aquí ocurre
// antes de acceder al store.
func (e *Engine[S]) Plan(principal *domain.Principal, req FilterRequest) (Plan, error) {
	scope, err := e.mandatoryScope(principal, req.IncludeDeleted)
	if err != nil {
		return Plan{}, err
	}

	pred, err := BuildPredicate(scope, e.entity.Fields, req)
	if err != nil {
		return Plan{}, err
	}

	sort, err := ResolveSort(req.Sort, e.entity.Sorts, e.entity.DefaultSort)
	if err != nil {
		return Plan{}, err
	}
	order := []SortSpec{sort}
	if sort.Column != e.entity.IDColumn {
		// desempate por id para que la paginación sea determinista
		order = append(order, SortSpec{Field: e.entity.IDColumn, Column: e.entity.IDColumn, Direction: Asc})
	}

	window, err := ResolveWindow(req.Page, req.Limit, e.entity.Paging)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Statement: Statement{
			Source:    e.entity.Source,
			Columns:   e.entity.Columns,
			Predicate: pred,
			Order:     order,
			Offset:    window.Offset,
			Limit:     window.Limit,
		},
		Window: window,
	}, nil
}

// Execute lanza exactamente dos operaciones: Count y Fetch con el mismo predicado.
//
// Entre ambas no hay aislamiento: una escritura concurrente puede dejar
// records ligeramente desfasado respecto a data. Es una carrera conocida y no fatal.
// Ante cualquier fallo del store no se devuelve un envelope parcial.
func (e *Engine[S]) Execute(ctx context.Context, plan Plan) (*Page[S], error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapStoreFailure(err)
	}

	countStmt := plan.Statement
	countStmt.Order, countStmt.Offset, countStmt.Limit = nil, 0, 0

	total, err := e.store.Count(ctx, countStmt)
	if err != nil {
		e.logger.Error("Error contando registros", zap.String("entity", e.entity.Name), zap.Error(err))
		return nil, domain.WrapStoreFailure(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, domain.WrapStoreFailure(err)
	}

	rows, err := e.store.Fetch(ctx, plan.Statement)
	if err != nil {
		e.logger.Error("Error obteniendo registros", zap.String("entity", e.entity.Name), zap.Error(err))
		return nil, domain.WrapStoreFailure(err)
	}
	if len(rows) > plan.Window.Limit {
		rows = rows[:plan.Window.Limit]
	}

	data, err := e.mapRows(rows)
	if err != nil {
		return nil, err
	}

	return &Page[S]{Pagination: plan.Window.Info(total), Data: data}, nil
}

// Query es la operación completa: plan + ejecución.
func (e *Engine[S]) Query(ctx context.Context, principal *domain.Principal, req FilterRequest) (*Page[S], error) {
	plan, err := e.Plan(principal, req)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Ejecutando consulta",
		zap.String("entity", e.entity.Name),
		zap.String("principal_id", principal.ID),
		zap.String("role", principal.Role),
		zap.Stringer("predicate", plan.Statement.Predicate),
		zap.Stringer("sort", plan.Statement.Order[0]),
		zap.Int("page", plan.Window.Page),
		zap.Int("limit", plan.Window.Limit),
	)

	return e.Execute(ctx, plan)
}

// Get busca un único registro con el mismo scope y borrado lógico que Query.
// Tanto si no existe como si queda fuera del scope devuelve domain.ErrNotFound.
func (e *Engine[S]) Get(ctx context.Context, principal *domain.Principal, id string) (S, error) {
	var zero S

	scope, err := e.mandatoryScope(principal, false)
	if err != nil {
		return zero, err
	}

	idValue, ok := e.parseID(id)
	if !ok {
		return zero, domain.ErrNotFound
	}

	if err := ctx.Err(); err != nil {
		return zero, domain.WrapStoreFailure(err)
	}

	stmt := Statement{
		Source:  e.entity.Source,
		Columns: e.entity.Columns,
		Predicate: domain.Predicate{
			Scope:   scope,
			Filters: []domain.Criterion{{Field: e.entity.IDColumn, Op: domain.OpEq, Value: idValue}},
		},
		Limit: 1,
	}

	rows, err := e.store.Fetch(ctx, stmt)
	if err != nil {
		e.logger.Error("Error obteniendo registro", zap.String("entity", e.entity.Name), zap.Error(err))
		return zero, domain.WrapStoreFailure(err)
	}
	if len(rows) == 0 {
		return zero, domain.ErrNotFound
	}

	out, err := e.entity.Map(rows[0])
	if err != nil {
		return zero, mappingFailure(err)
	}
	return out, nil
}

// mandatoryScope combina el scope del principal con el filtro de borrado lógico.
func (e *Engine[S]) mandatoryScope(principal *domain.Principal, includeDeleted bool) ([]domain.Criterion, error) {
	scope, err := ResolveScope(principal, e.entity.Scope)
	if err != nil {
		return nil, err
	}

	if e.entity.SoftDeleteColumn == "" {
		return scope, nil
	}
	if includeDeleted {
		if !slices.Contains(e.entity.IncludeDeletedRoles, principal.Role) {
			return nil, domain.NewAuthorizationError("INCLUDE_DELETED_FORBIDDEN", "role is not permitted to include deleted records")
		}
		return scope, nil
	}
	return append(scope, domain.Criterion{Field: e.entity.SoftDeleteColumn, Op: domain.OpIsNull}), nil
}

func (e *Engine[S]) parseID(id string) (any, bool) {
	switch e.entity.IDType {
	case TypeUUID:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, false
		}
		return parsed.String(), true
	case TypeInteger:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	default:
		if id == "" {
			return nil, false
		}
		return id, true
	}
}

func (e *Engine[S]) mapRows(rows []Row) ([]S, error) {
	data := make([]S, 0, len(rows))
	for _, row := range rows {
		item, err := e.entity.Map(row)
		if err != nil {
			e.logger.Error("Error mapeando fila", zap.String("entity", e.entity.Name), zap.Error(err))
			return nil, mappingFailure(err)
		}
		data = append(data, item)
	}
	return data, nil
}

func mappingFailure(err error) error {
	return &domain.Error{
		Kind:    domain.KindStoreFailure,
		Code:    "ROW_MAPPING",
		Message: "store returned an unreadable record",
		Err:     err,
	}
}
