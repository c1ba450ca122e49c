package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// Store implementa sharedQuery.Store sobre database/sql. El SQL se compone con
// squirrel; los identificadores vienen de descriptores declarados y se validan
// otra vez antes de interpolarlos.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

func New(db *sql.DB, dialect Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Count ejecuta SELECT COUNT(*) con el predicado del statement.
func (s *Store) Count(ctx context.Context, stmt sharedQuery.Statement) (int64, error) {
	query, args, err := s.CountSQL(stmt)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", stmt.Source, err)
	}
	return total, nil
}

// Fetch ejecuta el SELECT con orden y ventana y devuelve las filas como mapas.
func (s *Store) Fetch(ctx context.Context, stmt sharedQuery.Statement) ([]sharedQuery.Row, error) {
	query, args, err := s.FetchSQL(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", stmt.Source, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]sharedQuery.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", stmt.Source, err)
		}

		row := make(sharedQuery.Row, len(cols))
		for i, col := range cols {
			// los drivers devuelven TEXT como []byte; se copia para no compartir el buffer
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", stmt.Source, err)
	}
	return out, nil
}

// CountSQL compila el statement de conteo. Expuesto para tests y diagnóstico.
func (s *Store) CountSQL(stmt sharedQuery.Statement) (string, []interface{}, error) {
	if !sharedQuery.IsIdentifier(stmt.Source) {
		return "", nil, fmt.Errorf("invalid source %q", stmt.Source)
	}
	builder := sq.Select("COUNT(*)").From(stmt.Source).PlaceholderFormat(s.dialect.Placeholder)

	where, err := s.where(stmt.Predicate)
	if err != nil {
		return "", nil, err
	}
	if where != nil {
		builder = builder.Where(where)
	}
	return builder.ToSql()
}

// FetchSQL compila el SELECT paginado.
func (s *Store) FetchSQL(stmt sharedQuery.Statement) (string, []interface{}, error) {
	if !sharedQuery.IsIdentifier(stmt.Source) {
		return "", nil, fmt.Errorf("invalid source %q", stmt.Source)
	}
	if len(stmt.Columns) == 0 {
		return "", nil, fmt.Errorf("no columns to select from %s", stmt.Source)
	}
	for _, col := range stmt.Columns {
		if !sharedQuery.IsIdentifier(col) {
			return "", nil, fmt.Errorf("invalid column %q", col)
		}
	}

	builder := sq.Select(stmt.Columns...).From(stmt.Source).PlaceholderFormat(s.dialect.Placeholder)

	where, err := s.where(stmt.Predicate)
	if err != nil {
		return "", nil, err
	}
	if where != nil {
		builder = builder.Where(where)
	}

	for _, o := range stmt.Order {
		if !sharedQuery.IsIdentifier(o.Column) {
			return "", nil, fmt.Errorf("invalid sort column %q", o.Column)
		}
		dir := "ASC"
		if o.Desc() {
			dir = "DESC"
		}
		builder = builder.OrderBy(o.Column + " " + dir)
	}

	if stmt.Limit > 0 {
		builder = builder.Limit(uint64(stmt.Limit))
	}
	if stmt.Offset > 0 {
		builder = builder.Offset(uint64(stmt.Offset))
	}
	return builder.ToSql()
}

// where traduce el predicado a una conjunción de squirrel. nil si no hay condiciones.
func (s *Store) where(pred sharedDomain.Predicate) (sq.Sqlizer, error) {
	conds := pred.ToConditions()
	if len(conds) == 0 {
		return nil, nil
	}

	and := make(sq.And, 0, len(conds))
	for _, c := range conds {
		expr, err := s.condition(c)
		if err != nil {
			return nil, err
		}
		and = append(and, expr)
	}
	return and, nil
}

func (s *Store) condition(c sharedDomain.Criterion) (sq.Sqlizer, error) {
	if !sharedQuery.IsIdentifier(c.Field) {
		return nil, fmt.Errorf("invalid column %q", c.Field)
	}

	if c.Op == sharedDomain.OpIsNull {
		return sq.Eq{c.Field: nil}, nil
	}
	if c.Value == nil {
		return nil, fmt.Errorf("operator %s on %s requires a value", c.Op, c.Field)
	}
	value := s.bind(c.Value, c.Op == sharedDomain.OpGte)

	switch c.Op {
	case sharedDomain.OpEq:
		return sq.Eq{c.Field: value}, nil
	case sharedDomain.OpGte:
		return sq.GtOrEq{c.Field: value}, nil
	case sharedDomain.OpLte:
		return sq.LtOrEq{c.Field: value}, nil
	case sharedDomain.OpContains:
		return sq.Expr(s.dialect.containsExpr(c.Field, false), value), nil
	case sharedDomain.OpIContains:
		return sq.Expr(s.dialect.containsExpr(c.Field, true), value), nil
	default:
		return nil, fmt.Errorf("unsupported operator %s", c.Op)
	}
}

func (s *Store) bind(v interface{}, lowerBound bool) interface{} {
	if t, ok := v.(time.Time); ok {
		return s.dialect.bindTime(t, lowerBound)
	}
	return v
}

var _ sharedQuery.Store = (*Store)(nil)
