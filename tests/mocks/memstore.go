package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/davicafu/scopequery/shared/domain"
	"github.com/davicafu/scopequery/shared/platform/query"
)

// MemStore simula un query.Store en memoria. Evalúa el predicado fila a fila
// y cuenta las llamadas para poder comprobar cuántas veces se tocó el store.
type MemStore struct {
	Rows []query.Row

	// CountErr / FetchErr permiten inyectar fallos del store.
	CountErr error
	FetchErr error

	// AfterCount se ejecuta al terminar Count (ej. para cancelar el contexto
	// o simular una escritura concurrente).
	AfterCount func()

	mu         sync.Mutex
	counts     int
	fetches    int
	Statements []query.Statement
}

var _ query.Store = (*MemStore)(nil)

func NewMemStore(rows ...query.Row) *MemStore {
	return &MemStore{Rows: rows}
}

func (s *MemStore) Add(rows ...query.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rows = append(s.Rows, rows...)
}

// Calls devuelve el total de operaciones recibidas (Count + Fetch).
func (s *MemStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts + s.fetches
}

func (s *MemStore) CountCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func (s *MemStore) FetchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func (s *MemStore) Count(ctx context.Context, stmt query.Statement) (int64, error) {
	s.mu.Lock()
	s.counts++
	s.Statements = append(s.Statements, stmt)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.CountErr != nil {
		return 0, s.CountErr
	}
	total := int64(len(s.filter(stmt)))
	if s.AfterCount != nil {
		s.AfterCount()
	}
	return total, nil
}

func (s *MemStore) Fetch(ctx context.Context, stmt query.Statement) ([]query.Row, error) {
	s.mu.Lock()
	s.fetches++
	s.Statements = append(s.Statements, stmt)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}

	list := s.filter(stmt)
	sort.SliceStable(list, func(i, j int) bool {
		return less(list[i], list[j], stmt.Order)
	})

	// Paginar
	if stmt.Offset >= len(list) {
		return []query.Row{}, nil
	}
	end := len(list)
	if stmt.Limit > 0 && stmt.Offset+stmt.Limit < end {
		end = stmt.Offset + stmt.Limit
	}

	out := make([]query.Row, 0, end-stmt.Offset)
	for _, row := range list[stmt.Offset:end] {
		out = append(out, project(row, stmt.Columns))
	}
	return out, nil
}

func (s *MemStore) filter(stmt query.Statement) []query.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []query.Row
	for _, row := range s.Rows {
		if Matches(row, stmt.Predicate) {
			list = append(list, row)
		}
	}
	return list
}

// Matches evalúa el predicado completo sobre una fila con semántica SQL:
// cualquier comparación contra NULL es falsa salvo IS NULL.
func Matches(row query.Row, pred domain.Predicate) bool {
	for _, c := range pred.ToConditions() {
		if !matchCriterion(row[c.Field], c) {
			return false
		}
	}
	return true
}

func matchCriterion(v any, c domain.Criterion) bool {
	if c.Op == domain.OpIsNull {
		return v == nil
	}
	if v == nil {
		return false
	}
	switch c.Op {
	case domain.OpEq:
		return compare(v, c.Value) == 0
	case domain.OpGte:
		return compare(v, c.Value) >= 0
	case domain.OpLte:
		return compare(v, c.Value) <= 0
	case domain.OpContains:
		return strings.Contains(fmt.Sprint(v), fmt.Sprint(c.Value))
	case domain.OpIContains:
		return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(c.Value)))
	default:
		return false
	}
}

func compare(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
		}
		return x.Compare(y)
	case int64:
		y, ok := b.(int64)
		if !ok {
			return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case bool:
		return strings.Compare(fmt.Sprint(x), fmt.Sprint(b))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// less ordena con NULL al final en ascendente y al principio en descendente.
func less(a, b query.Row, order []query.SortSpec) bool {
	for _, o := range order {
		va, vb := a[o.Column], b[o.Column]
		var cmp int
		switch {
		case va == nil && vb == nil:
			cmp = 0
		case va == nil:
			cmp = 1
		case vb == nil:
			cmp = -1
		default:
			cmp = compare(va, vb)
		}
		if o.Desc() {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
	}
	return false
}

func project(row query.Row, columns []string) query.Row {
	if len(columns) == 0 {
		return row
	}
	out := make(query.Row, len(columns))
	for _, col := range columns {
		if v, ok := row[col]; ok {
			out[col] = v
		}
	}
	return out
}
