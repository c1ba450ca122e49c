package domain

import (
	"fmt"
	"strings"
	"time"
)

// ---------------- Operadores ----------------

type Operator string

const (
	OpEq        Operator = "="
	OpGte       Operator = ">="
	OpLte       Operator = "<="
	OpContains  Operator = "CONTAINS"
	OpIContains Operator = "ICONTAINS"
	OpIsNull    Operator = "IS NULL"
)

// ---------------- Criterion ----------------

// Criterion describe una condición neutral de filtrado: campo, operador y valor.
// Para OpIsNull el valor se ignora.
type Criterion struct {
	Field string
	Op    Operator
	Value interface{}
}

func (c Criterion) String() string {
	if c.Op == OpIsNull {
		return fmt.Sprintf("%s IS NULL", c.Field)
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, formatValue(c.Value))
}

// ---------------- Criteria interface ----------------

// Criteria permite transformar filtros a condiciones neutrales
type Criteria interface {
	ToConditions() []Criterion
}

// ---------------- Predicate ----------------

// Predicate es la conjunción (AND) de todas las condiciones de una consulta.
// Scope contiene el fragmento obligatorio derivado del principal y Filters
// lo que aporta el caller. No existe OR: ningún filtro puede ampliar el scope.
type Predicate struct {
	Scope   []Criterion
	Filters []Criterion
}

// ToConditions devuelve primero el scope y luego los filtros.
func (p Predicate) ToConditions() []Criterion {
	all := make([]Criterion, 0, len(p.Scope)+len(p.Filters))
	all = append(all, p.Scope...)
	all = append(all, p.Filters...)
	return all
}

// IsEmpty indica si el predicado no restringe nada.
func (p Predicate) IsEmpty() bool {
	return len(p.Scope) == 0 && len(p.Filters) == 0
}

// String produce una forma legible apta para logs de auditoría.
func (p Predicate) String() string {
	return fmt.Sprintf("scope[%s] filters[%s]", joinCriteria(p.Scope), joinCriteria(p.Filters))
}

func joinCriteria(conds []Criterion) string {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " AND ")
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", x)
	}
}

var _ Criteria = Predicate{}
