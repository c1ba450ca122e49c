package sqlstore

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// Dialect reúne lo que cambia entre motores: placeholders, búsqueda de
// subcadenas y cómo se enlazan los timestamps. lowerBound indica que el
// valor se usa en una comparación >=.
type Dialect struct {
	Name        string
	DriverName  string
	Placeholder sq.PlaceholderFormat

	// containsExpr devuelve una expresión con un único placeholder "?".
	containsExpr func(column string, caseInsensitive bool) string
	bindTime     func(t time.Time, lowerBound bool) interface{}
}

// Postgres usa strpos: el valor del caller nunca se interpreta como patrón LIKE.
var Postgres = Dialect{
	Name:        "postgres",
	DriverName:  "pgx",
	Placeholder: sq.Dollar,
	containsExpr: func(column string, ci bool) string {
		if ci {
			return fmt.Sprintf("strpos(lower(%s), lower(?)) > 0", column)
		}
		return fmt.Sprintf("strpos(%s, ?) > 0", column)
	},
	bindTime: func(t time.Time, _ bool) interface{} { return t.UTC() },
}

// SQLite guarda los timestamps como TEXT canónico: el orden lexicográfico
// coincide con el cronológico, así que los límites se enlazan como string.
// lower() de SQLite solo pliega ASCII; unicode_lower pliega cualquier letra.
var SQLite = Dialect{
	Name:        "sqlite",
	DriverName:  "sqlite",
	Placeholder: sq.Question,
	containsExpr: func(column string, ci bool) string {
		if ci {
			return fmt.Sprintf("instr(%[1]s(%[2]s), %[1]s(?)) > 0", unicodeLowerFunc, column)
		}
		return fmt.Sprintf("instr(%s, ?) > 0", column)
	},
	bindTime: func(t time.Time, lowerBound bool) interface{} {
		// el formato canónico trunca a milisegundos; un límite inferior se
		// redondea hacia arriba para no incluir filas anteriores a él
		if ms := t.Truncate(time.Millisecond); lowerBound && ms.Before(t) {
			t = ms.Add(time.Millisecond)
		}
		return sharedQuery.FormatTimestamp(t)
	},
}

// ClickHouse para consultas sobre tablas analíticas.
var ClickHouse = Dialect{
	Name:        "clickhouse",
	DriverName:  "clickhouse",
	Placeholder: sq.Question,
	containsExpr: func(column string, ci bool) string {
		if ci {
			return fmt.Sprintf("positionCaseInsensitive(%s, ?) > 0", column)
		}
		return fmt.Sprintf("position(%s, ?) > 0", column)
	},
	bindTime: func(t time.Time, _ bool) interface{} { return t.UTC() },
}

// DialectByName resuelve el dialecto configurado.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	case ClickHouse.Name:
		return ClickHouse, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
	}
}
