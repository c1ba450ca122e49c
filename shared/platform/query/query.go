package query

import (
	"context"
	"regexp"

	"github.com/davicafu/scopequery/shared/domain"
)

// ---------- Puerto de persistencia ----------

// Statement es la instrucción neutral que el motor envía al store: origen,
// columnas a proyectar, predicado conjuntivo, orden y ventana.
// Limit == 0 significa "sin ventana" y solo se usa para Count.
type Statement struct {
	Source    string
	Columns   []string
	Predicate domain.Predicate
	Order     []SortSpec
	Offset    int
	Limit     int
}

// Store ejecuta statements. Count ignora Order/Offset/Limit.
type Store interface {
	Count(ctx context.Context, stmt Statement) (int64, error)
	Fetch(ctx context.Context, stmt Statement) ([]Row, error)
}

// ---------- Identificadores ----------

var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsIdentifier indica si name es un identificador de columna/tabla seguro para
// interpolar. Solo los descriptores declarados llegan al store; esto es la última barrera.
func IsIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}
