package query

import (
	"fmt"
	"strings"

	"github.com/davicafu/scopequery/shared/domain"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField es una entrada de la allow-list de orden de una entidad.
// Default es la dirección cuando el token no la indica (desc si está vacía).
type SortField struct {
	Name    string
	Column  string
	Default Direction
}

func (f SortField) defaultDirection() Direction {
	if f.Default == "" {
		return Desc
	}
	return f.Default
}

// SortSpec es el orden resuelto; Column siempre proviene de la allow-list.
type SortSpec struct {
	Field     string
	Column    string
	Direction Direction
}

func (s SortSpec) Desc() bool { return s.Direction == Desc }

func (s SortSpec) String() string { return s.Field + ":" + string(s.Direction) }

// ResolveSort traduce un token del caller a un SortSpec de la allow-list.
// Tokens válidos: "campo", "campo:asc", "campo:desc" y "-campo".
// Sin token se usa defaultName con su dirección declarada.
func ResolveSort(token string, allow []SortField, defaultName string) (SortSpec, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		f, ok := lookupSort(allow, defaultName)
		if !ok {
			return SortSpec{}, fmt.Errorf("default sort %q is not in the allow-list", defaultName)
		}
		return SortSpec{Field: f.Name, Column: f.Column, Direction: f.defaultDirection()}, nil
	}

	name, dir := token, Direction("")
	if strings.HasPrefix(token, "-") {
		name, dir = token[1:], Desc
	} else if i := strings.IndexByte(token, ':'); i >= 0 {
		name = token[:i]
		switch Direction(strings.ToLower(token[i+1:])) {
		case Asc:
			dir = Asc
		case Desc:
			dir = Desc
		default:
			return SortSpec{}, unknownSort()
		}
	}

	f, ok := lookupSort(allow, name)
	if !ok {
		return SortSpec{}, unknownSort()
	}
	if dir == "" {
		dir = f.defaultDirection()
	}
	return SortSpec{Field: f.Name, Column: f.Column, Direction: dir}, nil
}

// SortTokens enumera todos los tokens que acepta la allow-list.
func SortTokens(allow []SortField) []string {
	tokens := make([]string, 0, len(allow)*4)
	for _, f := range allow {
		tokens = append(tokens, f.Name, f.Name+":asc", f.Name+":desc", "-"+f.Name)
	}
	return tokens
}

func lookupSort(allow []SortField, name string) (SortField, bool) {
	for _, f := range allow {
		if f.Name == name {
			return f, true
		}
	}
	return SortField{}, false
}

func unknownSort() error {
	return domain.NewValidationError("UNKNOWN_SORT", "sort token is not supported for this resource")
}
