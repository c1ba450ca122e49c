package query

import "fmt"

// MatchKind indica cómo se compara un campo de filtro.
type MatchKind int

const (
	MatchEquals MatchKind = iota
	MatchContains
	MatchRange
)

func (m MatchKind) String() string {
	switch m {
	case MatchEquals:
		return "equals"
	case MatchContains:
		return "contains"
	case MatchRange:
		return "range"
	default:
		return "unknown"
	}
}

// FieldType es el tipo del valor que acepta un campo.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInteger
	TypeBool
	TypeUUID
	TypeTimestamp
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeBool:
		return "bool"
	case TypeUUID:
		return "uuid"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Field es el descriptor declarativo de un campo filtrable.
// Name es el nombre público en el wire, Column la columna en el store.
type Field struct {
	Name            string
	Column          string
	Match           MatchKind
	Type            FieldType
	Nullable        bool
	CaseInsensitive bool
	Enum            []string
}

func (f Field) validate() error {
	if f.Name == "" {
		return fmt.Errorf("field without name")
	}
	if !IsIdentifier(f.Column) {
		return fmt.Errorf("field %s: invalid column %q", f.Name, f.Column)
	}
	switch f.Match {
	case MatchEquals:
	case MatchContains:
		if f.Type != TypeString {
			return fmt.Errorf("field %s: contains requires a string type", f.Name)
		}
	case MatchRange:
		if f.Type != TypeInteger && f.Type != TypeTimestamp {
			return fmt.Errorf("field %s: range requires an integer or timestamp type", f.Name)
		}
	default:
		return fmt.Errorf("field %s: unknown match kind", f.Name)
	}
	if len(f.Enum) > 0 && f.Type != TypeString {
		return fmt.Errorf("field %s: enum requires a string type", f.Name)
	}
	return nil
}
