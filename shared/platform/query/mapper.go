package query

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Row es una fila tal como la devuelve el store: columna → valor del driver.
type Row map[string]any

// Nullable se emite siempre en la salida: null si no hay valor.
type Nullable[T any] struct {
	Value T
	Valid bool
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Nullable[T]{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// RowReader lee columnas tipadas de una Row y guarda el primer error.
// Los campos opcionales/nullable toleran que la columna falte (ej. documentos de mongo).
type RowReader struct {
	row Row
	err error
}

func NewRowReader(row Row) *RowReader {
	return &RowReader{row: row}
}

func (r *RowReader) Err() error { return r.err }

func (r *RowReader) fail(col string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
}

func (r *RowReader) required(col string) (any, bool) {
	v, ok := r.row[col]
	if !ok || v == nil {
		r.fail(col, fmt.Errorf("missing value"))
		return nil, false
	}
	return v, true
}

func (r *RowReader) String(col string) string {
	v, ok := r.required(col)
	if !ok {
		return ""
	}
	s, err := toString(v)
	if err != nil {
		r.fail(col, err)
	}
	return s
}

func (r *RowReader) Int(col string) int64 {
	v, ok := r.required(col)
	if !ok {
		return 0
	}
	n, err := toInt(v)
	if err != nil {
		r.fail(col, err)
	}
	return n
}

func (r *RowReader) Bool(col string) bool {
	v, ok := r.required(col)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	default:
		r.fail(col, fmt.Errorf("unexpected %T for bool", v))
		return false
	}
}

// UUID devuelve la forma canónica en texto.
func (r *RowReader) UUID(col string) string {
	v, ok := r.required(col)
	if !ok {
		return ""
	}
	id, err := toUUID(v)
	if err != nil {
		r.fail(col, err)
		return ""
	}
	return id.String()
}

// Timestamp pasa la columna por el normalizador canónico.
func (r *RowReader) Timestamp(col string) string {
	v, ok := r.required(col)
	if !ok {
		return ""
	}
	s, _, err := NormalizeTimestamp(v)
	if err != nil {
		r.fail(col, err)
	}
	return s
}

func (r *RowReader) NullableString(col string) Nullable[string] {
	v := r.row[col]
	if v == nil {
		return Nullable[string]{}
	}
	s, err := toString(v)
	if err != nil {
		r.fail(col, err)
		return Nullable[string]{}
	}
	return Nullable[string]{Value: s, Valid: true}
}

func (r *RowReader) NullableTimestamp(col string) Nullable[string] {
	s, ok, err := NormalizeTimestamp(r.row[col])
	if err != nil {
		r.fail(col, err)
		return Nullable[string]{}
	}
	return Nullable[string]{Value: s, Valid: ok}
}

// OptionalString devuelve nil si la columna es null; con omitempty el campo desaparece.
func (r *RowReader) OptionalString(col string) *string {
	n := r.NullableString(col)
	if !n.Valid {
		return nil
	}
	return &n.Value
}

func (r *RowReader) OptionalTimestamp(col string) *string {
	n := r.NullableTimestamp(col)
	if !n.Valid {
		return nil
	}
	return &n.Value
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("unexpected %T for string", v)
	}
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected %T for integer", v)
	}
}

func toUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.ParseBytes(x)
	default:
		return uuid.Nil, fmt.Errorf("unexpected %T for uuid", v)
	}
}
