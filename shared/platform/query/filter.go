package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/davicafu/scopequery/shared/domain"
)

// Claves reservadas del FilterRequest en el wire.
const (
	KeyPage           = "page"
	KeyLimit          = "limit"
	KeySort           = "sort"
	KeyIncludeDeleted = "include_deleted"
)

// FieldValue es el valor tri-estado de un campo de filtro:
// ausente (sin restricción), null (IS NULL) o un valor concreto.
type FieldValue struct {
	present bool
	null    bool
	raw     any
}

func Absent() FieldValue { return FieldValue{} }

func Null() FieldValue { return FieldValue{present: true, null: true} }

// Value crea un valor concreto. Value(nil) equivale a Null().
func Value(v any) FieldValue {
	if v == nil {
		return Null()
	}
	return FieldValue{present: true, raw: v}
}

func (v FieldValue) IsAbsent() bool { return !v.present }
func (v FieldValue) IsNull() bool   { return v.present && v.null }
func (v FieldValue) Raw() any       { return v.raw }

// Ptr devuelve un puntero a v. Útil para Page/Limit.
func Ptr[T any](v T) *T { return &v }

// FilterRequest es la petición del caller para un tipo de entidad.
// Fields contiene todo lo que no es clave reservada; las claves que la entidad
// no declara se ignoran.
type FilterRequest struct {
	Page           *int
	Limit          *int
	Sort           string
	IncludeDeleted bool
	Fields         map[string]FieldValue
}

// Field devuelve el valor de un campo, Absent() si no viene.
func (r FilterRequest) Field(name string) FieldValue {
	if r.Fields == nil {
		return Absent()
	}
	return r.Fields[name]
}

// With devuelve una copia del request con el campo fijado.
func (r FilterRequest) With(name string, v FieldValue) FilterRequest {
	fields := make(map[string]FieldValue, len(r.Fields)+1)
	for k, fv := range r.Fields {
		fields[k] = fv
	}
	fields[name] = v
	r.Fields = fields
	return r
}

// UnmarshalJSON decodifica el objeto del wire. page/limit tienen que ser enteros;
// cualquier otro tipo es un error de validación.
func (r *FilterRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.NewValidationError("MALFORMED_REQUEST", "filter request must be a JSON object")
	}

	out := FilterRequest{Fields: make(map[string]FieldValue, len(raw))}
	for key, msg := range raw {
		switch key {
		case KeyPage:
			n, err := decodeInt(msg)
			if err != nil {
				return domain.NewValidationError("INVALID_PAGE", "page must be an integer")
			}
			out.Page = n
		case KeyLimit:
			n, err := decodeInt(msg)
			if err != nil {
				return domain.NewValidationError("INVALID_LIMIT", "limit must be an integer")
			}
			out.Limit = n
		case KeySort:
			if isNull(msg) {
				continue
			}
			if err := json.Unmarshal(msg, &out.Sort); err != nil {
				return domain.NewValidationError("UNKNOWN_SORT", "sort must be a string token")
			}
		case KeyIncludeDeleted:
			if isNull(msg) {
				continue
			}
			if err := json.Unmarshal(msg, &out.IncludeDeleted); err != nil {
				return domain.NewValidationError("INVALID_INCLUDE_DELETED", "include_deleted must be a boolean")
			}
		default:
			if isNull(msg) {
				out.Fields[key] = Null()
				continue
			}
			v, err := decodeAny(msg)
			if err != nil {
				return domain.NewValidationError("MALFORMED_REQUEST", fmt.Sprintf("filter %q is not valid JSON", key))
			}
			out.Fields[key] = Value(v)
		}
	}

	*r = out
	return nil
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}

// decodeInt devuelve nil para null.
func decodeInt(msg json.RawMessage) (*int, error) {
	if isNull(msg) {
		return nil, nil
	}
	v, err := decodeAny(msg)
	if err != nil {
		return nil, err
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil, fmt.Errorf("not a number")
	}
	n, err := num.Int64()
	if err != nil {
		return nil, err
	}
	i := int(n)
	if int64(i) != n {
		return nil, fmt.Errorf("integer out of range")
	}
	return &i, nil
}

// decodeAny conserva los números como json.Number para no perder enteros grandes.
func decodeAny(msg json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
