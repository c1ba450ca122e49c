package query

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/davicafu/scopequery/shared/domain"
	"github.com/google/uuid"
)

// Sufijos de los límites planos de un rango: created_at_from / created_at_to.
const (
	suffixFrom = "_from"
	suffixTo   = "_to"
)

// BuildPredicate combina el fragmento de scope obligatorio con los filtros del caller.
//
//   - Campo ausente: sin restricción.
//   - null: IS NULL, solo si el campo es nullable.
//   - Valor: igualdad, contiene o rango según el descriptor.
//
// Los campos cuya columna ya está en el scope se descartan: el valor derivado
// del principal siempre gana.
func BuildPredicate(scope []domain.Criterion, fields []Field, req FilterRequest) (domain.Predicate, error) {
	scoped := make(map[string]struct{}, len(scope))
	for _, c := range scope {
		scoped[c.Field] = struct{}{}
	}

	pred := domain.Predicate{Scope: append([]domain.Criterion(nil), scope...)}
	for _, f := range fields {
		if _, ok := scoped[f.Column]; ok {
			continue
		}
		conds, err := buildField(f, req)
		if err != nil {
			return domain.Predicate{}, err
		}
		pred.Filters = append(pred.Filters, conds...)
	}
	return pred, nil
}

func buildField(f Field, req FilterRequest) ([]domain.Criterion, error) {
	v := req.Field(f.Name)

	if f.Match == MatchRange {
		return buildRange(f, v, req)
	}
	if v.IsAbsent() {
		return nil, nil
	}
	if v.IsNull() {
		return isNullCriterion(f)
	}

	val, err := coerce(f, v.Raw())
	if err != nil {
		return nil, err
	}

	switch f.Match {
	case MatchContains:
		op := domain.OpContains
		if f.CaseInsensitive {
			op = domain.OpIContains
		}
		return []domain.Criterion{{Field: f.Column, Op: op, Value: val}}, nil
	default:
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, val.(string)) {
			return nil, invalidValue(f, "is not one of the allowed values")
		}
		return []domain.Criterion{{Field: f.Column, Op: domain.OpEq, Value: val}}, nil
	}
}

// buildRange admite {"from": x, "to": y} y/o las claves planas <name>_from / <name>_to.
// La clave plana gana sobre el objeto para el mismo extremo; un extremo null no acota.
func buildRange(f Field, v FieldValue, req FilterRequest) ([]domain.Criterion, error) {
	var from, to FieldValue

	switch {
	case v.IsAbsent():
	case v.IsNull():
		conds, err := isNullCriterion(f)
		if err != nil {
			return nil, err
		}
		// IS NULL excluye cualquier acotación posterior
		return conds, nil
	default:
		obj, ok := v.Raw().(map[string]any)
		if !ok {
			return nil, invalidValue(f, "must be an object with from/to bounds")
		}
		for key := range obj {
			if key != "from" && key != "to" {
				return nil, invalidValue(f, "only accepts from/to bounds")
			}
		}
		if b, ok := obj["from"]; ok {
			from = Value(b)
		}
		if b, ok := obj["to"]; ok {
			to = Value(b)
		}
	}

	if flat := req.Field(f.Name + suffixFrom); !flat.IsAbsent() {
		from = flat
	}
	if flat := req.Field(f.Name + suffixTo); !flat.IsAbsent() {
		to = flat
	}

	var conds []domain.Criterion
	if !from.IsAbsent() && !from.IsNull() {
		val, err := coerce(f, from.Raw())
		if err != nil {
			return nil, err
		}
		conds = append(conds, domain.Criterion{Field: f.Column, Op: domain.OpGte, Value: val})
	}
	if !to.IsAbsent() && !to.IsNull() {
		val, err := coerce(f, to.Raw())
		if err != nil {
			return nil, err
		}
		conds = append(conds, domain.Criterion{Field: f.Column, Op: domain.OpLte, Value: val})
	}
	return conds, nil
}

func isNullCriterion(f Field) ([]domain.Criterion, error) {
	if !f.Nullable {
		return nil, domain.NewValidationError("NULL_NOT_ALLOWED", fmt.Sprintf("filter %s does not accept null", f.Name))
	}
	return []domain.Criterion{{Field: f.Column, Op: domain.OpIsNull}}, nil
}

func invalidValue(f Field, reason string) error {
	return domain.NewValidationError("INVALID_FILTER_VALUE", fmt.Sprintf("filter %s %s", f.Name, reason))
}

// coerce convierte el valor crudo al tipo declarado del campo.
func coerce(f Field, raw any) (any, error) {
	switch f.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, invalidValue(f, "must be a string")
		}
		return s, nil
	case TypeInteger:
		n, ok := toInt64(raw)
		if !ok {
			return nil, invalidValue(f, "must be an integer")
		}
		return n, nil
	case TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, invalidValue(f, "must be a boolean")
		}
		return b, nil
	case TypeUUID:
		switch x := raw.(type) {
		case uuid.UUID:
			return x.String(), nil
		case string:
			id, err := uuid.Parse(x)
			if err != nil {
				return nil, invalidValue(f, "must be a UUID")
			}
			return id.String(), nil
		default:
			return nil, invalidValue(f, "must be a UUID")
		}
	case TypeTimestamp:
		if _, isNum := raw.(json.Number); isNum {
			return nil, invalidValue(f, "must be an ISO-8601 timestamp")
		}
		t, err := ParseBound(raw)
		if err != nil {
			return nil, invalidValue(f, "must be an ISO-8601 timestamp")
		}
		return t, nil
	default:
		return nil, invalidValue(f, "has an unsupported type")
	}
}

func toInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}
