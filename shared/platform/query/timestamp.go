package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/davicafu/scopequery/shared/domain"
)

// CanonicalLayout es el único formato de intercambio de timestamps: UTC con milisegundos.
const CanonicalLayout = "2006-01-02T15:04:05.000Z"

// Layouts aceptados al leer strings del store o del request, en orden de prueba.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeValuer cubre tipos de drivers que exponen Time() (ej. primitive.DateTime de mongo).
type timeValuer interface {
	Time() time.Time
}

// FormatTimestamp formatea un time.Time en el formato canónico.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(CanonicalLayout)
}

// ParseTimestamp interpreta un string en cualquiera de los layouts soportados.
// Un string sin zona se interpreta en UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ToTime convierte cualquier representación temporal del store a time.Time.
// ok es false cuando el valor es nulo.
func ToTime(v any) (t time.Time, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return x.UTC(), true, nil
	case *time.Time:
		if x == nil {
			return time.Time{}, false, nil
		}
		return x.UTC(), true, nil
	case string:
		t, err := ParseTimestamp(x)
		return t, err == nil, err
	case []byte:
		t, err := ParseTimestamp(string(x))
		return t, err == nil, err
	case int64:
		return time.Unix(x, 0).UTC(), true, nil
	case int:
		return time.Unix(int64(x), 0).UTC(), true, nil
	case timeValuer:
		return x.Time().UTC(), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("unsupported temporal value of type %T", v)
	}
}

// NormalizeTimestamp convierte un valor temporal del store al string canónico.
// ok es false cuando el valor es nulo; en ese caso el string es "".
func NormalizeTimestamp(v any) (string, bool, error) {
	t, ok, err := ToTime(v)
	if err != nil || !ok {
		return "", false, err
	}
	return FormatTimestamp(t), true, nil
}

// ParseBound convierte el límite de un filtro de rango a time.Time comparable.
// Acepta RFC3339/RFC3339Nano, fecha sola (medianoche UTC) o time.Time.
func ParseBound(v any) (time.Time, error) {
	t, ok, err := ToTime(v)
	if err != nil || !ok {
		return time.Time{}, domain.NewValidationError("INVALID_TIMESTAMP", "range bound is not a valid timestamp")
	}
	return t, nil
}
