package query

import (
	"fmt"
	"math"

	"github.com/davicafu/scopequery/shared/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PagePolicy define el tamaño de página de una entidad. Con RejectOverLimit un
// limit por encima de MaxLimit es un error; si no, se recorta a MaxLimit.
type PagePolicy struct {
	DefaultLimit    int
	MaxLimit        int
	RejectOverLimit bool
}

func (p PagePolicy) withDefaults() PagePolicy {
	if p.DefaultLimit == 0 {
		p.DefaultLimit = DefaultPageSize
	}
	if p.MaxLimit == 0 {
		p.MaxLimit = MaxPageSize
	}
	return p
}

func (p PagePolicy) validate() error {
	p = p.withDefaults()
	if p.DefaultLimit < 1 || p.MaxLimit < p.DefaultLimit {
		return fmt.Errorf("invalid page policy: default %d, max %d", p.DefaultLimit, p.MaxLimit)
	}
	return nil
}

// Window es la página normalizada.
type Window struct {
	Page   int
	Limit  int
	Offset int
}

// PageInfo es el bloque de paginación del envelope.
type PageInfo struct {
	Current int   `json:"current"`
	Limit   int   `json:"limit"`
	Records int64 `json:"records"`
	Pages   int64 `json:"pages"`
}

// Info calcula la metadata de la ventana para un total de registros.
func (w Window) Info(records int64) PageInfo {
	return PageInfo{
		Current: w.Page,
		Limit:   w.Limit,
		Records: records,
		Pages:   TotalPages(records, w.Limit),
	}
}

// ResolveWindow normaliza page/limit. Valores presentes <= 0 son errores de
// validación, nunca se corrigen en silencio.
func ResolveWindow(page, limit *int, policy PagePolicy) (Window, error) {
	policy = policy.withDefaults()

	p := DefaultPage
	if page != nil {
		if *page <= 0 {
			return Window{}, domain.NewValidationError("INVALID_PAGE", "page must be a positive integer")
		}
		p = *page
	}

	l := policy.DefaultLimit
	if limit != nil {
		if *limit <= 0 {
			return Window{}, domain.NewValidationError("INVALID_LIMIT", "limit must be a positive integer")
		}
		l = *limit
	}
	if l > policy.MaxLimit {
		if policy.RejectOverLimit {
			return Window{}, domain.NewValidationError("LIMIT_TOO_LARGE",
				fmt.Sprintf("limit must not exceed %d", policy.MaxLimit))
		}
		l = policy.MaxLimit
	}

	if p-1 > math.MaxInt/l {
		return Window{}, domain.NewValidationError("INVALID_PAGE", "page is out of range")
	}
	return Window{Page: p, Limit: l, Offset: (p - 1) * l}, nil
}

// TotalPages = ceil(records / limit); 0 cuando no hay registros.
func TotalPages(records int64, limit int) int64 {
	if records <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return (records + l - 1) / l
}
