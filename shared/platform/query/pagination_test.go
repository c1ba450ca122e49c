package query

import (
	"math"
	"testing"

	"github.com/davicafu/scopequery/shared/domain"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWindow(t *testing.T) {
	policy := PagePolicy{DefaultLimit: 20, MaxLimit: 100}

	tests := []struct {
		name     string
		page     *int
		limit    *int
		policy   PagePolicy
		expected Window
	}{
		{name: "valores por defecto", policy: policy, expected: Window{Page: 1, Limit: 20, Offset: 0}},
		{name: "página 3 de 10", page: Ptr(3), limit: Ptr(10), policy: policy, expected: Window{Page: 3, Limit: 10, Offset: 20}},
		{name: "limit por encima del máximo se recorta", limit: Ptr(500), policy: policy, expected: Window{Page: 1, Limit: 100, Offset: 0}},
		{name: "limit igual al máximo", page: Ptr(2), limit: Ptr(100), policy: policy, expected: Window{Page: 2, Limit: 100, Offset: 100}},
		{name: "política vacía usa los defaults del paquete", policy: PagePolicy{}, expected: Window{Page: 1, Limit: DefaultPageSize, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWindow(tt.page, tt.limit, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveWindow_Errores(t *testing.T) {
	tests := []struct {
		name   string
		page   *int
		limit  *int
		policy PagePolicy
		code   string
	}{
		{name: "página cero", page: Ptr(0), code: "INVALID_PAGE"},
		{name: "página negativa", page: Ptr(-1), code: "INVALID_PAGE"},
		{name: "limit cero", limit: Ptr(0), code: "INVALID_LIMIT"},
		{name: "limit negativo", limit: Ptr(-5), code: "INVALID_LIMIT"},
		{name: "limit excesivo con rechazo", limit: Ptr(101), policy: PagePolicy{DefaultLimit: 50, MaxLimit: 100, RejectOverLimit: true}, code: "LIMIT_TOO_LARGE"},
		{name: "offset desbordado", page: Ptr(math.MaxInt), limit: Ptr(100), code: "INVALID_PAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWindow(tt.page, tt.limit, tt.policy)
			require.Error(t, err)

			var domainErr *domain.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domain.KindValidation, domainErr.Kind)
			assert.Equal(t, tt.code, domainErr.Code)
		})
	}
}

func TestWindowInfo(t *testing.T) {
	w := Window{Page: 3, Limit: 10, Offset: 20}

	assert.Equal(t, PageInfo{Current: 3, Limit: 10, Records: 23, Pages: 3}, w.Info(23))
	assert.Equal(t, PageInfo{Current: 3, Limit: 10, Records: 0, Pages: 0}, w.Info(0))
}

func TestTotalPages_Propiedades(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("pages == ceil(records/limit)", prop.ForAll(
		func(records int64, limit int) bool {
			expected := int64(math.Ceil(float64(records) / float64(limit)))
			return TotalPages(records, limit) == expected
		},
		gen.Int64Range(0, 1_000_000),
		gen.IntRange(1, 1000),
	))

	properties.Property("pages == 0 si y solo si records == 0", prop.ForAll(
		func(records int64, limit int) bool {
			return (TotalPages(records, limit) == 0) == (records == 0)
		},
		gen.Int64Range(0, 1_000_000),
		gen.IntRange(1, 1000),
	))

	properties.Property("la última página contiene al último registro", prop.ForAll(
		func(records int64, limit int) bool {
			pages := TotalPages(records, limit)
			if records == 0 {
				return pages == 0
			}
			lastOffset := (pages - 1) * int64(limit)
			return lastOffset < records && records <= pages*int64(limit)
		},
		gen.Int64Range(0, 1_000_000),
		gen.IntRange(1, 1000),
	))

	properties.Property("offset == (page-1)*limit y limit dentro de [1, max]", prop.ForAll(
		func(page, limit int) bool {
			w, err := ResolveWindow(&page, &limit, PagePolicy{DefaultLimit: 20, MaxLimit: 100})
			if err != nil {
				return false
			}
			return w.Limit >= 1 && w.Limit <= 100 && w.Offset == (page-1)*w.Limit
		},
		gen.IntRange(1, 100_000),
		gen.IntRange(1, 1000),
	))

	properties.TestingRun(t)
}
