package query

import (
	"encoding/json"
	"testing"

	"github.com/davicafu/scopequery/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRequest_UnmarshalJSON(t *testing.T) {
	body := `{
		"page": 2,
		"limit": 10,
		"sort": "title:asc",
		"include_deleted": true,
		"title": "informe",
		"due_at": null,
		"priority": {"from": 1, "to": 3}
	}`

	var got FilterRequest
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	assert.Equal(t, Ptr(2), got.Page)
	assert.Equal(t, Ptr(10), got.Limit)
	assert.Equal(t, "title:asc", got.Sort)
	assert.True(t, got.IncludeDeleted)

	assert.Equal(t, "informe", got.Field("title").Raw())
	assert.True(t, got.Field("due_at").IsNull())
	assert.True(t, got.Field("description").IsAbsent())
	assert.Equal(t, map[string]any{"from": json.Number("1"), "to": json.Number("3")}, got.Field("priority").Raw())

	// las claves reservadas no son campos de filtro
	assert.True(t, got.Field("page").IsAbsent())
}

func TestFilterRequest_ObjetoVacio(t *testing.T) {
	var got FilterRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &got))

	assert.Nil(t, got.Page)
	assert.Nil(t, got.Limit)
	assert.Empty(t, got.Sort)
	assert.False(t, got.IncludeDeleted)
	assert.Empty(t, got.Fields)
}

func TestFilterRequest_PaginacionNullEsAusente(t *testing.T) {
	var got FilterRequest
	require.NoError(t, json.Unmarshal([]byte(`{"page": null, "limit": null, "sort": null}`), &got))

	assert.Nil(t, got.Page)
	assert.Nil(t, got.Limit)
	assert.Empty(t, got.Sort)
}

func TestFilterRequest_Errores(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "page como string", body: `{"page": "2"}`, code: "INVALID_PAGE"},
		{name: "page decimal", body: `{"page": 1.5}`, code: "INVALID_PAGE"},
		{name: "limit booleano", body: `{"limit": true}`, code: "INVALID_LIMIT"},
		{name: "sort numérico", body: `{"sort": 1}`, code: "UNKNOWN_SORT"},
		{name: "include_deleted como string", body: `{"include_deleted": "yes"}`, code: "INVALID_INCLUDE_DELETED"},
		{name: "no es un objeto", body: `[1, 2]`, code: "MALFORMED_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FilterRequest
			err := json.Unmarshal([]byte(tt.body), &got)
			require.Error(t, err)

			var domainErr *domain.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domain.KindValidation, domainErr.Kind)
			assert.Equal(t, tt.code, domainErr.Code)
		})
	}
}

func TestFilterRequest_With(t *testing.T) {
	base := FilterRequest{Fields: map[string]FieldValue{"title": Value("a")}}

	next := base.With("status", Value("pending"))

	assert.True(t, base.Field("status").IsAbsent())
	assert.Equal(t, "pending", next.Field("status").Raw())
	assert.Equal(t, "a", next.Field("title").Raw())
}
