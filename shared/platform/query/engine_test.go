package query_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/davicafu/scopequery/shared/domain"
	"github.com/davicafu/scopequery/shared/platform/query"
	"github.com/davicafu/scopequery/tests/mocks"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type note struct {
	ID        string                 `json:"id"`
	OwnerID   string                 `json:"owner_id"`
	Body      string                 `json:"body"`
	Archived  query.Nullable[string] `json:"archived_at"`
	CreatedAt string                 `json:"created_at"`
}

func noteEntity() query.Entity[note] {
	return query.Entity[note]{
		Name:     "note",
		Source:   "notes",
		IDColumn: "id",
		IDType:   query.TypeUUID,
		Columns:  []string{"id", "owner_id", "body", "archived_at", "created_at", "deleted_at"},
		Fields: []query.Field{
			{Name: "body", Column: "body", Match: query.MatchContains, Type: query.TypeString, CaseInsensitive: true},
			{Name: "owner_id", Column: "owner_id", Match: query.MatchEquals, Type: query.TypeString},
			{Name: "archived_at", Column: "archived_at", Match: query.MatchRange, Type: query.TypeTimestamp, Nullable: true},
			{Name: "created_at", Column: "created_at", Match: query.MatchRange, Type: query.TypeTimestamp},
		},
		Sorts: []query.SortField{
			{Name: "created_at", Column: "created_at"},
			{Name: "body", Column: "body", Default: query.Asc},
		},
		DefaultSort: "created_at",
		Scope: query.ScopePolicy{
			ByRole: map[string][]query.ScopeRule{
				"owner": {{Column: "owner_id", Attribute: domain.AttrPrincipalID}},
				"admin": {{Column: "owner_id", Attribute: domain.AttrPrincipalID}},
			},
		},
		SoftDeleteColumn:    "deleted_at",
		IncludeDeletedRoles: []string{"admin"},
		Paging:              query.PagePolicy{DefaultLimit: 20, MaxLimit: 100},
		Map: func(row query.Row) (note, error) {
			r := query.NewRowReader(row)
			n := note{
				ID:        r.UUID("id"),
				OwnerID:   r.String("owner_id"),
				Body:      r.String("body"),
				Archived:  r.NullableTimestamp("archived_at"),
				CreatedAt: r.Timestamp("created_at"),
			}
			return n, r.Err()
		},
	}
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func noteRow(owner string, i int) query.Row {
	return query.Row{
		"id":          uuid.NewString(),
		"owner_id":    owner,
		"body":        fmt.Sprintf("nota %02d de %s", i, owner),
		"archived_at": nil,
		"created_at":  base.Add(time.Duration(i) * time.Hour),
		"deleted_at":  nil,
	}
}

// seed crea 23 filas de P y 5 de otro principal.
func seed() *mocks.MemStore {
	store := mocks.NewMemStore()
	for i := 0; i < 23; i++ {
		store.Add(noteRow("P", i))
	}
	for i := 0; i < 5; i++ {
		store.Add(noteRow("Q", i))
	}
	return store
}

func newEngine(t *testing.T, store query.Store) *query.Engine[note] {
	t.Helper()
	engine, err := query.NewEngine(noteEntity(), store, zap.NewNop())
	require.NoError(t, err)
	return engine
}

var principalP = domain.NewPrincipal("P", "owner", "", "", nil)

func TestEngine_Escenarios(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		expected query.PageInfo
		dataLen  int
	}{
		{name: "A: primera página", page: 1, expected: query.PageInfo{Current: 1, Limit: 10, Records: 23, Pages: 3}, dataLen: 10},
		{name: "B: última página parcial", page: 3, expected: query.PageInfo{Current: 3, Limit: 10, Records: 23, Pages: 3}, dataLen: 3},
		{name: "C: página más allá del final", page: 5, expected: query.PageInfo{Current: 5, Limit: 10, Records: 23, Pages: 3}, dataLen: 0},
		{name: "página justo después de la última", page: 4, expected: query.PageInfo{Current: 4, Limit: 10, Records: 23, Pages: 3}, dataLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seed()
			engine := newEngine(t, store)

			page, err := engine.Query(context.Background(), principalP, query.FilterRequest{
				Page:  query.Ptr(tt.page),
				Limit: query.Ptr(10),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, page.Pagination)
			assert.Len(t, page.Data, tt.dataLen)
			assert.NotNil(t, page.Data)
			for _, n := range page.Data {
				assert.Equal(t, "P", n.OwnerID)
			}
			assert.Equal(t, 1, store.CountCalls())
			assert.Equal(t, 1, store.FetchCalls())
		})
	}
}

func TestEngine_EscenarioD_SortDesconocidoSinLlamadas(t *testing.T) {
	store := seed()
	engine := newEngine(t, store)

	page, err := engine.Query(context.Background(), principalP, query.FilterRequest{Sort: "bogus_field"})

	assert.Nil(t, page)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 0, store.Calls())
}

func TestEngine_EscenarioE_RangoInvertido(t *testing.T) {
	store := seed()
	engine := newEngine(t, store)

	req := query.FilterRequest{Fields: map[string]query.FieldValue{
		"created_at": query.Value(map[string]any{
			"from": "2024-01-01T10:00:00Z",
			"to":   "2024-01-01T05:00:00Z",
		}),
	}}

	page, err := engine.Query(context.Background(), principalP, req)

	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.Pagination.Records)
	assert.Equal(t, int64(0), page.Pagination.Pages)
}

func TestEngine_ErroresAntesDelStore(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		request   query.FilterRequest
		kind      domain.Kind
	}{
		{name: "sin principal", principal: nil, kind: domain.KindAuthorization},
		{name: "rol sin permiso", principal: domain.NewPrincipal("P", "guest", "", "", nil), kind: domain.KindAuthorization},
		{name: "include_deleted sin rol elevado", principal: principalP, request: query.FilterRequest{IncludeDeleted: true}, kind: domain.KindAuthorization},
		{name: "página negativa", principal: principalP, request: query.FilterRequest{Page: query.Ptr(-1)}, kind: domain.KindValidation},
		{name: "limit cero", principal: principalP, request: query.FilterRequest{Limit: query.Ptr(0)}, kind: domain.KindValidation},
		{name: "filtro de tipo incorrecto", principal: principalP, request: query.FilterRequest{Fields: map[string]query.FieldValue{"body": query.Value(true)}}, kind: domain.KindValidation},
		{name: "null en campo no nullable", principal: principalP, request: query.FilterRequest{Fields: map[string]query.FieldValue{"body": query.Null()}}, kind: domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seed()
			engine := newEngine(t, store)

			page, err := engine.Query(context.Background(), tt.principal, tt.request)

			assert.Nil(t, page)
			assert.Equal(t, tt.kind, domain.KindOf(err))
			assert.Equal(t, 0, store.Calls())
		})
	}
}

func TestEngine_ScopeNoSePuedeSobrescribir(t *testing.T) {
	store := seed()
	engine := newEngine(t, store)

	// el caller pide las notas de Q usando el campo de scope
	req := query.FilterRequest{Fields: map[string]query.FieldValue{"owner_id": query.Value("Q")}}

	page, err := engine.Query(context.Background(), principalP, req)

	require.NoError(t, err)
	assert.Equal(t, int64(23), page.Pagination.Records)
	for _, n := range page.Data {
		assert.Equal(t, "P", n.OwnerID)
	}
}

func TestEngine_ContencionDeScope_Propiedad(t *testing.T) {
	store := seed()
	engine := newEngine(t, store)

	properties := gopter.NewProperties(nil)
	properties.Property("ningún registro fuera del scope", prop.ForAll(
		func(owner, body, sort string, page, limit int) bool {
			req := query.FilterRequest{
				Page:  &page,
				Limit: &limit,
				Sort:  sort,
				Fields: map[string]query.FieldValue{
					"owner_id": query.Value(owner),
					"body":     query.Value(body),
				},
			}
			result, err := engine.Query(context.Background(), principalP, req)
			if err != nil {
				return false
			}
			for _, n := range result.Data {
				if n.OwnerID != "P" {
					return false
				}
			}
			return len(result.Data) <= result.Pagination.Limit
		},
		gen.OneConstOf("P", "Q", "", "*"),
		gen.OneConstOf("", "nota", "NOTA", "de q", "1"),
		gen.OneConstOf("", "created_at", "-created_at", "body:asc", "body:desc"),
		gen.IntRange(1, 6),
		gen.IntRange(1, 30),
	))
	properties.TestingRun(t)
}

func TestEngine_NullAusenteYValorSonDistintos(t *testing.T) {
	store := mocks.NewMemStore()
	archived := noteRow("P", 1)
	archived["archived_at"] = base.Add(48 * time.Hour)
	store.Add(noteRow("P", 0), archived, noteRow("P", 2))
	engine := newEngine(t, store)

	absent, err := engine.Query(context.Background(), principalP, query.FilterRequest{})
	require.NoError(t, err)

	onlyNull, err := engine.Query(context.Background(), principalP, query.FilterRequest{
		Fields: map[string]query.FieldValue{"archived_at": query.Null()},
	})
	require.NoError(t, err)

	withValue, err := engine.Query(context.Background(), principalP, query.FilterRequest{
		Fields: map[string]query.FieldValue{"archived_at_from": query.Value("2024-01-02")},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), absent.Pagination.Records)
	assert.Equal(t, int64(2), onlyNull.Pagination.Records)
	for _, n := range onlyNull.Data {
		assert.False(t, n.Archived.Valid)
	}
	assert.Equal(t, int64(1), withValue.Pagination.Records)
	assert.Equal(t, "2024-01-03T00:00:00.000Z", withValue.Data[0].Archived.Value)
}

func TestEngine_Idempotencia(t *testing.T) {
	store := mocks.NewMemStore()
	// todas con el mismo created_at: el desempate por id mantiene el orden estable
	for i := 0; i < 15; i++ {
		row := noteRow("P", 0)
		store.Add(row)
	}
	engine := newEngine(t, store)
	req := query.FilterRequest{Page: query.Ptr(2), Limit: query.Ptr(5)}

	first, err := engine.Query(context.Background(), principalP, req)
	require.NoError(t, err)
	second, err := engine.Query(context.Background(), principalP, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_OrdenConDesempatePorID(t *testing.T) {
	store := seed()
	engine := newEngine(t, store)

	plan, err := engine.Plan(principalP, query.FilterRequest{Sort: "body"})

	require.NoError(t, err)
	assert.Equal(t, []query.SortSpec{
		{Field: "body", Column: "body", Direction: query.Asc},
		{Field: "id", Column: "id", Direction: query.Asc},
	}, plan.Statement.Order)
	assert.Equal(t, []domain.Criterion{
		{Field: "owner_id", Op: domain.OpEq, Value: "P"},
		{Field: "deleted_at", Op: domain.OpIsNull},
	}, plan.Statement.Predicate.Scope)
}

func TestEngine_BorradoLogico(t *testing.T) {
	store := seed()
	deleted := noteRow("P", 99)
	deleted["deleted_at"] = base
	store.Add(deleted)
	engine := newEngine(t, store)

	page, err := engine.Query(context.Background(), principalP, query.FilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(23), page.Pagination.Records)

	admin := domain.NewPrincipal("P", "admin", "", "", nil)
	page, err = engine.Query(context.Background(), admin, query.FilterRequest{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, int64(24), page.Pagination.Records)
}

func TestEngine_FalloDelStore(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("falla el count", func(t *testing.T) {
		store := seed()
		store.CountErr = boom
		engine := newEngine(t, store)

		page, err := engine.Query(context.Background(), principalP, query.FilterRequest{})

		assert.Nil(t, page)
		assert.Equal(t, domain.KindStoreFailure, domain.KindOf(err))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, store.FetchCalls())
	})

	t.Run("falla el fetch", func(t *testing.T) {
		store := seed()
		store.FetchErr = boom
		engine := newEngine(t, store)

		page, err := engine.Query(context.Background(), principalP, query.FilterRequest{})

		assert.Nil(t, page)
		assert.Equal(t, domain.KindStoreFailure, domain.KindOf(err))
		assert.ErrorIs(t, err, boom)
		assert.NotContains(t, err.(*domain.Error).Message, "owner_id")
	})

	t.Run("cancelación entre count y fetch", func(t *testing.T) {
		store := seed()
		ctx, cancel := context.WithCancel(context.Background())
		store.AfterCount = cancel
		engine := newEngine(t, store)

		page, err := engine.Query(ctx, principalP, query.FilterRequest{})

		assert.Nil(t, page)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, store.CountCalls())
		assert.Equal(t, 0, store.FetchCalls())
	})

	t.Run("fila ilegible", func(t *testing.T) {
		store := mocks.NewMemStore(query.Row{"id": "no-uuid", "owner_id": "P", "body": "x", "created_at": base})
		engine := newEngine(t, store)

		page, err := engine.Query(context.Background(), principalP, query.FilterRequest{})

		assert.Nil(t, page)
		assert.Equal(t, domain.KindStoreFailure, domain.KindOf(err))
	})
}

func TestEngine_Get(t *testing.T) {
	store := seed()
	mine := noteRow("P", 50)
	other := noteRow("Q", 50)
	deleted := noteRow("P", 51)
	deleted["deleted_at"] = base
	store.Add(mine, other, deleted)
	engine := newEngine(t, store)

	t.Run("registro propio", func(t *testing.T) {
		got, err := engine.Get(context.Background(), principalP, mine["id"].(string))
		require.NoError(t, err)
		assert.Equal(t, mine["id"], got.ID)
	})

	t.Run("fuera de scope y no existente dan el mismo NotFound", func(t *testing.T) {
		_, errOther := engine.Get(context.Background(), principalP, other["id"].(string))
		_, errMissing := engine.Get(context.Background(), principalP, uuid.NewString())

		assert.ErrorIs(t, errOther, domain.ErrNotFound)
		assert.ErrorIs(t, errMissing, domain.ErrNotFound)
		assert.Equal(t, errOther.Error(), errMissing.Error())
	})

	t.Run("borrado lógico", func(t *testing.T) {
		_, err := engine.Get(context.Background(), principalP, deleted["id"].(string))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("id inválido no toca el store", func(t *testing.T) {
		before := store.Calls()
		_, err := engine.Get(context.Background(), principalP, "no-es-uuid")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, before, store.Calls())
	})

	t.Run("sin principal", func(t *testing.T) {
		_, err := engine.Get(context.Background(), nil, mine["id"].(string))
		assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
	})
}

func TestNewEngine_DescriptorInvalido(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *query.Entity[note])
	}{
		{name: "sin mapper", mutate: func(e *query.Entity[note]) { e.Map = nil }},
		{name: "tabla con inyección", mutate: func(e *query.Entity[note]) { e.Source = "notes; drop" }},
		{name: "sort default inexistente", mutate: func(e *query.Entity[note]) { e.DefaultSort = "nope" }},
		{name: "contains sobre entero", mutate: func(e *query.Entity[note]) {
			e.Fields = append(e.Fields, query.Field{Name: "n", Column: "n", Match: query.MatchContains, Type: query.TypeInteger})
		}},
		{name: "campo duplicado", mutate: func(e *query.Entity[note]) { e.Fields = append(e.Fields, e.Fields[0]) }},
		{name: "sin reglas de scope", mutate: func(e *query.Entity[note]) { e.Scope = query.ScopePolicy{} }},
		{name: "paginación inválida", mutate: func(e *query.Entity[note]) { e.Paging = query.PagePolicy{DefaultLimit: 50, MaxLimit: 10} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity := noteEntity()
			tt.mutate(&entity)

			_, err := query.NewEngine(entity, mocks.NewMemStore(), zap.NewNop())
			assert.Error(t, err)
		})
	}

	_, err := query.NewEngine(noteEntity(), nil, zap.NewNop())
	assert.Error(t, err)
}
