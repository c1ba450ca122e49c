package audit

import (
	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// AuditRecord es la proyección de una fila de query_audit.
type AuditRecord struct {
	ID          string `json:"id"`
	PrincipalID string `json:"principal_id"`
	Entity      string `json:"entity"`
	Operation   string `json:"operation"`
	Predicate   string `json:"predicate"`
	Sort        string `json:"sort"`
	Records     int64  `json:"records"`
	Returned    int64  `json:"returned"`
	Outcome     string `json:"outcome"`
	DurationMS  int64  `json:"duration_ms"`
	OccurredAt  string `json:"occurred_at"`
}

// Entity describe el log de auditoría como entidad consultable. Cada principal
// solo ve su propio rastro.
func Entity() sharedQuery.Entity[AuditRecord] {
	return sharedQuery.Entity[AuditRecord]{
		Name:     "query_audit",
		Source:   "query_audit",
		IDColumn: "id",
		IDType:   sharedQuery.TypeUUID,
		Columns: []string{
			"id", "principal_id", "entity", "operation", "predicate", "sort",
			"records", "returned", "outcome", "duration_ms", "occurred_at",
		},
		Fields: []sharedQuery.Field{
			{Name: "entity", Column: "entity", Match: sharedQuery.MatchEquals, Type: sharedQuery.TypeString},
			{Name: "operation", Column: "operation", Match: sharedQuery.MatchEquals, Type: sharedQuery.TypeString, Enum: []string{"query", "get"}},
			{Name: "outcome", Column: "outcome", Match: sharedQuery.MatchEquals, Type: sharedQuery.TypeString},
			{Name: "predicate", Column: "predicate", Match: sharedQuery.MatchContains, Type: sharedQuery.TypeString, CaseInsensitive: true},
			{Name: "occurred_at", Column: "occurred_at", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeTimestamp},
			{Name: "duration_ms", Column: "duration_ms", Match: sharedQuery.MatchRange, Type: sharedQuery.TypeInteger},
		},
		Sorts: []sharedQuery.SortField{
			{Name: "occurred_at", Column: "occurred_at"},
			{Name: "duration_ms", Column: "duration_ms"},
		},
		DefaultSort: "occurred_at",
		Scope: sharedQuery.ScopePolicy{
			Default: []sharedQuery.ScopeRule{{Column: "principal_id", Attribute: sharedDomain.AttrPrincipalID}},
		},
		Paging: sharedQuery.PagePolicy{DefaultLimit: 50, MaxLimit: 100},
		Map:    mapAuditRecord,
	}
}

func mapAuditRecord(row sharedQuery.Row) (AuditRecord, error) {
	r := sharedQuery.NewRowReader(row)
	rec := AuditRecord{
		ID:          r.UUID("id"),
		PrincipalID: r.String("principal_id"),
		Entity:      r.String("entity"),
		Operation:   r.String("operation"),
		Predicate:   r.String("predicate"),
		Sort:        r.String("sort"),
		Records:     r.Int("records"),
		Returned:    r.Int("returned"),
		Outcome:     r.String("outcome"),
		DurationMS:  r.Int("duration_ms"),
		OccurredAt:  r.Timestamp("occurred_at"),
	}
	return rec, r.Err()
}
