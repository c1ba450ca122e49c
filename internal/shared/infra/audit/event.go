package audit

import (
	"time"

	"github.com/google/uuid"

	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
)

const (
	QueryAuditedType = "query.audited"
	AuditTopic       = "scopequery.audit"
)

// QueryAudited es el registro de auditoría de una consulta. Predicate es la
// forma legible del predicado, sin SQL.
type QueryAudited struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	PrincipalID string    `json:"principal_id"`
	Role        string    `json:"role"`
	Entity      string    `json:"entity"`
	Operation   string    `json:"operation"`
	Predicate   string    `json:"predicate"`
	Sort        string    `json:"sort"`
	Page        int       `json:"page"`
	Limit       int       `json:"limit"`
	Records     int64     `json:"records"`
	Returned    int       `json:"returned"`
	Outcome     string    `json:"outcome"`
	DurationMS  int64     `json:"duration_ms"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PartitionKey mantiene juntas en Kafka las consultas de un mismo principal.
func (e QueryAudited) PartitionKey() string { return e.PrincipalID }

// NewQueryAudited construye el evento a partir de lo observado en la capa de aplicación.
func NewQueryAudited(evt sharedApp.QueryEvent, now time.Time) QueryAudited {
	return QueryAudited{
		ID:          uuid.New(),
		Type:        QueryAuditedType,
		PrincipalID: evt.PrincipalID,
		Role:        evt.Role,
		Entity:      evt.Entity,
		Operation:   evt.Operation,
		Predicate:   evt.Predicate,
		Sort:        evt.Sort,
		Page:        evt.Page,
		Limit:       evt.Limit,
		Records:     evt.Records,
		Returned:    evt.Returned,
		Outcome:     evt.Outcome,
		DurationMS:  evt.Duration.Milliseconds(),
		OccurredAt:  now.UTC(),
	}
}

var _ sharedBus.Keyer = QueryAudited{}
