package application

import (
	"context"
	"time"
)

// OutcomeOK es el resultado de una consulta sin error; si falla se usa el Kind del error.
const OutcomeOK = "ok"

// QueryEvent resume una consulta ya terminada. Predicate es la forma de
// auditoría del predicado (solo datos, nunca SQL).
type QueryEvent struct {
	Entity      string
	Operation   string // "query" o "get"
	PrincipalID string
	Role        string
	Predicate   string
	Sort        string
	Page        int
	Limit       int
	Records     int64
	Returned    int
	Outcome     string
	Duration    time.Duration
}

// QueryObserver recibe cada consulta de forma síncrona. No devuelve error:
// un fallo de auditoría o métricas nunca afecta a la respuesta.
type QueryObserver interface {
	ObserveQuery(ctx context.Context, evt QueryEvent)
}

// Observers reparte el evento a varios observadores en orden.
type Observers []QueryObserver

func (o Observers) ObserveQuery(ctx context.Context, evt QueryEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveQuery(ctx, evt)
		}
	}
}

var _ QueryObserver = Observers(nil)
