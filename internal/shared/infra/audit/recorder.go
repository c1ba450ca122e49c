package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
)

// Recorder convierte cada consulta observada en un QueryAudited y lo publica
// en los sinks configurados. Los fallos de publicación solo se registran.
type Recorder struct {
	sinks []sharedBus.EventPublisher
	now   func() time.Time
	log   *zap.Logger
}

func NewRecorder(log *zap.Logger, sinks ...sharedBus.EventPublisher) *Recorder {
	return &Recorder{sinks: sinks, now: time.Now, log: log}
}

func (r *Recorder) ObserveQuery(ctx context.Context, evt sharedApp.QueryEvent) {
	audited := NewQueryAudited(evt, r.now())
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, audited); err != nil {
			r.log.Warn("No se pudo publicar la auditoría",
				zap.String("entity", audited.Entity),
				zap.String("audit_id", audited.ID.String()),
				zap.Error(err),
			)
		}
	}
}

var _ sharedApp.QueryObserver = (*Recorder)(nil)
