package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
)

// MockPublisher simula un sink de eventos
type MockPublisher struct {
	mock.Mock
}

var _ sharedBus.EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// RecordingObserver guarda los eventos de consulta recibidos.
type RecordingObserver struct {
	mu     sync.Mutex
	Events []sharedApp.QueryEvent
}

var _ sharedApp.QueryObserver = (*RecordingObserver)(nil)

func (o *RecordingObserver) ObserveQuery(ctx context.Context, evt sharedApp.QueryEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Events = append(o.Events, evt)
}

// Last devuelve el último evento observado.
func (o *RecordingObserver) Last() (sharedApp.QueryEvent, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.Events) == 0 {
		return sharedApp.QueryEvent{}, false
	}
	return o.Events[len(o.Events)-1], true
}
