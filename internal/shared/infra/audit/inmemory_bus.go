package audit

import (
	"context"
	"encoding/json"
	"sync"

	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
)

// InMemoryEventBus reparte los eventos de auditoría a suscriptores locales.
// La entrega es síncrona y no bloqueante: si el canal de un suscriptor está
// lleno, ese evento se descarta para él.
type InMemoryEventBus struct {
	subscribers []chan []byte
	mu          sync.RWMutex
	dropped     int
}

var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{subscribers: make([]chan []byte, 0)}
}

// Publish serializa el evento una vez y lo ofrece a cada suscriptor.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subscribers {
		select {
		case sub <- payload:
		default:
			b.dropped++
		}
	}
	return nil
}

// Subscribe registra un oyente con un buffer de bufferSize eventos.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(chan []byte, bufferSize)
	b.subscribers = append(b.subscribers, sub)
	return sub
}

// Dropped devuelve cuántas entregas se descartaron por suscriptores llenos.
func (b *InMemoryEventBus) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}
