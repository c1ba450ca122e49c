package bus

import "context"

// Keyer lo implementan los eventos que necesitan una clave de partición
// (ej. el id del principal para mantener el orden por usuario en Kafka).
type Keyer interface {
	PartitionKey() string
}

// EventPublisher publica un evento en un sink. Topic y formato del payload
// los decide cada adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}
