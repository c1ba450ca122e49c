package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
)

// MessageWriter es la parte de *kafka.Writer que usa el publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	log    *zap.Logger
}

// NewKafkaPublisher publica en topic. Si el writer ya tiene Topic fijo, topic debe ir vacío.
func NewKafkaPublisher(writer MessageWriter, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, log: log}
}

// NewKafkaWriter crea el writer genérico (sin topic fijo) para los brokers dados.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var key []byte
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = []byte(keyer.PartitionKey())
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   key,
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("topic", p.topic), zap.Error(err))
		return err
	}

	p.log.Debug("Audit event published", zap.String("topic", p.topic))
	return nil
}

var _ sharedBus.EventPublisher = (*KafkaPublisher)(nil)
