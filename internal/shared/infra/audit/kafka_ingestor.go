package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
)

// MessageReader es la parte de *kafka.Reader que usa el ingestor.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaIngestor lee el topic de auditoría y vuelca cada evento en un sink
// (normalmente ClickHouse). El offset solo se confirma tras escribir en el sink.
type KafkaIngestor struct {
	reader MessageReader
	sink   sharedBus.EventPublisher
	log    *zap.Logger

	// espera tras un error de lectura; se duplica hasta maxRetryDelay
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

func NewKafkaIngestor(reader MessageReader, sink sharedBus.EventPublisher, log *zap.Logger) *KafkaIngestor {
	return &KafkaIngestor{
		reader:        reader,
		sink:          sink,
		log:           log,
		retryDelay:    time.Second,
		maxRetryDelay: 30 * time.Second,
	}
}

// NewKafkaReader crea un reader con consumer group sobre el topic de auditoría.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Run bloquea hasta que ctx se cancela, el reader se cierra o el sink falla.
func (i *KafkaIngestor) Run(ctx context.Context) error {
	i.log.Info("🎧 Ingestor de auditoría iniciado")

	delay := i.retryDelay
	for {
		msg, err := i.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				i.log.Info("Ingestor de auditoría detenido")
				return nil
			}
			i.log.Error("Error al leer mensaje de Kafka", zap.Duration("retry_in", delay), zap.Error(err))
			if !sleep(ctx, delay) {
				i.log.Info("Ingestor de auditoría detenido")
				return nil
			}
			if delay *= 2; delay > i.maxRetryDelay {
				delay = i.maxRetryDelay
			}
			continue
		}
		delay = i.retryDelay

		if err := i.handle(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if err := i.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			i.log.Error("Error al confirmar offset", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (i *KafkaIngestor) handle(ctx context.Context, msg kafka.Message) error {
	var evt QueryAudited
	if err := json.Unmarshal(msg.Value, &evt); err != nil || evt.Type != QueryAuditedType {
		// mensajes ilegibles o de otro tipo se descartan
		i.log.Warn("Mensaje de auditoría descartado",
			zap.Int64("offset", msg.Offset),
			zap.String("key", string(msg.Key)),
		)
		return nil
	}

	if err := i.sink.Publish(ctx, evt); err != nil {
		i.log.Error("Error al guardar evento de auditoría", zap.String("id", evt.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// sleep espera d o hasta que ctx se cancele; devuelve false si se canceló.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
