package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/scopequery/tests/mocks"
)

// fakeReader devuelve primero los errores de errs, luego los mensajes en orden
// y, al agotarlos, cancela el contexto.
type fakeReader struct {
	errs      []error
	msgs      []kafka.Message
	committed []int64
	fetches   int
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.fetches++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func auditedMessage(t *testing.T, offset int64) kafka.Message {
	t.Helper()
	evt := NewQueryAudited(sampleEvent, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	data, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte(evt.PrincipalID), Value: data}
}

func TestKafkaIngestor_VuelcaYConfirma(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		msgs: []kafka.Message{
			auditedMessage(t, 1),
			{Offset: 2, Value: []byte("no es json")},
			auditedMessage(t, 3),
		},
		cancel: cancel,
	}
	sink := new(mocks.MockPublisher)
	sink.On("Publish", mock.Anything, mock.MatchedBy(func(evt QueryAudited) bool {
		return evt.Entity == "task" && evt.PrincipalID == "u-1"
	})).Return(nil).Twice()

	// Act
	err := NewKafkaIngestor(reader, sink, zap.NewNop()).Run(ctx)

	// Assert
	require.NoError(t, err)
	sink.AssertExpectations(t)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

func TestKafkaIngestor_FalloDelSinkNoConfirma(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{msgs: []kafka.Message{auditedMessage(t, 7)}, cancel: cancel}
	sink := new(mocks.MockPublisher)
	sink.On("Publish", mock.Anything, mock.Anything).Return(errors.New("clickhouse down"))

	err := NewKafkaIngestor(reader, sink, zap.NewNop()).Run(ctx)

	assert.EqualError(t, err, "clickhouse down")
	assert.Empty(t, reader.committed)
}

func TestKafkaIngestor_ReaderCerradoTermina(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{errs: []error{io.EOF, io.EOF, io.EOF}, cancel: cancel}
	sink := new(mocks.MockPublisher)

	err := NewKafkaIngestor(reader, sink, zap.NewNop()).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, reader.fetches)
	assert.NoError(t, ctx.Err())
	sink.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestKafkaIngestor_EsperaTrasErrorDeLectura(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		errs:   []error{errors.New("broker not available"), errors.New("broker not available")},
		msgs:   []kafka.Message{auditedMessage(t, 4)},
		cancel: cancel,
	}
	sink := new(mocks.MockPublisher)
	sink.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	ingestor := NewKafkaIngestor(reader, sink, zap.NewNop())
	ingestor.retryDelay = 10 * time.Millisecond
	ingestor.maxRetryDelay = 15 * time.Millisecond

	start := time.Now()
	err := ingestor.Run(ctx)

	require.NoError(t, err)
	// 10ms + 15ms (tope) antes de leer el mensaje
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	assert.Equal(t, []int64{4}, reader.committed)
	sink.AssertExpectations(t)
}

func TestKafkaIngestor_CancelacionDuranteLaEspera(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{errs: []error{errors.New("broker not available")}, cancel: cancel}
	ingestor := NewKafkaIngestor(reader, new(mocks.MockPublisher), zap.NewNop())
	ingestor.retryDelay = time.Hour

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	assert.NoError(t, ingestor.Run(ctx))
	assert.Equal(t, 1, reader.fetches)
}
