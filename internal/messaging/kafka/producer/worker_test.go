package producer_test

import (
	"context"
	"errors"
	"testing"

	"go-hrdesk/internal/messaging/kafka"
	"go-hrdesk/internal/messaging/kafka/mock"
	"go-hrdesk/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	written []kafkago.Message
	failOn  map[string]error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if err, ok := w.failOn[string(m.Key)]; ok {
			return err
		}
		w.written = append(w.written, m)
	}
	return nil
}

func headerValue(m kafkago.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishPending(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	evtA := kafka.OutboxEvent{
		ID: "evt-a", RequestID: "req-1", AggregateType: "leave_request", AggregateID: "leave-a",
		EventType: "leave_request_created", Topic: "hr.leave.request.lifecycle.v1", Payload: []byte(`{}`),
	}
	evtB := kafka.OutboxEvent{
		ID: "evt-b", AggregateType: "leave_request", AggregateID: "leave-b",
		EventType: "leave_request_approved", Topic: "hr.leave.request.lifecycle.v1", Payload: []byte(`{}`),
	}

	t.Run("publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{}

		repo.EXPECT().ListPending(ctx, 50).Return([]kafka.OutboxEvent{evtA, evtB}, nil)
		repo.EXPECT().MarkSent(ctx, "evt-a").Return(nil)
		repo.EXPECT().MarkSent(ctx, "evt-b").Return(nil)

		sent, err := producer.PublishPending(ctx, repo, writer, logger, 50)

		assert.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Len(t, writer.written, 2)
		assert.Equal(t, "leave-a", string(writer.written[0].Key))
		assert.Equal(t, "evt-a", headerValue(writer.written[0], "event_id"))
		assert.Equal(t, "req-1", headerValue(writer.written[0], "request_id"))
		assert.Equal(t, "", headerValue(writer.written[1], "request_id"))
	})

	t.Run("publish failure marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{failOn: map[string]error{"leave-a": errors.New("broker down")}}

		repo.EXPECT().ListPending(ctx, 10).Return([]kafka.OutboxEvent{evtA, evtB}, nil)
		repo.EXPECT().MarkFailed(ctx, "evt-a", "broker down").Return(nil)
		repo.EXPECT().MarkSent(ctx, "evt-b").Return(nil)

		sent, err := producer.PublishPending(ctx, repo, writer, logger, 10)

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("list error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)

		repo.EXPECT().ListPending(ctx, 10).Return(nil, errors.New("db down"))

		sent, err := producer.PublishPending(ctx, repo, &fakeWriter{}, logger, 10)

		assert.Error(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("nothing pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)

		repo.EXPECT().ListPending(ctx, 10).Return(nil, nil)

		sent, err := producer.PublishPending(ctx, repo, &fakeWriter{}, logger, 10)

		assert.NoError(t, err)
		assert.Equal(t, 0, sent)
	})
}
