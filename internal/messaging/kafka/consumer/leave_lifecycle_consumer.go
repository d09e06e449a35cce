package consumer

import (
	"context"
	"encoding/json"

	"go-hrdesk/internal/events"
	"go-hrdesk/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// LifecycleApplier is satisfied by leavebalance.Service.
type LifecycleApplier interface {
	ApplyLifecycle(ctx context.Context, event events.LeaveRequestLifecycleEvent) error
}

func HandleLeaveLifecycle(balances LifecycleApplier, logger *zap.Logger) HandleFunc {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.LeaveRequestLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return Permanent(err)
		}
		if event.EventID == "" {
			event.EventID = header(msg, "event_id")
		}

		ctx = contextutil.WithRequestID(ctx, event.RequestID)
		if err := balances.ApplyLifecycle(ctx, event); err != nil {
			return classify(err)
		}

		logger.Debug("leave lifecycle applied",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.String("leave_request_id", event.LeaveRequestID),
		)
		return nil
	}
}

func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	balances LifecycleApplier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")
	Run(ctx, reader, HandleLeaveLifecycle(balances, log), log)
}
