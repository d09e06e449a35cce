package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-hrdesk/internal/events"
	"go-hrdesk/internal/leavebalance"
	"go-hrdesk/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BalanceInitializer is satisfied by leavebalance.Service.
type BalanceInitializer interface {
	Initialize(ctx context.Context, companyID, employeeID string, year int) (leavebalance.InitializeResponse, error)
}

// HandleEmployeeCreated opens leave balances for the hire year of a newly
// created employee. Initialize skips rows that already exist, so redelivery
// is harmless.
func HandleEmployeeCreated(balances BalanceInitializer, logger *zap.Logger) HandleFunc {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return Permanent(err)
		}
		if event.EventType != "" && event.EventType != events.EmployeeCreatedType {
			logger.Debug("ignoring employee event", zap.String("event_type", event.EventType))
			return nil
		}

		year := time.Now().UTC().Year()
		if hire, err := time.Parse("2006-01-02", event.HireDate); err == nil {
			year = hire.Year()
		}

		ctx = contextutil.WithRequestID(ctx, event.RequestID)
		res, err := balances.Initialize(ctx, event.CompanyID, event.EmployeeID, year)
		if err != nil {
			return classify(err)
		}

		logger.Info("leave balances initialized from employee_created event",
			zap.String("event_id", event.EventID),
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
			zap.Int("year", year),
			zap.Int("created", res.Created),
		)
		return nil
	}
}

func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	balances BalanceInitializer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")
	Run(ctx, reader, HandleEmployeeCreated(balances, log), log)
}
