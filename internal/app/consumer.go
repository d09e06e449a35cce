package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go-hrdesk/internal/config"
	"go-hrdesk/internal/events"
	"go-hrdesk/internal/leavebalance"
	"go-hrdesk/internal/messaging/kafka/consumer"
	"go-hrdesk/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newReader(cfg *config.Config, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          topic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}

// RunConsumer applies employee and leave request lifecycle events to the
// balance ledger until SIGINT/SIGTERM.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database.DSN(), cfg.Database.MaxRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	balanceRepo := leavebalance.NewRepository(sqlDB)
	balanceService := leavebalance.NewService(sqlDB, balanceRepo)

	employeeReader := newReader(cfg, events.EmployeeLifecycleTopic)
	defer employeeReader.Close()
	leaveReader := newReader(cfg, events.LeaveRequestLifecycleTopic)
	defer leaveReader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		consumer.ConsumeEmployeeLifecycle(gctx, employeeReader, balanceService, logger)
		return nil
	})
	g.Go(func() error {
		consumer.ConsumeLeaveLifecycle(gctx, leaveReader, balanceService, logger)
		return nil
	})

	err = g.Wait()
	logger.Info("consumer shutting down")
	return err
}
