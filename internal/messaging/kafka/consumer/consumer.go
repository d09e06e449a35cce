package consumer

import (
	"context"
	"errors"
	"time"

	"go-hrdesk/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader a consumer loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// HandleFunc processes one message. Returning a permanent error commits the
// message without retrying it; any other error retries the same message.
type HandleFunc func(ctx context.Context, msg kafkago.Message) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, e.g. an undecodable payload.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// classify treats client errors from a service as permanent: retrying a
// payload the service already rejected cannot succeed.
func classify(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
		return Permanent(err)
	}
	return err
}

func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

var (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// Run fetches messages until ctx is cancelled. A message is committed only
// after handle succeeds or fails permanently, so delivery is at-least-once
// and handlers must be idempotent.
func Run(ctx context.Context, reader MessageReader, handle HandleFunc, log *zap.Logger) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			if !sleep(ctx, retryBaseDelay) {
				return
			}
			continue
		}

		if !process(ctx, msg, handle, log) {
			log.Info("consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// process retries handle with exponential backoff. It returns false only
// when ctx is cancelled before the message is settled.
func process(ctx context.Context, msg kafkago.Message, handle HandleFunc, log *zap.Logger) bool {
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := handle(ctx, msg)
		if err == nil {
			return true
		}

		fields := []zap.Field{
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		}
		if IsPermanent(err) {
			log.Warn("skipping message", fields...)
			return true
		}
		log.Error("handle message failed", fields...)

		if !sleep(ctx, delay) {
			return false
		}
		delay *= 2
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
