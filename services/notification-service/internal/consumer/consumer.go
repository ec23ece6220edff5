package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/websitekoning/koning-api/libs/kafkax"
	"github.com/websitekoning/koning-api/services/notification-service/internal/dedupe"
)

type Handler func(ctx context.Context, msg kafka.Message) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader  messageReader
	logger  *slog.Logger
	seen    dedupe.Deduper
	handler Handler
	backoff time.Duration
}

type Config struct {
	Brokers string `env:"KAFKA_BROKERS"`
	GroupID string `env:"KAFKA_GROUP_ID" envDefault:"notification-service"`
	Topic   string `env:"KAFKA_NOTIFY_TOPIC" envDefault:"site.notifications"`
}

func New(logger *slog.Logger, seen dedupe.Deduper, cfg Config, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, logger, seen, handler)
}

func newConsumer(reader messageReader, logger *slog.Logger, seen dedupe.Deduper, handler Handler) *Consumer {
	return &Consumer{
		reader:  reader,
		logger:  logger,
		seen:    seen,
		handler: handler,
		backoff: time.Second,
	}
}

// Run reads until ctx is cancelled. Handler errors are logged and the
// message is skipped; the group offset has already moved past it.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
		),
	)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventID != "" && c.seen != nil {
		first, err := c.seen.FirstSeen(ctxSpan, meta.EventID)
		if err != nil {
			// Delivering twice beats dropping when the seen set is down.
			c.logger.Warn("dedupe check failed", "err", err, "event_id", meta.EventID)
		} else if !first {
			c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
			return
		}
	}

	if err := c.handler(ctxSpan, msg); err != nil {
		c.logger.Error("handler error", "err", err, "event_id", meta.EventID)
		span.RecordError(err)
	}
}
