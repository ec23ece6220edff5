package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/websitekoning/koning-api/libs/email"
	"github.com/websitekoning/koning-api/libs/kafkax"
)

// LogSender writes the notification to the log instead of delivering it.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification", "kind", msg.Kind, "to", msg.Recipients, "subject", msg.Subject)
	return nil
}

// EmailSender delivers directly over SMTP.
type EmailSender struct {
	sender email.Sender
}

func NewEmailSender(sender email.Sender) *EmailSender {
	return &EmailSender{sender: sender}
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.sender.Send(msg.Recipients, msg.Subject, msg.Body)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes an email.Message for the notification service.
type KafkaSender struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

func NewKafkaSender(brokers, topic string) *KafkaSender {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(kafkax.SplitBrokers(brokers)...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaSender{writer: w, topic: topic, now: time.Now}
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	event := email.Message{
		ID:        uuid.NewString(),
		Kind:      msg.Kind,
		To:        msg.Recipients,
		Subject:   msg.Subject,
		Body:      msg.Body,
		CreatedAt: s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	km := kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(email.EventType)},
		},
	}
	km.Headers = kafkax.InjectTraceHeaders(ctx, km.Headers)
	if err := s.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
