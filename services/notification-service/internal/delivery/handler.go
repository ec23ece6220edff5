// Package delivery turns queued e-mail events into SMTP sends.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/websitekoning/koning-api/libs/email"
	"github.com/websitekoning/koning-api/libs/kafkax"
	"github.com/websitekoning/koning-api/services/notification-service/internal/storage"
)

// Recorder keeps an audit trail of deliveries. Optional.
type Recorder interface {
	Insert(ctx context.Context, d storage.Delivery) error
}

type Config struct {
	MaxAttempts int           `env:"DELIVERY_MAX_ATTEMPTS" envDefault:"3"`
	Backoff     time.Duration `env:"DELIVERY_BACKOFF" envDefault:"2s"`
}

type Handler struct {
	sender   email.Sender
	recorder Recorder
	logger   *slog.Logger
	cfg      Config
}

func NewHandler(sender email.Sender, recorder Recorder, logger *slog.Logger, cfg Config) *Handler {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Handler{sender: sender, recorder: recorder, logger: logger, cfg: cfg}
}

// Handle never asks for redelivery: malformed events are logged and dropped,
// send failures are retried in place and then recorded as failed.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventType != email.EventType {
		h.logger.Warn("unexpected event type", "event_type", meta.EventType, "event_id", meta.EventID)
		return nil
	}

	var m email.Message
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		h.logger.Error("invalid email payload", "err", err, "event_id", meta.EventID)
		return nil
	}
	if !m.Valid() {
		h.logger.Error("email payload missing recipients or subject", "event_id", meta.EventID)
		return nil
	}
	if m.ID == "" {
		m.ID = meta.EventID
	}

	attempts, sendErr := h.send(ctx, m)
	d := storage.Delivery{
		EventID:    m.ID,
		Kind:       m.Kind,
		Recipients: m.To,
		Subject:    m.Subject,
		Status:     storage.StatusSent,
		Attempts:   attempts,
	}
	if sendErr != nil {
		d.Status = storage.StatusFailed
		d.Error = sendErr.Error()
		h.logger.Error("email delivery failed", "err", sendErr, "event_id", m.ID, "kind", m.Kind, "attempts", attempts)
	} else {
		h.logger.Info("email delivered", "event_id", m.ID, "kind", m.Kind, "attempts", attempts)
	}

	if h.recorder != nil {
		if err := h.recorder.Insert(ctx, d); err != nil {
			return fmt.Errorf("record delivery: %w", err)
		}
	}
	return sendErr
}

func (h *Handler) send(ctx context.Context, m email.Message) (int, error) {
	wait := h.cfg.Backoff
	var err error
	for attempt := 1; attempt <= h.cfg.MaxAttempts; attempt++ {
		if err = h.sender.Send(m.To, m.Subject, m.Body); err == nil {
			return attempt, nil
		}
		if attempt == h.cfg.MaxAttempts {
			return attempt, err
		}
		h.logger.Warn("email send failed, retrying", "err", err, "event_id", m.ID, "attempt", attempt)
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return h.cfg.MaxAttempts, err
}
