package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/websitekoning/koning-api/libs/email"
	"github.com/websitekoning/koning-api/services/notification-service/internal/storage"
)

type fakeSender struct {
	failures int
	calls    int
	to       []string
}

func (s *fakeSender) Send(to []string, _ string, _ string) error {
	s.calls++
	s.to = to
	if s.calls <= s.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

type memRecorder struct {
	rows []storage.Delivery
}

func (r *memRecorder) Insert(_ context.Context, d storage.Delivery) error {
	r.rows = append(r.rows, d)
	return nil
}

func newTestHandler(sender email.Sender, rec Recorder) *Handler {
	return NewHandler(sender, rec, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{MaxAttempts: 3})
}

func emailEvent(t *testing.T, m email.Message) kafka.Message {
	t.Helper()
	body, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return kafka.Message{
		Topic: "site.notifications",
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(m.ID)},
			{Key: "event_type", Value: []byte(email.EventType)},
		},
	}
}

func TestHandleRetriesThenRecordsSent(t *testing.T) {
	sender := &fakeSender{failures: 2}
	rec := &memRecorder{}
	h := newTestHandler(sender, rec)

	msg := emailEvent(t, email.Message{ID: "e1", Kind: "appointment.admin", To: []string{"admin@x.nl"}, Subject: "Nieuwe afspraak"})
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if sender.calls != 3 {
		t.Fatalf("expected 3 send attempts, got %d", sender.calls)
	}
	if len(rec.rows) != 1 || rec.rows[0].Status != storage.StatusSent || rec.rows[0].Attempts != 3 {
		t.Fatalf("unexpected record: %+v", rec.rows)
	}
}

func TestHandleRecordsFailure(t *testing.T) {
	sender := &fakeSender{failures: 10}
	rec := &memRecorder{}
	h := newTestHandler(sender, rec)

	msg := emailEvent(t, email.Message{ID: "e2", To: []string{"a@x.nl"}, Subject: "s"})
	if err := h.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected send error")
	}
	if len(rec.rows) != 1 || rec.rows[0].Status != storage.StatusFailed || rec.rows[0].Error == "" {
		t.Fatalf("unexpected record: %+v", rec.rows)
	}
}

func TestHandleDropsMalformedEvents(t *testing.T) {
	sender := &fakeSender{}
	h := newTestHandler(sender, nil)

	cases := []kafka.Message{
		{Value: []byte("{"), Headers: []kafka.Header{{Key: "event_type", Value: []byte(email.EventType)}}},
		emailEvent(t, email.Message{ID: "e3", Subject: "no recipients"}),
		{Value: []byte("{}"), Headers: []kafka.Header{{Key: "event_type", Value: []byte("other.v1")}}},
	}
	for i, msg := range cases {
		if err := h.Handle(context.Background(), msg); err != nil {
			t.Fatalf("case %d: expected nil, got %v", i, err)
		}
	}
	if sender.calls != 0 {
		t.Fatalf("expected no sends, got %d", sender.calls)
	}
}
