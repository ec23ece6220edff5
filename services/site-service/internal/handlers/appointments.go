package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/websitekoning/koning-api/libs/httpx"
	"github.com/websitekoning/koning-api/libs/requestid"
	"github.com/websitekoning/koning-api/services/site-service/internal/admission"
	"github.com/websitekoning/koning-api/services/site-service/internal/booking"
	"github.com/websitekoning/koning-api/services/site-service/internal/model"
	"github.com/websitekoning/koning-api/services/site-service/internal/policy"
)

type Booker interface {
	Book(ctx context.Context, req booking.Request) (booking.Result, error)
	Recent(ctx context.Context, limit int) ([]model.Appointment, error)
	FreeSlots(ctx context.Context, year int, month time.Month, day int, now time.Time) ([]time.Time, error)
}

type AppointmentHandler struct {
	booker Booker
	policy *policy.Policy
	logger *slog.Logger
	now    func() time.Time
}

func NewAppointmentHandler(booker Booker, p *policy.Policy, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{booker: booker, policy: p, logger: logger, now: time.Now}
}

type createAppointmentRequest struct {
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Note   string    `json:"note"`
	Source string    `json:"source"`
}

type appointmentItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Note       string `json:"note,omitempty"`
	Source     string `json:"source,omitempty"`
	AssignedTo string `json:"assignedTo,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

type slotItem struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	res, err := h.booker.Book(r.Context(), booking.Request{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Start:  req.Start,
		End:    req.End,
		Note:   req.Note,
		Source: req.Source,
	})
	if err != nil {
		h.writeBookingError(w, r, err)
		return
	}
	writeCreated(w, res.ID, res.Stored)
}

func (h *AppointmentHandler) writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *admission.Rejection
	switch {
	case errors.As(err, &rej):
		status := http.StatusBadRequest
		if rej.Conflict() {
			status = http.StatusConflict
		}
		httpx.WriteError(w, status, string(rej.Reason), rej.Detail)
	case errors.Is(err, booking.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.Error("booking failed", "err", err, "request_id", requestid.FromContext(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to store appointment")
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.booker.Recent(r.Context(), 100)
	if err != nil {
		h.logger.Error("list appointments failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list appointments")
		return
	}
	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		item := appointmentItem{
			ID:         a.ID,
			Name:       a.Name,
			Email:      a.Email,
			Phone:      a.Phone,
			Start:      a.Start.Format(time.RFC3339),
			End:        a.End.Format(time.RFC3339),
			Note:       a.Note,
			Source:     a.Source,
			AssignedTo: a.AssignedTo,
		}
		if !a.CreatedAt.IsZero() {
			item.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "date is required (YYYY-MM-DD)")
		return
	}
	date, err := time.ParseInLocation(time.DateOnly, raw, h.policy.Location())
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid date (want YYYY-MM-DD)")
		return
	}

	starts, err := h.booker.FreeSlots(r.Context(), date.Year(), date.Month(), date.Day(), h.now())
	if err != nil {
		h.logger.Error("free slots failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to load availability")
		return
	}
	slots := make([]slotItem, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, slotItem{
			Start: s.Format(time.RFC3339),
			End:   s.Add(h.policy.SlotDuration()).Format(time.RFC3339),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"date":  raw,
		"slots": slots,
	})
}

func writeCreated(w http.ResponseWriter, id string, stored bool) {
	if !stored {
		httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"status": "accepted", "stored": false})
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": id, "status": "ok"})
}
