package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/websitekoning/koning-api/libs/httpx"
	"github.com/websitekoning/koning-api/libs/requestid"
	"github.com/websitekoning/koning-api/services/site-service/internal/booking"
	"github.com/websitekoning/koning-api/services/site-service/internal/model"
	"github.com/websitekoning/koning-api/services/site-service/internal/notify"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

type LeadHandler struct {
	store           storage.LeadStore
	notifier        booking.Notifier
	adminRecipients []string
	logger          *slog.Logger
}

func NewLeadHandler(store storage.LeadStore, notifier booking.Notifier, adminRecipients []string, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{store: store, notifier: notifier, adminRecipients: adminRecipients, logger: logger}
}

type createLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Consent *bool  `json:"consent"`
	Source  string `json:"source"`
}

type leadItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message,omitempty"`
	Consent   bool   `json:"consent"`
	Source    string `json:"source"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	lead, err := req.lead()
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	id, err := h.store.Insert(r.Context(), &lead)
	if err != nil {
		h.logger.Error("lead insert failed", "err", err, "request_id", requestid.FromContext(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to store lead")
		return
	}
	h.notifier.Dispatch(r.Context(), notify.LeadAdmin(lead, h.adminRecipients))
	writeCreated(w, id, h.store.Durable())
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.store.ListRecent(r.Context(), 50)
	if err != nil {
		h.logger.Error("list leads failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list leads")
		return
	}
	items := make([]leadItem, 0, len(leads))
	for _, l := range leads {
		item := leadItem{
			ID:      l.ID,
			Name:    l.Name,
			Email:   l.Email,
			Phone:   l.Phone,
			Message: l.Message,
			Consent: l.Consent,
			Source:  l.Source,
		}
		if !l.CreatedAt.IsZero() {
			item.CreatedAt = l.CreatedAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (req createLeadRequest) lead() (model.Lead, error) {
	lead := model.Lead{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
		Consent: true,
		Source:  strings.TrimSpace(req.Source),
	}
	if req.Consent != nil {
		lead.Consent = *req.Consent
	}
	if lead.Source == "" {
		lead.Source = model.DefaultLeadSource
	}
	if lead.Name == "" || lead.Email == "" {
		return model.Lead{}, errors.New("name and email are required")
	}
	if err := booking.ValidateEmail(lead.Email); err != nil {
		return model.Lead{}, errors.New("invalid email address")
	}
	return lead, nil
}
