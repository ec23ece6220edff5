package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/websitekoning/koning-api/libs/auth"
	"github.com/websitekoning/koning-api/services/site-service/internal/admission"
	"github.com/websitekoning/koning-api/services/site-service/internal/booking"
	"github.com/websitekoning/koning-api/services/site-service/internal/content"
	"github.com/websitekoning/koning-api/services/site-service/internal/notify"
	"github.com/websitekoning/koning-api/services/site-service/internal/policy"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage/memory"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage/nostore"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *recordingNotifier) Dispatch(_ context.Context, msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

type testServer struct {
	handler  http.Handler
	notifier *recordingNotifier
}

func newTestServer(t *testing.T, stores storage.Stores, admin AdminConfig) testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := policy.MustNew(policy.DefaultConfig())
	n := &recordingNotifier{}
	admins := []string{"ops@websitekoning.nl"}

	svc := booking.NewService(admission.New(p), stores.Appointments, n, logger, admins)
	appts := NewAppointmentHandler(svc, p, logger)
	appts.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	mux := http.NewServeMux()
	Routes{
		Status:       NewStatusHandler(stores.Status, true, false),
		Appointments: appts,
		Leads:        NewLeadHandler(stores.Leads, n, admins, logger),
		Content:      NewContentHandler(content.NewService(stores.Content, logger, content.CacheConfig{}), logger),
		Admin:        NewAdminHandler(admin, logger),
	}.Register(mux)
	return testServer{handler: mux, notifier: n}
}

func (s testServer) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rw := httptest.NewRecorder()
	s.handler.ServeHTTP(rw, req)
	return rw
}

func decode(t *testing.T, rw *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rw.Body.Bytes())).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rw.Body.String(), err)
	}
}

const validBooking = `{"name":"Jan","email":"jan@example.nl","phone":"0612345678","start":"2026-01-26T11:00:00Z","end":"2026-01-26T11:30:00Z"}`

func TestCreateAppointmentStatusCodes(t *testing.T) {
	srv := newTestServer(t, memory.New().Stores(), AdminConfig{})

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"ok", validBooking, http.StatusCreated, ""},
		{"second ok", validBooking, http.StatusCreated, ""},
		{"full", validBooking, http.StatusConflict, "slot_full"},
		{"range", `{"name":"Jan","email":"jan@example.nl","phone":"1","start":"2026-01-26T11:30:00Z","end":"2026-01-26T11:00:00Z"}`, http.StatusBadRequest, "invalid_range"},
		{"duration", `{"name":"Jan","email":"jan@example.nl","phone":"1","start":"2026-01-26T11:00:00Z","end":"2026-01-26T11:31:00Z"}`, http.StatusBadRequest, "invalid_duration"},
		{"hours", `{"name":"Jan","email":"jan@example.nl","phone":"1","start":"2026-01-26T16:45:00Z","end":"2026-01-26T17:15:00Z"}`, http.StatusBadRequest, "outside_business_hours"},
		{"phone", `{"name":"Jan","email":"jan@example.nl","start":"2026-01-26T13:00:00Z","end":"2026-01-26T13:30:00Z"}`, http.StatusBadRequest, "invalid_request"},
		{"json", `{"name":`, http.StatusBadRequest, "invalid_json"},
	}
	for _, tc := range cases {
		rw := srv.do(t, http.MethodPost, "/api/appointments", tc.body, nil)
		if rw.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.status, rw.Code, rw.Body.String())
		}
		var body map[string]any
		decode(t, rw, &body)
		if tc.code == "" {
			if body["status"] != "ok" || body["id"] == "" {
				t.Fatalf("%s: unexpected body %v", tc.name, body)
			}
			continue
		}
		if body["error"] != tc.code {
			t.Fatalf("%s: expected error %q, got %v", tc.name, tc.code, body)
		}
	}
}

func TestCreateAppointmentWithoutDatabase(t *testing.T) {
	srv := newTestServer(t, nostore.New().Stores(), AdminConfig{})

	rw := srv.do(t, http.MethodPost, "/api/appointments", validBooking, nil)
	if rw.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rw.Code)
	}
	var body map[string]any
	decode(t, rw, &body)
	if body["status"] != "accepted" || body["stored"] != false {
		t.Fatalf("unexpected body: %v", body)
	}

	rw = srv.do(t, http.MethodGet, "/api/appointments", "", nil)
	if rw.Code != http.StatusOK || strings.TrimSpace(rw.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %s", rw.Code, rw.Body.String())
	}
}

func TestListAppointmentsRoundTrip(t *testing.T) {
	srv := newTestServer(t, memory.New().Stores(), AdminConfig{})
	created := srv.do(t, http.MethodPost, "/api/appointments", validBooking, nil)
	var res map[string]any
	decode(t, created, &res)

	rw := srv.do(t, http.MethodGet, "/api/appointments", "", nil)
	var items []appointmentItem
	decode(t, rw, &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(items))
	}
	got := items[0]
	if got.ID != res["id"] || got.Start != "2026-01-26T11:00:00Z" || got.End != "2026-01-26T11:30:00Z" || got.Phone != "0612345678" {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestSlots(t *testing.T) {
	srv := newTestServer(t, memory.New().Stores(), AdminConfig{})

	rw := srv.do(t, http.MethodGet, "/api/appointments/slots?date=2026-01-26", "", nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var body struct {
		Slots []slotItem `json:"slots"`
	}
	decode(t, rw, &body)
	if len(body.Slots) != 14 || body.Slots[0].Start != "2026-01-26T10:00:00Z" || body.Slots[0].End != "2026-01-26T10:30:00Z" {
		t.Fatalf("unexpected slots: %+v", body.Slots)
	}

	if rw := srv.do(t, http.MethodGet, "/api/appointments/slots?date=26-01-2026", "", nil); rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rw.Code)
	}
}

func TestLeads(t *testing.T) {
	srv := newTestServer(t, memory.New().Stores(), AdminConfig{})

	rw := srv.do(t, http.MethodPost, "/api/leads", `{"name":"Piet","email":"piet@example.nl","message":"Offerte graag"}`, nil)
	if rw.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rw.Code, rw.Body.String())
	}
	if rw := srv.do(t, http.MethodPost, "/api/leads", `{"name":"Piet","email":"not-an-email"}`, nil); rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", rw.Code)
	}

	rw = srv.do(t, http.MethodGet, "/api/leads", "", nil)
	var items []leadItem
	decode(t, rw, &items)
	if len(items) != 1 || !items[0].Consent || items[0].Source != "website" {
		t.Fatalf("unexpected leads: %+v", items)
	}
	if len(srv.notifier.msgs) != 1 || srv.notifier.msgs[0].Kind != notify.KindLeadAdmin {
		t.Fatalf("expected one lead notification, got %+v", srv.notifier.msgs)
	}
}

func TestContentFallback(t *testing.T) {
	srv := newTestServer(t, nostore.New().Stores(), AdminConfig{})

	rw := srv.do(t, http.MethodGet, "/api/posts", "", nil)
	var posts []postItem
	decode(t, rw, &posts)
	if len(posts) != 2 || posts[0].ID != "1" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	rw = srv.do(t, http.MethodGet, "/api/testimonials", "", nil)
	var testimonials []testimonialItem
	decode(t, rw, &testimonials)
	if len(testimonials) != 2 || testimonials[0].Author != "Bakkerij De Graaf" {
		t.Fatalf("unexpected testimonials: %+v", testimonials)
	}
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, nostore.New().Stores(), AdminConfig{})
	rw := srv.do(t, http.MethodGet, "/api/status", "", nil)
	var body map[string]any
	decode(t, rw, &body)
	if body["backend"] != "running" || body["connection_status"] != "not connected" || body["database_url"] != "set" {
		t.Fatalf("unexpected status: %v", body)
	}

	srv = newTestServer(t, memory.New().Stores(), AdminConfig{})
	rw = srv.do(t, http.MethodGet, "/api/status", "", nil)
	decode(t, rw, &body)
	if body["connection_status"] != "connected" {
		t.Fatalf("unexpected status: %v", body)
	}
}

func TestAdminProtectsListings(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	srv := newTestServer(t, memory.New().Stores(), AdminConfig{
		Username:     "admin",
		PasswordHash: hash,
		TokenSecret:  "test-secret",
		TokenTTL:     time.Hour,
	})

	if rw := srv.do(t, http.MethodGet, "/api/leads", "", nil); rw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rw.Code)
	}
	if rw := srv.do(t, http.MethodPost, "/api/admin/token", `{"username":"admin","password":"wrong"}`, nil); rw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rw.Code)
	}

	rw := srv.do(t, http.MethodPost, "/api/admin/token", `{"username":"admin","password":"s3cret"}`, nil)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rw.Code, rw.Body.String())
	}
	var tok tokenResponse
	decode(t, rw, &tok)

	bearer := map[string]string{"Authorization": "Bearer " + tok.AccessToken}
	for _, path := range []string{"/api/leads", "/api/appointments"} {
		if rw := srv.do(t, http.MethodGet, path, "", bearer); rw.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 with token, got %d", path, rw.Code)
		}
	}
	// Public writes stay open.
	if rw := srv.do(t, http.MethodPost, "/api/appointments", validBooking, nil); rw.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rw.Code)
	}
}

func TestAdminLoginDisabled(t *testing.T) {
	srv := newTestServer(t, memory.New().Stores(), AdminConfig{})
	if rw := srv.do(t, http.MethodPost, "/api/admin/token", `{"username":"admin","password":"x"}`, nil); rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rw.Code)
	}
}
