package handlers

import (
	"net/http"

	"github.com/websitekoning/koning-api/libs/httpx"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

type StatusHandler struct {
	reporter     storage.StatusReporter
	databaseURL  bool
	databaseName bool
}

// NewStatusHandler reports whether DATABASE_URL and DATABASE_NAME were set
// alongside the live database state.
func NewStatusHandler(reporter storage.StatusReporter, databaseURLSet, databaseNameSet bool) *StatusHandler {
	return &StatusHandler{reporter: reporter, databaseURL: databaseURLSet, databaseName: databaseNameSet}
}

func (h *StatusHandler) Root(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Hello from the Website Koning backend!"})
}

func (h *StatusHandler) Hello(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Hello from the backend API!"})
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.reporter.Status(r.Context())

	resp := map[string]any{
		"backend":           "running",
		"database":          "not available",
		"database_url":      setOrNot(h.databaseURL),
		"database_name":     setOrNot(h.databaseName),
		"connection_status": "not connected",
		"tables":            []string{},
	}
	if st.Name != "" {
		resp["database_name"] = st.Name
	}
	switch {
	case st.Connected && st.Err == nil:
		resp["database"] = "connected and working"
		resp["connection_status"] = "connected"
		if st.Tables != nil {
			resp["tables"] = st.Tables
		}
	case st.Connected:
		resp["database"] = "connected but error: " + truncate(st.Err.Error(), 50)
		resp["connection_status"] = "connected"
	case st.Err != nil:
		resp["database"] = "error: " + truncate(st.Err.Error(), 50)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func setOrNot(set bool) string {
	if set {
		return "set"
	}
	return "not set"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
