package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const checkTimeout = 2 * time.Second

// ReadyCheck is a named dependency check for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

// RunChecks runs every check concurrently, each under its own timeout, and
// returns the failures keyed by check name.
func RunChecks(ctx context.Context, checks []ReadyCheck) map[string]error {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures = map[string]error{}
	)
	for _, c := range checks {
		if c.Check == nil {
			continue
		}
		name := c.Name
		if name == "" {
			name = "dependency"
		}
		wg.Add(1)
		go func(check func(context.Context) error) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			if err := check(checkCtx); err != nil {
				mu.Lock()
				failures[name] = err
				mu.Unlock()
			}
		}(c.Check)
	}
	wg.Wait()
	return failures
}

type readyBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewBaseMuxWithReady serves /healthz (liveness) and /readyz, which reports
// every check by name and answers 503 when any fails.
func NewBaseMuxWithReady(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeReady(w, http.StatusOK, readyBody{Status: "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		failures := RunChecks(r.Context(), checks)
		body := readyBody{Status: "ok", Checks: map[string]string{}}
		for _, c := range checks {
			if c.Check != nil && c.Name != "" {
				body.Checks[c.Name] = "ok"
			}
		}
		for name, err := range failures {
			body.Checks[name] = err.Error()
		}
		status := http.StatusOK
		if len(failures) > 0 {
			body.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
		writeReady(w, status, body)
	})
	return mux
}

func writeReady(w http.ResponseWriter, status int, body readyBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
