package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/websitekoning/koning-api/libs/auth"
	"github.com/websitekoning/koning-api/libs/httpx"
)

const adminRole = "admin"

type AdminConfig struct {
	Username     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	PasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	TokenSecret  string        `env:"ADMIN_TOKEN_SECRET"`
	TokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`
}

// Enabled reports whether listings require an admin token.
func (c AdminConfig) Enabled() bool {
	return c.PasswordHash != "" && c.TokenSecret != ""
}

type AdminHandler struct {
	cfg    AdminConfig
	logger *slog.Logger
}

func NewAdminHandler(cfg AdminConfig, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{cfg: cfg, logger: logger}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *AdminHandler) Token(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Enabled() {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "admin login is disabled")
		return
	}
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Username)), []byte(h.cfg.Username)) == 1
	passErr := auth.VerifyPassword(h.cfg.PasswordHash, req.Password)
	if !userOK || passErr != nil {
		h.logger.Warn("admin login failed", "username", req.Username)
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	token, err := auth.SignHS256(auth.NewClaims(h.cfg.Username, adminRole, h.cfg.TokenTTL), h.cfg.TokenSecret)
	if err != nil {
		h.logger.Error("sign admin token failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to issue token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.cfg.TokenTTL.Seconds()),
	})
}

// RequireAdmin guards next with a bearer token. It passes everything through
// when admin login is disabled.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	if !h.cfg.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := auth.ParseAndVerifyHS256(token, h.cfg.TokenSecret)
		if err != nil || claims.Role != adminRole {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
