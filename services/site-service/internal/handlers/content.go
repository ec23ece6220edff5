package handlers

import (
	"log/slog"
	"net/http"

	"github.com/websitekoning/koning-api/libs/httpx"
	"github.com/websitekoning/koning-api/services/site-service/internal/content"
)

type ContentHandler struct {
	content *content.Service
	logger  *slog.Logger
}

func NewContentHandler(c *content.Service, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{content: c, logger: logger}
}

type postItem struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Author  string   `json:"author,omitempty"`
}

type testimonialItem struct {
	ID     string `json:"id,omitempty"`
	Author string `json:"author"`
	Role   string `json:"role,omitempty"`
	Quote  string `json:"quote"`
	Rating int    `json:"rating"`
}

func (h *ContentHandler) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.Posts(r.Context(), 20)
	if err != nil {
		h.logger.Error("list posts failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list posts")
		return
	}
	items := make([]postItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, postItem{ID: p.ID, Title: p.Title, Excerpt: p.Excerpt, Content: p.Content, Tags: p.Tags, Author: p.Author})
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) Testimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.content.Testimonials(r.Context(), 20)
	if err != nil {
		h.logger.Error("list testimonials failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "failed to list testimonials")
		return
	}
	items := make([]testimonialItem, 0, len(testimonials))
	for _, t := range testimonials {
		items = append(items, testimonialItem{ID: t.ID, Author: t.Author, Role: t.Role, Quote: t.Quote, Rating: t.Rating})
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}
