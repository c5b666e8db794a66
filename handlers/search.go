package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/campuslib/backend/service"
	"github.com/go-chi/chi/v5"
)

// SearchHandler proxies the external book-metadata API.
type SearchHandler struct {
	API *service.BooksAPI
}

// Search runs a free-text query, optionally narrowed to a subject. A
// subject alone works too, which is how the browse-by-category and
// trending shelves query.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if subject := strings.TrimSpace(r.URL.Query().Get("subject")); subject != "" {
		if query != "" {
			query += " "
		}
		query += "subject:" + subject
	}
	if query == "" {
		http.Error(w, `{"error":"q or subject is required"}`, http.StatusBadRequest)
		return
	}
	limit := 40
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	volumes, err := h.API.Search(r.Context(), query, limit)
	if err != nil {
		http.Error(w, `{"error":"book search failed"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(volumes)
}

func (h *SearchHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	volume, err := h.API.ByID(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"volume not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(volume)
}

// ByISBN prefills admin book forms from an ISBN.
func (h *SearchHandler) ByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	volume, err := h.API.ByISBN(r.Context(), isbn)
	if err != nil {
		http.Error(w, `{"error":"no volume found for that isbn"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(volume)
}
