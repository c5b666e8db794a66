package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/realtime"
	"github.com/campuslib/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HistoryHandler struct {
	DB  *store.DB
	Hub *realtime.Hub
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	history, err := h.DB.HistoryForUser(r.Context(), userID, 0)
	if err != nil {
		http.Error(w, `{"error":"failed to load reading history"}`, http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []models.HistoryWithBook{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

type SaveHistoryRequest struct {
	BookID string `json:"bookId" validate:"required"`
	Status string `json:"status"`
	Rating *int   `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Notes  string `json:"notes"`
}

// Save upserts the caller's saved/rated state for one book. Default status
// is want_to_read, matching the "save for later" action.
func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req SaveHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"bookId is required; rating must be 1-5"}`, http.StatusBadRequest)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	status := req.Status
	if status == "" {
		status = models.ReadingStatusWantToRead
	}
	switch status {
	case models.ReadingStatusWantToRead, models.ReadingStatusReading, models.ReadingStatusCompleted:
	default:
		http.Error(w, `{"error":"status must be want_to_read, reading or completed"}`, http.StatusBadRequest)
		return
	}

	entry := &models.ReadingHistory{
		UserID: userID,
		BookID: bookID,
		Status: status,
		Rating: req.Rating,
		Notes:  req.Notes,
	}
	now := time.Now()
	switch status {
	case models.ReadingStatusReading:
		entry.StartedAt = &now
	case models.ReadingStatusCompleted:
		entry.CompletedAt = &now
	}
	if err := h.DB.UpsertHistory(r.Context(), entry); err != nil {
		http.Error(w, `{"error":"failed to save book"}`, http.StatusInternalServerError)
		return
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("reading_history", realtime.EventUpdate, entry))
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "bookId"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	if err := h.DB.DeleteHistory(r.Context(), userID, bookID); err != nil {
		http.Error(w, `{"error":"failed to remove saved book"}`, http.StatusInternalServerError)
		return
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("reading_history", realtime.EventDelete, map[string]string{
		"userId": userID.Hex(),
		"bookId": bookID.Hex(),
	}))
	w.WriteHeader(http.StatusNoContent)
}
