package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PreferencesHandler struct {
	DB *store.DB
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	prefs, err := h.DB.PreferencesForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error":"failed to load preferences"}`, http.StatusInternalServerError)
		return
	}
	if prefs == nil {
		prefs = &models.UserPreferences{UserID: userID}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}

type PreferencesRequest struct {
	FavoriteGenres  []string `json:"favoriteGenres"`
	Interests       []string `json:"interests"`
	PreferredLength string   `json:"preferredLength"`
	ReadingPace     string   `json:"readingPace"`
}

func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	prefs := &models.UserPreferences{
		UserID:          userID,
		FavoriteGenres:  req.FavoriteGenres,
		Interests:       req.Interests,
		PreferredLength: req.PreferredLength,
		ReadingPace:     req.ReadingPace,
	}
	if err := h.DB.UpsertPreferences(r.Context(), prefs); err != nil {
		http.Error(w, `{"error":"failed to save preferences"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prefs)
}

type FeedbackRequest struct {
	BookID           string `json:"bookId" validate:"required"`
	FeedbackType     string `json:"feedbackType" validate:"required,oneof=like dislike"`
	RecommendationID string `json:"recommendationId"`
}

// PostFeedback records a like/dislike signal. Write-only: nothing reads it
// back over the API.
func (h *PreferencesHandler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"bookId and feedbackType (like|dislike) are required"}`, http.StatusBadRequest)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	feedback := &models.Feedback{
		UserID:       userID,
		BookID:       bookID,
		FeedbackType: req.FeedbackType,
	}
	if req.RecommendationID != "" {
		recID, err := primitive.ObjectIDFromHex(req.RecommendationID)
		if err != nil {
			http.Error(w, `{"error":"invalid recommendation id"}`, http.StatusBadRequest)
			return
		}
		rec, err := h.DB.RecommendationByID(r.Context(), recID)
		if err != nil {
			http.Error(w, `{"error":"failed to record feedback"}`, http.StatusInternalServerError)
			return
		}
		if rec == nil {
			http.Error(w, `{"error":"recommendation not found"}`, http.StatusBadRequest)
			return
		}
		feedback.RecommendationID = recID
	}
	if _, err := h.DB.InsertFeedback(r.Context(), feedback); err != nil {
		http.Error(w, `{"error":"failed to record feedback"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
