package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/realtime"
	"github.com/campuslib/backend/service"
	"github.com/campuslib/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IssuesHandler struct {
	DB       *store.DB
	Hub      *realtime.Hub
	Notifier *service.Notifier
	Log      *logger.Logger
}

func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	issues, err := h.DB.ListIssues(r.Context())
	if err != nil {
		http.Error(w, `{"error":"failed to list issues"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(issues)
}

type IssueRequest struct {
	BookID  string    `json:"bookId" validate:"required"`
	UserID  string    `json:"userId" validate:"required"`
	DueDate time.Time `json:"dueDate" validate:"required"`
	Notes   string    `json:"notes"`
}

func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	issuerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"bookId, userId and dueDate are required"}`, http.StatusBadRequest)
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return
	}
	now := time.Now()
	if req.DueDate.Before(now) {
		http.Error(w, `{"error":"dueDate must not be before the issue date"}`, http.StatusBadRequest)
		return
	}

	issue := &models.BookIssue{
		BookID:    bookID,
		UserID:    userID,
		IssuedBy:  issuerID,
		IssueDate: now,
		DueDate:   req.DueDate,
		Notes:     req.Notes,
	}
	id, err := h.DB.CreateIssue(r.Context(), issue)
	if err == store.ErrNoCopies {
		http.Error(w, `{"error":"no available copies"}`, http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to issue book"}`, http.StatusInternalServerError)
		return
	}
	issue.ID = id
	h.Hub.Publish(r.Context(), realtime.NewEvent("book_issues", realtime.EventInsert, issue))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(issue)
}

// Return marks an open issue returned and frees the copy.
func (h *IssuesHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid issue id"}`, http.StatusBadRequest)
		return
	}
	issue, err := h.DB.ReturnIssue(r.Context(), id)
	if store.IsNotFound(err) {
		http.Error(w, `{"error":"open issue not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"failed to return book"}`, http.StatusInternalServerError)
		return
	}
	h.Hub.Publish(r.Context(), realtime.NewEvent("book_issues", realtime.EventUpdate, issue))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(issue)
}

type RemindersResponse struct {
	Flagged int `json:"flaggedOverdue"`
	Sent    int `json:"remindersSent"`
	Failed  int `json:"remindersFailed"`
}

// SendReminders sweeps overdue issues and mails borrowers whose loans are
// due within the window (default 3 days). Per-recipient failures are
// logged and counted, never fatal.
func (h *IssuesHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	if !h.Notifier.Configured() {
		http.Error(w, `{"error":"smtp is not configured"}`, http.StatusServiceUnavailable)
		return
	}
	now := time.Now()
	flagged, err := h.DB.MarkOverdue(r.Context(), now)
	if err != nil {
		http.Error(w, `{"error":"failed to flag overdue issues"}`, http.StatusInternalServerError)
		return
	}

	days := 3
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	issues, err := h.DB.OpenIssuesDueBy(r.Context(), now.AddDate(0, 0, days))
	if err != nil {
		http.Error(w, `{"error":"failed to load open issues"}`, http.StatusInternalServerError)
		return
	}

	resp := RemindersResponse{Flagged: int(flagged)}
	for _, issue := range issues {
		if err := h.Notifier.SendDueReminder(issue); err != nil {
			h.Log.Warn("reminder failed", "issueId", issue.ID.Hex(), "error", err)
			resp.Failed++
			continue
		}
		resp.Sent++
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
