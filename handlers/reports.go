package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/campuslib/backend/models"
)

const defaultTopBorrowed = 10

// ReportsStore supplies the staff report queries.
type ReportsStore interface {
	IssuesByStatus(ctx context.Context, statuses []string) ([]models.IssueWithDetails, error)
	TopBorrowedBooks(ctx context.Context, limit int64) ([]models.BorrowCount, error)
}

type ReportsHandler struct {
	Store ReportsStore
}

type ReportResponse struct {
	CurrentlyIssued []models.IssueWithDetails `json:"currentlyIssued"`
	Overdue         []models.IssueWithDetails `json:"overdue"`
	TopBorrowed     []models.BorrowCount      `json:"topBorrowed"`
}

// Report assembles the staff dashboard: open loans, overdue loans, and the
// most-borrowed books. ?top= caps the borrow ranking (default 10).
func (h *ReportsHandler) Report(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultTopBorrowed)
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	issued, err := h.Store.IssuesByStatus(r.Context(), []string{models.IssueStatusIssued})
	if err != nil {
		http.Error(w, `{"error":"failed to build report"}`, http.StatusInternalServerError)
		return
	}
	overdue, err := h.Store.IssuesByStatus(r.Context(), []string{models.IssueStatusOverdue})
	if err != nil {
		http.Error(w, `{"error":"failed to build report"}`, http.StatusInternalServerError)
		return
	}
	top, err := h.Store.TopBorrowedBooks(r.Context(), limit)
	if err != nil {
		http.Error(w, `{"error":"failed to build report"}`, http.StatusInternalServerError)
		return
	}

	resp := ReportResponse{
		CurrentlyIssued: issued,
		Overdue:         overdue,
		TopBorrowed:     top,
	}
	if resp.CurrentlyIssued == nil {
		resp.CurrentlyIssued = []models.IssueWithDetails{}
	}
	if resp.Overdue == nil {
		resp.Overdue = []models.IssueWithDetails{}
	}
	if resp.TopBorrowed == nil {
		resp.TopBorrowed = []models.BorrowCount{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
