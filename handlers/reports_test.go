package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuslib/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeReportsStore struct {
	byStatus map[string][]models.IssueWithDetails
	top      []models.BorrowCount
	topLimit int64
	err      error
}

func (f *fakeReportsStore) IssuesByStatus(ctx context.Context, statuses []string) ([]models.IssueWithDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.IssueWithDetails
	for _, s := range statuses {
		out = append(out, f.byStatus[s]...)
	}
	return out, nil
}

func (f *fakeReportsStore) TopBorrowedBooks(ctx context.Context, limit int64) ([]models.BorrowCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.topLimit = limit
	return f.top, nil
}

func issueWithTitle(title, status string) models.IssueWithDetails {
	return models.IssueWithDetails{
		BookIssue: models.BookIssue{ID: primitive.NewObjectID(), Status: status},
		BookTitle: title,
	}
}

func TestReportSections(t *testing.T) {
	store := &fakeReportsStore{
		byStatus: map[string][]models.IssueWithDetails{
			models.IssueStatusIssued:  {issueWithTitle("Dune", models.IssueStatusIssued)},
			models.IssueStatusOverdue: {issueWithTitle("Hyperion", models.IssueStatusOverdue)},
		},
		top: []models.BorrowCount{
			{BookID: primitive.NewObjectID(), Title: "Dune", Author: "Frank Herbert", Count: 12},
			{BookID: primitive.NewObjectID(), Title: "Hyperion", Author: "Dan Simmons", Count: 7},
		},
	}
	h := &ReportsHandler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	rec := httptest.NewRecorder()
	h.Report(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.CurrentlyIssued, 1)
	assert.Equal(t, "Dune", resp.CurrentlyIssued[0].BookTitle)
	require.Len(t, resp.Overdue, 1)
	assert.Equal(t, "Hyperion", resp.Overdue[0].BookTitle)
	require.Len(t, resp.TopBorrowed, 2)
	assert.Equal(t, int64(12), resp.TopBorrowed[0].Count)
	assert.Equal(t, int64(defaultTopBorrowed), store.topLimit)
}

func TestReportTopLimitParam(t *testing.T) {
	store := &fakeReportsStore{}
	h := &ReportsHandler{Store: store}

	req := httptest.NewRequest(http.MethodGet, "/api/reports?top=25", nil)
	rec := httptest.NewRecorder()
	h.Report(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(25), store.topLimit)

	// Empty sections come back as arrays, not null.
	assert.JSONEq(t, `{"currentlyIssued":[],"overdue":[],"topBorrowed":[]}`, rec.Body.String())
}

func TestReportStoreFailure(t *testing.T) {
	h := &ReportsHandler{Store: &fakeReportsStore{err: errors.New("aggregate failed")}}

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	rec := httptest.NewRecorder()
	h.Report(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
