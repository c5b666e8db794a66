package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuslib/backend/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchHandler(upstream http.HandlerFunc) (*SearchHandler, *httptest.Server) {
	srv := httptest.NewServer(upstream)
	return &SearchHandler{API: service.NewBooksAPI(srv.URL)}, srv
}

func TestSearchBySubject(t *testing.T) {
	h, srv := newSearchHandler(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "subject:Fiction", r.URL.Query().Get("q"))
		w.Write([]byte(`{"totalItems":1,"items":[{"id":"v1","volumeInfo":{"title":"Dune"}}]}`))
	})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/search?subject=Fiction", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Dune"`)
}

func TestSearchCombinesQueryAndSubject(t *testing.T) {
	h, srv := newSearchHandler(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dune subject:Fiction", r.URL.Query().Get("q"))
		w.Write([]byte(`{"totalItems":0}`))
	})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=dune&subject=Fiction", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchRequiresQueryOrSubject(t *testing.T) {
	h, srv := newSearchHandler(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called")
	})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"q or subject is required"}`, rec.Body.String())
}
