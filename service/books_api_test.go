package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVolume = `{
	"id": "abc123",
	"volumeInfo": {
		"title": "Dune",
		"subtitle": "A Novel",
		"authors": ["Frank Herbert"],
		"publishedDate": "1965",
		"description": "Desert planet politics.",
		"pageCount": 412,
		"categories": ["Fiction"],
		"averageRating": 4.5,
		"previewLink": "http://example.com/preview",
		"infoLink": "http://example.com/info",
		"imageLinks": {
			"smallThumbnail": "http://img.example.com/s.jpg",
			"thumbnail": "http://img.example.com/t.jpg"
		},
		"industryIdentifiers": [
			{"type": "OTHER", "identifier": "X"},
			{"type": "ISBN_13", "identifier": "9780441013593"}
		]
	},
	"accessInfo": {"pdf": {"isAvailable": true}, "epub": {"isAvailable": false}}
}`

func TestBooksAPISearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "relevance", r.URL.Query().Get("orderBy"))
		w.Write([]byte(`{"totalItems":1,"items":[` + sampleVolume + `]}`))
	}))
	defer srv.Close()

	volumes, err := NewBooksAPI(srv.URL).Search(context.Background(), "dune", 5)
	require.NoError(t, err)
	require.Len(t, volumes, 1)

	v := volumes[0]
	assert.Equal(t, "abc123", v.ID)
	assert.Equal(t, "Dune: A Novel", v.Title)
	assert.Equal(t, []string{"Frank Herbert"}, v.Authors)
	assert.Equal(t, "9780441013593", v.ISBN)
	assert.Equal(t, "https://img.example.com/t.jpg", v.Thumbnail)
	assert.Equal(t, 412, v.PageCount)
	assert.True(t, v.PDFAvailable)
	assert.False(t, v.EpubAvailable)
}

func TestBooksAPIByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/abc123", r.URL.Path)
		w.Write([]byte(sampleVolume))
	}))
	defer srv.Close()

	v, err := NewBooksAPI(srv.URL).ByID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Dune: A Novel", v.Title)
}

func TestBooksAPIByISBNNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9780000000000", r.URL.Query().Get("q"))
		w.Write([]byte(`{"totalItems":0}`))
	}))
	defer srv.Close()

	_, err := NewBooksAPI(srv.URL).ByISBN(context.Background(), "978-0-00-000000-0")
	assert.Error(t, err)
}

func TestBooksAPIUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewBooksAPI(srv.URL).Search(context.Background(), "dune", 5)
	assert.Error(t, err)
}
